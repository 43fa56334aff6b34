// README: Configurator handlers: quotes and the standalone payment check.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/configurator"
	"carrental/internal/modules/payment"
	"carrental/internal/modules/pricing"
	"carrental/internal/modules/rental"
)

type Configurator interface {
	Quote(ctx context.Context, userID int64, req pricing.Request) (*configurator.Proposal, error)
	Book(ctx context.Context, cmd configurator.BookCommand) (*rental.Rental, error)
}

type QuoteHandler struct {
	configurator Configurator
}

func NewQuoteHandler(cfg Configurator) *QuoteHandler {
	return &QuoteHandler{configurator: cfg}
}

func (h *QuoteHandler) Quote(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req pricing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.configurator.Quote(c.Request.Context(), uid, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// Payment checks card details without booking anything.
func (h *QuoteHandler) Payment(c *gin.Context) {
	var d payment.Details
	if err := c.ShouldBindJSON(&d); err != nil {
		writeBindError(c, err)
		return
	}
	if err := payment.Validate(d); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"msg": "payment completed"})
}
