// README: Rental handlers: book, list and cancel the caller's rentals.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/configurator"
	"carrental/internal/modules/payment"
	"carrental/internal/modules/pricing"
	"carrental/internal/modules/rental"
	"carrental/internal/modules/user"
)

type RentalService interface {
	ListByUser(ctx context.Context, userID int64) ([]rental.Rental, error)
	Cancel(ctx context.Context, cmd rental.CancelCommand) error
	IsFrequentCustomer(ctx context.Context, userID int64) (bool, error)
}

// Profiles resolves the caller's account for /users/me.
type Profiles interface {
	Get(ctx context.Context, id int64) (*user.User, error)
}

type RentalHandler struct {
	rentals      RentalService
	configurator Configurator
	profiles     Profiles
}

func NewRentalHandler(rentals RentalService, cfg Configurator, profiles Profiles) *RentalHandler {
	return &RentalHandler{rentals: rentals, configurator: cfg, profiles: profiles}
}

type bookReq struct {
	pricing.Request
	Payment       payment.Details `json:"payment"`
	ExpectedPrice *int64          `json:"expected_price"`
}

func (h *RentalHandler) Book(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req bookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	r, err := h.configurator.Book(c.Request.Context(), configurator.BookCommand{
		UserID:        uid,
		Request:       req.Request,
		Payment:       req.Payment,
		ExpectedPrice: req.ExpectedPrice,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, r)
}

func (h *RentalHandler) List(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	rentals, err := h.rentals.ListByUser(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rentals)
}

func (h *RentalHandler) Cancel(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid rental id")
		return
	}
	if err := h.rentals.Cancel(c.Request.Context(), rental.CancelCommand{RentalID: id, UserID: uid}); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me reports the caller's account and loyalty status.
func (h *RentalHandler) Me(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	u, err := h.profiles.Get(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	frequent, err := h.rentals.IsFrequentCustomer(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"id":                u.ID,
		"name":              u.Name,
		"email":             u.Email,
		"frequent_customer": frequent,
	})
}
