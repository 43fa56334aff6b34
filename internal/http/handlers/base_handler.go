// README: Base handler utilities (JSON helpers, caller lookup, error mapping).
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"carrental/internal/http/middleware"
	"carrental/internal/modules/configurator"
	"carrental/internal/modules/fleet"
	"carrental/internal/modules/payment"
	"carrental/internal/modules/rental"
	"carrental/internal/modules/user"
	"carrental/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors []payment.FieldError `json:"errors"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeValidation(c *gin.Context, fields []payment.FieldError) {
	writeJSON(c, http.StatusUnprocessableEntity, validationResponse{Errors: fields})
}

// writeBindError answers a body that failed to decode or failed its binding rules.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]payment.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, payment.FieldError{
				Param: fe.Field(),
				Msg:   fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag()),
			})
		}
		writeValidation(c, fields)
		return
	}
	writeError(c, http.StatusBadRequest, "invalid json: "+err.Error())
}

// writeServiceError maps module errors to HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var rejected *payment.ValidationError
	switch {
	case errors.As(err, &rejected):
		writeValidation(c, rejected.Fields)
	case errors.Is(err, fleet.ErrBadRequest),
		errors.Is(err, rental.ErrBadRequest),
		errors.Is(err, user.ErrBadRequest),
		errors.Is(err, configurator.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, rental.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, rental.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrUnknownEmail):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, rental.ErrConflict),
		errors.Is(err, rental.ErrInvalidState),
		errors.Is(err, configurator.ErrNoVehicleAvailable),
		errors.Is(err, configurator.ErrPriceChanged):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrLoginDisabled):
		writeError(c, http.StatusNotImplemented, err.Error())
	default:
		middleware.Logger(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// callerID resolves the authenticated account or answers 401.
func callerID(c *gin.Context) (int64, bool) {
	id, ok := middleware.CallerUserID(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "token is not linked to a customer account")
		return 0, false
	}
	return id, true
}

// queryDate parses a YYYY-MM-DD query parameter or answers 400.
func queryDate(c *gin.Context, key string) (types.Date, bool) {
	raw := c.Query(key)
	if raw == "" {
		writeError(c, http.StatusBadRequest, "missing "+key)
		return types.Date{}, false
	}
	d, err := types.ParseDate(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, key+": "+err.Error())
		return types.Date{}, false
	}
	return d, true
}
