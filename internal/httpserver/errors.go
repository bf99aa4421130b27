package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Product   string `json:"product,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// writeError maps domain failures to HTTP statuses. Unexpected errors are
// logged and answered with a generic 500.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Printf("http: %s %s request_id=%s error=%v", c.Request.Method, c.FullPath(), c.GetString(requestIDHeader), err)
	}
	c.JSON(status, body)
}

func classify(err error) (int, errorBody) {
	var (
		vErr     *domain.ValidationError
		stockErr *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, errorBody{Error: vErr.Message, Field: vErr.Field}
	case errors.As(err, &stockErr):
		available := stockErr.Available
		return http.StatusBadRequest, errorBody{
			Error:     stockErr.Error(),
			Product:   stockErr.ProductName,
			Requested: stockErr.Requested,
			Available: &available,
		}
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidReferralCode),
		errors.Is(err, domain.ErrDuplicateReferral),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrNotEligibleToReview),
		errors.Is(err, domain.ErrIllegalTransition):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, errorBody{Error: rootMessage(err)}
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, errorBody{Error: domain.ErrPermissionDenied.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	case errors.Is(err, domain.ErrEmailDelivery):
		return http.StatusBadGateway, errorBody{Error: domain.ErrEmailDelivery.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error"}
	}
}

// rootMessage hides token parsing details from clients.
func rootMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return domain.ErrInvalidCredentials.Error()
	}
	return domain.ErrInvalidToken.Error()
}
