package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/server/http/middleware"
)

// CurrentIdentity returns the verified caller stored by the auth middleware.
func CurrentIdentity(c *gin.Context) (model.Identity, bool) {
	value, exists := c.Get(middleware.IdentityContextKey)
	if !exists {
		return model.Identity{}, false
	}
	ident, ok := value.(model.Identity)
	return ident, ok
}

// parseDateRange reads the mandatory from and to query parameters.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := model.ParseDay(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := model.ParseDay(c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("range end precedes start")
	}
	return from, to, nil
}

// errorStatus maps domain errors to HTTP status codes. ErrUnmatchedEvent is
// handled by the delivery handler before this mapping applies.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrConflict),
		errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrInvalidState),
		errors.Is(err, domainErrors.ErrInvalidRecurrence),
		errors.Is(err, domainErrors.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
