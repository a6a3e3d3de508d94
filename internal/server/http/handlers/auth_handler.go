package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/server/http/dto"
	"github.com/milkway/milkway/internal/server/http/middleware"
)

// Register creates a user account and signs the caller in.
func Register(facade AuthFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AuthRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		role := model.Role(req.Role)
		if req.Role == "" {
			role = model.RoleCustomer
		}

		token, err := facade.Register(c.Request.Context(), req.Login, req.Password, role)
		switch {
		case err == nil:
			middleware.SetAuthCookie(c, token)
			c.Status(http.StatusOK)
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			c.Status(http.StatusBadRequest)
		default:
			c.Status(http.StatusInternalServerError)
		}
	}
}

// Login authenticates an existing user.
func Login(facade AuthFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AuthRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		token, err := facade.Authenticate(c.Request.Context(), req.Login, req.Password)
		switch {
		case err == nil:
			middleware.SetAuthCookie(c, token)
			c.Status(http.StatusOK)
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			c.Status(http.StatusUnauthorized)
		default:
			c.Status(http.StatusInternalServerError)
		}
	}
}
