package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/server/http/dto"
)

// UnmatchedEvents lists delivery events awaiting manual resolution.
func UnmatchedEvents(facade AdminFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		events, err := facade.UnmatchedEvents(c.Request.Context(), ident)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}
		if len(events) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		resp := make([]dto.DeliveryResponse, 0, len(events))
		for i := range events {
			resp = append(resp, dto.FromDeliveryEvent(&events[i]))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ForceResolve pins an unmatched event to an occurrence date.
func ForceResolve(facade AdminFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		var req dto.ResolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		date, err := model.ParseDay(req.Date)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		if err := facade.ForceResolve(c.Request.Context(), ident, eventID, date); err != nil {
			c.Status(errorStatus(err))
			return
		}
		c.Status(http.StatusOK)
	}
}
