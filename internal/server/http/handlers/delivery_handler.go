package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/server/http/dto"
	"github.com/milkway/milkway/internal/usecase"
)

// ReportDelivery accepts a milkman's delivery report and reconciles it
// against the subscription's expected occurrences. A report that matches no
// occurrence is stored for review and acknowledged with 202.
func ReportDelivery(facade DeliveryFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req dto.DeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		serviceDate, err := model.ParseDay(req.ServiceDate)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		report := usecase.EventReport{
			SubscriptionID:    req.SubscriptionID,
			ServiceDate:       serviceDate,
			Quantity:          req.Quantity,
			Note:              req.Note,
			NonDeliveryReason: req.NonDeliveryReason,
			Supersedes:        req.Supersedes,
		}
		if req.ExternalID != "" {
			externalID, err := uuid.Parse(req.ExternalID)
			if err != nil {
				c.Status(http.StatusBadRequest)
				return
			}
			report.ExternalID = externalID
		}

		event, err := facade.ReportDelivery(c.Request.Context(), ident, report)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, dto.FromDeliveryEvent(event))
		case errors.Is(err, domainErrors.ErrUnmatchedEvent):
			if event != nil {
				c.JSON(http.StatusAccepted, dto.FromDeliveryEvent(event))
				return
			}
			c.Status(http.StatusAccepted)
		default:
			c.Status(errorStatus(err))
		}
	}
}

// ListDeliveries returns the caller's reported events, newest first.
func ListDeliveries(facade DeliveryFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		events, err := facade.Deliveries(c.Request.Context(), ident)
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
