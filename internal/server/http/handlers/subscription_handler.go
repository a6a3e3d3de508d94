package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/server/http/dto"
)

// CreateSubscription registers a new recurring delivery agreement.
func CreateSubscription(facade SubscriptionFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req dto.SubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		start, err := model.ParseDay(req.StartDate)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		sub := &model.Subscription{
			CustomerID: req.CustomerID,
			VendorID:   req.VendorID,
			Product:    req.Product,
			Quantity:   req.Quantity,
			Rule:       req.Rule.ToModelRule(),
			StartDate:  start,
		}
		if req.EndDate != "" {
			end, err := model.ParseDay(req.EndDate)
			if err != nil {
				c.Status(http.StatusBadRequest)
				return
			}
			sub.EndDate = &end
		}

		created, err := facade.CreateSubscription(c.Request.Context(), ident, sub)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}
		c.JSON(http.StatusCreated, dto.FromSubscription(created))
	}
}

// ListSubscriptions returns the subscriptions visible to the caller.
func ListSubscriptions(facade SubscriptionFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		subs, err := facade.Subscriptions(c.Request.Context(), ident)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}
		if len(subs) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		resp := make([]dto.SubscriptionResponse, 0, len(subs))
		for i := range subs {
			resp = append(resp, dto.FromSubscription(&subs[i]))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Schedule expands a subscription's expected occurrences over a date range.
func Schedule(facade SubscriptionFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		from, to, err := parseDateRange(c)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		occs, err := facade.Schedule(c.Request.Context(), ident, id, from, to)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}

		resp := make([]dto.OccurrenceResponse, 0, len(occs))
		for _, occ := range occs {
			resp = append(resp, dto.FromOccurrence(occ))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PauseSubscription suspends deliveries over a date range.
func PauseSubscription(facade SubscriptionFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		var req dto.PauseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		from, err := model.ParseDay(req.From)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		to, err := model.ParseDay(req.To)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		sub, err := facade.PauseSubscription(c.Request.Context(), ident, id, from, to)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}
		c.JSON(http.StatusOK, dto.FromSubscription(sub))
	}
}

// ResumeSubscription lifts a pause and restores future deliveries.
func ResumeSubscription(facade SubscriptionFacade) gin.HandlerFunc {
	return subscriptionTransition(facade.ResumeSubscription)
}

// CancelSubscription terminates a subscription permanently.
func CancelSubscription(facade SubscriptionFacade) gin.HandlerFunc {
	return subscriptionTransition(facade.CancelSubscription)
}

func subscriptionTransition(
	transition func(ctx context.Context, ident model.Identity, id int64) (*model.Subscription, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		sub, err := transition(c.Request.Context(), ident, id)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}
		c.JSON(http.StatusOK, dto.FromSubscription(sub))
	}
}
