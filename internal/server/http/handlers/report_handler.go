package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/server/http/dto"
)

// FulfillmentSummary aggregates occurrence outcomes over a date range,
// grouped by customer, vendor or milkman.
func FulfillmentSummary(facade ReportFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		from, to, err := parseDateRange(c)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		group := model.ReportGroup(c.DefaultQuery("group_by", string(model.GroupByCustomer)))

		rows, err := facade.FulfillmentSummary(c.Request.Context(), ident, from, to, group)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}
		if len(rows) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		resp := make([]dto.ReportRowResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, dto.FromReportRow(row))
		}
		c.JSON(http.StatusOK, resp)
	}
}
