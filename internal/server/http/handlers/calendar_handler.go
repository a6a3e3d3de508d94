package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/server/http/dto"
)

// AddHoliday declares a vendor non-delivery date.
func AddHoliday(facade CalendarFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		var req dto.HolidayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		date, err := model.ParseDay(req.Date)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		if err := facade.AddHoliday(c.Request.Context(), ident, req.VendorID, date, req.Reason); err != nil {
			c.Status(errorStatus(err))
			return
		}
		c.Status(http.StatusOK)
	}
}

// RemoveHoliday withdraws a previously declared holiday.
func RemoveHoliday(facade CalendarFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}

		date, err := model.ParseDay(c.Param("date"))
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		vendorID, err := optionalVendorID(c)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		if err := facade.RemoveHoliday(c.Request.Context(), ident, vendorID, date); err != nil {
			c.Status(errorStatus(err))
			return
		}
		c.Status(http.StatusOK)
	}
}

// ListHolidays returns declared holidays over a date range.
func ListHolidays(facade CalendarFacade) gin.HandlerFunc {
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
		vendorID, err := optionalVendorID(c)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		holidays, err := facade.Holidays(c.Request.Context(), ident, vendorID, from, to)
		if err != nil {
			c.Status(errorStatus(err))
			return
		}
		if len(holidays) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		resp := make([]dto.HolidayResponse, 0, len(holidays))
		for _, h := range holidays {
			resp = append(resp, dto.FromHoliday(h))
		}
		c.JSON(http.StatusOK, resp)
	}
}

func optionalVendorID(c *gin.Context) (int64, error) {
	raw := c.Query("vendor_id")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
