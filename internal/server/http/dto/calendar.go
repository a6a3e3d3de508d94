package dto

import (
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

// HolidayRequest declares a vendor non-delivery date. VendorID is honored
// only for administrators; vendors always act on their own calendar.
type HolidayRequest struct {
	VendorID int64  `json:"vendor_id,omitempty"`
	Date     string `json:"date" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// HolidayResponse is the wire form of a declared holiday.
type HolidayResponse struct {
	VendorID int64  `json:"vendor_id"`
	Date     string `json:"date"`
	Reason   string `json:"reason,omitempty"`
}

// FromHoliday maps a domain holiday to its wire form.
func FromHoliday(h model.Holiday) HolidayResponse {
	return HolidayResponse{
		VendorID: h.VendorID,
		Date:     h.Date.Format(time.DateOnly),
		Reason:   h.Reason,
	}
}
