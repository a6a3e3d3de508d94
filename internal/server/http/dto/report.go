package dto

import "github.com/milkway/milkway/internal/domain/model"

// ReportRowResponse is one aggregated fulfillment row.
type ReportRowResponse struct {
	Key               int64   `json:"key"`
	Delivered         int     `json:"delivered"`
	Missed            int     `json:"missed"`
	Skipped           int     `json:"skipped"`
	Pending           int     `json:"pending"`
	QuantityExpected  float64 `json:"quantity_expected"`
	QuantityDelivered float64 `json:"quantity_delivered"`
}

// FromReportRow maps a domain report row to its wire form.
func FromReportRow(row model.ReportRow) ReportRowResponse {
	return ReportRowResponse{
		Key:               row.Key,
		Delivered:         row.Delivered,
		Missed:            row.Missed,
		Skipped:           row.Skipped,
		Pending:           row.Pending,
		QuantityExpected:  row.QuantityExpected,
		QuantityDelivered: row.QuantityDelivered,
	}
}
