package model

// ReportGroup selects the dimension a fulfillment summary is grouped by.
type ReportGroup string

const (
	GroupByCustomer ReportGroup = "customer"
	GroupByVendor   ReportGroup = "vendor"
	GroupByMilkman  ReportGroup = "milkman"
)

// ValidReportGroup reports whether g names a known grouping dimension.
func ValidReportGroup(g ReportGroup) bool {
	switch g {
	case GroupByCustomer, GroupByVendor, GroupByMilkman:
		return true
	}
	return false
}

// ReportRow aggregates occurrence outcomes for one grouping key.
type ReportRow struct {
	Key               int64
	Delivered         int
	Missed            int
	Skipped           int
	Pending           int
	QuantityExpected  float64
	QuantityDelivered float64
}
