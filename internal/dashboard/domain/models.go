package domain

import "context"

// ChartBucket is one bar of the status chart.
type ChartBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Fill  string `json:"fill"`
}

// Summary aggregates invoices with their statuses derived at request time.
// Money fields carry two decimals.
type Summary struct {
	Total        int           `json:"total"`
	Paid         int           `json:"paid"`
	Pending      int           `json:"pending"`
	Overdue      int           `json:"overdue"`
	TotalRevenue string        `json:"total_revenue"`
	Outstanding  string        `json:"outstanding"`
	Chart        []ChartBucket `json:"chart"`
}

type Service interface {
	Summary(ctx context.Context) (Summary, error)
}
