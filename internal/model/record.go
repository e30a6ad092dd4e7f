// Package model defines the row types flowing through the ETL pipeline.
package model

import "time"

// StagingRecord is one source CSV line with types applied. The three Yes/No
// columns stay raw strings at staging; the transformer coerces them.
// customer_id is the staging primary key.
type StagingRecord struct {
	CustomerID             int
	Category               string
	Age                    int
	Gender                 string
	Location               string
	Color                  string
	Size                   string
	Season                 string
	ItemPurchased          string
	PurchaseAmount         float64
	ReviewRating           *float64
	SubscriptionStatus     *string
	PaymentMethod          string
	ShippingType           string
	DiscountApplied        *string
	PromoCodeUsed          *string
	PreviousPurchase       string
	PreferredPaymentMethod string
	FrequencyOfPurchase    string
}

// Customer is the customer dimension row, one per distinct customer_id.
// SubscriptionStatus is nil when the source cell was empty.
type Customer struct {
	CustomerID         int
	Age                int
	Gender             string
	SubscriptionStatus *bool
}

// Product is the product dimension row. Its identity is the full attribute
// tuple; there is no surrogate key.
type Product struct {
	ItemPurchased string
	Category      string
	Size          string
	Color         string
	Season        string
}

// Purchase is the fact row, one per staging row, keyed by customer_id.
// ReviewRating is never nil after transformation.
type Purchase struct {
	CustomerID     int
	ItemPurchased  string
	PurchaseAmount float64
	Location       string
	ReviewRating   float64
}

// RunState is the terminal state recorded for a pipeline run.
type RunState string

const (
	RunRunning RunState = "running"
	RunDone    RunState = "done"
	RunFailed  RunState = "failed"
)

// Run is one pipeline invocation recorded in the etl_runs table.
type Run struct {
	ID         string
	CSVPath    string
	State      RunState
	RowsStaged int64
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}
