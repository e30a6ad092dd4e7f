package schema

// Staging is the landing table for raw CSV rows, truncated and reloaded each
// run. Column order matches the source description; customer_id is the key.
var Staging = Table{
	Name: "staging_customer_data",
	Columns: []Column{
		{Name: "customer_id", Type: Int, Key: true},
		{Name: "category", Type: Text, Nullable: true},
		{Name: "age", Type: Int},
		{Name: "gender", Type: Text, Nullable: true},
		{Name: "location", Type: Text, Nullable: true},
		{Name: "color", Type: Text, Nullable: true},
		{Name: "size", Type: Text, Nullable: true},
		{Name: "season", Type: Text, Nullable: true},
		{Name: "item_purchased", Type: Text, Nullable: true},
		{Name: "purchase_amount", Type: Float},
		{Name: "review_rating", Type: Float, Nullable: true},
		{Name: "subscription_status", Type: Text, Nullable: true},
		{Name: "payment_method", Type: Text, Nullable: true},
		{Name: "shipping_type", Type: Text, Nullable: true},
		{Name: "discount_applied", Type: Text, Nullable: true},
		{Name: "promo_code_used", Type: Text, Nullable: true},
		{Name: "previous_purchase", Type: Text, Nullable: true},
		{Name: "preferred_payment_method", Type: Text, Nullable: true},
		{Name: "frequency_of_purchase", Type: Text, Nullable: true},
	},
}

// Customers is the customer dimension, one row per distinct customer_id.
var Customers = Table{
	Name: "customers",
	Columns: []Column{
		{Name: "customer_id", Type: Int, Key: true},
		{Name: "age", Type: Int},
		{Name: "gender", Type: Text, Nullable: true},
		{Name: "subscription_status", Type: Bool, Nullable: true},
	},
}

// Products is the product dimension. Identity is the full attribute tuple, so
// every column is part of the key.
var Products = Table{
	Name: "products",
	Columns: []Column{
		{Name: "item_purchased", Type: Text, Key: true},
		{Name: "category", Type: Text, Key: true},
		{Name: "size", Type: Text, Key: true},
		{Name: "color", Type: Text, Key: true},
		{Name: "season", Type: Text, Key: true},
	},
}

// Purchases is the fact table, one row per staging row. The staging key is
// customer_id, so purchases inherit it as their upsert key.
var Purchases = Table{
	Name: "purchases",
	Columns: []Column{
		{Name: "customer_id", Type: Int, Key: true},
		{Name: "item_purchased", Type: Text, Nullable: true},
		{Name: "purchase_amount", Type: Float},
		{Name: "location", Type: Text, Nullable: true},
		{Name: "review_rating", Type: Float},
	},
}

// Runs records one row per pipeline invocation.
var Runs = Table{
	Name: "etl_runs",
	Columns: []Column{
		{Name: "id", Type: Text, Key: true},
		{Name: "csv_path", Type: Text},
		{Name: "state", Type: Text},
		{Name: "rows_staged", Type: Int},
		{Name: "error", Type: Text, Nullable: true},
		{Name: "started_at", Type: Timestamp},
		{Name: "finished_at", Type: Timestamp, Nullable: true},
	},
}

// All lists every owned table in creation order: staging first, dimensions
// before facts, run log last.
func All() []Table {
	return []Table{Staging, Customers, Products, Purchases, Runs}
}
