// Package transform derives the normalized row sets from staged records. It
// is pure: no I/O, no database access.
package transform

import (
	"github.com/shopstack/shopper-etl/internal/fault"
	"github.com/shopstack/shopper-etl/internal/model"
)

// Derived holds the three normalized row sets produced from one staging batch.
type Derived struct {
	Customers []model.Customer
	Products  []model.Product
	Purchases []model.Purchase
}

// Derive applies the transformation steps in order: boolean coercion, rating
// imputation, dimension extraction, fact extraction. The input batch is not
// modified.
func Derive(records []model.StagingRecord) (*Derived, error) {
	subs := make([]*bool, len(records))
	for i, rec := range records {
		sub, err := CoerceBool(rec.SubscriptionStatus)
		if err != nil {
			return nil, fault.Wrapf(fault.Transform, err, "transform: customer %d: subscription_status", rec.CustomerID)
		}
		if _, err := CoerceBool(rec.DiscountApplied); err != nil {
			return nil, fault.Wrapf(fault.Transform, err, "transform: customer %d: discount_applied", rec.CustomerID)
		}
		if _, err := CoerceBool(rec.PromoCodeUsed); err != nil {
			return nil, fault.Wrapf(fault.Transform, err, "transform: customer %d: promo_code_used", rec.CustomerID)
		}
		subs[i] = sub
	}

	ratings, err := imputeRatings(records)
	if err != nil {
		return nil, err
	}

	return &Derived{
		Customers: extractCustomers(records, subs),
		Products:  extractProducts(records),
		Purchases: extractPurchases(records, ratings),
	}, nil
}

// CoerceBool maps the literal "Yes" to true and "No" to false. A null input
// stays null; any other literal is a transform fault.
func CoerceBool(raw *string) (*bool, error) {
	if raw == nil {
		return nil, nil
	}
	switch *raw {
	case "Yes":
		v := true
		return &v, nil
	case "No":
		v := false
		return &v, nil
	default:
		return nil, fault.Newf(fault.Transform, "transform: unrecognized boolean literal %q", *raw)
	}
}

// imputeRatings returns one rating per record, replacing nulls with the mean
// of the non-null ratings in the batch. A non-empty batch with no ratings at
// all has an undefined mean and is a transform fault; an empty batch has
// nothing to impute and yields an empty slice.
func imputeRatings(records []model.StagingRecord) ([]float64, error) {
	var sum float64
	var n int
	for _, rec := range records {
		if rec.ReviewRating != nil {
			sum += *rec.ReviewRating
			n++
		}
	}
	if len(records) > 0 && n == 0 {
		return nil, fault.New(fault.Transform, "transform: cannot impute review_rating, all values in batch are null")
	}

	var mean float64
	if n > 0 {
		mean = sum / float64(n)
	}

	out := make([]float64, len(records))
	for i, rec := range records {
		if rec.ReviewRating != nil {
			out[i] = *rec.ReviewRating
		} else {
			out[i] = mean
		}
	}
	return out, nil
}

// extractCustomers projects the customer dimension, dropping duplicate
// customer_id values and keeping the first occurrence in staging order.
func extractCustomers(records []model.StagingRecord, subs []*bool) []model.Customer {
	seen := make(map[int]struct{}, len(records))
	out := make([]model.Customer, 0, len(records))
	for i, rec := range records {
		if _, ok := seen[rec.CustomerID]; ok {
			continue
		}
		seen[rec.CustomerID] = struct{}{}
		out = append(out, model.Customer{
			CustomerID:         rec.CustomerID,
			Age:                rec.Age,
			Gender:             rec.Gender,
			SubscriptionStatus: subs[i],
		})
	}
	return out
}

// extractProducts projects the product dimension, dropping exact duplicate
// tuples and keeping first occurrence order.
func extractProducts(records []model.StagingRecord) []model.Product {
	seen := make(map[model.Product]struct{}, len(records))
	out := make([]model.Product, 0, len(records))
	for _, rec := range records {
		p := model.Product{
			ItemPurchased: rec.ItemPurchased,
			Category:      rec.Category,
			Size:          rec.Size,
			Color:         rec.Color,
			Season:        rec.Season,
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// extractPurchases projects one fact per staging row, cardinality unchanged.
func extractPurchases(records []model.StagingRecord, ratings []float64) []model.Purchase {
	out := make([]model.Purchase, len(records))
	for i, rec := range records {
		out[i] = model.Purchase{
			CustomerID:     rec.CustomerID,
			ItemPurchased:  rec.ItemPurchased,
			PurchaseAmount: rec.PurchaseAmount,
			Location:       rec.Location,
			ReviewRating:   ratings[i],
		}
	}
	return out
}
