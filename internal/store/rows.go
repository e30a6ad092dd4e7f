package store

import "github.com/shopstack/shopper-etl/internal/model"

// Value builders shared by both backends. Each returns values in the declared
// column order of the corresponding schema table; nil pointers become SQL
// nulls.

func stagingValues(rec model.StagingRecord) []any {
	return []any{
		rec.CustomerID,
		rec.Category,
		rec.Age,
		rec.Gender,
		rec.Location,
		rec.Color,
		rec.Size,
		rec.Season,
		rec.ItemPurchased,
		rec.PurchaseAmount,
		rec.ReviewRating,
		rec.SubscriptionStatus,
		rec.PaymentMethod,
		rec.ShippingType,
		rec.DiscountApplied,
		rec.PromoCodeUsed,
		rec.PreviousPurchase,
		rec.PreferredPaymentMethod,
		rec.FrequencyOfPurchase,
	}
}

func customerValues(c model.Customer) []any {
	return []any{c.CustomerID, c.Age, c.Gender, c.SubscriptionStatus}
}

func productValues(p model.Product) []any {
	return []any{p.ItemPurchased, p.Category, p.Size, p.Color, p.Season}
}

func purchaseValues(p model.Purchase) []any {
	return []any{p.CustomerID, p.ItemPurchased, p.PurchaseAmount, p.Location, p.ReviewRating}
}

func stagingRows(records []model.StagingRecord) [][]any {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = stagingValues(rec)
	}
	return rows
}

func customerRows(cs []model.Customer) [][]any {
	rows := make([][]any, len(cs))
	for i, c := range cs {
		rows[i] = customerValues(c)
	}
	return rows
}

func productRows(ps []model.Product) [][]any {
	rows := make([][]any, len(ps))
	for i, p := range ps {
		rows[i] = productValues(p)
	}
	return rows
}

func purchaseRows(ps []model.Purchase) [][]any {
	rows := make([][]any, len(ps))
	for i, p := range ps {
		rows[i] = purchaseValues(p)
	}
	return rows
}
