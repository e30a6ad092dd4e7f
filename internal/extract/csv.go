// Package extract reads the source CSV into typed staging records. It has no
// side effects beyond reading the file.
package extract

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopstack/shopper-etl/internal/fault"
	"github.com/shopstack/shopper-etl/internal/model"
	"github.com/shopstack/shopper-etl/internal/schema"
)

// ReadFile parses the CSV at path into staging records. The header must carry
// exactly the expected source column names (any order); a missing or unknown
// header, an unreadable file, or an unparsable numeric cell is an extract
// fault.
func ReadFile(path string) ([]model.StagingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrapf(fault.Extract, err, "extract: open %s", path)
	}
	defer f.Close()

	return readAll(f)
}

func readAll(r io.Reader) ([]model.StagingRecord, error) {
	headerMap, err := schema.HeaderMapping()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fault.Wrap(fault.Extract, err, "extract: read header")
	}

	colIdx, err := indexColumns(header, headerMap)
	if err != nil {
		return nil, err
	}

	var records []model.StagingRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fault.Wrapf(fault.Extract, err, "extract: read row %d", line+1)
		}
		line++

		rec, err := parseRecord(row, colIdx, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// indexColumns resolves each staging column to its position in the header.
// Every expected source header must appear exactly once; anything else in the
// header is rejected.
func indexColumns(header []string, headerMap map[string]string) (map[string]int, error) {
	idx := make(map[string]int, len(headerMap))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		col, ok := headerMap[name]
		if !ok {
			return nil, fault.Newf(fault.Extract, "extract: unexpected header column %q", name)
		}
		if _, dup := idx[col]; dup {
			return nil, fault.Newf(fault.Extract, "extract: duplicate header column %q", name)
		}
		idx[col] = i
	}
	if len(idx) != len(headerMap) {
		for src, col := range headerMap {
			if _, ok := idx[col]; !ok {
				return nil, fault.Newf(fault.Extract, "extract: missing header column %q", src)
			}
		}
	}
	return idx, nil
}

func parseRecord(row []string, colIdx map[string]int, line int) (model.StagingRecord, error) {
	var rec model.StagingRecord
	get := func(col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var err error
	if rec.CustomerID, err = parseInt(get("customer_id")); err != nil {
		return rec, fault.Wrapf(fault.Extract, err, "extract: row %d: customer_id", line)
	}
	if rec.Age, err = parseInt(get("age")); err != nil {
		return rec, fault.Wrapf(fault.Extract, err, "extract: row %d: age", line)
	}
	if rec.PurchaseAmount, err = parseFloat(get("purchase_amount")); err != nil {
		return rec, fault.Wrapf(fault.Extract, err, "extract: row %d: purchase_amount", line)
	}
	if rec.ReviewRating, err = parseOptFloat(get("review_rating")); err != nil {
		return rec, fault.Wrapf(fault.Extract, err, "extract: row %d: review_rating", line)
	}

	rec.Category = get("category")
	rec.Gender = get("gender")
	rec.Location = get("location")
	rec.Color = get("color")
	rec.Size = get("size")
	rec.Season = get("season")
	rec.ItemPurchased = get("item_purchased")
	rec.PaymentMethod = get("payment_method")
	rec.ShippingType = get("shipping_type")
	rec.PreviousPurchase = get("previous_purchase")
	rec.PreferredPaymentMethod = get("preferred_payment_method")
	rec.FrequencyOfPurchase = get("frequency_of_purchase")

	rec.SubscriptionStatus = optString(get("subscription_status"))
	rec.DiscountApplied = optString(get("discount_applied"))
	rec.PromoCodeUsed = optString(get("promo_code_used"))

	return rec, nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseOptFloat treats an empty cell as null.
func parseOptFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// optString treats an empty cell as null.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
