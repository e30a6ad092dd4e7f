package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstack/shopper-etl/internal/fault"
)

const csvHeader = "Customer ID,Category,Age,Gender,Location,Color,Size,Season,Item Purchased,Purchase Amount (USD),Review Rating,Subscription Status,Payment Method,Shipping Type,Discount Applied,Promo Code Used,Previous Purchases,Preferred Payment Method,Frequency of Purchases"

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestReadFile_ParsesTypedRecord(t *testing.T) {
	path := writeCSV(t,
		csvHeader,
		"1,Clothing,34,Male,Kentucky,Gray,L,Winter,Blouse,53.10,3.1,Yes,Credit Card,Express,Yes,Yes,14,Venmo,Fortnightly",
	)

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 1, rec.CustomerID)
	assert.Equal(t, 34, rec.Age)
	assert.Equal(t, "Clothing", rec.Category)
	assert.Equal(t, "Blouse", rec.ItemPurchased)
	assert.InDelta(t, 53.10, rec.PurchaseAmount, 1e-9)
	require.NotNil(t, rec.ReviewRating)
	assert.InDelta(t, 3.1, *rec.ReviewRating, 1e-9)
	require.NotNil(t, rec.SubscriptionStatus)
	assert.Equal(t, "Yes", *rec.SubscriptionStatus)
	assert.Equal(t, "14", rec.PreviousPurchase)
	assert.Equal(t, "Fortnightly", rec.FrequencyOfPurchase)
}

func TestReadFile_ColumnOrderIrrelevant(t *testing.T) {
	path := writeCSV(t,
		"Age,Customer ID,Category,Gender,Location,Color,Size,Season,Item Purchased,Purchase Amount (USD),Review Rating,Subscription Status,Payment Method,Shipping Type,Discount Applied,Promo Code Used,Previous Purchases,Preferred Payment Method,Frequency of Purchases",
		"40,7,Footwear,Female,Ohio,Red,M,Summer,Sandals,20.00,4.5,No,Cash,Standard,No,No,2,PayPal,Monthly",
	)

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 7, records[0].CustomerID)
	assert.Equal(t, 40, records[0].Age)
	assert.Equal(t, "Sandals", records[0].ItemPurchased)
}

func TestReadFile_EmptyCellsBecomeNulls(t *testing.T) {
	path := writeCSV(t,
		csvHeader,
		"2,Clothing,25,Female,Maine,Blue,S,Spring,Sweater,31.50,,,Cash,Standard,,,3,Venmo,Weekly",
	)

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Nil(t, rec.ReviewRating)
	assert.Nil(t, rec.SubscriptionStatus)
	assert.Nil(t, rec.DiscountApplied)
	assert.Nil(t, rec.PromoCodeUsed)
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Extract))
}

func TestReadFile_UnknownHeader(t *testing.T) {
	path := writeCSV(t,
		strings.Replace(csvHeader, "Customer ID", "Customer Number", 1),
		"1,Clothing,34,Male,Kentucky,Gray,L,Winter,Blouse,53.10,3.1,Yes,Credit Card,Express,Yes,Yes,14,Venmo,Fortnightly",
	)

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Extract))
	assert.Contains(t, err.Error(), "Customer Number")
}

func TestReadFile_MissingHeaderColumn(t *testing.T) {
	path := writeCSV(t,
		strings.Replace(csvHeader, ",Frequency of Purchases", "", 1),
		"1,Clothing,34,Male,Kentucky,Gray,L,Winter,Blouse,53.10,3.1,Yes,Credit Card,Express,Yes,Yes,14,Venmo",
	)

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Extract))
	assert.Contains(t, err.Error(), "Frequency of Purchases")
}

func TestReadFile_BadNumeric(t *testing.T) {
	path := writeCSV(t,
		csvHeader,
		"1,Clothing,unknown,Male,Kentucky,Gray,L,Winter,Blouse,53.10,3.1,Yes,Credit Card,Express,Yes,Yes,14,Venmo,Fortnightly",
	)

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Extract))
	assert.Contains(t, err.Error(), "age")
}

func TestReadFile_EmptyFileOnlyHeader(t *testing.T) {
	path := writeCSV(t, csvHeader)

	records, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}
