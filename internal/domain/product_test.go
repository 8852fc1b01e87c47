package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Price Validation Tests
// ============================================================================

func TestValidatePrice_Valid(t *testing.T) {
	for _, s := range []string{"0", "0.00", "12.34", "99999999.99", "5", "10.5"} {
		p, err := decimal.NewFromString(s)
		require.NoError(t, err)
		assert.NoError(t, ValidatePrice(p), "expected %q to be valid", s)
	}
}

func TestValidatePrice_Negative(t *testing.T) {
	p := decimal.NewFromFloat(-0.01)
	err := ValidatePrice(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}

func TestValidatePrice_TooManyDecimalPlaces(t *testing.T) {
	p, err := decimal.NewFromString("12.345")
	require.NoError(t, err)
	verr := ValidatePrice(p)
	require.Error(t, verr)
	assert.Contains(t, verr.Error(), "decimal places")
}

func TestValidatePrice_TooManyIntegerDigits(t *testing.T) {
	p, err := decimal.NewFromString("123456789.00")
	require.NoError(t, err)
	verr := ValidatePrice(p)
	require.Error(t, verr)
	assert.Contains(t, verr.Error(), "digits before")
}

// ============================================================================
// Product Serialization Tests
// ============================================================================

func TestProduct_PriceSerializesAsString(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("12.34")}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":"12.34"`)
}

func TestProduct_NullableFields(t *testing.T) {
	p := Product{}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category_id":null`)
	assert.Contains(t, string(data), `"image":null`)
	assert.Contains(t, string(data), `"image_small":null`)
}

func TestUpdateProductInput_EmptyCategoryClears(t *testing.T) {
	var in UpdateProductInput
	err := json.Unmarshal([]byte(`{"category_id": ""}`), &in)
	require.NoError(t, err)
	require.NotNil(t, in.CategoryID)
	assert.Empty(t, *in.CategoryID)
}
