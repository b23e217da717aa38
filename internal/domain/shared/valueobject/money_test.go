package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	knives := KES(decimal.RequireFromString("8999.50"))
	shipping := KES(decimal.NewFromInt(450))

	assert.Equal(t, "17999.00", knives.Times(2).StringFixed(2))
	assert.Equal(t, "9449.50", knives.Add(shipping).StringFixed(2))
	assert.Equal(t, "18449.00", Sum(knives, knives, shipping).StringFixed(2))
	assert.True(t, Sum().IsZero())
	assert.True(t, Zero().Times(5).IsZero())
}

func TestMoney_FormatWhole(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "0"},
		{"450", "450"},
		{"999.99", "999"},
		{"1000", "1,000"},
		{"12999.50", "12,999"},
		{"1234567", "1,234,567"},
		{"-2500", "-2,500"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, KES(decimal.RequireFromString(tt.amount)).FormatWhole())
		})
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "KES 21,947", KES(decimal.NewFromInt(21947)).String())
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Money{"total": KES(decimal.NewFromInt(450))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"450.00"}`, string(data))

	var parsed Money
	require.NoError(t, json.Unmarshal([]byte(`"12.5"`), &parsed))
	assert.Equal(t, "12.50", parsed.StringFixed(2))
}
