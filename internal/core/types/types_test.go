package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityString(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{"whole", NewQuantityFromInt(15), "15.0000"},
		{"fraction", NewQuantityFromFloat64(2.5), "2.5000"},
		{"small fraction", NewQuantityFromInt64Scaled(3), "0.0003"},
		{"zero", 0, "0.0000"},
		{"negative", NewQuantityFromFloat64(-1.25), "-1.2500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.String())
		})
	}
}

func TestQuantityUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Quantity
	}{
		{"number", `12.5`, NewQuantityFromFloat64(12.5)},
		{"string", `"12.5"`, NewQuantityFromFloat64(12.5)},
		{"integer", `7`, NewQuantityFromInt(7)},
		{"negative", `-0.25`, NewQuantityFromFloat64(-0.25)},
		{"extra digits truncated", `1.23456`, NewQuantityFromInt64Scaled(12345)},
		{"exponent form", `1e2`, NewQuantityFromInt(100)},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestQuantityUnmarshalJSONInvalid(t *testing.T) {
	var q Quantity
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
}

func TestQuantityRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(3.75)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "3.7500", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	assert.True(t, q.Decimal().Equal(MustMoney("2.5")))
}

func TestQuantityPredicates(t *testing.T) {
	assert.True(t, Quantity(0).IsZero())
	assert.True(t, NewQuantityFromInt(1).IsPositive())
	assert.True(t, NewQuantityFromInt(-1).IsNegative())
	assert.Equal(t, NewQuantityFromInt(1), NewQuantityFromInt(-1).Abs())
	assert.Equal(t, NewQuantityFromInt(-1), NewQuantityFromInt(1).Neg())
}
