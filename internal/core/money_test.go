package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{" 2.50 ", 250, true},
		{"-1.5", -150, true},
		{"0", 0, true},
		{"99999999.99", 9_999_999_999, true},
		{"100000000", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.out, got.Cents, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var in struct {
		A Money  `json:"a"`
		B Money  `json:"b"`
		C *Money `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1000, "b": "950.5", "c": null}`), &in))
	assert.Equal(t, int64(100000), in.A.Cents)
	assert.Equal(t, int64(95050), in.B.Cents)
	assert.Nil(t, in.C)

	out, err := json.Marshal(map[string]Money{"a": in.A, "b": in.B})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1000, "b": 950.5}`, string(out))

	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, json.Unmarshal([]byte(`{"a": "ten"}`), &in), &typeErr)
	assert.Equal(t, "a", typeErr.Field)
	assert.Equal(t, "string", typeErr.Value)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, -5.0, Percent(Money{Cents: -50000}, Money{Cents: 1000000}))
	assert.Equal(t, 0.0, Percent(Money{Cents: 100}, Money{}))
	assert.Equal(t, 33.33, Percent(Money{Cents: 100}, Money{Cents: 300}))
	assert.Equal(t, 40, RoundedPercent(Money{Cents: 40000}, Money{Cents: 100000}))
	assert.Equal(t, 0, RoundedPercent(Money{Cents: 40000}, Money{}))
}

func TestMoneyValidate(t *testing.T) {
	assert.NoError(t, Money{Cents: 1}.Validate())
	assert.ErrorIs(t, Money{}.Validate(), ErrInvalidAmount)
}
