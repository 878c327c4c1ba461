package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resto-bi/backend/internal/domain/analytics"
)

func TestMonetaryValuesSerializeAsNumbers(t *testing.T) {
	resp := NewSuccessResponse([]analytics.RevenuePoint{
		{
			Period:     "2024-01-01",
			Revenue:    decimal.RequireFromString("150.50"),
			SalesCount: 3,
			AvgTicket:  decimal.RequireFromString("50.17"),
		},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `"revenue":150.5`)
	assert.Contains(t, body, `"avg_ticket":50.17`)
	assert.NotContains(t, body, `"revenue":"`)

	// The numbers round-trip as floats for API clients.
	var decoded struct {
		Data []struct {
			Revenue float64 `json:"revenue"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Data, 1)
	assert.InDelta(t, 150.50, decoded.Data[0].Revenue, 0.001)
}

func TestSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 21, 2, 10)

	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(21), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.True(t, resp.Success)
}
