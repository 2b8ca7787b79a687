package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/railzwaylabs/subtelemetry/internal/ordermetrics/repository"
	"github.com/railzwaylabs/subtelemetry/internal/seed"
	"github.com/railzwaylabs/subtelemetry/internal/seed/seedtest"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 9, 30, 0, 0, time.UTC)
}

var q1 = timewindow.Normalize(day(time.January, 1), day(time.March, 31))

// trendsJSON runs the aggregation for every layout and returns the encoded
// result of each, keyed by schema.
func trendsJSON(t *testing.T, ds seed.Dataset) map[storage.Schema]string {
	t.Helper()

	out := map[storage.Schema]string{}
	for _, schema := range seedtest.Schemas() {
		t.Run(string(schema), func(t *testing.T) {
			db := seedtest.OpenWith(t, schema, ds)
			svc := NewService(ServiceParam{
				DB:   db,
				Log:  zap.NewNop(),
				Repo: repository.New(schema, seedtest.Tables()),
			})

			trends, err := svc.Trends(t.Context(), q1)
			require.NoError(t, err)

			raw, err := json.Marshal(trends)
			require.NoError(t, err)
			out[schema] = string(raw)
		})
	}
	require.Len(t, out, 2)
	return out
}

func TestTrendsRenewalsAndGateways(t *testing.T) {
	out := trendsJSON(t, seed.Dataset{
		Orders: []seed.Order{
			{Created: day(time.March, 5), Total: "10.00", PaymentMethod: "stripe", Kind: "renewal"},
			{Created: day(time.March, 12), Total: "0.00", PaymentMethod: "stripe", Kind: "renewal"},
			{Created: day(time.March, 20), Total: "25.00", PaymentMethod: "", Kind: "renewal"},
		},
	})

	expected := `{
		"window": {"start": "2025-01-01 00:00:00", "end": "2025-03-31 23:59:59"},
		"by_type": {
			"initial": [],
			"renewal": [{"month": "2025-03", "count": 3, "gross": 35.00, "non_zero_count": 2}],
			"switch": [],
			"resubscribe": []
		},
		"gateways": {
			"": [{"month": "2025-03", "count": 1, "gross": 25.00}],
			"stripe": [{"month": "2025-03", "count": 2, "gross": 10.00}]
		},
		"store_gmv": [{"month": "2025-03", "count": 3, "gross": 35.00}]
	}`
	assert.JSONEq(t, expected, out[storage.SchemaOrders])
	assert.Equal(t, out[storage.SchemaOrders], out[storage.SchemaPosts])
}

func TestTrendsInitialOrdersMergeQuantities(t *testing.T) {
	out := trendsJSON(t, seed.Dataset{
		Orders: []seed.Order{
			{Ref: "jan", Created: day(time.January, 10), Total: "15.00", PaymentMethod: "stripe"},
			{Ref: "feb", Created: day(time.February, 10), Total: "20.00", PaymentMethod: "stripe", Quantity: 2},
			{Ref: "mar", Created: day(time.March, 10), Total: "0.00", PaymentMethod: "paypal", Quantity: 3},
			{Created: day(time.March, 11), Total: "99.00", Status: "draft", Kind: "renewal"},
			{Created: time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), Total: "7.00", Kind: "renewal"},
			{Created: day(time.March, 15), Total: "50.00", PaymentMethod: "cod", Status: storage.StatusProcessing},
			{Created: day(time.March, 16), Total: "8.00", Status: storage.StatusOnHold},
		},
		Subscriptions: []seed.Subscription{
			{ParentRef: "jan", CustomerID: 1},
			{ParentRef: "feb", CustomerID: 2},
			{ParentRef: "mar", CustomerID: 3},
		},
	})

	expected := `{
		"window": {"start": "2025-01-01 00:00:00", "end": "2025-03-31 23:59:59"},
		"by_type": {
			"initial": [
				{"month": "2025-01", "count": 1, "gross": 15.00, "non_zero_count": 1, "quantity": 0, "non_zero_quantity": 0},
				{"month": "2025-02", "count": 1, "gross": 20.00, "non_zero_count": 1, "quantity": 2, "non_zero_quantity": 2},
				{"month": "2025-03", "count": 1, "gross": 0.00, "non_zero_count": 0, "quantity": 3, "non_zero_quantity": 0}
			],
			"renewal": [],
			"switch": [],
			"resubscribe": []
		},
		"gateways": {
			"paypal": [{"month": "2025-03", "count": 1, "gross": 0.00}],
			"stripe": [
				{"month": "2025-01", "count": 1, "gross": 15.00},
				{"month": "2025-02", "count": 1, "gross": 20.00}
			]
		},
		"store_gmv": [
			{"month": "2025-01", "count": 1, "gross": 15.00},
			{"month": "2025-02", "count": 1, "gross": 20.00},
			{"month": "2025-03", "count": 2, "gross": 50.00}
		]
	}`
	assert.JSONEq(t, expected, out[storage.SchemaOrders])
	assert.Equal(t, out[storage.SchemaOrders], out[storage.SchemaPosts])
}

func TestTrendsSeparatesFollowUpKinds(t *testing.T) {
	out := trendsJSON(t, seed.Dataset{
		Orders: []seed.Order{
			{Created: day(time.February, 1), Total: "5.00", PaymentMethod: "stripe", Kind: "switch"},
			{Created: day(time.February, 2), Total: "6.00", PaymentMethod: "stripe", Kind: "resubscribe"},
			{Created: day(time.March, 2), Total: "7.00", PaymentMethod: "stripe", Kind: "renewal"},
		},
	})

	var trends struct {
		ByType map[string][]map[string]any `json:"by_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(out[storage.SchemaPosts]), &trends))
	for _, key := range []string{"initial", "renewal", "switch", "resubscribe"} {
		assert.Contains(t, trends.ByType, key)
	}
	assert.Len(t, trends.ByType["renewal"], 1)
	assert.Len(t, trends.ByType["switch"], 1)
	assert.Len(t, trends.ByType["resubscribe"], 1)
	assert.Equal(t, out[storage.SchemaOrders], out[storage.SchemaPosts])
}

func TestTrendsEmptyStoreKeepsEveryKey(t *testing.T) {
	out := trendsJSON(t, seed.Dataset{})

	assert.JSONEq(t, `{
		"window": {"start": "2025-01-01 00:00:00", "end": "2025-03-31 23:59:59"},
		"by_type": {"initial": [], "renewal": [], "switch": [], "resubscribe": []},
		"gateways": {},
		"store_gmv": []
	}`, out[storage.SchemaPosts])
}
