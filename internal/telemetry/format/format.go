// Package format turns grouped storage rows into the report shapes carried by
// a snapshot. Every storage adapter goes through these functions, so both
// layouts produce byte-identical output for the same records.
package format

import (
	"sort"
	"strconv"
	"strings"

	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/shopspring/decimal"
)

// TypeSeries builds one order-type series sorted by month. Rows repeating a
// month are folded into a single point.
func TypeSeries(rows []domain.TypeRow) []domain.TypePoint {
	byMonth := make(map[string]*domain.TypePoint, len(rows))
	gross := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		month := strings.TrimSpace(row.Month)
		if month == "" {
			continue
		}
		p, ok := byMonth[month]
		if !ok {
			p = &domain.TypePoint{Month: month}
			byMonth[month] = p
		}
		p.Count += row.Count
		p.NonZeroCount += row.NonZeroCount
		gross[month] = gross[month].Add(row.Gross)
	}

	out := make([]domain.TypePoint, 0, len(byMonth))
	for _, month := range sortedKeys(byMonth) {
		p := *byMonth[month]
		p.Gross = domain.NewMoney(gross[month])
		out = append(out, p)
	}
	return out
}

// MergeInitial joins the initial-order counts with the separately grouped
// line item quantities. The count series drives the result: a month without
// quantities gets zero quantities and is never dropped, and quantity-only
// months are ignored.
func MergeInitial(counts []domain.TypeRow, quantities []domain.QuantityRow) []domain.InitialPoint {
	qty := make(map[string]domain.QuantityRow, len(quantities))
	for _, row := range quantities {
		month := strings.TrimSpace(row.Month)
		q := qty[month]
		q.Quantity += row.Quantity
		q.NonZeroQuantity += row.NonZeroQuantity
		qty[month] = q
	}

	series := TypeSeries(counts)
	out := make([]domain.InitialPoint, 0, len(series))
	for _, p := range series {
		q := qty[p.Month]
		out = append(out, domain.InitialPoint{
			TypePoint:       p,
			Quantity:        q.Quantity,
			NonZeroQuantity: q.NonZeroQuantity,
		})
	}
	return out
}

// GatewaySeries groups rows by payment gateway id. The empty id stands for
// orders with no payment method recorded.
func GatewaySeries(rows []domain.GatewayRow) map[string][]domain.VolumePoint {
	grouped := make(map[string][]domain.VolumeRow)
	for _, row := range rows {
		gateway := strings.TrimSpace(row.Gateway)
		grouped[gateway] = append(grouped[gateway], domain.VolumeRow{
			Month: row.Month,
			Count: row.Count,
			Gross: row.Gross,
		})
	}

	out := make(map[string][]domain.VolumePoint, len(grouped))
	for gateway, series := range grouped {
		out[gateway] = VolumeSeries(series)
	}
	return out
}

func VolumeSeries(rows []domain.VolumeRow) []domain.VolumePoint {
	typed := make([]domain.TypeRow, 0, len(rows))
	for _, row := range rows {
		typed = append(typed, domain.TypeRow{Month: row.Month, Count: row.Count, Gross: row.Gross})
	}

	series := TypeSeries(typed)
	out := make([]domain.VolumePoint, 0, len(series))
	for _, p := range series {
		out = append(out, domain.VolumePoint{Month: p.Month, Count: p.Count, Gross: p.Gross})
	}
	return out
}

// Frequencies folds (period, interval) groups into buckets. Groups without a
// period or with a missing, zero or unparsable interval are dropped. Buckets
// are ordered by count desc, then period asc, then interval desc.
func Frequencies(rows []domain.FrequencyRow) []domain.FrequencyBucket {
	type key struct {
		period   string
		interval int
	}
	counts := make(map[key]int64)
	for _, row := range rows {
		period := strings.ToLower(strings.TrimSpace(row.BillingPeriod))
		if period == "" {
			continue
		}
		interval, err := strconv.Atoi(strings.TrimSpace(row.BillingInterval))
		if err != nil || interval <= 0 {
			continue
		}
		counts[key{period, interval}] += row.Count
	}

	out := make([]domain.FrequencyBucket, 0, len(counts))
	for k, c := range counts {
		out = append(out, domain.FrequencyBucket{Period: k.period, Interval: k.interval, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Interval > out[j].Interval
	})
	return out
}

// StatusCounts sorts by status and folds repeats.
func StatusCounts(rows []domain.StatusRow) []domain.StatusCount {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[strings.TrimSpace(row.Status)] += row.Count
	}
	out := make([]domain.StatusCount, 0, len(counts))
	for _, status := range sortedKeys(counts) {
		out = append(out, domain.StatusCount{Status: status, Count: counts[status]})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
