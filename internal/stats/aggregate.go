// Package stats turns raw service requests into ranked counts and packs those
// counts into numbered, length-bounded messages.
package stats

import (
	"fmt"
	"slices"

	"phl311.app/bot/internal/model"
)

// GroupKey names a ServiceRequest column that breakdowns can group on.
type GroupKey string

const (
	KeyServiceName GroupKey = "service_name"
	KeyAgency      GroupKey = "agency_responsible"
	KeyStatus      GroupKey = "status"
)

// Aggregate groups records by key and returns one CountRecord per label,
// sorted by count descending. Labels with equal counts keep the order in
// which they were first seen in records. Records whose key is empty are
// skipped, matching how a missing column value never forms its own group.
func Aggregate[T any](records []T, key func(T) string) []model.CountRecord {
	index := make(map[string]int)
	counts := []model.CountRecord{}

	for _, r := range records {
		label := key(r)
		if label == "" {
			continue
		}
		if i, ok := index[label]; ok {
			counts[i].Count++
			continue
		}
		index[label] = len(counts)
		counts = append(counts, model.CountRecord{Label: label, Count: 1})
	}

	slices.SortStableFunc(counts, func(a, b model.CountRecord) int {
		return b.Count - a.Count
	})
	return counts
}

// KeyFunc returns the accessor for a ServiceRequest column.
func KeyFunc(key GroupKey) (func(model.ServiceRequest) string, error) {
	switch key {
	case KeyServiceName:
		return func(r model.ServiceRequest) string { return r.ServiceName }, nil
	case KeyAgency:
		return func(r model.ServiceRequest) string { return r.AgencyResponsible }, nil
	case KeyStatus:
		return func(r model.ServiceRequest) string { return r.Status }, nil
	default:
		return nil, fmt.Errorf("unknown group key %q", key)
	}
}

// AggregateBy is Aggregate over a named ServiceRequest column.
func AggregateBy(records []model.ServiceRequest, key GroupKey) ([]model.CountRecord, error) {
	fn, err := KeyFunc(key)
	if err != nil {
		return nil, err
	}
	return Aggregate(records, fn), nil
}

// Top returns at most n leading items. n <= 0 means no limit.
func Top(items []model.CountRecord, n int) []model.CountRecord {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
