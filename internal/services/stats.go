package services

import (
	"fmt"
	"sort"
	"time"
)

// BucketUnit selects the time granularity for dashboard bar charts
type BucketUnit string

const (
	BucketDay   BucketUnit = "day"
	BucketWeek  BucketUnit = "week"
	BucketMonth BucketUnit = "month"
	BucketYear  BucketUnit = "year"
)

// Valid reports whether the unit is one of the known granularities
func (u BucketUnit) Valid() bool {
	switch u {
	case BucketDay, BucketWeek, BucketMonth, BucketYear:
		return true
	}
	return false
}

// Bucket is one bar in a dashboard chart
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// BucketByTime aggregates timestamps into chart buckets of the given unit,
// sorted ascending by bucket start. Empty buckets between occupied ones are
// not filled in.
func BucketByTime(times []time.Time, unit BucketUnit) []Bucket {
	byStart := make(map[time.Time]int)
	for _, t := range times {
		byStart[bucketStart(t, unit)]++
	}

	buckets := make([]Bucket, 0, len(byStart))
	for start, count := range byStart {
		buckets = append(buckets, Bucket{
			Label: bucketLabel(start, unit),
			Start: start,
			Count: count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })
	return buckets
}

// bucketStart truncates a timestamp to the start of its bucket. Weeks start
// on Monday.
func bucketStart(t time.Time, unit BucketUnit) time.Time {
	year, month, day := t.Date()
	switch unit {
	case BucketWeek:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday
		}
		start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
		return start.AddDate(0, 0, -(weekday - 1))
	case BucketMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	case BucketYear:
		return time.Date(year, 1, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	}
}

func bucketLabel(start time.Time, unit BucketUnit) string {
	switch unit {
	case BucketWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case BucketMonth:
		return start.Format("2006-01")
	case BucketYear:
		return start.Format("2006")
	default:
		return start.Format("2006-01-02")
	}
}
