package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketUnitValid(t *testing.T) {
	assert.True(t, BucketDay.Valid())
	assert.True(t, BucketWeek.Valid())
	assert.True(t, BucketMonth.Valid())
	assert.True(t, BucketYear.Valid())
	assert.False(t, BucketUnit("fortnight").Valid())
	assert.False(t, BucketUnit("").Valid())
}

func TestBucketByTimeDay(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 0, 0, 1, 0, time.UTC),
	}

	buckets := BucketByTime(times, BucketDay)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2026-03-10", buckets[0].Label)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, "2026-03-12", buckets[1].Label)
	assert.Equal(t, 1, buckets[1].Count)
}

func TestBucketByTimeWeekStartsMonday(t *testing.T) {
	// 2026-03-09 is a Monday, 2026-03-15 the following Sunday
	times := []time.Time{
		time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 22, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 16, 1, 0, 0, 0, time.UTC), // next Monday
	}

	buckets := BucketByTime(times, BucketWeek)
	require.Len(t, buckets, 2)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, 2, buckets[0].Count, "Sunday belongs to the week that started Monday")
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), buckets[1].Start)
}

func TestBucketByTimeMonthAndYear(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC),
		time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC),
	}

	byMonth := BucketByTime(times, BucketMonth)
	require.Len(t, byMonth, 2)
	assert.Equal(t, "2025-12", byMonth[0].Label)
	assert.Equal(t, "2026-01", byMonth[1].Label)
	assert.Equal(t, 2, byMonth[1].Count)

	byYear := BucketByTime(times, BucketYear)
	require.Len(t, byYear, 2)
	assert.Equal(t, "2025", byYear[0].Label)
	assert.Equal(t, "2026", byYear[1].Label)
}

func TestBucketByTimeEmpty(t *testing.T) {
	assert.Empty(t, BucketByTime(nil, BucketDay))
}

func TestBucketByTimeSortedAscending(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	buckets := BucketByTime(times, BucketDay)
	require.Len(t, buckets, 3)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].Start.Before(buckets[i].Start))
	}
}
