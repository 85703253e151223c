package algorithm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type doc struct {
	createdAt time.Time
	total     float64
}

func docCreatedAt(d doc) time.Time { return d.createdAt }
func docTotal(d doc) float64       { return d.total }

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 10, 12, 0, 0, 0, time.UTC)
}

func TestPercentageChange(t *testing.T) {
	t.Run("zero previous is total growth", func(t *testing.T) {
		for _, current := range []float64{0, 1, 7, 250.5} {
			assert.Equal(t, current*100, PercentageChange(current, 0))
		}
	})

	t.Run("ratio rounded to two decimals", func(t *testing.T) {
		assert.Equal(t, 150.0, PercentageChange(3, 2))
		assert.Equal(t, 33.33, PercentageChange(1, 3))
		assert.Equal(t, 66.67, PercentageChange(2, 3))
		assert.Equal(t, 0.0, PercentageChange(0, 5))
	})
}

func TestCategoryShare(t *testing.T) {
	t.Run("independent rounding does not sum to 100", func(t *testing.T) {
		shares := CategoryShare([]string{"laptop", "camera", "phone"}, []int64{1, 1, 1}, 3)

		assert.Equal(t, map[string]int{"laptop": 33, "camera": 33, "phone": 33}, shares)
		sum := 0
		for _, v := range shares {
			sum += v
		}
		assert.Equal(t, 99, sum)
	})

	t.Run("halves round up", func(t *testing.T) {
		shares := CategoryShare([]string{"a", "b"}, []int64{1, 7}, 8)
		// 12.5 -> 13, 87.5 -> 88
		assert.Equal(t, 13, shares["a"])
		assert.Equal(t, 88, shares["b"])
	})

	t.Run("zero total", func(t *testing.T) {
		shares := CategoryShare([]string{"a"}, []int64{0}, 0)
		assert.Equal(t, map[string]int{"a": 0}, shares)
	})

	t.Run("each share matches its own rounding", func(t *testing.T) {
		categories := []string{"a", "b", "c", "d"}
		counts := []int64{2, 5, 11, 13}
		var total int64 = 31
		shares := CategoryShare(categories, counts, total)
		for i, c := range categories {
			assert.Equal(t, int(RoundHalfUp(float64(counts[i])/float64(total)*100)), shares[c])
		}
	})
}

func TestBucketByMonth(t *testing.T) {
	ref := month(2026, time.July)

	t.Run("drops documents outside the window", func(t *testing.T) {
		docs := []doc{
			{createdAt: month(2026, time.July)},
			{createdAt: month(2026, time.June)},
			{createdAt: month(2026, time.January)},
		}

		data := BucketByMonth(ref, docs, 6, docCreatedAt, nil)

		assert.Equal(t, []float64{0, 0, 0, 0, 1, 1}, data)
	})

	t.Run("wraps across the year boundary", func(t *testing.T) {
		jan := month(2026, time.January)
		docs := []doc{
			{createdAt: month(2025, time.December)},
			{createdAt: month(2025, time.November)},
			{createdAt: month(2026, time.January)},
		}

		data := BucketByMonth(jan, docs, 3, docCreatedAt, nil)

		assert.Equal(t, []float64{1, 1, 1}, data)
	})

	t.Run("sums a value property", func(t *testing.T) {
		docs := []doc{
			{createdAt: month(2026, time.July), total: 100},
			{createdAt: month(2026, time.July), total: 50.5},
			{createdAt: month(2026, time.May), total: 20},
		}

		data := BucketByMonth(ref, docs, 12, docCreatedAt, docTotal)

		assert.Len(t, data, 12)
		assert.Equal(t, 150.5, data[11])
		assert.Equal(t, 20.0, data[9])
	})

	t.Run("is pure", func(t *testing.T) {
		docs := []doc{{createdAt: month(2026, time.March)}, {createdAt: month(2026, time.July)}}

		first := BucketByMonth(ref, docs, 6, docCreatedAt, nil)
		second := BucketByMonth(ref, docs, 6, docCreatedAt, nil)

		assert.Equal(t, first, second)
	})

	t.Run("empty window", func(t *testing.T) {
		assert.Empty(t, BucketByMonth(ref, []doc{{createdAt: ref}}, 0, docCreatedAt, nil))
	})
}

func TestSum(t *testing.T) {
	docs := []doc{{total: 1.5}, {total: 2}}
	assert.Equal(t, 3.5, Sum(docs, docTotal))
	assert.Equal(t, 0.0, Sum(nil, docTotal))
}
