package algorithm

import (
	"math"
	"time"
)

// RoundHalfUp rounds x to the nearest integer, with halves rounded toward
// positive infinity. Dashboard figures have always been rounded this way.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// roundTo2 rounds x to two decimal places.
func roundTo2(x float64) float64 {
	return math.Round(x*100) / 100
}

// PercentageChange compares this period's figure against the previous one.
// A previous figure of zero counts as total growth and yields current*100.
// The result is current as a percentage of previous, not the delta between
// them.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return current * 100
	}
	return roundTo2(current / previous * 100)
}

// CategoryShare returns each category's share of total as a whole percent.
// counts[i] belongs to categories[i]. Shares are rounded independently and
// are not normalized, so they need not sum to 100. A zero total yields 0 for
// every category.
func CategoryShare(categories []string, counts []int64, total int64) map[string]int {
	shares := make(map[string]int, len(categories))
	for i, category := range categories {
		var count int64
		if i < len(counts) {
			count = counts[i]
		}
		if total == 0 {
			shares[category] = 0
			continue
		}
		shares[category] = int(RoundHalfUp(float64(count) / float64(total) * 100))
	}
	return shares
}

// BucketByMonth spreads docs over the length calendar months ending with
// ref's month. Index 0 is the oldest month and index length-1 is ref's month.
// Month distance wraps modulo 12 and ignores the year, so callers should pass
// only documents from the last twelve months; documents further back than
// length months are dropped. When value is nil every document counts 1,
// otherwise value(doc) is summed.
func BucketByMonth[T any](ref time.Time, docs []T, length int, createdAt func(T) time.Time, value func(T) float64) []float64 {
	if length <= 0 {
		return []float64{}
	}

	data := make([]float64, length)
	refMonth := int(ref.Month())
	loc := ref.Location()

	for _, doc := range docs {
		docMonth := int(createdAt(doc).In(loc).Month())
		offset := (refMonth - docMonth + 12) % 12
		if offset >= length {
			continue
		}

		idx := length - offset - 1
		if value != nil {
			data[idx] += value(doc)
		} else {
			data[idx]++
		}
	}

	return data
}

// Sum adds value(doc) over docs.
func Sum[T any](docs []T, value func(T) float64) float64 {
	total := 0.0
	for _, doc := range docs {
		total += value(doc)
	}
	return total
}
