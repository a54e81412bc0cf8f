package model

import "math"

// Review represents a single donor review. The three sub-ratings are pointers
// because older app versions stored partial reviews; a review missing any
// sub-rating is excluded from aggregation.
type Review struct {
	ID            string
	DonorID       string
	Communication *float64
	FoodQuality   *float64
	Process       *float64
}

// Valid reports whether the review carries all three sub-ratings.
func (r *Review) Valid() bool {
	return r.Communication != nil && r.FoodQuality != nil && r.Process != nil
}

// RatingSummary is the derived rating state stored on a donor's user record.
type RatingSummary struct {
	AverageRating float64
	ReviewCount   int
}

// AggregateRating recomputes a donor's rating summary from the full review set.
// Each sub-rating is averaged across the valid reviews, the three means are
// averaged into one figure, and the result is rounded to one decimal place
// (half away from zero). With no valid reviews the summary resets to zero.
func AggregateRating(reviews []Review) RatingSummary {
	var count int
	var commTotal, foodTotal, processTotal float64
	for i := range reviews {
		if !reviews[i].Valid() {
			continue
		}
		commTotal += *reviews[i].Communication
		foodTotal += *reviews[i].FoodQuality
		processTotal += *reviews[i].Process
		count++
	}
	if count == 0 {
		return RatingSummary{}
	}

	n := float64(count)
	overall := (commTotal/n + foodTotal/n + processTotal/n) / 3
	return RatingSummary{
		AverageRating: math.Round(overall*10) / 10,
		ReviewCount:   count,
	}
}
