package tracker

import (
	"sort"

	"github.com/subwatch/subwatch/internal/domain"
)

// MonthlyTotal sums the monthly-normalized cost of all subscriptions.
// Annual subscriptions contribute amount/12. Returns 0 for an empty slice.
// Rounding is a presentation concern and is left to the caller.
func MonthlyTotal(subs []domain.Subscription) float64 {
	var total float64
	for i := range subs {
		total += subs[i].MonthlyAmount()
	}
	return total
}

// SortedView returns a new slice ordered by the given sort order. The input
// is never mutated. The sort is stable: equal keys keep their relative
// (insertion) order.
//
// Amount orderings compare the raw stored amount, not the monthly-normalized
// one, so an annual subscription sorts by its full yearly price.
func SortedView(subs []domain.Subscription, order domain.SortOrder) []domain.Subscription {
	view := make([]domain.Subscription, len(subs))
	copy(view, subs)

	switch order {
	case domain.SortNewestFirst:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].CreatedAt.After(view[j].CreatedAt)
		})
	case domain.SortOldestFirst:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].CreatedAt.Before(view[j].CreatedAt)
		})
	case domain.SortHighestAmount:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Amount > view[j].Amount
		})
	case domain.SortLowestAmount:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Amount < view[j].Amount
		})
	}

	return view
}
