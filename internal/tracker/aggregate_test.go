package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subwatch/subwatch/internal/domain"
)

func sub(id string, amount float64, annual bool, createdAt time.Time) domain.Subscription {
	return domain.Subscription{
		ID:        id,
		Name:      "sub-" + id,
		Amount:    amount,
		IsAnnual:  annual,
		CreatedAt: createdAt,
	}
}

func TestMonthlyTotal(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		subs     []domain.Subscription
		expected float64
	}{
		{
			name:     "empty",
			subs:     nil,
			expected: 0,
		},
		{
			name:     "single monthly equals its amount",
			subs:     []domain.Subscription{sub("a", 9.99, false, base)},
			expected: 9.99,
		},
		{
			name:     "single annual contributes a twelfth",
			subs:     []domain.Subscription{sub("a", 120, true, base)},
			expected: 10,
		},
		{
			name: "mixed cadences",
			subs: []domain.Subscription{
				sub("a", 15, false, base),
				sub("b", 60, true, base),
				sub("c", 4.5, false, base),
			},
			expected: 15 + 5 + 4.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MonthlyTotal(tt.subs), 1e-9)
		})
	}
}

func TestSortedView_Orders(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	subs := []domain.Subscription{
		sub("a", 30, false, base),
		sub("b", 10, false, base.Add(time.Hour)),
		sub("c", 120, true, base.Add(2*time.Hour)),
		sub("d", 20, false, base.Add(3*time.Hour)),
	}

	tests := []struct {
		order    domain.SortOrder
		expected []string
	}{
		{domain.SortNewestFirst, []string{"d", "c", "b", "a"}},
		{domain.SortOldestFirst, []string{"a", "b", "c", "d"}},
		// Raw amounts: the annual subscription sorts by its full yearly price.
		{domain.SortHighestAmount, []string{"c", "a", "d", "b"}},
		{domain.SortLowestAmount, []string{"b", "d", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			view := SortedView(subs, tt.order)

			got := make([]string, len(view))
			for i, s := range view {
				got[i] = s.ID
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSortedView_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	subs := []domain.Subscription{
		sub("a", 30, false, base.Add(time.Hour)),
		sub("b", 10, false, base),
	}

	_ = SortedView(subs, domain.SortOldestFirst)

	assert.Equal(t, "a", subs[0].ID)
	assert.Equal(t, "b", subs[1].ID)
}

func TestSortedView_IsPermutation(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	subs := []domain.Subscription{
		sub("a", 30, false, base),
		sub("b", 10, true, base.Add(time.Hour)),
		sub("c", 30, false, base.Add(2*time.Hour)),
	}

	orders := []domain.SortOrder{
		domain.SortNewestFirst,
		domain.SortOldestFirst,
		domain.SortHighestAmount,
		domain.SortLowestAmount,
	}

	for _, order := range orders {
		view := SortedView(subs, order)
		require.Len(t, view, len(subs))

		seen := make(map[string]int)
		for _, s := range view {
			seen[s.ID]++
		}
		for _, s := range subs {
			assert.Equal(t, 1, seen[s.ID], "order %s lost id %s", order, s.ID)
		}
	}
}

func TestSortedView_NewestReversedEqualsOldest(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	subs := []domain.Subscription{
		sub("a", 1, false, base),
		sub("b", 2, false, base.Add(time.Minute)),
		sub("c", 3, false, base.Add(2*time.Minute)),
	}

	newest := SortedView(subs, domain.SortNewestFirst)
	oldest := SortedView(subs, domain.SortOldestFirst)

	for i := range newest {
		assert.Equal(t, oldest[len(oldest)-1-i].ID, newest[i].ID)
	}
}

func TestSortedView_Idempotent(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	subs := []domain.Subscription{
		sub("a", 5, false, base),
		sub("b", 5, false, base.Add(time.Hour)),
		sub("c", 7, true, base.Add(2*time.Hour)),
	}

	first := SortedView(subs, domain.SortHighestAmount)
	second := SortedView(subs, domain.SortHighestAmount)

	assert.Equal(t, first, second)
}

func TestSortedView_StableOnEqualAmounts(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	// Same amount everywhere: both amount orders must keep insertion order.
	subs := []domain.Subscription{
		sub("a", 9.99, false, base),
		sub("b", 9.99, false, base.Add(time.Hour)),
		sub("c", 9.99, false, base.Add(2*time.Hour)),
	}

	for _, order := range []domain.SortOrder{domain.SortHighestAmount, domain.SortLowestAmount} {
		view := SortedView(subs, order)
		assert.Equal(t, "a", view[0].ID, "order %s", order)
		assert.Equal(t, "b", view[1].ID, "order %s", order)
		assert.Equal(t, "c", view[2].ID, "order %s", order)
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.SortOrder
		wantErr  bool
	}{
		{"", domain.SortNewestFirst, false},
		{"date-newest", domain.SortNewestFirst, false},
		{"date-oldest", domain.SortOldestFirst, false},
		{"amount-highest", domain.SortHighestAmount, false},
		{"amount-lowest", domain.SortLowestAmount, false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			order, err := domain.ParseSortOrder(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, order)
		})
	}
}
