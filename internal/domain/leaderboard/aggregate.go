// Package leaderboard ranks stored results and renders them as the
// fixed-width tables posted back to the channel.
package leaderboard

import (
	"context"
	"sort"

	"github.com/okian/wordle-buddy/internal/domain/result"
)

// NameResolver maps a user id to a display name. ok is false when the user
// can no longer be resolved; such users are left out of every ranking.
type NameResolver interface {
	DisplayName(ctx context.Context, userID string) (name string, ok bool)
}

// ResolverFunc adapts a function to NameResolver.
type ResolverFunc func(ctx context.Context, userID string) (string, bool)

// DisplayName implements NameResolver.
func (f ResolverFunc) DisplayName(ctx context.Context, userID string) (string, bool) {
	return f(ctx, userID)
}

// TotalEntry is one row of a total-score ranking.
type TotalEntry struct {
	Name  string
	Total int
}

// AverageEntry is one row of an average-score ranking.
type AverageEntry struct {
	Name  string
	Mean  float64
	Count int
}

// TotalScore sums the scores of records, counting every absent period as a
// failure.
func TotalScore(records []*result.Record) int {
	total := 0
	for _, r := range records {
		if r == nil {
			total += int(result.FailureScore)
			continue
		}
		total += int(r.Score)
	}
	return total
}

// AverageScore returns the mean score over present records and how many
// there were. Absent periods count for nothing.
func AverageScore(records []*result.Record) (float64, int) {
	sum, n := 0, 0
	for _, r := range records {
		if r == nil {
			continue
		}
		sum += int(r.Score)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

// Totals ranks users by TotalScore, lowest first. Ties keep input order.
func Totals(ctx context.Context, results []result.UserResults, names NameResolver) []TotalEntry {
	out := make([]TotalEntry, 0, len(results))
	for _, ur := range results {
		name, ok := names.DisplayName(ctx, ur.UserID)
		if !ok {
			continue
		}
		out = append(out, TotalEntry{Name: name, Total: TotalScore(ur.Results)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total < out[j].Total })
	return out
}

// Averages ranks users by AverageScore, lowest mean first. Ties keep input
// order.
func Averages(ctx context.Context, results []result.UserResults, names NameResolver) []AverageEntry {
	out := make([]AverageEntry, 0, len(results))
	for _, ur := range results {
		name, ok := names.DisplayName(ctx, ur.UserID)
		if !ok {
			continue
		}
		mean, n := AverageScore(ur.Results)
		out = append(out, AverageEntry{Name: name, Mean: mean, Count: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean < out[j].Mean })
	return out
}
