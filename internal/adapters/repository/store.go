// Package repository persists accepted results keyed by group, user and period.
package repository

import (
	"context"
	"time"

	"github.com/okian/wordle-buddy/internal/domain/result"
	"github.com/okian/wordle-buddy/pkg/metrics"
)

// Store provides read/write access to submitted results.
type Store interface {
	// Save writes rec under (group, user, rec.Period), replacing any
	// previous record for that key.
	Save(ctx context.Context, group, user string, rec result.Record) error

	// Load returns records for users over periods. A nil users slice means
	// every user known in group; a nil periods slice means the current
	// period. Users with no record in any requested period are omitted
	// unless the store was built WithKeepEmpty.
	Load(ctx context.Context, group string, users []string, periods []int) ([]result.UserResults, error)

	// Users lists users with at least one record in group, sorted.
	Users(ctx context.Context, group string) ([]string, error)

	// SaveMember remembers the display name of a user in group.
	SaveMember(ctx context.Context, group, user, name string) error

	// MemberName returns the remembered display name of a user.
	// Returns ErrNotFound if the user was never seen.
	MemberName(ctx context.Context, group, user string) (string, error)

	Close() error
}

// fetchFunc reads a single record; it returns (nil, nil) when absent.
type fetchFunc func(ctx context.Context, group, user string, p int) (*result.Record, error)

// assemble implements Load on top of a per-key fetch so every backend
// shares the defaulting and omission rules.
func assemble(ctx context.Context, s Store, o *options, fetch fetchFunc, group string, users []string, periods []int) ([]result.UserResults, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLoadLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if users == nil {
		var err error
		if users, err = s.Users(ctx, group); err != nil {
			return nil, err
		}
	}
	if periods == nil {
		periods = []int{o.calendar.Index(o.now())}
	}

	out := make([]result.UserResults, 0, len(users))
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ur := result.UserResults{UserID: user, Results: make([]*result.Record, len(periods))}
		present := false
		for i, p := range periods {
			rec, err := fetch(ctx, group, user, p)
			if err != nil {
				return nil, err
			}
			ur.Results[i] = rec
			present = present || rec != nil
		}
		if present || o.keepEmpty {
			out = append(out, ur)
		}
	}
	return out, nil
}

func observeWrite(start time.Time, err error) {
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordStoreError("save")
	}
}
