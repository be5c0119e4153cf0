package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/okian/wordle-buddy/internal/adapters/repository"
	service "github.com/okian/wordle-buddy/internal/app"
	"github.com/okian/wordle-buddy/internal/domain/model"
	"github.com/okian/wordle-buddy/internal/domain/period"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by SQLite", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cal := period.MustNew(period.DefaultEpoch, time.UTC)
		clock := func() time.Time { return day321 }
		store, err := repository.OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "wordle.db"),
			repository.WithCalendar(cal),
			repository.WithClock(clock),
		)
		So(err, ShouldBeNil)
		defer func() { _ = store.Close() }()

		svc := service.New(
			service.WithStore(store),
			service.WithCalendar(cal),
			service.WithClock(clock),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the service restarts", func() {
			reply, err := svc.HandleMessage(ctx, message("mike-320", "u1", "Mike", resultText(320, 4), cal.Date(320).Add(9*time.Hour)))
			So(err, ShouldBeNil)
			So(reply.Accepted, ShouldBeTrue)

			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it keeps using the injected store", func() {
				table, err := svc.Leaderboard(ctx, "guild", service.ModeAverage, "1")
				So(err, ShouldBeNil)
				So(table, ShouldEndWith, "\n1   Mike           4.000  1```")
			})
		})

		Convey("When a week of results is posted", func() {
			// Mike plays every day, Melissa only on Thursday.
			for p := 316; p <= 320; p++ {
				sent := cal.Date(p).Add(9 * time.Hour)
				reply, err := svc.HandleMessage(ctx, message(fmt.Sprintf("mike-%d", p), "u1", "Mike", resultText(p, 4), sent))
				So(err, ShouldBeNil)
				So(reply.Accepted, ShouldBeTrue)
			}
			reply, err := svc.HandleMessage(ctx, message("mel-320", "u2", "Melissa", resultText(320, 2), cal.Date(320).Add(20*time.Hour)))
			So(err, ShouldBeNil)
			So(reply.Accepted, ShouldBeTrue)

			Convey("Then the weekly totals count Melissa's missed days as failures", func() {
				text, err := svc.Leaderboard(ctx, "guild", service.ModeTotal, "")
				So(err, ShouldBeNil)
				So(text, ShouldStartWith, "```Wordle Leaderboard: 01/05/2022 - 05/05/2022\n")
				So(text, ShouldEndWith, "\n1   Mike           20\n2   Melissa        30```")
			})

			Convey("Then the averages only count days played", func() {
				text, err := svc.Leaderboard(ctx, "guild", service.ModeAverage, "5")
				So(err, ShouldBeNil)
				So(text, ShouldEndWith, "\n1   Melissa        2.000  1\n2   Mike           4.000  5```")
			})

			Convey("Then a resubmission replaces the stored result", func() {
				reply, err := svc.HandleMessage(ctx, message("mel-320b", "u2", "Melissa", resultText(320, 5), cal.Date(320).Add(21*time.Hour)))
				So(err, ShouldBeNil)
				So(reply.Accepted, ShouldBeTrue)

				text, err := svc.Leaderboard(ctx, "guild", service.ModeAverage, "5")
				So(err, ShouldBeNil)
				So(text, ShouldEndWith, "\n1   Mike           4.000  5\n2   Melissa        5.000  1```")
			})

			Convey("Then another group sees an empty board", func() {
				text, err := svc.Leaderboard(ctx, "other", service.ModeTotal, "week")
				So(err, ShouldBeNil)
				So(text, ShouldEndWith, "-------------------------------------------```")
			})
		})
	})
}

func TestServiceIntegration_Concurrency(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(t, service.WithQueueSize(256))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many players post at once", func() {
			const players = 50
			faker := gofakeit.New(42)
			names := make([]string, players)
			for i := range names {
				names[i] = faker.FirstName()
			}
			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				accepted int
				failures []error
			)
			for i := 0; i < players; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := fmt.Sprintf("user-%02d", i)
					reply, err := svc.HandleMessage(ctx, message("msg-"+id, id, names[i], resultText(321, 1+i%6), day321))
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						failures = append(failures, err)
						return
					}
					if reply.Accepted {
						accepted++
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every result is accepted exactly once", func() {
				So(failures, ShouldBeEmpty)
				So(accepted, ShouldEqual, players)

				stats := svc.GetStats()
				So(stats["messagesReceived"], ShouldEqual, int64(players))
				So(stats["resultsAccepted"], ShouldEqual, int64(players))
				So(stats["acknowledged"], ShouldEqual, players)
			})
		})
	})
}

func TestServiceIntegration_ErrorHandling(t *testing.T) {
	Convey("Given a service with a tiny queue", t, func() {
		svc := newService(t, service.WithQueueSize(1))

		Convey("When messages arrive after Stop", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then they are refused", func() {
				_, err := svc.HandleMessage(ctx, message("late", "u1", "Mike", resultText(321, 3), day321))
				So(err, ShouldWrap, service.ErrNotStarted)

				_, _, err = svc.ProcessHistory(ctx, nil, 0)
				So(err, ShouldWrap, service.ErrNotStarted)
			})
		})

		Convey("When the caller gives up before the reply", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then the context error is returned", func() {
				_, err := svc.HandleMessage(cancelled, message("m1", "u1", "Mike", resultText(321, 3), day321))
				So(err, ShouldWrap, context.Canceled)
			})
		})
	})
}

func TestServiceIntegration_HistoryThenChat(t *testing.T) {
	Convey("Given history replayed before live messages", t, func() {
		svc := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		live := message("live-1", "u1", "Mike", resultText(321, 3), day321)
		_, acked, err := svc.ProcessHistory(ctx, []model.Message{live}, 0)
		So(err, ShouldBeNil)
		So(acked, ShouldResemble, []string{"live-1"})

		Convey("When the same message is replayed again", func() {
			processed, again, err := svc.ProcessHistory(ctx, []model.Message{live}, 0)

			Convey("Then it is considered but not acknowledged twice", func() {
				So(err, ShouldBeNil)
				So(processed, ShouldEqual, 1)
				So(again, ShouldBeEmpty)
				So(svc.GetStats()["resultsAccepted"], ShouldEqual, int64(1))
			})
		})
	})
}
