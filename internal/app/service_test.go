package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	service "github.com/okian/wordle-buddy/internal/app"
	"github.com/okian/wordle-buddy/internal/domain/command"
	"github.com/okian/wordle-buddy/internal/domain/model"
	"github.com/okian/wordle-buddy/internal/domain/period"
	"github.com/okian/wordle-buddy/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// day321 is noon on the day of puzzle 321 (Friday 6 May 2022).
var day321 = time.Date(2022, time.May, 6, 12, 0, 0, 0, time.UTC)

func resultText(p int, score int) string {
	rows := []string{"⬜🟨⬜🟩⬜", "⬜⬜🟨🟩⬜", "🟨⬜⬜🟩⬜", "⬜🟩⬜🟩⬜", "🟩⬜⬜🟩🟩"}
	body := append(append([]string{}, rows[:score-1]...), "🟩🟩🟩🟩🟩")
	return fmt.Sprintf("Wordle %d %d/6\n\n%s", p, score, strings.Join(body, "\n"))
}

func message(id, author, name, content string, sent time.Time) model.Message {
	return model.Message{
		ID:         id,
		GroupID:    "guild",
		Channel:    "wordle",
		AuthorID:   author,
		AuthorName: name,
		Content:    content,
		SentAt:     sent,
	}
}

func newService(t *testing.T, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithStoreDriver("json", t.TempDir()),
		service.WithCalendar(period.MustNew(period.DefaultEpoch, time.UTC)),
		service.WithClock(func() time.Time { return day321 }),
	}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it reports sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["scrapeLimit"], ShouldEqual, 500)
			So(stats["commandPrefix"], ShouldEqual, "+w")
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithQueueSize(16),
			service.WithAckSize(100),
			service.WithScrapeLimit(50),
			service.WithWatchChannel("wordle"),
			service.WithCommandPrefix("!w"),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["queueSize"], ShouldEqual, 16)
			So(stats["scrapeLimit"], ShouldEqual, 50)
			So(stats["watchChannel"], ShouldEqual, "wordle")
			So(stats["commandPrefix"], ShouldEqual, "!w")
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService(t)

		Convey("When it is used before starting", func() {
			_, err := svc.HandleMessage(context.Background(), message("m", "u", "U", "hi", day321))

			Convey("Then it refuses", func() {
				So(err, ShouldWrap, service.ErrNotStarted)
			})
		})

		Convey("When starting and stopping", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.GetStats()["currentPeriod"], ShouldEqual, 321)

			svc.Stop()
			svc.Stop()

			Convey("Then it is marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				_, err := svc.Leaderboard(ctx, "guild", "", "")
				So(err, ShouldWrap, service.ErrNotStarted)
			})
		})

		Convey("When the store driver is unknown", func() {
			bad := service.New(service.WithStoreDriver("redis", ""))

			Convey("Then Start fails", func() {
				So(bad.Start(context.Background()), ShouldNotBeNil)
			})
		})
	})
}

func TestService_HandleMessage(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(t)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a valid result is posted on its day", func() {
			reply, err := svc.HandleMessage(ctx, message("m1", "u1", "Mike", resultText(321, 3), day321))

			Convey("Then it is accepted with a checkmark", func() {
				So(err, ShouldBeNil)
				So(reply.Accepted, ShouldBeTrue)
				So(reply.Reaction, ShouldEqual, service.Checkmark)
				So(reply.Kind, ShouldEqual, "none")
				So(svc.GetStats()["acknowledged"], ShouldEqual, 1)
			})
		})

		Convey("When a result is posted on the wrong day", func() {
			reply, err := svc.HandleMessage(ctx, message("m1", "u1", "Mike", resultText(320, 3), day321))

			Convey("Then it is silently not acknowledged", func() {
				So(err, ShouldBeNil)
				So(reply.Accepted, ShouldBeFalse)
				So(reply.Reaction, ShouldBeEmpty)
			})
		})

		Convey("When help is requested", func() {
			reply, err := svc.HandleMessage(ctx, message("m2", "u1", "Mike", "+w help", day321))

			Convey("Then the help text goes to the author privately", func() {
				So(err, ShouldBeNil)
				So(reply.Kind, ShouldEqual, "private")
				So(reply.Text, ShouldEqual, command.HelpText("+w"))
				So(reply.Accepted, ShouldBeFalse)
			})
		})

		Convey("When a scrape is requested", func() {
			reply, err := svc.HandleMessage(ctx, message("m3", "u1", "Mike", "+w scrape", day321))

			Convey("Then the caller is told to send history", func() {
				So(err, ShouldBeNil)
				So(reply.Kind, ShouldEqual, "scrape")
			})
		})

		Convey("When a malformed command is posted", func() {
			reply, err := svc.HandleMessage(ctx, message("m4", "u1", "Mike", "+w leaderboard soon", day321))

			Convey("Then nothing is sent back", func() {
				So(err, ShouldBeNil)
				So(reply.Kind, ShouldEqual, "none")
				So(reply.Text, ShouldBeEmpty)
				So(reply.Accepted, ShouldBeFalse)
			})
		})

		Convey("When the message is missing its author", func() {
			msg := message("m5", "", "", resultText(321, 3), day321)
			_, err := svc.HandleMessage(ctx, msg)

			Convey("Then it is rejected as invalid", func() {
				So(err, ShouldWrap, model.ErrInvalidMessage)
			})
		})

		Convey("When the bot's own message arrives", func() {
			msg := message("m6", "bot", "Buddy", resultText(321, 3), day321)
			msg.FromBot = true
			reply, err := svc.HandleMessage(ctx, msg)

			Convey("Then it is ignored", func() {
				So(err, ShouldBeNil)
				So(reply.Accepted, ShouldBeFalse)
			})
		})
	})
}

func TestService_WatchChannel(t *testing.T) {
	Convey("Given a service watching one channel", t, func() {
		svc := newService(t, service.WithWatchChannel("wordle"))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a result is posted elsewhere", func() {
			msg := message("m1", "u1", "Mike", resultText(321, 3), day321)
			msg.Channel = "general"
			reply, err := svc.HandleMessage(ctx, msg)

			Convey("Then it is ignored", func() {
				So(err, ShouldBeNil)
				So(reply.Accepted, ShouldBeFalse)
			})
		})

		Convey("When a result is posted in the watched channel", func() {
			reply, err := svc.HandleMessage(ctx, message("m1", "u1", "Mike", resultText(321, 3), day321))

			Convey("Then it is accepted", func() {
				So(err, ShouldBeNil)
				So(reply.Accepted, ShouldBeTrue)
			})
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given results from yesterday", t, func() {
		svc := newService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		yesterday := day321.AddDate(0, 0, -1)
		for _, m := range []model.Message{
			message("a", "u1", "Mike", resultText(320, 3), yesterday),
			message("b", "u2", "Melissa", resultText(320, 2), yesterday),
		} {
			reply, err := svc.HandleMessage(ctx, m)
			So(err, ShouldBeNil)
			So(reply.Accepted, ShouldBeTrue)
		}

		Convey("When the weekly leaderboard is requested in chat", func() {
			reply, err := svc.HandleMessage(ctx, message("c", "u1", "Mike", "+w leaderboard", day321))

			Convey("Then missed days count as failures", func() {
				So(err, ShouldBeNil)
				So(reply.Kind, ShouldEqual, "channel")
				So(reply.Text, ShouldContainSubstring, "\n1   Melissa        30\n2   Mike           31```")
			})
		})

		Convey("When the average leaderboard is requested directly", func() {
			text, err := svc.Leaderboard(ctx, "guild", service.ModeAverage, "week")

			Convey("Then missed days are skipped", func() {
				So(err, ShouldBeNil)
				So(text, ShouldContainSubstring, "\n1   Melissa        2.000  1\n2   Mike           3.000  1```")
			})
		})

		Convey("When the mode is unknown", func() {
			_, err := svc.Leaderboard(ctx, "guild", "median", "")

			Convey("Then an invalid mode error is returned", func() {
				So(err, ShouldWrap, service.ErrInvalidMode)
			})
		})

		Convey("When the window is malformed", func() {
			_, err := svc.Leaderboard(ctx, "guild", service.ModeTotal, "fortnight")

			Convey("Then a command syntax error is returned", func() {
				So(err, ShouldWrap, command.ErrCommandSyntax)
			})
		})
	})
}

func TestService_ProcessHistory(t *testing.T) {
	Convey("Given a service with a small scrape limit", t, func() {
		svc := newService(t, service.WithScrapeLimit(3))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		yesterday := day321.AddDate(0, 0, -1)
		reacted := message("h2", "u2", "Melissa", resultText(320, 2), yesterday)
		reacted.Acknowledged = true
		history := []model.Message{
			message("h1", "u1", "Mike", resultText(321, 4), day321),
			reacted,
			message("h3", "u3", "Ann", "just chatting", yesterday),
			message("h4", "u4", "Bo", resultText(319, 5), yesterday),
		}

		Convey("When history is replayed", func() {
			processed, acked, err := svc.ProcessHistory(ctx, history, 100)

			Convey("Then only the newest messages up to the limit are considered", func() {
				So(err, ShouldBeNil)
				So(processed, ShouldEqual, 3)
				So(acked, ShouldResemble, []string{"h1"})
			})

			Convey("Then a second replay acknowledges nothing new", func() {
				_, again, err := svc.ProcessHistory(ctx, history, 100)
				So(err, ShouldBeNil)
				So(again, ShouldBeEmpty)
			})
		})

		Convey("When the caller asks for fewer messages", func() {
			processed, _, err := svc.ProcessHistory(ctx, history, 1)

			Convey("Then the smaller limit wins", func() {
				So(err, ShouldBeNil)
				So(processed, ShouldEqual, 1)
			})
		})
	})
}
