package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/wordle-buddy/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("WORDLE_ADDR", ":8080")
			t.Setenv("WORDLE_QUEUE_SIZE", "64")
			t.Setenv("WORDLE_STORE_DRIVER", "sqlite")
			t.Setenv("WORDLE_SQLITE_PATH", "/var/lib/wordle/bot.db")
			t.Setenv("WORDLE_COMMAND_PREFIX", "!w")
			t.Setenv("WORDLE_RATE_LIMIT", "2.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.StoreLocation(), convey.ShouldEqual, "/var/lib/wordle/bot.db")
				convey.So(cfg.CommandPrefix, convey.ShouldEqual, "!w")
				convey.So(cfg.RateLimit, convey.ShouldEqual, 2.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			t.Setenv("WORDLE_CONFIG", writeConfigFile(t, `
# results live next to the bot
addr: ":9090"
results_dir: /srv/wordle
epoch: "2021-06-19"
timezone: Europe/London
watch_channel: wordle
scrape_limit: 200 # one page
`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ResultsDir, convey.ShouldEqual, "/srv/wordle")
				convey.So(cfg.Timezone, convey.ShouldEqual, "Europe/London")
				convey.So(cfg.WatchChannel, convey.ShouldEqual, "wordle")
				convey.So(cfg.ScrapeLimit, convey.ShouldEqual, 200)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			t.Setenv("WORDLE_CONFIG", writeConfigFile(t, `
addr: ":9090"
watch_channel: wordle
`))
			t.Setenv("WORDLE_WATCH_CHANNEL", "games")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WatchChannel, convey.ShouldEqual, "games")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("WORDLE_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("WORDLE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("WORDLE_QUEUE_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the loaded values do not validate", func() {
			t.Setenv("WORDLE_EPOCH", "yesterday")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// clearConfigEnvVars unsets every WORDLE_ variable for the duration of t.
func clearConfigEnvVars(t *testing.T) {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "wordle.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
