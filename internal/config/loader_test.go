package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/courtlytics/pbp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"PBP_CONFIG",
		"PBP_LOG_LEVEL",
		"PBP_METRICS_ADDR",
		"PBP_WORKER_COUNT",
		"PBP_QUEUE_SIZE",
		"PBP_SINK_DRIVER",
		"PBP_SINK_PATH",
		"PBP_SINK_WRITE_TIMEOUT_MS",
		"PBP_CLUTCH_CLOCK_SECONDS",
		"PBP_CLUTCH_MARGIN",
		"PBP_ZONES__CORNER_MIN_X",
		"PBP_ZONES__CORNER_MAX_X",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.SinkDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.SinkPath, convey.ShouldEqual, "pbp.db")
				convey.So(cfg.ClutchClockSeconds, convey.ShouldEqual, 300)
				convey.So(cfg.ClutchMargin, convey.ShouldEqual, 5)
				convey.So(cfg.Zones.CornerMinX, convey.ShouldEqual, 10)
				convey.So(cfg.Zones.CornerMaxX, convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PBP_WORKER_COUNT", "8")
			_ = os.Setenv("PBP_QUEUE_SIZE", "64")
			_ = os.Setenv("PBP_SINK_DRIVER", "memory")
			_ = os.Setenv("PBP_LOG_LEVEL", "debug")
			_ = os.Setenv("PBP_ZONES__CORNER_MIN_X", "12")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.SinkDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Zones.CornerMinX, convey.ShouldEqual, 12)
				// untouched fields keep their defaults
				convey.So(cfg.Zones.CornerMaxX, convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "pbp.yaml")
			yaml := "worker_count: 3\nsink_driver: memory\nzones:\n  corner_min_x: 11\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("PBP_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.SinkDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.Zones.CornerMinX, convey.ShouldEqual, 11)
			})

			convey.Convey("And env still wins over the file", func() {
				_ = os.Setenv("PBP_WORKER_COUNT", "9")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 9)
				convey.So(cfg.SinkDriver, convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			clearConfigEnvVars()
			defer clearConfigEnvVars()

			convey.Convey("Then a non-positive worker count is rejected", func() {
				_ = os.Setenv("PBP_WORKER_COUNT", "0")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})

			convey.Convey("Then an unknown sink driver is rejected", func() {
				_ = os.Setenv("PBP_SINK_DRIVER", "clickhouse")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})

			convey.Convey("Then a missing config file is reported as a load error", func() {
				_ = os.Setenv("PBP_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})
	})
}
