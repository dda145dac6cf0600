package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/edlane/primer/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_Load(t *testing.T) {
	convey.Convey("Given a clean environment", t, func() {
		ctx := context.Background()

		convey.Convey("When loading without overrides", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When env vars override defaults", func() {
			t.Setenv("PRIMER_ADDR", ":8123")
			t.Setenv("PRIMER_WORKER_COUNT", "4")
			t.Setenv("PRIMER_TUTOR_PROVIDER", "openai")
			t.Setenv("PRIMER_TUTOR_API_KEY", "sk-test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the overrides win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8123")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.TutorProvider, convey.ShouldEqual, "openai")
				convey.So(cfg.TutorAPIKey, convey.ShouldEqual, "sk-test")
			})
		})

		convey.Convey("When a YAML file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "primer.yaml")
			yaml := "addr: \":8200\"\nstore_backend: sqlite\nsqlite_path: " + filepath.Join(dir, "p.db") + "\nlesson_limit: 3\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			t.Setenv("PRIMER_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values layer over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8200")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "sqlite")
				convey.So(cfg.LessonLimit, convey.ShouldEqual, 3)
			})

			convey.Convey("And env still beats the file", func() {
				t.Setenv("PRIMER_ADDR", ":8300")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8300")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			t.Setenv("PRIMER_CONFIG", "/nonexistent/primer.yaml")

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an invalid backend is configured", func() {
			t.Setenv("PRIMER_STORE_BACKEND", "dynamodb")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When worker_count is zero", func() {
			t.Setenv("PRIMER_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
