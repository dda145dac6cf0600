package config_test

import (
	"runtime"
	"testing"

	"github.com/edlane/primer/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.AggregationIntervalSec, convey.ShouldEqual, 300)
			convey.So(cfg.RunTimeoutMS, convey.ShouldEqual, 30_000)
			convey.So(cfg.MaxRetries, convey.ShouldEqual, 3)
			convey.So(cfg.LessonLimit, convey.ShouldEqual, 5)
			convey.So(cfg.TutorProvider, convey.ShouldEqual, "none")
		})
	})
}
