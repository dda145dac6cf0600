package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/edlane/primer/internal/adapters/mq/queue"
	"github.com/edlane/primer/internal/adapters/repository"
	"github.com/edlane/primer/internal/domain/model"
	"github.com/edlane/primer/internal/scheduler"
	"github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2025, 8, 18, 8, 0, 0, 0, time.UTC)

func seedEvent(store *repository.MemoryStore, studentID string, ts time.Time) {
	ev := model.AnswerEvent{
		EventID:    studentID + "-" + ts.Format(time.RFC3339Nano),
		StudentID:  studentID,
		QuestionID: "q-" + ts.Format("150405.000000000"),
		Subject:    "math",
		Correct:    true,
		LatencyMS:  1200,
		Modality:   model.ModalityVisual,
		TS:         ts,
	}
	if err := store.AppendEvent(context.Background(), ev); err != nil {
		panic(err)
	}
}

func TestScheduler_Trigger(t *testing.T) {
	convey.Convey("Given a store with answered students and a scheduler", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := repository.NewMemoryStore(ctx)
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		sched := scheduler.New(store, store, q)

		seedEvent(store, "s-1", base)
		seedEvent(store, "s-2", base.Add(time.Minute))

		convey.Convey("When no profiles exist yet", func() {
			n, err := sched.Trigger(ctx)

			convey.Convey("Then every student gets one job", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 2)
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When one student's watermark already covers the log", func() {
			profile := model.NewStudentProfile("s-1")
			profile.LastUpdated = base.Add(time.Hour)
			convey.So(store.PutProfile(ctx, profile), convey.ShouldBeNil)

			n, err := sched.Trigger(ctx)

			convey.Convey("Then only the student with pending events is enqueued", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)

				jobs := q.Dequeue(ctx)
				job := <-jobs
				convey.So(job.StudentID, convey.ShouldEqual, "s-2")
			})
		})

		convey.Convey("When the log is fully aggregated", func() {
			for _, id := range []string{"s-1", "s-2"} {
				profile := model.NewStudentProfile(id)
				profile.LastUpdated = base.Add(time.Hour)
				convey.So(store.PutProfile(ctx, profile), convey.ShouldBeNil)
			}

			n, err := sched.Trigger(ctx)

			convey.Convey("Then the cycle enqueues nothing", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 0)
				convey.So(q.Len(ctx), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestScheduler_StartStop(t *testing.T) {
	convey.Convey("Given a scheduler with a short interval", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := repository.NewMemoryStore(ctx)
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		sched := scheduler.New(store, store, q, scheduler.WithInterval(50*time.Millisecond))

		seedEvent(store, "s-1", base)

		convey.Convey("When started and left to run", func() {
			convey.So(sched.Start(), convey.ShouldBeNil)
			defer sched.Stop()

			deadline := time.Now().Add(2 * time.Second)
			for q.Len(ctx) == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}

			convey.Convey("Then the interval trigger enqueues pending work", func() {
				convey.So(q.Len(ctx), convey.ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}
