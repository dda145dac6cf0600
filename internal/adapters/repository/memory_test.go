package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/edlane/primer/internal/adapters/repository"
	"github.com/edlane/primer/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2025, 8, 18, 8, 0, 0, 0, time.UTC)

func event(studentID, questionID string, offset time.Duration) model.AnswerEvent {
	return model.AnswerEvent{
		EventID:    studentID + "_" + questionID,
		StudentID:  studentID,
		QuestionID: questionID,
		Subject:    "Math",
		Correct:    true,
		LatencyMS:  500,
		Modality:   model.ModalityVisual,
		TS:         base.Add(offset),
	}
}

func TestMemoryStore_EventLog(t *testing.T) {
	convey.Convey("Given an in-memory store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := repository.NewMemoryStore(ctx)
		defer func() { _ = store.Close() }()

		convey.Convey("When appending events out of order", func() {
			convey.So(store.AppendEvent(ctx, event("s-1", "q2", 2*time.Minute)), convey.ShouldBeNil)
			convey.So(store.AppendEvent(ctx, event("s-1", "q1", 1*time.Minute)), convey.ShouldBeNil)
			convey.So(store.AppendEvent(ctx, event("s-1", "q3", 3*time.Minute)), convey.ShouldBeNil)

			convey.Convey("Then EventsSince returns them TS ascending", func() {
				events, err := store.EventsSince(ctx, "s-1", time.Time{})
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 3)
				convey.So(events[0].QuestionID, convey.ShouldEqual, "q1")
				convey.So(events[2].QuestionID, convey.ShouldEqual, "q3")
			})

			convey.Convey("Then the watermark bound is strict", func() {
				events, err := store.EventsSince(ctx, "s-1", base.Add(2*time.Minute))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 1)
				convey.So(events[0].QuestionID, convey.ShouldEqual, "q3")
			})

			convey.Convey("Then EventsInRange bounds are inclusive", func() {
				events, err := store.EventsInRange(ctx, "s-1", base.Add(1*time.Minute), base.Add(2*time.Minute))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When appending the same event twice", func() {
			convey.So(store.AppendEvent(ctx, event("s-1", "q1", time.Minute)), convey.ShouldBeNil)
			err := store.AppendEvent(ctx, event("s-1", "q1", time.Minute))

			convey.Convey("Then the second append reports a duplicate", func() {
				convey.So(err, convey.ShouldEqual, repository.ErrDuplicateEvent)
				convey.So(store.EventCount(ctx), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When multiple students have events", func() {
			for i := 0; i < 10; i++ {
				id := fmt.Sprintf("s-%d", i)
				convey.So(store.AppendEvent(ctx, event(id, "q1", time.Minute)), convey.ShouldBeNil)
			}

			convey.Convey("Then Students lists them all, sorted", func() {
				students, err := store.Students(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(students), convey.ShouldEqual, 10)
				convey.So(students[0], convey.ShouldEqual, "s-0")
			})
		})
	})
}

func TestMemoryStore_Profiles(t *testing.T) {
	convey.Convey("Given an in-memory store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		store := repository.NewMemoryStore(ctx, repository.WithShardCount(4))
		defer func() { _ = store.Close() }()

		convey.Convey("Then a missing profile yields ErrNotFound", func() {
			_, err := store.Profile(ctx, "s-404")
			convey.So(err, convey.ShouldEqual, repository.ErrNotFound)
		})

		convey.Convey("When a profile is stored", func() {
			p := model.NewStudentProfile("s-1")
			p.Subjects["Math"] = model.SubjectStats{Correct: 3, Total: 4, Accuracy: 0.75}
			p.LastUpdated = base
			convey.So(store.PutProfile(ctx, p), convey.ShouldBeNil)

			convey.Convey("Then it reads back intact", func() {
				got, err := store.Profile(ctx, "s-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Subjects["Math"].Accuracy, convey.ShouldAlmostEqual, 0.75, 1e-9)
				convey.So(got.LastUpdated.Equal(base), convey.ShouldBeTrue)
				convey.So(store.ProfileCount(ctx), convey.ShouldEqual, 1)
			})

			convey.Convey("Then callers get an isolated copy", func() {
				got, err := store.Profile(ctx, "s-1")
				convey.So(err, convey.ShouldBeNil)
				got.Subjects["Math"] = model.SubjectStats{}

				again, err := store.Profile(ctx, "s-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(again.Subjects["Math"].Correct, convey.ShouldEqual, 3)
			})

			convey.Convey("Then a second put overwrites, not appends", func() {
				p2 := model.NewStudentProfile("s-1")
				p2.LastUpdated = base.Add(time.Hour)
				convey.So(store.PutProfile(ctx, p2), convey.ShouldBeNil)
				convey.So(store.ProfileCount(ctx), convey.ShouldEqual, 1)

				got, err := store.Profile(ctx, "s-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.LastUpdated.Equal(base.Add(time.Hour)), convey.ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStore_ImplementsStore(t *testing.T) {
	convey.Convey("The memory store satisfies the Store interface", t, func() {
		var _ repository.Store = (*repository.MemoryStore)(nil)
		convey.So(true, convey.ShouldBeTrue)
	})
}
