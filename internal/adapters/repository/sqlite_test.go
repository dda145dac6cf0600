package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/edlane/primer/internal/adapters/repository"
	"github.com/edlane/primer/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func newSQLStore(t *testing.T) *repository.SQLStore {
	t.Helper()
	store, err := repository.NewSQLStore(filepath.Join(t.TempDir(), "primer.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_EventLog(t *testing.T) {
	convey.Convey("Given a sqlite store", t, func() {
		store := newSQLStore(t)
		ctx := context.Background()

		convey.Convey("When appending and reading events", func() {
			convey.So(store.AppendEvent(ctx, event("s-1", "q1", 1*time.Minute)), convey.ShouldBeNil)
			convey.So(store.AppendEvent(ctx, event("s-1", "q2", 2*time.Minute)), convey.ShouldBeNil)
			convey.So(store.AppendEvent(ctx, event("s-2", "q1", 3*time.Minute)), convey.ShouldBeNil)

			convey.Convey("Then EventsSince honors the strict watermark", func() {
				events, err := store.EventsSince(ctx, "s-1", base.Add(1*time.Minute))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 1)
				convey.So(events[0].QuestionID, convey.ShouldEqual, "q2")
				convey.So(events[0].Modality, convey.ShouldEqual, model.ModalityVisual)
			})

			convey.Convey("Then EventsInRange is inclusive on both ends", func() {
				events, err := store.EventsInRange(ctx, "s-1", base.Add(1*time.Minute), base.Add(2*time.Minute))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(events), convey.ShouldEqual, 2)
			})

			convey.Convey("Then Students spans all rows", func() {
				students, err := store.Students(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(students, convey.ShouldResemble, []string{"s-1", "s-2"})
				convey.So(store.EventCount(ctx), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When appending a duplicate key", func() {
			convey.So(store.AppendEvent(ctx, event("s-1", "q1", time.Minute)), convey.ShouldBeNil)
			err := store.AppendEvent(ctx, event("s-1", "q1", time.Minute))
			convey.So(err, convey.ShouldEqual, repository.ErrDuplicateEvent)
		})
	})
}

func TestSQLStore_Profiles(t *testing.T) {
	convey.Convey("Given a sqlite store", t, func() {
		store := newSQLStore(t)
		ctx := context.Background()

		convey.Convey("Then a missing profile yields ErrNotFound", func() {
			_, err := store.Profile(ctx, "s-404")
			convey.So(err, convey.ShouldEqual, repository.ErrNotFound)
		})

		convey.Convey("When a profile round-trips", func() {
			p := model.NewStudentProfile("s-1")
			p.Subjects["Science"] = model.SubjectStats{Correct: 5, Total: 6, Accuracy: 5.0 / 6.0}
			p.ModalityCorrect[model.ModalityKinesthetic] = 5
			p.Style[model.ModalityKinesthetic] = 0.7
			p.LastUpdated = base
			convey.So(store.PutProfile(ctx, p), convey.ShouldBeNil)

			got, err := store.Profile(ctx, "s-1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.Subjects["Science"].Total, convey.ShouldEqual, 6)
			convey.So(got.ModalityCorrect[model.ModalityKinesthetic], convey.ShouldEqual, 5)
			convey.So(got.Style[model.ModalityKinesthetic], convey.ShouldAlmostEqual, 0.7, 1e-9)

			convey.Convey("Then overwriting replaces the row", func() {
				p.Subjects["Science"] = model.SubjectStats{Correct: 6, Total: 7, Accuracy: 6.0 / 7.0}
				convey.So(store.PutProfile(ctx, p), convey.ShouldBeNil)
				convey.So(store.ProfileCount(ctx), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestSQLStore_ImplementsStore(t *testing.T) {
	convey.Convey("The sqlite store satisfies the Store interface", t, func() {
		var _ repository.Store = (*repository.SQLStore)(nil)
		convey.So(true, convey.ShouldBeTrue)
	})
}
