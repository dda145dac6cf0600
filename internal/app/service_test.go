package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	service "github.com/edlane/primer/internal/app"
	"github.com/edlane/primer/internal/domain/lesson"
	"github.com/edlane/primer/internal/domain/model"
	"github.com/edlane/primer/internal/report"
	"github.com/edlane/primer/internal/tutor"
	"github.com/smartystreets/goconvey/convey"
)

var schoolDay = time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC)

func answer(studentID string, n int, correct bool, m model.Modality) model.AnswerEvent {
	return model.AnswerEvent{
		EventID:    fmt.Sprintf("%s-ev-%d", studentID, n),
		StudentID:  studentID,
		QuestionID: fmt.Sprintf("q-%d", n),
		Subject:    "math",
		Correct:    correct,
		LatencyMS:  1500,
		Modality:   m,
		TS:         schoolDay.Add(time.Duration(n) * time.Minute),
	}
}

func startService(t *testing.T, opts ...service.Option) (*service.Service, context.Context) {
	t.Helper()
	ctx := context.Background()

	base := []service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(64),
		// Long interval so tests drive cycles explicitly via RunAggregation.
		service.WithAggregationInterval(time.Hour),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("starting service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, ctx
}

func waitForSample(ctx context.Context, svc *service.Service, studentID string, want int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, err := svc.LearningStyle(ctx, studentID)
		if err == nil && res.SampleSize >= want {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestService_SubmitAndAggregate(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc, ctx := startService(t)

		convey.Convey("When answers are submitted and a cycle runs", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.SubmitAnswer(ctx, answer("s-1", i, true, model.ModalityVisual))
				convey.So(err, convey.ShouldBeNil)
			}
			_, err := svc.SubmitAnswer(ctx, answer("s-1", 3, false, model.ModalityAuditory))
			convey.So(err, convey.ShouldBeNil)

			n, err := svc.RunAggregation(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 1)

			convey.Convey("Then the profile reflects the folded window", func() {
				convey.So(waitForSample(ctx, svc, "s-1", 4), convey.ShouldBeTrue)

				res, err := svc.LearningStyle(ctx, "s-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.SampleSize, convey.ShouldEqual, 4)
				convey.So(res.Dominant, convey.ShouldEqual, model.ModalityVisual)
				convey.So(res.Style.Sum(), convey.ShouldAlmostEqual, 1.0, 1e-6)
			})

			convey.Convey("Then a second cycle with no new answers enqueues nothing", func() {
				convey.So(waitForSample(ctx, svc, "s-1", 4), convey.ShouldBeTrue)

				n, err := svc.RunAggregation(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the same event id is submitted twice", func() {
			ev := answer("s-2", 0, true, model.ModalityVisual)
			_, err := svc.SubmitAnswer(ctx, ev)
			convey.So(err, convey.ShouldBeNil)

			_, err = svc.SubmitAnswer(ctx, ev)

			convey.Convey("Then the replay is absorbed as a duplicate", func() {
				convey.So(errors.Is(err, service.ErrDuplicateAnswer), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an answer has an unknown modality", func() {
			ev := answer("s-3", 0, true, "telepathic")
			_, err := svc.SubmitAnswer(ctx, ev)

			convey.Convey("Then it is rejected", func() {
				convey.So(errors.Is(err, service.ErrInvalidAnswer), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a legacy hands-on modality is submitted", func() {
			stored, err := svc.SubmitAnswer(ctx, answer("s-4", 0, true, "hands-on"))

			convey.Convey("Then it is normalized to kinesthetic", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(stored.Modality, convey.ShouldEqual, model.ModalityKinesthetic)
			})
		})
	})
}

func TestService_ReadModels(t *testing.T) {
	convey.Convey("Given a service with an aggregated student", t, func() {
		svc, ctx := startService(t)

		for i := 0; i < 6; i++ {
			_, err := svc.SubmitAnswer(ctx, answer("s-1", i, i%3 != 0, model.ModalityVisual))
			convey.So(err, convey.ShouldBeNil)
		}
		_, err := svc.RunAggregation(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(waitForSample(ctx, svc, "s-1", 6), convey.ShouldBeTrue)

		convey.Convey("When a lesson plan is requested on a school day", func() {
			items, err := svc.LessonPlan(ctx, "s-1", "3", schoolDay)

			convey.Convey("Then a bounded, modality-ranked sequence is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(items), convey.ShouldBeGreaterThan, 0)
				convey.So(len(items), convey.ShouldBeLessThanOrEqualTo, 5)
				convey.So(items[0].Modality, convey.ShouldEqual, model.ModalityVisual)
			})
		})

		convey.Convey("When a lesson plan is requested on a holiday", func() {
			laborDay := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
			_, err := svc.LessonPlan(ctx, "s-1", "3", laborDay)

			convey.Convey("Then no lesson is available", func() {
				convey.So(errors.Is(err, lesson.ErrNoLessonAvailable), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a report is requested over the answered period", func() {
			r, err := svc.Report(ctx, "s-1", schoolDay, schoolDay.Add(time.Hour))

			convey.Convey("Then it summarizes the range", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.TotalAnswers, convey.ShouldEqual, 6)
				convey.So(r.CorrectCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When a report is requested for a quiet student", func() {
			_, err := svc.Report(ctx, "s-quiet", schoolDay, schoolDay.Add(time.Hour))

			convey.Convey("Then the empty range is reported", func() {
				convey.So(errors.Is(err, report.ErrEmptyRange), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When feedback is requested without a provider", func() {
			text, err := svc.Feedback(ctx, tutor.Request{
				Grade:         "3",
				Subject:       "Math",
				Question:      "What is 6 x 7?",
				StudentAnswer: "42",
				CorrectAnswer: "42",
			})

			convey.Convey("Then the deterministic fallback answers", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(text, convey.ShouldContainSubstring, "Great job!")
			})
		})

		convey.Convey("When stats are requested", func() {
			stats := svc.GetStats()

			convey.Convey("Then counters cover the store and queue", func() {
				convey.So(stats["started"], convey.ShouldBeTrue)
				convey.So(stats["totalEvents"], convey.ShouldEqual, 6)
				convey.So(stats["totalProfiles"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the calendar is queried", func() {
			entries := svc.CalendarRange(ctx, schoolDay.AddDate(0, 0, -1), schoolDay.AddDate(0, 0, 20))

			convey.Convey("Then listed days come back in order", func() {
				convey.So(len(entries), convey.ShouldBeGreaterThan, 0)
				convey.So(svc.IsInstructional(ctx, schoolDay), convey.ShouldBeTrue)
			})
		})
	})
}

func TestService_SQLiteBackend(t *testing.T) {
	convey.Convey("Given a service on the sqlite backend", t, func() {
		path := t.TempDir() + "/primer.db"
		svc, ctx := startService(t, service.WithStoreBackend(service.BackendSQLite, path))

		convey.Convey("When answers are submitted and aggregated", func() {
			for i := 0; i < 2; i++ {
				_, err := svc.SubmitAnswer(ctx, answer("s-1", i, true, model.ModalityAuditory))
				convey.So(err, convey.ShouldBeNil)
			}
			_, err := svc.RunAggregation(ctx)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the profile is served from sqlite", func() {
				convey.So(waitForSample(ctx, svc, "s-1", 2), convey.ShouldBeTrue)

				res, err := svc.LearningStyle(ctx, "s-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Dominant, convey.ShouldEqual, model.ModalityAuditory)
			})
		})
	})
}

func TestService_UnknownBackend(t *testing.T) {
	convey.Convey("Given a service configured with a bogus backend", t, func() {
		svc := service.New(service.WithStoreBackend("etcd", ""))

		convey.Convey("When it starts", func() {
			err := svc.Start(context.Background())

			convey.Convey("Then startup fails", func() {
				convey.So(errors.Is(err, service.ErrUnknownBackend), convey.ShouldBeTrue)
			})
		})
	})
}
