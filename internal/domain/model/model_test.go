package model_test

import (
	"testing"
	"time"

	"github.com/edlane/primer/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseModality(t *testing.T) {
	convey.Convey("Given modality tags from various producers", t, func() {
		cases := map[string]model.Modality{
			"visual":      model.ModalityVisual,
			"Visual":      model.ModalityVisual,
			"auditory":    model.ModalityAuditory,
			"audio":       model.ModalityAuditory,
			"kinesthetic": model.ModalityKinesthetic,
			"hands-on":    model.ModalityKinesthetic,
			"hands_on":    model.ModalityKinesthetic,
		}
		for in, want := range cases {
			got, ok := model.ParseModality(in)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(got, convey.ShouldEqual, want)
		}

		convey.Convey("Then unknown tags are rejected", func() {
			_, ok := model.ParseModality("telepathic")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestAnswerEvent_Validate(t *testing.T) {
	convey.Convey("Given a well formed answer event", t, func() {
		ev := model.AnswerEvent{
			EventID:    "e-1",
			StudentID:  "s-1",
			QuestionID: "q-1",
			Subject:    "Math",
			Correct:    true,
			LatencyMS:  450,
			Modality:   model.ModalityVisual,
			TS:         time.Now(),
		}
		convey.So(ev.Validate(), convey.ShouldBeNil)

		convey.Convey("Then missing fields are rejected", func() {
			broken := ev
			broken.StudentID = ""
			convey.So(broken.Validate(), convey.ShouldNotBeNil)

			broken = ev
			broken.QuestionID = " "
			convey.So(broken.Validate(), convey.ShouldNotBeNil)

			broken = ev
			broken.TS = time.Time{}
			convey.So(broken.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then negative latency is rejected", func() {
			broken := ev
			broken.LatencyMS = -1
			convey.So(broken.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then an unknown modality is rejected", func() {
			broken := ev
			broken.Modality = "osmosis"
			convey.So(broken.Validate(), convey.ShouldNotBeNil)
		})
	})
}

func TestStudentProfile_Clone(t *testing.T) {
	convey.Convey("Given a populated profile", t, func() {
		p := model.NewStudentProfile("s-1")
		p.Subjects["Math"] = model.SubjectStats{Correct: 3, Total: 4, Accuracy: 0.75}
		p.ModalityCorrect[model.ModalityVisual] = 3
		p.ModalitySeen[model.ModalityVisual] = 4
		p.Style[model.ModalityVisual] = 0.5

		clone := p.Clone()

		convey.Convey("Then mutating the clone leaves the original intact", func() {
			clone.Subjects["Math"] = model.SubjectStats{Correct: 0, Total: 1}
			clone.ModalityCorrect[model.ModalityVisual] = 99
			clone.Style[model.ModalityVisual] = 0.0

			convey.So(p.Subjects["Math"].Correct, convey.ShouldEqual, 3)
			convey.So(p.ModalityCorrect[model.ModalityVisual], convey.ShouldEqual, 3)
			convey.So(p.Style[model.ModalityVisual], convey.ShouldEqual, 0.5)
		})
	})
}
