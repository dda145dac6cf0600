package simulate

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/edlane/primer/pkg/logger"
)

// Modality and subject pools for synthetic answers.
var (
	modalities = []string{"visual", "auditory", "kinesthetic"}
	subjects   = []string{"math", "reading", "science"}
)

// Probability constants for the biased answer distribution.
const (
	randomDivisor = 1000000
	// matchAccuracy is how often a student answers correctly in their
	// preferred modality; offAccuracy covers the rest. The gap is what the
	// classifier should recover.
	matchAccuracy = 0.85
	offAccuracy   = 0.45
	minLatencyMS  = 500
	latencyJitter = 4500
)

// student is one synthetic learner with a preferred modality.
type student struct {
	id   string
	bias string
}

// randomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomDivisor))
	return float64(n.Int64()) / float64(randomDivisor)
}

func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateStudents creates students with a rotating modality bias so every
// modality appears in the cohort.
func generateStudents(n int) []student {
	out := make([]student, n)
	for i := 0; i < n; i++ {
		out[i] = student{
			id:   uuid.New().String(),
			bias: modalities[i%len(modalities)],
		}
	}
	return out
}

// generateAnswers creates the full answer set: each student answers across
// all modalities, but answers correctly more often in their preferred one.
func generateAnswers(ctx context.Context, config *Config, stats *Stats) ([]student, []Answer, error) {
	logger.Get().Info(ctx, "generating biased answer traffic",
		logger.Int("students", config.NumStudents),
		logger.Int("answersPerStudent", config.AnswersPerStudent),
	)

	students := generateStudents(config.NumStudents)
	answers := make([]Answer, 0, config.NumStudents*config.AnswersPerStudent)

	base := time.Now().UTC().Add(-time.Duration(config.AnswersPerStudent) * time.Minute)
	for _, st := range students {
		for i := 0; i < config.AnswersPerStudent; i++ {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			default:
			}
			answers = append(answers, generateSingleAnswer(st, i, base))
		}
	}

	stats.AnswersGenerated = len(answers)
	logger.Get().Info(ctx, "generated answers successfully", logger.Int("count", len(answers)))
	return students, answers, nil
}

// generateSingleAnswer creates one answer for the student's i-th question.
func generateSingleAnswer(st student, i int, base time.Time) Answer {
	modality := modalities[randomIndex(len(modalities))]

	accuracy := offAccuracy
	if modality == st.bias {
		accuracy = matchAccuracy
	}

	return Answer{
		EventID:    uuid.New().String(),
		StudentID:  st.id,
		QuestionID: "q-" + strconv.Itoa(i),
		Subject:    subjects[randomIndex(len(subjects))],
		Correct:    randomFloat() < accuracy,
		LatencyMS:  int64(minLatencyMS + randomIndex(latencyJitter)),
		Modality:   modality,
		TS:         base.Add(time.Duration(i) * time.Second).Format(time.RFC3339),
	}
}
