package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Run executes the full simulation: generate a biased answer corpus,
// submit it, trigger an aggregation cycle and verify the inferred
// learning styles.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	log.Printf("starting simulation: students=%d answers_per_student=%d workers=%d url=%s",
		config.NumStudents, config.AnswersPerStudent, config.Workers, config.BaseURL)

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	students, answers, err := generateAnswers(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("answer generation failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveAnswersToFile(config.OutputFile, answers); err != nil {
			log.Printf("warning: failed to save answers to file: %v", err)
		}
	}

	if err := submitAnswers(ctx, config, answers, stats); err != nil {
		return fmt.Errorf("answer submission failed: %w", err)
	}

	if err := triggerAggregation(ctx, config); err != nil {
		return fmt.Errorf("aggregation trigger failed: %w", err)
	}

	if err := verifyStyles(ctx, config, students, stats); err != nil {
		return fmt.Errorf("style verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(config, stats)
	return nil
}

// checkServiceHealth verifies the target service responds before the
// simulation starts pushing load at it.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to reach service at %s: %w", config.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check returned status: %d", resp.StatusCode)
	}

	log.Printf("service health check passed: %s", config.BaseURL)
	return nil
}

// saveAnswersToFile writes the generated corpus as JSON for replay.
func saveAnswersToFile(filename string, answers []Answer) error {
	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write answers file: %w", err)
	}

	log.Printf("saved %d answers to %s", len(answers), filename)
	return nil
}

func displayFinalStats(config *Config, stats *Stats) {
	rate := float64(stats.AnswersSubmitted) / stats.Duration.Seconds()

	log.Println("=== simulation summary ===")
	log.Printf("duration:          %s", stats.Duration.Round(time.Millisecond))
	log.Printf("answers generated: %d", stats.AnswersGenerated)
	log.Printf("answers submitted: %d (%.1f/s)", stats.AnswersSubmitted, rate)
	log.Printf("answers accepted:  %d", stats.AnswersAccepted)
	log.Printf("answers duplicate: %d", stats.AnswersDuplicate)
	log.Printf("answers failed:    %d", stats.AnswersFailed)
	log.Printf("styles retrieved:  %d / %d", stats.StylesRetrieved, config.NumStudents)
	log.Printf("styles matched:    %d / %d", stats.StylesMatched, stats.StylesRetrieved)

	if stats.AnswersFailed > 0 {
		log.Printf("warning: %d answers failed to submit", stats.AnswersFailed)
	}
	if stats.StylesRetrieved > 0 && stats.StylesMatched < stats.StylesRetrieved {
		log.Printf("warning: %d students ended with an unexpected dominant style",
			stats.StylesRetrieved-stats.StylesMatched)
	}
}
