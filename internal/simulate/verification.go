package simulate

import (
	"context"
	"log"
	"time"
)

const (
	stylePollInterval = 500 * time.Millisecond
	stylePollTimeout  = 30 * time.Second
)

// verifyStyles fetches the inferred learning style for every simulated
// student and checks the dominant modality against the bias the
// generator used for that student.
func verifyStyles(ctx context.Context, config *Config, students []student, stats *Stats) error {
	log.Printf("verifying learning styles for %d students...", len(students))

	client := newHTTPClient(config.Timeout)
	matched := 0
	retrieved := 0

	for _, st := range students {
		style, err := waitForStyle(ctx, client, config.BaseURL, st.id)
		if err != nil {
			log.Printf("verification: student %s: %v", st.id, err)
			continue
		}
		retrieved++

		if style.DominantStyle == st.bias {
			matched++
			if config.Verbose {
				log.Printf("verification: student %s dominant=%s (expected %s) samples=%d OK",
					st.id, style.DominantStyle, st.bias, style.SampleSize)
			}
		} else {
			log.Printf("verification: student %s dominant=%s expected=%s samples=%d MISMATCH",
				st.id, style.DominantStyle, st.bias, style.SampleSize)
		}
	}

	stats.StylesRetrieved = retrieved
	stats.StylesMatched = matched

	log.Printf("verification completed: retrieved=%d matched=%d of %d students",
		retrieved, matched, len(students))
	return nil
}

// waitForStyle polls until the student's profile reflects at least one
// aggregated answer or the poll window expires. Aggregation runs
// asynchronously so the first fetch after triggering a cycle may still
// see the uniform prior.
func waitForStyle(ctx context.Context, client *HTTPClient, baseURL, studentID string) (StyleResponse, error) {
	deadline := time.Now().Add(stylePollTimeout)
	var last StyleResponse
	var lastErr error

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return StyleResponse{}, ctx.Err()
		default:
		}

		last, lastErr = fetchStyle(ctx, client, baseURL, studentID)
		if lastErr == nil && last.SampleSize > 0 {
			return last, nil
		}
		time.Sleep(stylePollInterval)
	}

	if lastErr != nil {
		return StyleResponse{}, lastErr
	}
	return last, nil
}
