package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitAnswers submits answers concurrently using a worker pool.
func submitAnswers(ctx context.Context, config *Config, answers []Answer, stats *Stats) error {
	log.Printf("submitting %d answers with %d workers...", len(answers), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/answers"

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	answerChan := make(chan Answer, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ans := range answerChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&submitted, 1)
				switch submitSingleAnswer(ctx, client, url, ans) {
				case "accepted":
					atomic.AddInt64(&accepted, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(answerChan)
		for _, ans := range answers {
			select {
			case <-ctx.Done():
				return
			case answerChan <- ans:
			}
		}
	}()

	wg.Wait()

	stats.AnswersSubmitted = int(atomic.LoadInt64(&submitted))
	stats.AnswersAccepted = int(atomic.LoadInt64(&accepted))
	stats.AnswersDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.AnswersFailed = int(atomic.LoadInt64(&failed))

	log.Printf("answer submission completed: accepted=%d duplicate=%d failed=%d",
		stats.AnswersAccepted, stats.AnswersDuplicate, stats.AnswersFailed)
	return nil
}

// submitSingleAnswer submits one answer and classifies the outcome.
func submitSingleAnswer(ctx context.Context, client *HTTPClient, url string, ans Answer) string {
	resp, err := client.Post(ctx, url, ans)
	if err != nil {
		return "failed"
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "accepted"
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}

// triggerAggregation asks the service to run one aggregation cycle.
func triggerAggregation(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Post(ctx, config.BaseURL+"/aggregation/run", struct{}{})
	if err != nil {
		return fmt.Errorf("failed to trigger aggregation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("aggregation trigger failed with status: %d", resp.StatusCode)
	}
	return nil
}

// fetchStyle retrieves the learning style for one student.
func fetchStyle(ctx context.Context, client *HTTPClient, baseURL, studentID string) (StyleResponse, error) {
	resp, err := client.Get(ctx, baseURL+"/learning-style/"+studentID)
	if err != nil {
		return StyleResponse{}, fmt.Errorf("failed to fetch style: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return StyleResponse{}, fmt.Errorf("failed to read style response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return StyleResponse{}, fmt.Errorf("style fetch failed with status: %d", resp.StatusCode)
	}

	var style StyleResponse
	if err := json.Unmarshal(body, &style); err != nil {
		return StyleResponse{}, fmt.Errorf("failed to parse style response: %w", err)
	}
	return style, nil
}
