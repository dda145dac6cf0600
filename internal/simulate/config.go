package simulate

import "time"

// Config holds configuration for the answer-traffic simulation.
type Config struct {
	BaseURL           string        // Base URL of the service
	NumStudents       int           // Number of synthetic students
	AnswersPerStudent int           // Answers submitted per student
	Workers           int           // Number of concurrent submitters
	Timeout           time.Duration // HTTP request timeout
	OutputFile        string        // Output file for generated answers
	LogFile           string        // Log file for simulation output
	Verbose           bool          // Enable verbose logging
}

// Answer is one synthetic answer event submitted to the service.
type Answer struct {
	EventID    string `json:"eventId"`
	StudentID  string `json:"studentId"`
	QuestionID string `json:"questionId"`
	Subject    string `json:"subject"`
	Correct    bool   `json:"correct"`
	LatencyMS  int64  `json:"latencyMs"`
	Modality   string `json:"modality"`
	TS         string `json:"ts"`
}

// AckResponse is the response from answer submission.
type AckResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"eventId"`
	Duplicate bool   `json:"duplicate"`
}

// StyleResponse is the response from the learning-style endpoint.
type StyleResponse struct {
	StudentID     string             `json:"studentId"`
	Style         map[string]float64 `json:"style"`
	DominantStyle string             `json:"dominantStyle"`
	SampleSize    int                `json:"sampleSize"`
}

// Stats holds simulation statistics.
type Stats struct {
	AnswersGenerated int
	AnswersSubmitted int
	AnswersAccepted  int
	AnswersDuplicate int
	AnswersFailed    int
	StylesRetrieved  int
	StylesMatched    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
