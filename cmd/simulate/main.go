package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/edlane/primer/internal/simulate"
)

// Default configuration constants.
const (
	defaultNumStudents       = 20
	defaultAnswersPerStudent = 50
	defaultWorkers           = 2 // multiplier for runtime.NumCPU()
	defaultTimeout           = 30 * time.Second
	defaultRunTimeout        = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		students   = flag.Int("students", defaultNumStudents, "Number of students to simulate")
		answers    = flag.Int("answers", defaultAnswersPerStudent, "Number of answers per student")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Optional JSON file for the generated answer corpus")
		logFile    = flag.String("log", "", "Log file for simulation output (default: simulate_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Setup logging
	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:           *baseURL,
		NumStudents:       *students,
		AnswersPerStudent: *answers,
		Workers:           *workers,
		Timeout:           *timeout,
		OutputFile:        *outputFile,
		LogFile:           *logFile,
		Verbose:           *verbose,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
