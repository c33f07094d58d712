package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of one video in a run.
type Status string

// Video outcomes recorded in a run report.
const (
	StatusSucceeded   Status = "succeeded"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
	StatusInterrupted Status = "interrupted"
)

// runsDirName is where run reports land inside the transcripts folder.
const runsDirName = ".runs"

// VideoResult records the outcome of a single video.
type VideoResult struct {
	Video      string `json:"video"`
	Status     Status `json:"status"`
	Transcript string `json:"transcript,omitempty"`
	Subtitles  string `json:"subtitles,omitempty"`
	Language   string `json:"language,omitempty"`

	// Elapsed is the transcription time in seconds, excluding audio
	// extraction and chunking.
	Elapsed float64 `json:"elapsed_seconds,omitempty"`

	Error string `json:"error,omitempty"`
}

// Report aggregates the outcome of a whole batch run.
type Report struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Interrupted int           `json:"interrupted"`
	Videos      []VideoResult `json:"videos"`
}

// NewReport starts an empty report stamped with the run start time.
func NewReport(now time.Time) *Report {
	return &Report{ID: uuid.NewString(), StartedAt: now}
}

// Add records one video outcome and bumps the matching counter.
func (r *Report) Add(res VideoResult) {
	r.Videos = append(r.Videos, res)
	r.Total++
	switch res.Status {
	case StatusSucceeded:
		r.Succeeded++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	case StatusInterrupted:
		r.Interrupted++
	}
}

// Save writes the report as JSON under dir/.runs and returns the file path.
func (r *Report) Save(dir string) (string, error) {
	runsDir := filepath.Join(dir, runsDirName)
	if err := os.MkdirAll(runsDir, 0750); err != nil {
		return "", fmt.Errorf("create runs directory: %w", err)
	}

	name := fmt.Sprintf("run_%s_%s.json", r.StartedAt.Format("20060102-150405"), shortID(r.ID))
	path := filepath.Join(runsDir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// shortID keeps the first UUID group so report filenames stay readable.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// Summary renders the end-of-run block printed after a batch completes.
func (r *Report) Summary(transcriptsDir, outputDir string) string {
	rule := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nSUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Total videos: %d\n", r.Total)
	fmt.Fprintf(&b, "Successful: %d\n", r.Succeeded)
	fmt.Fprintf(&b, "Failed: %d\n", r.Failed)
	fmt.Fprintf(&b, "Skipped: %d\n", r.Skipped)
	if r.Interrupted > 0 {
		fmt.Fprintf(&b, "Interrupted: %d\n", r.Interrupted)
	}
	fmt.Fprintf(&b, "\nTranscriptions saved in: %s/\n", transcriptsDir)
	fmt.Fprintf(&b, "Audio files saved in: %s/\n", outputDir)
	return b.String()
}
