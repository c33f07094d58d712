package cli

// ---------------------------------------------------------------------------
// Shared test helpers for the cli package.
//
// Notes:
//   - Commands run against an Env wired to the mocks in mocks_test.go and a
//     temp folder layout, so no test touches ffmpeg, the network, or the
//     process environment.
//   - Tests are white-box (package cli) to reach runBatch, runWatch, and
//     runDoctor directly with injected contexts and durations.
// ---------------------------------------------------------------------------

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joselrodrigues/audiototext/internal/config"
)

// testNow is the fixed clock every test Env runs on.
var testNow = time.Date(2024, 3, 12, 15, 4, 5, 0, time.UTC)

// fakeFFmpegPath is what the stubbed LookPath resolves ffmpeg to.
const fakeFFmpegPath = "/usr/bin/ffmpeg"

// syncBuffer is a bytes.Buffer safe for concurrent writers. Watch tests
// read it while the watcher goroutine is still printing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testSetup bundles an Env, its mocks, and the temp folder layout.
type testSetup struct {
	env    *Env
	mocks  *testMocks
	stdout *syncBuffer
	stderr *syncBuffer

	// vars backs env.Getenv and can be edited before a command runs.
	vars map[string]string

	input       string
	output      string
	transcripts string
}

// newTestSetup builds a fully mocked Env over a temp directory tree.
func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	dir := t.TempDir()
	s := &testSetup{
		mocks:       newTestMocks(),
		stdout:      &syncBuffer{},
		stderr:      &syncBuffer{},
		input:       filepath.Join(dir, "input_videos"),
		output:      filepath.Join(dir, "output_audio"),
		transcripts: filepath.Join(dir, "transcripts"),
	}
	s.vars = map[string]string{
		config.EnvBaseURL:           "https://gateway.example",
		config.EnvAPIKey:            "sk-test",
		config.EnvInputFolder:       s.input,
		config.EnvOutputFolder:      s.output,
		config.EnvTranscriptsFolder: s.transcripts,
	}

	// The input folder exists up front so tests can drop videos in
	// before a command runs EnsureDirs.
	if err := os.MkdirAll(s.input, 0o750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	s.env = &Env{
		Stdout:             s.stdout,
		Stderr:             s.stderr,
		Stdin:              strings.NewReader(""),
		Getenv:             func(key string) string { return s.vars[key] },
		Now:                func() time.Time { return testNow },
		LookPath:           func(string) (string, error) { return fakeFFmpegPath, nil },
		ExtractorFactory:   s.mocks.extractors,
		ChunkerFactory:     s.mocks.chunkers,
		TranscriberFactory: s.mocks.transcribers,
		ChatFactory:        s.mocks.chat,
	}
	return s
}

// writeVideo creates an empty video file under the input folder and
// returns its path. rel may contain subdirectories.
func (s *testSetup) writeVideo(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(s.input, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("fake video"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// writeFile creates a file at path with the given content, making
// parent directories as needed.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, within time.Duration, what string) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
