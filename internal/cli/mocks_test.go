package cli

// ---------------------------------------------------------------------------
// Mock factories and domain objects for cli tests.
//
// Each mock records its calls under a mutex and optionally delegates to a
// configurable function field. Zero values behave like a healthy pipeline:
// extraction writes a tiny audio file, transcription returns fixed text,
// and the chat probe answers the ping.
// ---------------------------------------------------------------------------

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/batch"
	"github.com/joselrodrigues/audiototext/internal/transcribe"
)

// testMocks bundles every mock an Env needs.
type testMocks struct {
	extractor    *mockExtractor
	extractors   *mockExtractorFactory
	chunkers     *mockChunkerFactory
	transcriber  *mockTranscriber
	transcribers *mockTranscriberFactory
	chat         *mockChatFactory
}

func newTestMocks() *testMocks {
	extractor := &mockExtractor{}
	transcriber := &mockTranscriber{}
	return &testMocks{
		extractor:    extractor,
		extractors:   &mockExtractorFactory{extractor: extractor},
		chunkers:     &mockChunkerFactory{},
		transcriber:  transcriber,
		transcribers: &mockTranscriberFactory{transcriber: transcriber},
		chat:         &mockChatFactory{},
	}
}

// --- ExtractorFactory ---

type mockExtractorFactory struct {
	// NewExtractorFunc overrides the default behavior when set.
	NewExtractorFunc func(ffmpegPath string) (batch.Extractor, error)

	extractor *mockExtractor

	mu    sync.Mutex
	paths []string
}

func (m *mockExtractorFactory) NewExtractor(ffmpegPath string) (batch.Extractor, error) {
	m.mu.Lock()
	m.paths = append(m.paths, ffmpegPath)
	m.mu.Unlock()

	if m.NewExtractorFunc != nil {
		return m.NewExtractorFunc(ffmpegPath)
	}
	return m.extractor, nil
}

// FFmpegPaths returns the ffmpeg paths the factory was given.
func (m *mockExtractorFactory) FFmpegPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// mockExtractor writes a tiny fake audio file. Failures are configured
// per video basename.
type mockExtractor struct {
	mu    sync.Mutex
	errs  map[string]error
	calls []string
}

func (m *mockExtractor) Extract(_ context.Context, videoPath, audioPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, filepath.Base(videoPath))
	if err := m.errs[filepath.Base(videoPath)]; err != nil {
		return err
	}
	return os.WriteFile(audioPath, []byte("RIFF fake audio"), 0o644)
}

// FailOn makes extraction fail for the given video basename.
func (m *mockExtractor) FailOn(base string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs == nil {
		m.errs = make(map[string]error)
	}
	m.errs[base] = err
}

// ExtractCalls returns the basenames of the videos extracted so far.
func (m *mockExtractor) ExtractCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// --- ChunkerFactory ---

type mockChunkerFactory struct {
	mu    sync.Mutex
	sizes []float64
}

func (m *mockChunkerFactory) NewChunker(maxSizeMB float64, _ audio.ProgressFunc) audio.Chunker {
	m.mu.Lock()
	m.sizes = append(m.sizes, maxSizeMB)
	m.mu.Unlock()
	return noopChunker{}
}

// Sizes returns the chunk size limits the factory was given.
func (m *mockChunkerFactory) Sizes() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.sizes...)
}

// noopChunker never splits. The fake audio files are far below any
// realistic size limit, so the chunk path stays cold in cli tests.
type noopChunker struct{}

func (noopChunker) Chunk(context.Context, string, string) ([]audio.Chunk, error) {
	return nil, nil
}

// --- TranscriberFactory ---

type mockTranscriberFactory struct {
	transcriber transcribe.Transcriber

	mu       sync.Mutex
	baseURLs []string
	apiKeys  []string
}

func (m *mockTranscriberFactory) NewTranscriber(baseURL, apiKey string) transcribe.Transcriber {
	m.mu.Lock()
	m.baseURLs = append(m.baseURLs, baseURL)
	m.apiKeys = append(m.apiKeys, apiKey)
	m.mu.Unlock()
	return m.transcriber
}

// Gateways returns the base URLs the factory was given.
func (m *mockTranscriberFactory) Gateways() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.baseURLs...)
}

// APIKeys returns the API keys the factory was given.
func (m *mockTranscriberFactory) APIKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.apiKeys...)
}

// mockTranscriber returns fixed text derived from the audio filename.
// onCall, when set, runs before each transcription; tests use it to
// cancel contexts mid-run.
type mockTranscriber struct {
	mu     sync.Mutex
	err    error
	onCall func()
	calls  []string
}

func (m *mockTranscriber) Transcribe(_ context.Context, audioPath string) (transcribe.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, filepath.Base(audioPath))
	err := m.err
	hook := m.onCall
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return transcribe.Result{}, err
	}
	return transcribe.Result{Text: "text from " + filepath.Base(audioPath), Language: "en"}, nil
}

// SetOnCall installs a hook that runs before each transcription.
func (m *mockTranscriber) SetOnCall(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCall = fn
}

// TranscribeCalls returns the audio basenames transcribed so far.
func (m *mockTranscriber) TranscribeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// --- ChatFactory ---

// mockChatFactory records the clients it builds and the requests they
// serve. CreateFunc overrides the default canned reply.
type mockChatFactory struct {
	CreateFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

	mu       sync.Mutex
	baseURLs []string
	apiKeys  []string
	requests []openai.ChatCompletionRequest
}

func (m *mockChatFactory) NewChatCompleter(baseURL, apiKey string) ChatCompleter {
	m.mu.Lock()
	m.baseURLs = append(m.baseURLs, baseURL)
	m.apiKeys = append(m.apiKeys, apiKey)
	m.mu.Unlock()

	return chatCompleterFunc(func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		m.mu.Lock()
		m.requests = append(m.requests, req)
		fn := m.CreateFunc
		m.mu.Unlock()

		if fn != nil {
			return fn(ctx, req)
		}
		return openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "Hello! How can I help you?"}},
			},
		}, nil
	})
}

// Gateways returns the base URLs the factory was given.
func (m *mockChatFactory) Gateways() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.baseURLs...)
}

// Requests returns the chat requests served so far.
func (m *mockChatFactory) Requests() []openai.ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), m.requests...)
}

// chatCompleterFunc adapts a function to the ChatCompleter interface.
type chatCompleterFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

func (f chatCompleterFunc) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return f(ctx, req)
}
