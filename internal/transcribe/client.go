// Package transcribe sends audio to the transcription gateway and
// assembles chunked uploads into one transcript with checkpointed
// progress.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joselrodrigues/audiototext/internal/apierr"
	"github.com/joselrodrigues/audiototext/internal/lang"
)

// Gateway transcription parameters. The gateway serves a fixed whisper
// model behind an OpenAI-compatible route.
const (
	// ModelWhisper is the transcription model the gateway serves.
	ModelWhisper = "whisper"

	// ResponseFormatText asks for a plain text transcript. Some gateways
	// reply with JSON anyway; parseResult handles both.
	ResponseFormatText = "text"

	// transcriptionPath is the route below the configured base URL.
	transcriptionPath = "/audio/transcriptions"

	// defaultTimeout bounds one upload-and-transcribe round trip.
	defaultTimeout = 5 * time.Minute

	// errorBodyLimit caps how much of a gateway error body is quoted back.
	errorBodyLimit = 200
)

// credentialRe matches credential-looking substrings in error bodies so
// they are never echoed into terminal output or run reports.
var credentialRe = regexp.MustCompile(`(?i)(api[_-]?key|token|bearer|authorization)[^\s]*`)

// quoteEscaper escapes filenames for multipart Content-Disposition headers.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Result is one transcription response.
type Result struct {
	Text     string
	Language string
}

// Transcriber converts a single audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface compliance check.
var _ Transcriber = (*Client)(nil)

// Client transcribes audio files through the gateway's multipart
// endpoint. It performs no internal retries: a failed upload fails the
// chunk, and the chunk pipeline decides what survives.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(c httpDoer) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a Client for the given gateway. baseURL is the API
// root without the route, e.g. "https://gateway.example/v1".
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	cl := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Transcribe uploads one audio file and returns its transcription.
func (cl *Client) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	body, contentType, err := cl.buildForm(audioPath)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.baseURL+transcriptionPath, body)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+cl.apiKey)

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("transcription request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Result{}, apierr.FromStatus(resp.StatusCode, scrub(respBody))
	}

	return parseResult(respBody), nil
}

// buildForm assembles the multipart body: the audio file plus the fixed
// model and response format fields.
func (cl *Client) buildForm(audioPath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(audioPath) // #nosec G304 -- audioPath comes from the pipeline's own layout
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreatePart(wavPartHeader(filepath.Base(audioPath)))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy audio to form: %w", err)
	}
	if err := writer.WriteField("model", ModelWhisper); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", ResponseFormatText); err != nil {
		return nil, "", fmt.Errorf("write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// wavPartHeader builds the file part header. CreateFormFile would label
// the part application/octet-stream; the gateway wants audio/wav.
func wavPartHeader(filename string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", "audio/wav")
	return h
}

// scrub truncates an error body and redacts credential-looking
// substrings before the text can reach output or reports.
func scrub(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "No error message"
	}
	if len(msg) > errorBodyLimit {
		msg = msg[:errorBodyLimit]
	}
	return credentialRe.ReplaceAllString(msg, "[REDACTED]")
}

// parseResult decodes a successful response. The usual shape is a JSON
// object with text and language fields, but gateways that honor
// response_format=text reply with the bare transcript.
func parseResult(body []byte) Result {
	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		language := lang.Unknown
		if payload.Language != "" {
			language = lang.Normalize(payload.Language)
		}
		return Result{Text: payload.Text, Language: language}
	}

	var value any
	if err := json.Unmarshal(body, &value); err == nil {
		return Result{Text: fmt.Sprint(value), Language: lang.Unknown}
	}

	return Result{Text: strings.TrimSpace(string(body)), Language: lang.Unknown}
}
