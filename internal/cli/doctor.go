package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joselrodrigues/audiototext/internal/apierr"
	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/config"
)

// Endpoint probe parameters. The chat ping is the same smoke test one
// would run by hand: a tiny completion that proves auth, routing, and
// the model pool in one round trip.
const (
	pingModel   = "gpt-4o-mini"
	pingPrompt  = "Hello, this is a test"
	pingTimeout = 30 * time.Second
)

// checkResult is one line of the diagnostics report.
type checkResult struct {
	name   string
	detail string
	err    error
}

var errSkippedNoConfig = errors.New("skipped: configuration not loaded")

// DoctorCmd creates the doctor command.
// The env parameter provides injectable dependencies for testing.
func DoctorCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, folders, ffmpeg, and the gateway",
		Long: `Run the environment checks a batch depends on: configuration
variables, the folder structure, the ffmpeg binary, and a round trip
through the transcription gateway's chat endpoint.`,
		Example: `  audiototext doctor`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), env)
		},
	}
}

// runDoctor runs every check and prints one line per result.
func runDoctor(ctx context.Context, env *Env) error {
	fmt.Fprintf(env.Stdout, "AudioToText Diagnostics\n%s\n\n", strings.Repeat("=", 40))

	cfg, cfgErr := config.FromEnv(env.Getenv)

	checks := make([]checkResult, 4)
	checks[0] = checkConfig(cfg, cfgErr)

	// The remaining checks are independent; run them concurrently,
	// each writing its own slot.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { checks[1] = checkFolders(cfg, cfgErr); return nil })
	g.Go(func() error { checks[2] = checkFFmpeg(env); return nil })
	g.Go(func() error { checks[3] = checkEndpoint(gctx, env, cfg, cfgErr); return nil })
	_ = g.Wait()

	failed := 0
	for _, c := range checks {
		if c.err != nil {
			failed++
			fmt.Fprintf(env.Stdout, "FAIL  %-14s %v\n", c.name, c.err)
			continue
		}
		fmt.Fprintf(env.Stdout, "ok    %-14s %s\n", c.name, c.detail)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrChecksFailed, failed, len(checks))
	}
	fmt.Fprintf(env.Stdout, "\nAll checks passed! Your system should work correctly.\n")
	return nil
}

func checkConfig(cfg config.Config, cfgErr error) checkResult {
	if cfgErr != nil {
		return checkResult{name: "configuration", err: cfgErr}
	}
	return checkResult{name: "configuration", detail: "gateway " + cfg.BaseURL}
}

func checkFolders(cfg config.Config, cfgErr error) checkResult {
	if cfgErr != nil {
		return checkResult{name: "folders", err: errSkippedNoConfig}
	}
	if err := cfg.EnsureDirs(); err != nil {
		return checkResult{name: "folders", err: err}
	}
	detail := fmt.Sprintf("%s (%d transcript files)",
		strings.Join(cfg.Dirs(), ", "), countMarkdown(cfg.TranscriptsFolder))
	return checkResult{name: "folders", detail: detail}
}

// countMarkdown counts .md files under root, recursively. Unreadable
// entries are skipped rather than failing the check.
func countMarkdown(root string) int {
	n := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			n++
		}
		return nil
	})
	return n
}

func checkFFmpeg(env *Env) checkResult {
	path, err := env.LookPath("ffmpeg")
	if err != nil {
		return checkResult{
			name: "ffmpeg",
			err:  fmt.Errorf("%w: install ffmpeg and make sure it is on PATH", audio.ErrFFmpegNotFound),
		}
	}
	return checkResult{name: "ffmpeg", detail: path}
}

func checkEndpoint(ctx context.Context, env *Env, cfg config.Config, cfgErr error) checkResult {
	if cfgErr != nil {
		return checkResult{name: "endpoint", err: errSkippedNoConfig}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	client := env.ChatFactory.NewChatCompleter(cfg.BaseURL, cfg.APIKey)
	retry := apierr.RetryConfig{MaxRetries: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}

	resp, err := apierr.RetryWithBackoff(ctx, retry, func() (openai.ChatCompletionResponse, error) {
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     pingModel,
			MaxTokens: 10,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: pingPrompt},
			},
		})
		if err != nil {
			return openai.ChatCompletionResponse{}, classifyChatError(err)
		}
		return resp, nil
	})
	if err != nil {
		return checkResult{name: "endpoint", err: err}
	}

	detail := "chat ping succeeded"
	if len(resp.Choices) > 0 {
		detail = fmt.Sprintf("response: %q", strings.TrimSpace(resp.Choices[0].Message.Content))
	}
	return checkResult{name: "endpoint", detail: detail}
}

// classifyChatError maps client errors onto the shared gateway
// sentinels so the retry loop can tell transient from fatal.
func classifyChatError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierr.FromStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apierr.FromStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return err
}
