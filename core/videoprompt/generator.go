// Package videoprompt turns a recording of a browser session into a task
// prompt that a browser-automation agent can follow.
//
// The video is sent inline to a Gemini model together with a fixed
// instruction. Failures never escape as panics or bare errors: every call
// yields a Result that carries either the prompt or a tagged *Error.
package videoprompt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/h2non/filetype"
	"google.golang.org/genai"

	"videoprompt/core/llm"
	"videoprompt/log"
)

// Sampling configuration sent with every request.
const (
	Temperature     float32 = 0.2
	TopP            float32 = 0.95
	TopK            float32 = 64
	MaxOutputTokens int32   = 2048
)

// Generator is safe for concurrent use; it holds no mutable state.
type Generator struct {
	provider      llm.Provider
	model         string
	apiKey        string
	maxVideoBytes int64
}

type Option func(*Generator)

// WithModel overrides llm.DefaultModel.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithAPIKey records the key so it can be scrubbed from error messages.
func WithAPIKey(apiKey string) Option {
	return func(g *Generator) {
		g.apiKey = apiKey
	}
}

// WithMaxVideoBytes rejects files larger than n bytes before reading them.
// Zero or less means no limit.
func WithMaxVideoBytes(n int64) Option {
	return func(g *Generator) {
		g.maxVideoBytes = n
	}
}

// New creates a Generator on top of provider. A nil provider is allowed and
// makes every call fail with KindMissingCredential.
func New(provider llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		model:    llm.DefaultModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromConfig builds the genai client from cfg. A missing API key is not an
// error here: it is logged and reported by each Generate call instead.
func NewFromConfig(ctx context.Context, cfg llm.Config, opts ...Option) (*Generator, error) {
	base := []Option{WithModel(cfg.ModelOrDefault()), WithAPIKey(cfg.APIKey)}

	client, err := llm.NewClient(ctx, cfg)
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Warn("GEMINI_API_KEY not found in environment variables")
		return New(nil, append(base, opts...)...), nil
	case err != nil:
		return nil, err
	}
	return New(client.Models, append(base, opts...)...), nil
}

// Model returns the Gemini model id requests are sent to.
func (g *Generator) Model() string { return g.model }

// GenerateTaskPrompt is Generate flattened to a string: the prompt, or an
// error message starting with "Error".
func (g *Generator) GenerateTaskPrompt(ctx context.Context, videoPath string) string {
	return g.Generate(ctx, videoPath).String()
}

// Generate uploads the video at videoPath and returns the task prompt the
// model wrote for it.
func (g *Generator) Generate(ctx context.Context, videoPath string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(generationError(fmt.Errorf("panic: %v", r), g.redact))
		}
		if res.OK() {
			log.Infof("Successfully generated prompt from video: %s", videoPath)
		} else {
			log.Errorf("Failed to generate prompt for %s: %s", videoPath, res.Err.Message)
		}
	}()

	info, err := os.Stat(videoPath)
	if err != nil || !info.Mode().IsRegular() {
		return failed(newError(KindFileNotFound, msgFileNotFound))
	}
	if !IsSupported(videoPath) {
		return failed(newError(KindUnsupportedFormat, msgUnsupportedFormat))
	}
	if g.provider == nil {
		return failed(newError(KindMissingCredential, msgMissingCredential))
	}
	if g.maxVideoBytes > 0 && info.Size() > g.maxVideoBytes {
		return failed(tooLargeError(info.Size(), g.maxVideoBytes))
	}

	if err := ctx.Err(); err != nil {
		return failed(generationError(err, g.redact))
	}
	data, err := os.ReadFile(videoPath)
	if err != nil {
		return failed(generationError(err, g.redact))
	}

	mimeType := MIMEType(videoPath)
	checkContainer(videoPath, mimeType, data)

	if err := ctx.Err(); err != nil {
		return failed(generationError(err, g.redact))
	}
	resp, err := g.provider.GenerateContent(ctx, g.model, buildContents(mimeType, data), generationConfig())
	if err != nil {
		return failed(generationError(err, g.redact))
	}

	text, extractErr := extractText(resp)
	if extractErr != nil {
		return failed(extractErr)
	}
	return Result{Prompt: text}
}

func (g *Generator) redact(msg string) string {
	return llm.RedactKey(msg, g.apiKey)
}

func buildContents(mimeType string, data []byte) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromText(Instruction),
		genai.NewPartFromBytes(data, mimeType),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(Temperature),
		TopP:            genai.Ptr(TopP),
		TopK:            genai.Ptr(TopK),
		MaxOutputTokens: MaxOutputTokens,
	}
}

// checkContainer compares the magic bytes with the extension. A mismatch
// is only logged; the extension decides the MIME type sent upstream.
func checkContainer(videoPath, mimeType string, data []byte) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		log.Debugf("could not sniff container of %s", videoPath)
		return
	}
	if kind.MIME.Value != mimeType {
		log.Warnf("%s looks like %s but is sent as %s", videoPath, kind.MIME.Value, mimeType)
	}
}
