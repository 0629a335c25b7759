package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/phrazzld/triage-api/internal/config"
	"github.com/phrazzld/triage-api/internal/domain"
	"google.golang.org/genai"
)

// generativeClient is the narrow slice of the genai SDK the engine calls.
// Tests substitute a stub so no network traffic happens.
type generativeClient interface {
	generateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// genaiClient adapts *genai.Client to the generativeClient seam.
type genaiClient struct {
	client *genai.Client
}

func (c *genaiClient) generateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// Engine implements the pipeline's decision engine against the Gemini API.
// All operations are stateless; one Engine is shared across runs.
type Engine struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client generativeClient

	// model is the name of the Gemini model to use
	model string
}

// NewEngine creates a decision engine backed by the Gemini API.
func NewEngine(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Engine, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &Engine{
		logger: logger.With("component", "gemini_engine"),
		config: cfg,
		client: &genaiClient{client: client},
		model:  cfg.ModelName,
	}, nil
}

// Summarize produces a JSON summary of the email. The raw JSON is returned
// unchanged: it is shown to the operator as checkpoint context and fed to
// DecideResponse.
func (e *Engine) Summarize(ctx context.Context, emailContent string) (string, error) {
	text, err := e.generate(ctx, opSummarize, promptData{EmailContent: emailContent}, true)
	if err != nil {
		return "", err
	}

	var summary emailSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return "", fmt.Errorf("%w: failed to parse summary JSON: %v", ErrInvalidResponse, err)
	}

	return text, nil
}

// DecideResponse decides from the summary whether the email needs a reply.
func (e *Engine) DecideResponse(ctx context.Context, summary string) (domain.ResponseDecision, error) {
	text, err := e.generate(ctx, opNeedsResponse, promptData{Summary: summary}, true)
	if err != nil {
		return "", err
	}

	var out needsResponseEnvelope
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return "", fmt.Errorf("%w: failed to parse needs-response JSON: %v", ErrInvalidResponse, err)
	}

	switch strings.ToLower(strings.TrimSpace(out.NeedsResponse)) {
	case string(domain.ResponseDecisionRespond):
		return domain.ResponseDecisionRespond, nil
	case string(domain.ResponseDecisionNoResponse):
		return domain.ResponseDecisionNoResponse, nil
	}

	return "", fmt.Errorf("%w: unexpected needs_response value %q", ErrInvalidResponse, out.NeedsResponse)
}

// Categorize buckets an email that needs a reply. Decline synonyms collapse
// to decline; any other non-empty category moves the thread forward rather
// than failing the run.
func (e *Engine) Categorize(ctx context.Context, emailContent string) (domain.Category, error) {
	text, err := e.generate(ctx, opCategorize, promptData{EmailContent: emailContent}, true)
	if err != nil {
		return "", err
	}

	var out decisionEnvelope
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return "", fmt.Errorf("%w: failed to parse category JSON: %v", ErrInvalidResponse, err)
	}

	decision := strings.ToLower(strings.TrimSpace(out.Decision))
	if decision == "" {
		return "", fmt.Errorf("%w: empty category decision", ErrInvalidResponse)
	}

	switch decision {
	case "decline", "reject", "refuse":
		return domain.CategoryDecline, nil
	}
	return domain.CategoryMoveForward, nil
}

// DecideMeeting decides whether the email is a meeting request.
func (e *Engine) DecideMeeting(ctx context.Context, emailContent string) (bool, error) {
	text, err := e.generate(ctx, opMeeting, promptData{EmailContent: emailContent}, true)
	if err != nil {
		return false, err
	}

	var out decisionEnvelope
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return false, fmt.Errorf("%w: failed to parse meeting decision JSON: %v", ErrInvalidResponse, err)
	}

	if strings.TrimSpace(out.Decision) == "" {
		return false, fmt.Errorf("%w: empty meeting decision", ErrInvalidResponse)
	}

	return domain.MeetingRequested(out.Decision), nil
}

// WriteReply drafts a reply body for an email that moves forward.
func (e *Engine) WriteReply(ctx context.Context, emailContent string) (string, error) {
	return e.write(ctx, opReply, emailContent)
}

// WriteDecline drafts a polite decline body.
func (e *Engine) WriteDecline(ctx context.Context, emailContent string) (string, error) {
	return e.write(ctx, opDecline, emailContent)
}

// WriteSchedule drafts a scheduling reply body for a meeting request.
func (e *Engine) WriteSchedule(ctx context.Context, emailContent string) (string, error) {
	return e.write(ctx, opSchedule, emailContent)
}

func (e *Engine) write(ctx context.Context, op string, emailContent string) (string, error) {
	text, err := e.generate(ctx, op, promptData{EmailContent: emailContent}, false)
	if err != nil {
		return "", err
	}

	body := strings.TrimSpace(text)
	if body == "" {
		return "", fmt.Errorf("%w: empty draft body", ErrInvalidResponse)
	}
	return body, nil
}

// generate renders the operation's prompt and calls the model. JSON
// operations get a strict response MIME type and a fence strip before
// parsing.
func (e *Engine) generate(ctx context.Context, op string, data promptData, wantJSON bool) (string, error) {
	if data.EmailContent == "" && data.Summary == "" {
		return "", ErrEmptyInput
	}

	prompt, err := renderPrompt(op, data)
	if err != nil {
		return "", err
	}

	text, err := e.generateWithRetry(ctx, op, prompt, wantJSON)
	if err != nil {
		return "", err
	}

	if wantJSON {
		text = stripJSONFence(text)
	}
	return text, nil
}

// generateWithRetry calls the Gemini API with exponential backoff for
// transient errors. Permanent errors (blocked content, malformed responses)
// are returned immediately without retrying.
func (e *Engine) generateWithRetry(ctx context.Context, op, prompt string, wantJSON bool) (string, error) {
	maxRetries := e.config.MaxRetries
	baseDelaySeconds := e.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		e.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		e.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	// Temperature zero keeps the decision operations deterministic enough
	// to parse reliably.
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
	}
	if wantJSON {
		genConfig.ResponseMIMEType = "application/json"
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1 // For logging (1-based)
		e.logger.DebugContext(ctx, "Making Gemini API call",
			"operation", op,
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, transient, err := e.callOnce(ctx, prompt, genConfig)
		if err == nil {
			e.logger.DebugContext(ctx, "Gemini API call successful",
				"operation", op,
				"attempt", attemptNum)
			return text, nil
		}

		e.logger.ErrorContext(ctx, "Gemini API call failed",
			"operation", op,
			"attempt", attemptNum,
			"error", err)

		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			e.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"operation", op,
				"max_retries", maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				ErrTransientFailure, maxRetries)
		}

		if !transient {
			return "", err
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		e.logger.InfoContext(ctx, "Retrying after delay",
			"operation", op,
			"attempt", attemptNum,
			"delay_seconds", delay.Seconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	return "", fmt.Errorf("%w: failed after %d attempts", ErrTransientFailure, attempt)
}

// callOnce performs a single API call and classifies its failure mode.
// API transport errors are transient; malformed or blocked responses are
// permanent.
func (e *Engine) callOnce(
	ctx context.Context,
	prompt string,
	genConfig *genai.GenerateContentConfig,
) (string, bool, error) {
	resp, err := e.client.generateContent(ctx, e.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", true, err
	}

	if resp == nil {
		return "", false, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", false, fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: content blocked by safety filters", ErrContentBlocked)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", false, fmt.Errorf("%w: empty text in response", ErrInvalidResponse)
	}

	return text.String(), false, nil
}

// stripJSONFence removes a markdown code fence around a JSON payload. The
// model occasionally fences JSON output even when asked for bare JSON.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
