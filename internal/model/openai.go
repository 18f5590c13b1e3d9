package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
)

// ChatClient mirrors the subset of the OpenAI client used here so any
// OpenAI-compatible or local backend can be adapted, and tests can capture
// requests.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister is an optional capability used for availability preflight.
type ModelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider serves the Summarizer and Translator capabilities through an
// OpenAI-compatible chat endpoint, typically a local model server.
type OpenAIProvider struct {
	Client ChatClient
	Model  string
	// MaxInputChars, when positive, is reported through InputQuotaReporter.
	MaxInputChars int
}

var errNoChoices = errors.New("model returned no choices")

func (p *OpenAIProvider) Availability(ctx context.Context) (Availability, error) {
	if p.Client == nil || strings.TrimSpace(p.Model) == "" {
		return Unsupported, nil
	}
	lister, ok := p.Client.(ModelLister)
	if !ok {
		// No preflight possible; assume the configured endpoint is live.
		return Ready, nil
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return Unavailable, nil
	}
	for _, m := range models.Models {
		if m.ID == p.Model {
			return Ready, nil
		}
	}
	// Some backends pull models on first use.
	return NeedsDownload, nil
}

// InputQuota reports the configured maximum input size in characters.
func (p *OpenAIProvider) InputQuota() int { return p.MaxInputChars }

func (p *OpenAIProvider) Create(_ context.Context, cfg SummarizeConfig) (SummarizeSession, error) {
	if p.Client == nil || strings.TrimSpace(p.Model) == "" {
		return nil, errors.New("summarizer not configured")
	}
	if cfg.OnProgress != nil {
		// Chat backends have no observable download phase; report completion
		// so callers relying on the progress contract still converge.
		cfg.OnProgress(1)
	}
	return &chatSession{client: p.Client, model: p.Model, cfg: cfg}, nil
}

type chatSession struct {
	client ChatClient
	model  string
	cfg    SummarizeConfig
}

func (s *chatSession) Summarize(ctx context.Context, text string, extraContext string) (string, error) {
	system := summarizeSystemMessage(s.cfg.Verbosity)
	var sb strings.Builder
	if strings.TrimSpace(s.cfg.SharedContext) != "" {
		sb.WriteString("Context: ")
		sb.WriteString(s.cfg.SharedContext)
		sb.WriteString("\n")
	}
	if strings.TrimSpace(extraContext) != "" {
		sb.WriteString(extraContext)
		sb.WriteString("\n")
	}
	sb.WriteString("\nText:\n\n")
	sb.WriteString(text)
	return s.complete(ctx, system, sb.String())
}

func (s *chatSession) Ask(ctx context.Context, question string) (string, error) {
	system := "You answer questions about a legal document that was previously summarized. Base answers only on the provided context. If the context does not cover the question, say so."
	var sb strings.Builder
	if strings.TrimSpace(s.cfg.SharedContext) != "" {
		sb.WriteString("Context: ")
		sb.WriteString(s.cfg.SharedContext)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	return s.complete(ctx, system, sb.String())
}

func (s *chatSession) Destroy() {}

func (s *chatSession) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	}
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errNoChoices
	}
	return out, nil
}

func summarizeSystemMessage(verbosity string) string {
	base := "You simplify legal documents into plain language a non-lawyer understands. Preserve obligations, data usage, fees, and termination terms. Do not invent clauses."
	switch verbosity {
	case "brief":
		return base + " Respond with at most five short bullet points."
	case "detailed":
		return base + " Cover every material clause, one short paragraph each."
	default:
		return base + " Respond with a short overview followed by key points."
	}
}

// Translator support over the same chat endpoint.

func (p *OpenAIProvider) TranslatorAvailability(ctx context.Context, _, _ language.Tag) (Availability, error) {
	return p.Availability(ctx)
}

// CreateTranslator returns a Translator for the given pair.
func (p *OpenAIProvider) CreateTranslator(_ context.Context, source, target language.Tag) (Translator, error) {
	if p.Client == nil || strings.TrimSpace(p.Model) == "" {
		return nil, errors.New("translator not configured")
	}
	return &chatTranslator{client: p.Client, model: p.Model, source: source, target: target}, nil
}

type chatTranslator struct {
	client         ChatClient
	model          string
	source, target language.Tag
}

func (t *chatTranslator) Translate(ctx context.Context, text string) (string, error) {
	system := fmt.Sprintf("Translate from %s to %s. Output only the translation.", t.source, t.target)
	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.0,
		N:           1,
	}
	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (t *chatTranslator) Destroy() {}

// translatorProvider adapts OpenAIProvider to the TranslatorProvider shape.
type translatorProvider struct{ p *OpenAIProvider }

// AsTranslatorProvider exposes the provider's translation capability.
func (p *OpenAIProvider) AsTranslatorProvider() TranslatorProvider {
	return translatorProvider{p: p}
}

func (tp translatorProvider) Availability(ctx context.Context, source, target language.Tag) (Availability, error) {
	return tp.p.TranslatorAvailability(ctx, source, target)
}

func (tp translatorProvider) Create(ctx context.Context, source, target language.Tag) (Translator, error) {
	return tp.p.CreateTranslator(ctx, source, target)
}
