package model

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
)

// capturingClient records requests and returns a canned reply.
type capturingClient struct {
	reqs  []openai.ChatCompletionRequest
	reply string
	err   error
}

func (c *capturingClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.reqs = append(c.reqs, req)
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.reply}},
		},
	}, nil
}

// listingClient additionally implements ModelLister.
type listingClient struct {
	capturingClient
	models []string
	err    error
}

func (c *listingClient) ListModels(context.Context) (openai.ModelsList, error) {
	if c.err != nil {
		return openai.ModelsList{}, c.err
	}
	out := openai.ModelsList{}
	for _, id := range c.models {
		out.Models = append(out.Models, openai.Model{ID: id})
	}
	return out, nil
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name     string
		provider *OpenAIProvider
		want     Availability
	}{
		{"no client", &OpenAIProvider{Model: "m"}, Unsupported},
		{"no model", &OpenAIProvider{Client: &capturingClient{}}, Unsupported},
		{"client without lister", &OpenAIProvider{Client: &capturingClient{}, Model: "m"}, Ready},
		{"model listed", &OpenAIProvider{Client: &listingClient{models: []string{"m"}}, Model: "m"}, Ready},
		{"model not listed", &OpenAIProvider{Client: &listingClient{models: []string{"other"}}, Model: "m"}, NeedsDownload},
		{"list fails", &OpenAIProvider{Client: &listingClient{err: errors.New("down")}, Model: "m"}, Unavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.provider.Availability(ctx)
			if err != nil {
				t.Fatalf("Availability: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSummarizeSessionBuildsPrompt(t *testing.T) {
	client := &capturingClient{reply: "short version"}
	p := &OpenAIProvider{Client: client, Model: "m"}
	session, err := p.Create(context.Background(), SummarizeConfig{
		Verbosity:     "brief",
		SharedContext: "Terms of example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer session.Destroy()

	out, err := session.Summarize(context.Background(), "the text", "This is part 1 of 2 of a longer document.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out != "short version" {
		t.Errorf("out = %q", out)
	}
	if len(client.reqs) != 1 {
		t.Fatalf("requests = %d", len(client.reqs))
	}
	req := client.reqs[0]
	if req.Model != "m" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "bullet points") {
		t.Errorf("brief verbosity missing from system message: %q", req.Messages[0].Content)
	}
	user := req.Messages[1].Content
	for _, want := range []string{"Terms of example.com", "part 1 of 2", "the text"} {
		if !strings.Contains(user, want) {
			t.Errorf("user message missing %q: %q", want, user)
		}
	}
}

func TestSummarizeSessionNoChoices(t *testing.T) {
	client := &capturingClient{reply: ""}
	p := &OpenAIProvider{Client: client, Model: "m"}
	session, err := p.Create(context.Background(), SummarizeConfig{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := session.Summarize(context.Background(), "text", ""); !errors.Is(err, errNoChoices) {
		t.Fatalf("err = %v, want errNoChoices", err)
	}
}

func TestCreateReportsDownloadProgress(t *testing.T) {
	var got []float64
	p := &OpenAIProvider{Client: &capturingClient{reply: "x"}, Model: "m"}
	_, err := p.Create(context.Background(), SummarizeConfig{OnProgress: func(f float64) { got = append(got, f) }})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("progress = %v", got)
	}
}

func TestAskUsesSharedContext(t *testing.T) {
	client := &capturingClient{reply: "the answer"}
	p := &OpenAIProvider{Client: client, Model: "m"}
	session, _ := p.Create(context.Background(), SummarizeConfig{SharedContext: "summary of the terms"})
	out, err := session.Ask(context.Background(), "Can I cancel anytime?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if out != "the answer" {
		t.Errorf("out = %q", out)
	}
	user := client.reqs[0].Messages[1].Content
	if !strings.Contains(user, "summary of the terms") || !strings.Contains(user, "Can I cancel anytime?") {
		t.Errorf("user message = %q", user)
	}
}

func TestChatTranslator(t *testing.T) {
	client := &capturingClient{reply: "käännetty"}
	p := &OpenAIProvider{Client: client, Model: "m"}
	tp := p.AsTranslatorProvider()
	tr, err := tp.Create(context.Background(), language.English, language.Finnish)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer tr.Destroy()
	out, err := tr.Translate(context.Background(), "translated")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "käännetty" {
		t.Errorf("out = %q", out)
	}
	system := client.reqs[0].Messages[0].Content
	if !strings.Contains(system, "en") || !strings.Contains(system, "fi") {
		t.Errorf("system message missing language pair: %q", system)
	}
}
