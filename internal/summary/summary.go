// Package summary explains computed credit scores in plain language using a
// Gemini model.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	defaultTimeout = 30 * time.Second
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("summary: model returned no text")

const systemInstruction = `You explain credit scores to small business owners.
Write three to five short sentences in plain language. Name the strongest and
the weakest component, say what drives each, and suggest one concrete step to
improve the score. Do not invent figures that are not in the data. Metrics
that are null were not found in the uploaded statements.`

// Generator is the content generation API of a genai client.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements ports.Summarizer.
type Gemini struct {
	generator   Generator
	model       string
	temperature float32
	timeout     time.Duration
}

var _ ports.Summarizer = (*Gemini)(nil)

// Option configures a Gemini summarizer.
type Option func(*Gemini)

func WithTemperature(t float32) Option {
	return func(g *Gemini) {
		g.temperature = t
	}
}

func WithTimeout(d time.Duration) Option {
	return func(g *Gemini) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGemini creates a summarizer backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return New(client.Models, model, opts...)
}

// New creates a summarizer over any Generator.
func New(generator Generator, model string, opts ...Option) (*Gemini, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if model == "" {
		model = DefaultModel
	}
	g := &Gemini{
		generator:   generator,
		model:       model,
		temperature: 0.2,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gemini) Model() string {
	return g.model
}

// Summarize asks the model to explain the score in in.
func (g *Gemini) Summarize(ctx context.Context, in ports.SummaryInput) (string, error) {
	prompt, err := BuildPrompt(in)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.generator.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// promptData is the score as shown to the model.
type promptData struct {
	CreditScore int                             `json:"credit_score"`
	Components  scoring.Breakdown               `json:"components"`
	Factors     []string                        `json:"factors,omitempty"`
	Documents   scoring.DocumentComponentScores `json:"document_scores"`
	Income      scoring.IncomeMetrics           `json:"income_statement"`
	Balance     scoring.BalanceMetrics          `json:"balance_sheet"`
}

// BuildPrompt renders the user prompt for in.
func BuildPrompt(in ports.SummaryInput) (string, error) {
	data, err := json.MarshalIndent(promptData{
		CreditScore: in.Breakdown.CreditScore,
		Components:  in.Breakdown.Breakdown,
		Factors:     in.Breakdown.Factors,
		Documents:   in.Documents,
		Income:      in.Income,
		Balance:     in.Balance,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary input: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The credit score is %d out of 100.\n", in.Breakdown.CreditScore)
	b.WriteString("Each component has a score out of 100, a weight in percent and its weighted contribution.\n")
	b.WriteString("Explain the score using this data:\n\n")
	b.Write(data)
	b.WriteString("\n")
	return b.String(), nil
}
