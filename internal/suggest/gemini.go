package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"zenfin/internal/core"
)

const DefaultModelName = "gemini-2.0-flash"

// Gemini produces transaction drafts from media via the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: DefaultModelName}, nil
}

// FromImage extracts a draft from a receipt photo.
func (g *Gemini) FromImage(ctx context.Context, jpeg []byte) (*core.TransactionDraft, error) {
	return g.generate(ctx, imagePrompt(), &genai.Blob{MIMEType: "image/jpeg", Data: jpeg})
}

// FromVoice extracts a draft from a spoken note.
func (g *Gemini) FromVoice(ctx context.Context, audio []byte, mimeType string) (*core.TransactionDraft, error) {
	return g.generate(ctx, voicePrompt(), &genai.Blob{MIMEType: mimeType, Data: audio})
}

func (g *Gemini) generate(ctx context.Context, prompt string, blob *genai.Blob) (*core.TransactionDraft, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: blob},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		slog.WarnContext(ctx, "Suggestion model call failed", "error", err)
		return nil, nil
	}

	draft := parseSuggestion(resp.Text())
	if draft == nil {
		slog.WarnContext(ctx, "Suggestion response unusable, falling back to manual entry")
	}
	return draft, nil
}

func imagePrompt() string {
	return "You are a receipt parser for a personal expense tracker.\n\n" +
		"Task:\n" +
		"- Read the attached receipt photo.\n" +
		"- Output STRICT JSON only (no comments, no extra text).\n" +
		"- Output a single JSON object.\n\n" +
		"The object must have these fields:\n" +
		"- \"description\": string, short merchant or purchase description\n" +
		"- \"amount\": string, decimal total like \"123.45\"\n" +
		"- \"kind\": string, \"INCOME\" or \"EXPENSE\"\n" +
		"- \"category\": string (one of the predefined categories below)\n" +
		"- \"payment_method\": string or null\n\n" +
		categoriesPrompt() +
		"\nReturn ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Output must begin with \"{\" and end with \"}\".\n"
}

func voicePrompt() string {
	return "You are a voice note parser for a personal expense tracker.\n\n" +
		"Task:\n" +
		"- Transcribe and interpret the attached voice note describing one transaction.\n" +
		"- Output STRICT JSON only (no comments, no extra text).\n" +
		"- Output a single JSON object.\n\n" +
		"The object must have these fields:\n" +
		"- \"description\": string\n" +
		"- \"amount\": string, decimal total like \"123.45\"\n" +
		"- \"kind\": string, \"INCOME\" or \"EXPENSE\"\n" +
		"- \"category\": string (one of the predefined categories below)\n" +
		"- \"payment_method\": string or null\n" +
		"- \"recurrence\": string, \"UNIQUE\", \"RECURRING\" or \"INSTALLMENT\"\n\n" +
		categoriesPrompt() +
		"\nReturn ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Output must begin with \"{\" and end with \"}\".\n"
}

func categoriesPrompt() string {
	var b strings.Builder
	b.WriteString("Predefined categories:\n")
	for _, c := range core.Categories() {
		b.WriteString("- ")
		b.WriteString(string(c))
		b.WriteString("\n")
	}
	return b.String()
}

type suggestionPayload struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Kind          string `json:"kind"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
	Recurrence    string `json:"recurrence"`
}

// parseSuggestion turns the model output into a draft. Unknown categories
// fall back to Outros; an unusable payload yields nil.
func parseSuggestion(raw string) *core.TransactionDraft {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil
	}

	var p suggestionPayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return nil
	}

	cents, err := core.ParseDecimalToCents(p.Amount)
	if err != nil {
		return nil
	}

	kind := core.Kind(strings.ToUpper(strings.TrimSpace(p.Kind)))
	if kind.Validate() != nil {
		return nil
	}

	category, err := core.ParseCategory(strings.TrimSpace(p.Category))
	if err != nil {
		category = core.CategoryOutros
	}

	recurrence := core.Recurrence(strings.ToUpper(strings.TrimSpace(p.Recurrence)))
	if recurrence.Validate() != nil {
		recurrence = core.Unique
	}

	return &core.TransactionDraft{
		Description:   strings.TrimSpace(p.Description),
		Amount:        core.Money{Cents: cents},
		Date:          time.Now().UTC(),
		Kind:          kind,
		Category:      category,
		PaymentMethod: strings.TrimSpace(p.PaymentMethod),
		Recurrence:    recurrence,
	}
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost object if the model added surrounding text.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
