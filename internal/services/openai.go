// OpenAI implementation of [Categorizer]
//
// Chat-completion calls with JSON-only prompts; responses are
// schema-validated into typed structs before anything is persisted.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/ytsort/internal/models"
	"github.com/desertthunder/ytsort/internal/shared"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const defaultChatModel = "gpt-4o-mini"

const categorizeSystemPrompt = `You are a music librarian. You classify songs by mood, genre and energy.
Respond with JSON only, no prose and no markdown fences.`

const suggestSystemPrompt = `You are a music curator. You group a library into themed playlists based on its category values.
Respond with JSON only, no prose and no markdown fences.`

// OpenAIService implements [Categorizer] using chat completions.
type OpenAIService struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIService creates an OpenAI client. The API key comes from the
// OPENAI_API_KEY environment variable when apiKey is empty.
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if model == "" {
		model = defaultChatModel
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &OpenAIService{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(model),
	}
}

func (o *OpenAIService) Name() string {
	return "OpenAI"
}

// complete performs one chat call and maps failures onto the shared error
// kinds: 429 means the AI-request quota is spent, everything else retryable
// is transient.
func (o *OpenAIService) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
			return "", fmt.Errorf("%w: openai: %v", shared.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: openai: %v", shared.ErrTransient, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", shared.ErrInvalidAIResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

// CategorizeBatch classifies the given songs along the requested dimensions.
func (o *OpenAIService) CategorizeBatch(ctx context.Context, items []BatchItem, kinds []models.CategoryKind, vocab Vocabulary) ([]BatchAssignment, error) {
	if len(items) == 0 {
		return nil, nil
	}

	raw, err := o.complete(ctx, categorizeSystemPrompt, buildCategorizePrompt(items, kinds, vocab))
	if err != nil {
		return nil, err
	}

	return parseAssignments(raw)
}

// SuggestPlaylists asks for playlist groupings over the library's distinct
// category values.
func (o *OpenAIService) SuggestPlaylists(ctx context.Context, vocab Vocabulary) ([]PlaylistSuggestion, error) {
	raw, err := o.complete(ctx, suggestSystemPrompt, buildSuggestPrompt(vocab))
	if err != nil {
		return nil, err
	}

	return parseSuggestions(raw)
}

// buildCategorizePrompt enumerates the batch's (title, artist) pairs and the
// allowed vocabulary for the requested dimensions.
func buildCategorizePrompt(items []BatchItem, kinds []models.CategoryKind, vocab Vocabulary) string {
	var b strings.Builder

	b.WriteString("Classify these songs:\n")
	for i, item := range items {
		if item.Artist != "" {
			fmt.Fprintf(&b, "%d. %s - %s\n", i, item.Artist, item.Title)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i, item.Title)
		}
	}

	b.WriteString("\nDimensions to assign:\n")
	for _, kind := range kinds {
		switch kind {
		case models.KindMood:
			fmt.Fprintf(&b, "- moods: one or more of [%s]\n", strings.Join(vocab.Moods, ", "))
		case models.KindGenre:
			fmt.Fprintf(&b, "- genres: one or more of [%s]\n", strings.Join(vocab.Genres, ", "))
		case models.KindEnergy:
			fmt.Fprintf(&b, "- energy: exactly one of [%s]\n", strings.Join(vocab.Energies, ", "))
		}
	}

	b.WriteString(`
Return a JSON array with one object per song:
[{"index": 0, "moods": ["happy"], "genres": ["pop"], "energy": "high"}]
Omit a field when you cannot assign it. Use the numeric index shown above.`)

	return b.String()
}

// buildSuggestPrompt lists the distinct values present in the library.
func buildSuggestPrompt(vocab Vocabulary) string {
	var b strings.Builder

	b.WriteString("A music library contains songs with these category values:\n")
	fmt.Fprintf(&b, "- moods: [%s]\n", strings.Join(vocab.Moods, ", "))
	fmt.Fprintf(&b, "- genres: [%s]\n", strings.Join(vocab.Genres, ", "))
	fmt.Fprintf(&b, "- energies: [%s]\n", strings.Join(vocab.Energies, ", "))

	b.WriteString(`
Propose 5-10 themed playlists as a JSON array. Each playlist selects songs by
filtering on those values:
[{"name": "Sunday Morning", "description": "...", "filter": {"moods": ["calm"], "genres": [], "energies": ["low"]}}]
Leave a filter dimension empty to accept any value for it.`)

	return b.String()
}

// parseAssignments decodes a categorization response. Anything that does not
// parse as the expected array is a hard error for the batch, with the raw
// payload attached for diagnostics.
func parseAssignments(raw string) ([]BatchAssignment, error) {
	payload := stripCodeFence(raw)

	var assignments []BatchAssignment
	if err := json.Unmarshal([]byte(payload), &assignments); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", shared.ErrInvalidAIResponse, err, snippet(raw))
	}

	return assignments, nil
}

// parseSuggestions decodes a suggestion response and validates the schema.
func parseSuggestions(raw string) ([]PlaylistSuggestion, error) {
	payload := stripCodeFence(raw)

	var suggestions []PlaylistSuggestion
	if err := json.Unmarshal([]byte(payload), &suggestions); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", shared.ErrInvalidAIResponse, err, snippet(raw))
	}

	for _, suggestion := range suggestions {
		if strings.TrimSpace(suggestion.Name) == "" {
			return nil, fmt.Errorf("%w: suggestion without a name: %s", shared.ErrInvalidAIResponse, snippet(raw))
		}
	}

	return suggestions, nil
}

// stripCodeFence removes a surrounding markdown fence, which models sometimes
// emit despite instructions.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// snippet truncates a raw payload for error messages.
func snippet(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
