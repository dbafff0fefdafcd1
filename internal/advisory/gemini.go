package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
)

// maxPromptRecords caps how much of the catalog is sent to the model.
const maxPromptRecords = 5

// Gemini generates advisory items from the market snapshot via structured
// output. A nil *Gemini is valid and means the remote collaborator is
// unconfigured.
type Gemini struct {
	model *genai.GenerativeModel
}

type remoteAdvice struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Action   string `json:"action"`
}

func NewGemini(ctx context.Context, apiKey, modelID string) (*Gemini, error) {
	if apiKey == "" {
		return nil, nil // Rule-based advice only when no key is provided
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.SetTemperature(0.2) // Low temperature for consistent advisories
	model.ResponseMIMEType = "application/json"

	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title": {
					Type:        genai.TypeString,
					Description: "Short advisory headline.",
				},
				"body": {
					Type:        genai.TypeString,
					Description: "One or two sentences of concrete farming advice derived from the market snapshot and weather.",
				},
				"category": {
					Type:        genai.TypeString,
					Description: "One of: price, weather, pest, market, technique.",
				},
				"priority": {
					Type:        genai.TypeString,
					Description: "One of: high, medium, low.",
				},
				"action": {
					Type:        genai.TypeString,
					Description: "A single recommended action the farmer can take.",
				},
			},
			Required: []string{"title", "body", "category", "priority", "action"},
		},
	}

	return &Gemini{model: model}, nil
}

// Generate asks the model for advisories. Any failure, including an
// out-of-vocabulary category or priority in the response, is returned as an
// error so the caller can fall back to the rule battery.
func (g *Gemini) Generate(ctx context.Context, catalog []models.PriceRecord, weatherConditions string) ([]models.AdviceItem, error) {
	if g == nil || g.model == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}

	snapshot := catalog
	if len(snapshot) > maxPromptRecords {
		snapshot = snapshot[:maxPromptRecords]
	}

	var sb strings.Builder
	for _, r := range snapshot {
		fmt.Fprintf(&sb, "- %s (%s): ₹%s per %s\n", r.Name, r.Region, formatPrice(r.Price), r.Unit)
	}

	prompt := fmt.Sprintf(`You are an agronomy advisor for small-scale vegetable farmers in Pakistan.

Current market prices:
%s
Current weather conditions: %s

Task: produce 3 to 6 advisory items for farmers. Each item needs a title, a
body, a category (price, weather, pest, market or technique), a priority
(high, medium or low) and one recommended action.

Output JSON adhering to the schema.
`, sb.String(), weatherConditions)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		txt, ok := part.(genai.Text)
		if !ok {
			continue
		}
		jsonStr := strings.TrimSpace(string(txt))
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")

		var raw []remoteAdvice
		if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse gemini response: %w", err)
		}
		return convertRemote(raw, time.Now())
	}

	return nil, fmt.Errorf("no text part in response")
}

func convertRemote(raw []remoteAdvice, now time.Time) ([]models.AdviceItem, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty advice list from gemini")
	}
	items := make([]models.AdviceItem, 0, len(raw))
	for i, r := range raw {
		category := models.AdviceCategory(r.Category)
		priority := models.AdvicePriority(r.Priority)
		if r.Title == "" || r.Body == "" || !models.ValidAdviceCategory(category) || !models.ValidAdvicePriority(priority) {
			return nil, fmt.Errorf("malformed advice entry %d from gemini", i)
		}
		items = append(items, models.AdviceItem{
			ID:                i + 1,
			Title:             r.Title,
			Body:              r.Body,
			Category:          category,
			Priority:          priority,
			RecommendedAction: r.Action,
			GeneratedAt:       now,
		})
	}
	return items, nil
}
