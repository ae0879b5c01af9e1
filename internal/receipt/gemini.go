package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/diego28e/backend-wealth-builder/internal/models"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiExtractor reads receipts with a Gemini vision model.
type GeminiExtractor struct {
	client *genai.Client
	model  string
	now    func() time.Time
}

func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiExtractor{client: client, model: model, now: time.Now}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string, categories []*models.Category) (*ExtractedReceipt, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(categories, g.now().UTC().Year())},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("empty response from model")
	}
	return parseReceiptJSON(raw)
}

func buildPrompt(categories []*models.Category, year int) string {
	var b strings.Builder
	b.WriteString("Analyze this receipt or bill image and extract structured data.\n\n")
	b.WriteString("Available categories for item classification:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s (ID: %s)\n", c.Name, c.ID)
	}
	fmt.Fprintf(&b, `
Rules:
- "date" MUST be ISO 8601, e.g. "%d-01-15T12:00:00Z".
- If the receipt shows a date without a year, assume %d.
- Amounts MUST be in the smallest currency unit (cents). $450.00 becomes 45000; 50,000 COP becomes 5000000.
- "suggested_category_id" is an ID from the list above, or null.

Return ONLY valid raw JSON with this shape, no Markdown and no code fences:
{
  "merchant_name": "Store name",
  "date": "%d-01-15T12:00:00Z",
  "currency_code": "COP",
  "total_amount": 5000000,
  "items": [
    {"item_name": "Product", "quantity": 2, "unit_price": 1500000, "total_amount": 3000000, "suggested_category_id": null}
  ]
}
`, year, year, year)
	return b.String()
}

func parseReceiptJSON(raw string) (*ExtractedReceipt, error) {
	var r ExtractedReceipt
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &r); err != nil {
		return nil, fmt.Errorf("unmarshal receipt JSON: %w", err)
	}
	return &r, nil
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = strings.TrimSpace(s[idx+1:])
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
