package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.0-flash"
)

// GeminiBackend implements Backend using Google's Gemini API.
type GeminiBackend struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGeminiBackend creates a Gemini-backed extractor.
func NewGeminiBackend(cfg Config) *GeminiBackend {
	return newGeminiBackend(cfg, "")
}

// NewGeminiBackendWithEndpoint creates a backend pointing at a custom API endpoint (for testing).
func NewGeminiBackendWithEndpoint(cfg Config, endpoint string) *GeminiBackend {
	return newGeminiBackend(cfg, endpoint)
}

func newGeminiBackend(cfg Config, endpoint string) *GeminiBackend {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &GeminiBackend{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Model returns the model name requests are sent to.
func (g *GeminiBackend) Model() string {
	return g.model
}

func (g *GeminiBackend) Extract(ctx context.Context, req Request) (Fields, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": "Extract credit card statement data from this text:\n\n" + req.Text},
				},
			},
		},
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": buildSystemPrompt(req.IssuerHint)},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   schemaJSON(req.Schema),
			"temperature":      0.0,
			"topP":             0.95,
			"maxOutputTokens":  2048,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return parseResponse(respBody)
}

func schemaJSON(s Schema) map[string]interface{} {
	props := make(map[string]interface{}, len(s.Properties))
	for _, p := range s.Properties {
		props[p] = map[string]string{"type": "STRING"}
	}
	return map[string]interface{}{
		"type":       "OBJECT",
		"properties": props,
		"required":   s.Required,
	}
}

func buildSystemPrompt(hint string) string {
	if hint == "" {
		hint = "detect from statement"
	}
	return `You are an expert financial document parser specializing in credit card statements.

Extract EXACTLY these fields from the credit card statement text:
1. bank_name - The issuing bank (e.g., "HDFC Bank", "Axis Bank")
2. card_last_4 - Last 4 digits of card number (e.g., "1234")
3. statement_date - Statement generation date (format: DD/MM/YYYY)
4. payment_due_date - Payment due date (format: DD/MM/YYYY)
5. total_amount_due - Total amount to be paid (clean number, e.g., "25625.00")
6. minimum_payment - Minimum payment required (clean number, e.g., "1290.00")
7. statement_period_start - Billing period start date (format: DD/MM/YYYY)
8. statement_period_end - Billing period end date (format: DD/MM/YYYY)
9. credit_limit - Total credit limit (clean number)
10. available_credit - Available credit (clean number)

RULES:
- Return "NOT_FOUND" if a field cannot be found
- For amounts: remove currency symbols (₹, Rs, $), remove commas, keep only digits and decimal point
- For total_amount_due: never return zero or negative values; find the actual outstanding balance
- For dates: use DD/MM/YYYY format
- For card_last_4: extract ONLY the last 4 digits
- Bank name hint: ` + hint + `

Return ONLY valid JSON matching the schema. No explanations.`
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte) (Fields, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response: %v", ErrMalformedResponse, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no parts", ErrMalformedResponse)
	}

	text := stripFences(resp.Candidates[0].Content.Parts[0].Text)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedResponse, err, truncate(text, 500))
	}

	out := make(Fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = strings.TrimSpace(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// stripFences removes a ```json ... ``` wrapper some models add despite the
// response MIME type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
