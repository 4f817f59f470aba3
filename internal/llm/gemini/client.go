package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"quickbills/internal/common"
	"quickbills/internal/llm"
)

// Config for the Gemini provider.
type Config struct {
	APIKey      string
	Model       string // default "gemini-2.5-pro"
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.InvoiceExtractor using Google Gemini.
type Client struct {
	cfg    Config
	client *genai.Client
	model  *genai.GenerativeModel
	log    *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-pro"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)

	return &Client{cfg: cfg, client: client, model: model, log: logger}, nil
}

// ExtractInvoice sends the policy, schema and raw text in a single prompt and
// parses the JSON object out of the reply. Same error contract as the openai
// provider: transport/decode -> INTERPRETATION_ERROR, schema -> SCHEMA_ERROR.
func (c *Client) ExtractInvoice(ctx context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(req.RawText),
		"allowed_categories", len(req.AllowedCategories),
	)

	schema := llm.BuildInvoiceJSONSchema(req.AllowedCategories)
	schemaJSON, _ := json.MarshalIndent(schema, "", "  ")

	var prompt strings.Builder
	prompt.WriteString(llm.BuildSystemPrompt(req))
	prompt.WriteString("\n\nJSON Schema:\n")
	prompt.Write(schemaJSON)
	prompt.WriteString("\n\n")
	prompt.WriteString(llm.BuildUserPrompt(req))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		c.log.Error("llm.extract.transport_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, nil, common.InterpretationError("gemini request failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		c.log.Error("llm.extract.empty_response", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.InvoiceFields{}, nil, common.InterpretationError("no response from gemini", nil)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	content, err := llm.ExtractJSONObject(responseText.String())
	if err != nil {
		c.log.Error("llm.extract.non_json_body", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.InvoiceFields{}, []byte(responseText.String()), common.InterpretationError("gemini returned no JSON object", err)
	}
	rawContent := []byte(content)

	cleaned, _, sErr := llm.NormalizeAndSanitizeJSON(rawContent, c.log)
	if sErr != nil {
		return llm.InvoiceFields{}, rawContent, common.InterpretationError("candidate is not parseable JSON", sErr)
	}
	rawContent = cleaned

	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(rawContent),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, rawContent, common.SchemaError("candidate rejected", err)
	}

	var out llm.InvoiceFields
	if err := json.Unmarshal(rawContent, &out); err != nil {
		return llm.InvoiceFields{}, rawContent, common.SchemaError("unmarshal candidate", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"vendor", out.VendorName,
		"total", out.TotalAmount,
		"items", len(out.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}
