package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ledgerlite/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// DraftService turns a natural-language billing description into a
// structured invoice draft.
type DraftService interface {
	InterpretInvoice(ctx context.Context, naturalLanguage string, customers []core.Customer, products []core.Product) (*core.DraftResponse, error)
}

type Drafter struct {
	client *openai.Client
}

func NewDrafter(apiKey string) *Drafter {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Drafter{client: &client}
}

func (d *Drafter) InterpretInvoice(ctx context.Context, naturalLanguage string, customers []core.Customer, products []core.Product) (*core.DraftResponse, error) {
	prompt := fmt.Sprintf(`You are a bookkeeping assistant for a small business.
Your goal is to turn a plain-language billing description into a structured invoice draft.
Rules:
1. customer_name MUST exactly match one of the customers listed below. If no customer matches, ask for clarification.
2. Amounts must be exact decimal strings (e.g. "150.00").
3. When the description mentions a listed product, use its unit price unless the description overrides it.
4. Dates are YYYY-MM-DD. Leave due_date empty rather than guessing.
5. Provide a confidence score (0.0-1.0) and explain your reasoning.
6. If the description is too ambiguous (no customer, no amounts), return a clarification request instead of a draft.

Customers:
%s

Products:
%s

Description: %s`, formatCustomers(customers), formatProducts(products), naturalLanguage)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "invoice_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A draft invoice derived from a plain-language billing description"),
				},
			},
		},
	}

	resp, err := d.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var out core.DraftResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if out.IsClarificationRequest {
		if out.Clarification == nil {
			return nil, fmt.Errorf("clarification requested without a message")
		}
		return &out, nil
	}
	if out.Draft == nil {
		return nil, fmt.Errorf("response contained neither a draft nor a clarification")
	}

	out.Draft.Normalize()
	if err := out.Draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}
	return &out, nil
}

func formatCustomers(customers []core.Customer) string {
	if len(customers) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, c := range customers {
		fmt.Fprintf(&b, "- %s\n", c.Name)
	}
	return b.String()
}

func formatProducts(products []core.Product) string {
	if len(products) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, p := range products {
		fmt.Fprintf(&b, "- %s @ %s\n", p.Name, p.UnitPrice.StringFixed(2))
	}
	return b.String()
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.DraftResponse
	return reflector.Reflect(v)
}
