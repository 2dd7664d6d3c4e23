package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"review_pipeline/internal/adapters/httpx"
	"review_pipeline/internal/adapters/observability"
	"review_pipeline/internal/domain"
)

var labelSchema = generateSchema[labelResponse]()

// OpenAI labels reviews with a Responses API call constrained to labelSchema.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAI(apiKey, model string, maxTokens int, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		return nil, errors.New("OpenAI model is required")
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAI{client: &client, model: model, maxTokens: maxTokens}, nil
}

func (c *OpenAI) Name() string { return "openai:" + c.model }

func (c *OpenAI) Classify(ctx context.Context, text string) (l domain.Label, err error) {
	start := time.Now()
	defer func() { observability.ObserveClassify("openai", err, time.Since(start)) }()

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(32),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(Truncate(text, c.maxTokens), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "SentimentLabel",
					Schema:      labelSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Sentiment label JSON"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := c.callWithRetry(ctx, params)
	if err != nil {
		return 0, err
	}
	return decodeLabel(resp.OutputText())
}

func (c *OpenAI) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		if !isRetryable(err) || attempt == maxRetries-1 {
			return nil, err
		}
		if !httpx.SleepCtx(ctx, httpx.Backoff(attempt+2)) {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed after %d attempts due to OpenAI API issues", maxRetries)
}

func isRetryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "rate limit") || strings.Contains(s, "server_error")
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: false,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	// strict mode wants every property required and no extras
	m["additionalProperties"] = false
	if props, ok := m["properties"].(map[string]any); ok {
		req := make([]string, 0, len(props))
		for k := range props {
			req = append(req, k)
		}
		m["required"] = req
	}
	delete(m, "$schema")
	return m
}
