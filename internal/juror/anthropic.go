package juror

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMaxTokens bounds a juror's response size.
const anthropicMaxTokens = 4096

// AnthropicInvoker invokes KindAnthropic jurors through the Messages API.
// The API call is supervised the same way a child process is: cancelling
// the invocation context aborts the request.
type AnthropicInvoker struct {
	client       anthropic.Client
	defaultModel anthropic.Model
}

// NewAnthropicInvoker creates an invoker using the given API key. An empty
// key falls back to the ANTHROPIC_API_KEY environment variable.
func NewAnthropicInvoker(apiKey string) *AnthropicInvoker {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &AnthropicInvoker{
		client:       anthropic.NewClient(opts...),
		defaultModel: anthropic.ModelClaudeSonnet4_20250514,
	}
}

// Invoke sends the payload as a user message and returns the text response.
// API errors are reported as AgentFailureError so the panel treats them
// like any other juror failure.
func (i *AnthropicInvoker) Invoke(ctx context.Context, def Definition, payload []byte) ([]byte, error) {
	model := i.defaultModel
	if def.Model != "" {
		model = anthropic.Model(def.Model)
	}

	resp, err := i.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(payload))),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &AgentFailureError{Juror: def.Name, ExitCode: -1, Detail: err.Error()}
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(variant.Text)
		}
	}
	return []byte(out.String()), nil
}

var _ Invoker = (*AnthropicInvoker)(nil)
