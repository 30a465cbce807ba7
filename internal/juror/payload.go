package juror

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// payloadTemplate instructs a juror to answer with a single JSON verdict.
// Jurors may print anything else around it; the parser extracts the first
// well-formed verdict object it finds.
const payloadTemplate = `You are one juror on an independent deliberation panel. Judge the task below on its own merits. Do not assume other jurors exist or guess their views.

Respond with a single JSON object:
{"decision": "<one of: %s>", "rationale": "<why>", "score": <0.0-1.0, optional>}

TASK:
%s
%s`

// BuildPayload renders the task into the text delivered to a juror.
func BuildPayload(task models.Task) []byte {
	var ctx strings.Builder
	if len(task.Context) > 0 {
		keys := make([]string, 0, len(task.Context))
		for k := range task.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ctx.WriteString("\nCONTEXT:\n")
		for _, k := range keys {
			fmt.Fprintf(&ctx, "%s: %s\n", k, task.Context[k])
		}
	}
	return []byte(fmt.Sprintf(payloadTemplate,
		strings.Join(task.Decisions(), ", "),
		task.Prompt,
		ctx.String(),
	))
}

// InvokerSet routes invocations to the invoker matching the juror's kind.
type InvokerSet struct {
	command   Invoker
	anthropic Invoker
}

// NewInvokerSet creates an InvokerSet. The anthropic invoker may be nil
// when no API access is configured; KindAnthropic jurors then fail to
// spawn instead of panicking.
func NewInvokerSet(command, anthropic Invoker) *InvokerSet {
	return &InvokerSet{command: command, anthropic: anthropic}
}

// Invoke dispatches on the juror definition's kind.
func (s *InvokerSet) Invoke(ctx context.Context, def Definition, payload []byte) ([]byte, error) {
	switch def.Kind {
	case KindAnthropic:
		if s.anthropic == nil {
			return nil, &SpawnFailureError{Juror: def.Name, Err: fmt.Errorf("no anthropic API access configured")}
		}
		return s.anthropic.Invoke(ctx, def, payload)
	default:
		return s.command.Invoke(ctx, def, payload)
	}
}

var _ Invoker = (*InvokerSet)(nil)
