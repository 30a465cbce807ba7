// Package panel fans a task out to a set of juror handles and collects
// their verdicts as they arrive. Verdict order is arrival order, never
// roster order.
package panel

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sanhedrin/sanhedrin/internal/juror"
	"github.com/sanhedrin/sanhedrin/internal/metrics"
	"github.com/sanhedrin/sanhedrin/internal/verdict"
	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// Panel empanels jurors and runs one dispatch per deliberation. The
// semaphore bounds concurrently running juror processes across all
// deliberations; a panel larger than the free slots queues at spawn.
type Panel struct {
	invoker      juror.Invoker
	slots        *semaphore.Weighted
	jurorTimeout time.Duration
	log          *zap.Logger
}

// New creates a panel dispatcher. The slots semaphore is shared with every
// other panel the registry runs.
func New(invoker juror.Invoker, slots *semaphore.Weighted, jurorTimeout time.Duration, log *zap.Logger) *Panel {
	return &Panel{
		invoker:      invoker,
		slots:        slots,
		jurorTimeout: jurorTimeout,
		log:          log,
	}
}

// Empanel selects n jurors from the roster round-robin and creates an idle
// handle for each. The roster may be smaller than n; jurors then sit on
// the panel more than once, as distinct handles.
func (p *Panel) Empanel(roster *juror.Roster, n int) []*juror.Handle {
	defs := roster.Select(n)
	handles := make([]*juror.Handle, 0, len(defs))
	for _, def := range defs {
		handles = append(handles, juror.NewHandle(def, p.invoker))
	}
	return handles
}

// outcome is one juror's contribution to the dispatch result.
type outcome struct {
	verdict     *models.Verdict
	nonResponse *models.NonResponse
}

// Dispatch delivers the task to every handle concurrently and blocks until
// each reaches a terminal state. Every handle is accounted for exactly
// once: len(verdicts) + len(nonResponses) == len(handles). When ctx
// expires or is cancelled, still-running jurors are terminated and
// recorded as non-responses; verdicts already collected are kept.
func (p *Panel) Dispatch(ctx context.Context, task models.Task, handles []*juror.Handle) ([]models.Verdict, []models.NonResponse) {
	started := time.Now()
	payload := juror.BuildPayload(task)
	decisions := task.Decisions()

	results := make(chan outcome, len(handles))
	for _, h := range handles {
		go func(h *juror.Handle) {
			results <- p.runJuror(ctx, h, payload, decisions)
		}(h)
	}

	verdicts := make([]models.Verdict, 0, len(handles))
	nonResponses := make([]models.NonResponse, 0)
	for range handles {
		out := <-results
		if out.verdict != nil {
			verdicts = append(verdicts, *out.verdict)
			metrics.VerdictsTotal.WithLabelValues(out.verdict.Decision).Inc()
		} else {
			nonResponses = append(nonResponses, *out.nonResponse)
			metrics.JurorFailuresTotal.WithLabelValues(string(out.nonResponse.Reason)).Inc()
		}
	}

	metrics.DispatchDuration.Observe(time.Since(started).Seconds())
	p.log.Info("panel dispatch finished",
		zap.Int("panel_size", len(handles)),
		zap.Int("verdicts", len(verdicts)),
		zap.Int("non_responses", len(nonResponses)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return verdicts, nonResponses
}

// runJuror takes one juror from slot acquisition through verdict parsing.
// It always returns exactly one outcome and always releases its slot.
func (p *Panel) runJuror(ctx context.Context, h *juror.Handle, payload []byte, decisions []string) outcome {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		h.Terminate()
		if errors.Is(err, context.DeadlineExceeded) {
			return fail(h, models.ReasonDeliberationTimeout, "deadline expired while waiting for a process slot")
		}
		return fail(h, models.ReasonTerminated, "cancelled while waiting for a process slot")
	}
	defer p.slots.Release(1)

	if err := h.Spawn(ctx, payload); err != nil {
		p.log.Warn("juror spawn rejected", zap.String("juror", h.Name()), zap.Error(err))
		return fail(h, models.ReasonSpawnFailure, err.Error())
	}

	raw, err := h.Await(ctx, p.jurorTimeout)
	if err != nil {
		return p.classify(h, err)
	}

	v, err := verdict.Parse(raw, decisions)
	if err != nil {
		p.log.Warn("juror output unparseable", zap.String("juror", h.Name()), zap.Error(err))
		return fail(h, models.ReasonParseFailure, err.Error())
	}

	v.JurorID = h.ID()
	v.Juror = h.Name()
	v.Weight = h.Definition().EffectiveWeight()
	v.ReceivedAt = time.Now().UTC()
	return outcome{verdict: &v}
}

// classify maps an Await error onto a non-response reason.
func (p *Panel) classify(h *juror.Handle, err error) outcome {
	var spawnErr *juror.SpawnFailureError
	var agentErr *juror.AgentFailureError
	switch {
	case errors.Is(err, juror.ErrTimeout):
		p.log.Warn("juror timed out",
			zap.String("juror", h.Name()),
			zap.Duration("timeout", p.jurorTimeout),
		)
		return fail(h, models.ReasonAgentTimeout, err.Error())
	case errors.As(err, &spawnErr):
		p.log.Warn("juror failed to spawn", zap.String("juror", h.Name()), zap.Error(err))
		return fail(h, models.ReasonSpawnFailure, err.Error())
	case errors.As(err, &agentErr):
		p.log.Warn("juror exited abnormally", zap.String("juror", h.Name()), zap.Error(err))
		return fail(h, models.ReasonAgentFailure, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		p.log.Warn("deliberation deadline expired with juror still running",
			zap.String("juror", h.Name()),
		)
		return fail(h, models.ReasonDeliberationTimeout, err.Error())
	default:
		// Cancellation: the juror was cut off, it did not fail on its own.
		return fail(h, models.ReasonTerminated, err.Error())
	}
}

func fail(h *juror.Handle, reason models.NonResponseReason, detail string) outcome {
	return outcome{nonResponse: &models.NonResponse{
		JurorID: h.ID(),
		Juror:   h.Name(),
		Reason:  reason,
		Detail:  detail,
	}}
}
