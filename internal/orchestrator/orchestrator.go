// Package orchestrator runs deliberations: it empanels jurors for a task,
// drives the panel to a ruling, and tracks every deliberation in a
// registry from submission to retention expiry.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanhedrin/sanhedrin/internal/consensus"
	"github.com/sanhedrin/sanhedrin/internal/juror"
	"github.com/sanhedrin/sanhedrin/internal/metrics"
	"github.com/sanhedrin/sanhedrin/internal/panel"
	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// Orchestrator drives one deliberation through its state machine. It is
// the only writer of the deliberation's terminal state: panel results and
// cancellation requests both funnel through its lock.
type Orchestrator struct {
	mu      sync.Mutex
	delib   *models.Deliberation
	handles []*juror.Handle
	cancel  context.CancelFunc

	panel     *panel.Panel
	roster    *juror.Roster
	policy    consensus.Policy
	panelSize int
	deadline  time.Duration

	log  *zap.Logger
	done chan struct{}
}

func newOrchestrator(delib *models.Deliberation, p *panel.Panel, roster *juror.Roster, policy consensus.Policy, panelSize int, deadline time.Duration, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		delib:     delib,
		panel:     p,
		roster:    roster,
		policy:    policy,
		panelSize: panelSize,
		deadline:  deadline,
		log:       log.With(zap.String("deliberation_id", delib.ID)),
		done:      make(chan struct{}),
	}
}

// Run executes the deliberation to a terminal state. It returns once the
// state is terminal; the registry calls it in its own goroutine.
func (o *Orchestrator) Run(ctx context.Context) {
	defer close(o.done)

	o.mu.Lock()
	if o.delib.State.Terminal() {
		// Cancelled while queued.
		o.mu.Unlock()
		return
	}
	if err := o.delib.Transition(models.StateInProgress, "panel empaneled"); err != nil {
		o.mu.Unlock()
		return
	}
	cctx, cancel := context.WithTimeout(ctx, o.deadline)
	o.cancel = cancel
	o.handles = o.panel.Empanel(o.roster, o.panelSize)
	task := o.delib.Task
	o.mu.Unlock()
	defer cancel()

	o.log.Info("deliberation started",
		zap.Int("panel_size", o.panelSize),
		zap.Duration("deadline", o.deadline),
		zap.String("policy", string(o.policy.Name)),
	)

	verdicts, nonResponses := o.panel.Dispatch(cctx, task, o.handles)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.delib.State.Terminal() {
		// Cancelled mid-dispatch: verdicts are discarded, never partially
		// applied.
		o.log.Info("deliberation already terminal, discarding panel results",
			zap.String("state", string(o.delib.State)))
		return
	}

	if nobodyStarted(verdicts, nonResponses) {
		o.fail("no juror could be started")
		return
	}

	ruling := consensus.Reduce(verdicts, nonResponses, len(o.handles), o.policy)
	o.delib.Ruling = &ruling
	if err := o.delib.Transition(models.StateCompleted, "ruling computed"); err != nil {
		o.fail(err.Error())
		return
	}
	metrics.DeliberationsTotal.WithLabelValues(string(models.StateCompleted)).Inc()
	o.log.Info("deliberation completed",
		zap.String("decision", ruling.Decision),
		zap.Bool("quorum_met", ruling.QuorumMet),
		zap.Int("verdicts", len(ruling.Verdicts)),
		zap.Int("non_responses", len(ruling.NonResponses)),
	)
}

// fail records a failed deliberation. Callers hold o.mu.
func (o *Orchestrator) fail(reason string) {
	o.delib.Err = reason
	if err := o.delib.Transition(models.StateFailed, reason); err != nil {
		o.log.Error("could not record failure", zap.Error(err))
		return
	}
	metrics.DeliberationsTotal.WithLabelValues(string(models.StateFailed)).Inc()
	o.log.Warn("deliberation failed", zap.String("reason", reason))
}

// Cancel aborts the deliberation. Running jurors are terminated and any
// verdicts already collected are discarded. Cancelling a terminal
// deliberation returns InvalidTransitionError.
func (o *Orchestrator) Cancel(reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.delib.Transition(models.StateCancelled, reason); err != nil {
		return err
	}
	if o.cancel != nil {
		o.cancel()
	}
	for _, h := range o.handles {
		h.Terminate()
	}
	metrics.DeliberationsTotal.WithLabelValues(string(models.StateCancelled)).Inc()
	o.log.Info("deliberation cancelled", zap.String("reason", reason))
	return nil
}

// Snapshot returns a deep copy of the deliberation safe to hand out.
func (o *Orchestrator) Snapshot() *models.Deliberation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.delib.Clone()
}

// State returns the current deliberation state.
func (o *Orchestrator) State() models.DeliberationState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.delib.State
}

// Done is closed when Run returns.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// RunningHandles counts handles not yet in a terminal state.
func (o *Orchestrator) RunningHandles() int {
	o.mu.Lock()
	handles := o.handles
	o.mu.Unlock()

	n := 0
	for _, h := range handles {
		if !h.State().Terminal() {
			n++
		}
	}
	return n
}

// nobodyStarted reports whether the panel got no juror off the ground.
func nobodyStarted(verdicts []models.Verdict, nonResponses []models.NonResponse) bool {
	if len(verdicts) > 0 {
		return false
	}
	for _, nr := range nonResponses {
		if nr.Reason != models.ReasonSpawnFailure {
			return false
		}
	}
	return len(nonResponses) > 0
}
