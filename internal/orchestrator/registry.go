package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanhedrin/sanhedrin/internal/config"
	"github.com/sanhedrin/sanhedrin/internal/consensus"
	"github.com/sanhedrin/sanhedrin/internal/juror"
	"github.com/sanhedrin/sanhedrin/internal/metrics"
	"github.com/sanhedrin/sanhedrin/internal/panel"
	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// Registry tracks every deliberation from submission until retention
// expiry. It enforces the active-deliberation cap on admission, starts an
// orchestrator per admitted task, and reaps finished deliberations after
// the retention window.
type Registry struct {
	panel      *panel.Panel
	roster     *juror.Roster
	basePolicy consensus.Policy
	panelCfg   config.PanelConfig
	regCfg     config.RegistryConfig
	log        *zap.Logger

	mu     sync.RWMutex
	delibs map[string]*Orchestrator
	queue  []*Orchestrator
	active int
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a registry and starts its retention reaper. Call
// Stop to shut it down.
func NewRegistry(p *panel.Panel, roster *juror.Roster, cfg *config.Config, log *zap.Logger) (*Registry, error) {
	basePolicy := consensus.Default()
	basePolicy.Name = consensus.PolicyName(cfg.Panel.Policy)
	basePolicy.Quorum = cfg.Panel.Quorum
	if err := basePolicy.Validate(); err != nil {
		return nil, fmt.Errorf("configured policy: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		panel:      p,
		roster:     roster,
		basePolicy: basePolicy,
		panelCfg:   cfg.Panel,
		regCfg:     cfg.Registry,
		log:        log,
		delibs:     make(map[string]*Orchestrator),
		ctx:        ctx,
		cancel:     cancel,
	}

	r.wg.Add(1)
	go r.reapLoop()
	return r, nil
}

// Submit validates and admits a task, returning the pending deliberation.
// At capacity it either queues the submission or returns ErrAtCapacity,
// per configuration. Each submission deliberates independently: the same
// task submitted twice yields two deliberations.
func (r *Registry) Submit(task models.Task) (*models.Deliberation, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	policy, panelSize, deadline, err := r.resolve(&task)
	if err != nil {
		return nil, err
	}

	delib := models.NewDeliberation(uuid.New().String(), task)
	orch := newOrchestrator(delib, r.panel, r.roster, policy, panelSize, deadline, r.log)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrShuttingDown
	}
	if r.active >= r.regCfg.MaxActive {
		if !r.regCfg.QueueSubmissions {
			r.mu.Unlock()
			return nil, ErrAtCapacity
		}
		r.delibs[delib.ID] = orch
		r.queue = append(r.queue, orch)
		r.active++
		r.mu.Unlock()
		metrics.ActiveDeliberations.Inc()
		r.log.Info("deliberation queued", zap.String("deliberation_id", delib.ID))
		return orch.Snapshot(), nil
	}
	r.delibs[delib.ID] = orch
	r.active++
	r.startLocked(orch)
	r.mu.Unlock()

	metrics.ActiveDeliberations.Inc()
	return orch.Snapshot(), nil
}

// startLocked launches the orchestrator goroutine. Callers hold r.mu.
func (r *Registry) startLocked(orch *Orchestrator) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		orch.Run(r.ctx)
		r.finished()
	}()
}

// finished releases an active slot and starts the next queued
// deliberation, if any.
func (r *Registry) finished() {
	metrics.ActiveDeliberations.Dec()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.startLocked(next)
	}
}

// resolve merges task overrides onto the configured panel defaults.
func (r *Registry) resolve(task *models.Task) (consensus.Policy, int, time.Duration, error) {
	policy := r.basePolicy
	if task.Policy != "" {
		policy = policy.WithName(consensus.PolicyName(task.Policy))
		if err := policy.Validate(); err != nil {
			return policy, 0, 0, err
		}
	}
	panelSize := r.panelCfg.Size
	if task.PanelSize > 0 {
		panelSize = task.PanelSize
	}
	deadline := r.panelCfg.Deadline
	if task.Deadline > 0 {
		deadline = task.Deadline
	}
	return policy, panelSize, deadline, nil
}

// Status returns a snapshot of the deliberation with the given id.
func (r *Registry) Status(id string) (*models.Deliberation, error) {
	r.mu.RLock()
	orch, ok := r.delibs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return orch.Snapshot(), nil
}

// Cancel aborts the deliberation with the given id. Cancelling one that
// already reached a terminal state returns InvalidTransitionError.
func (r *Registry) Cancel(id, reason string) (*models.Deliberation, error) {
	r.mu.RLock()
	orch, ok := r.delibs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if err := orch.Cancel(reason); err != nil {
		return nil, err
	}
	r.dequeue(orch)
	return orch.Snapshot(), nil
}

// dequeue releases the slot of a deliberation cancelled before it started.
func (r *Registry) dequeue(orch *Orchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, queued := range r.queue {
		if queued == orch {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			r.active--
			metrics.ActiveDeliberations.Dec()
			return
		}
	}
}

// List returns snapshots of all tracked deliberations, newest first. A
// non-empty state filters the result.
func (r *Registry) List(state models.DeliberationState) []*models.Deliberation {
	r.mu.RLock()
	orchs := make([]*Orchestrator, 0, len(r.delibs))
	for _, o := range r.delibs {
		orchs = append(orchs, o)
	}
	r.mu.RUnlock()

	out := make([]*models.Deliberation, 0, len(orchs))
	for _, o := range orchs {
		snap := o.Snapshot()
		if state != "" && snap.State != state {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// Active counts deliberations that have not reached a terminal state.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Stop shuts the registry down: new submissions are refused, running
// deliberations are cancelled with their jurors terminated, and the
// reaper exits. It blocks until all orchestrator goroutines return.
func (r *Registry) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	orchs := make([]*Orchestrator, 0, len(r.delibs))
	for _, o := range r.delibs {
		orchs = append(orchs, o)
	}
	r.mu.Unlock()

	for _, o := range orchs {
		// Terminal deliberations refuse the transition; that is fine.
		_ = o.Cancel("server shutdown")
	}
	r.cancel()
	r.wg.Wait()
}

// reapLoop periodically removes deliberations that finished longer than
// the retention window ago.
func (r *Registry) reapLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.regCfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := r.reap(time.Now()); n > 0 {
				r.log.Info("reaped expired deliberations", zap.Int("count", n))
			}
		case <-r.ctx.Done():
			return
		}
	}
}

// reap removes terminal deliberations older than the retention window.
func (r *Registry) reap(now time.Time) int {
	cutoff := now.Add(-r.regCfg.MaxAge)
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, orch := range r.delibs {
		snap := orch.Snapshot()
		if snap.State.Terminal() && snap.CompletedAt.Before(cutoff) {
			delete(r.delibs, id)
			n++
		}
	}
	return n
}
