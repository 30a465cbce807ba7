package orchestrator

import "errors"

// ErrAtCapacity is returned by Submit when the registry holds its maximum
// number of active deliberations and queueing is disabled.
var ErrAtCapacity = errors.New("registry at capacity")

// ErrNotFound is returned when no deliberation exists under the given id.
var ErrNotFound = errors.New("deliberation not found")

// ErrShuttingDown is returned by Submit after Stop has been called.
var ErrShuttingDown = errors.New("registry is shutting down")
