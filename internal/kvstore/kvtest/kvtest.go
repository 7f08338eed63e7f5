// Package kvtest provides storage backends for tests.
package kvtest

import (
	"context"
	"errors"
	"sync"

	"github.com/Simplici0/threedcost/internal/kvstore"
)

// ErrInjected is returned by Flaky when a failure is switched on.
var ErrInjected = errors.New("injected storage failure")

// Flaky wraps a Memory backend and fails reads or writes on demand.
type Flaky struct {
	*kvstore.Memory

	mu        sync.Mutex
	failReads bool
	failWrite bool
	writes    int
}

// NewFlaky returns a backend that succeeds until told otherwise.
func NewFlaky() *Flaky {
	return &Flaky{Memory: kvstore.NewMemory()}
}

// FailReads makes GetItem return ErrInjected while on is true.
func (f *Flaky) FailReads(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = on
}

// FailWrites makes SetItem return ErrInjected while on is true.
func (f *Flaky) FailWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = on
}

// Writes returns how many SetItem calls reached the backend successfully.
func (f *Flaky) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *Flaky) GetItem(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return f.Memory.GetItem(ctx, key)
}

func (f *Flaky) SetItem(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return ErrInjected
	}
	f.writes++
	return f.Memory.SetItem(ctx, key, value)
}
