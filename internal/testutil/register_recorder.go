package testutil

import (
	"context"
	"sync"

	"github.com/spawnsci/spawnrun/internal/analysis"
	"github.com/spawnsci/spawnrun/internal/refdata"
	"github.com/spawnsci/spawnrun/internal/registry"
	"github.com/spawnsci/spawnrun/internal/spatial"
)

// RecordedCall captures one analysis invocation seen by a RecorderModule.
type RecordedCall struct {
	Region string
	Unit   spatial.Unit
	Years  refdata.ReferenceYears
}

// RecorderModule registers a "recorder" procedure that records every
// invocation instead of performing any analysis.
type RecorderModule struct {
	mu    sync.Mutex
	calls []RecordedCall
}

// Calls returns a copy of the recorded invocations in order.
func (m *RecorderModule) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedCall(nil), m.calls...)
}

// Register registers the recorder procedure with the driver.
func (m *RecorderModule) Register(r *registry.Registry) {
	r.Register("recorder", &registry.RegisteredAnalysis{
		Fn: func(_ context.Context, req *analysis.Request, _ any) (*analysis.Delta, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.calls = append(m.calls, RecordedCall{
				Region: req.Region.Code,
				Unit:   req.Unit,
				Years:  req.Years,
			})
			return &analysis.Delta{Notes: []string{"recorded"}}, nil
		},
	})
}

// FailingModule registers a "failing" procedure that always returns Err.
type FailingModule struct {
	Err error
}

// Register registers the failing procedure with the driver.
func (m *FailingModule) Register(r *registry.Registry) {
	r.Register("failing", &registry.RegisteredAnalysis{
		Fn: func(context.Context, *analysis.Request, any) (*analysis.Delta, error) {
			return nil, m.Err
		},
	})
}
