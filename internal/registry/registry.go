// Package registry maps spatial-analysis procedure names to the compiled Go
// handlers contributed by the modules/ packages. A single registry instance
// belongs to one App.
package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/spawnsci/spawnrun/internal/analysis"
	"github.com/spawnsci/spawnrun/internal/ctxlog"
)

// Module is the interface all compiled-in analysis modules implement.
type Module interface {
	Register(r *Registry)
}

// AnalysisFunc is the signature of a procedure handler. input is the
// module's decoded arguments struct, created by NewInput.
type AnalysisFunc func(ctx context.Context, req *analysis.Request, input any) (*analysis.Delta, error)

// RegisteredAnalysis holds the compiled Go parts of one procedure.
type RegisteredAnalysis struct {
	// NewInput returns a fresh arguments struct for HCL decoding, or nil
	// when the procedure takes no arguments.
	NewInput func() any
	Fn       AnalysisFunc
}

// Registry holds all registered analysis procedures for one App instance.
type Registry struct {
	procedures map[string]*RegisteredAnalysis
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{procedures: make(map[string]*RegisteredAnalysis)}
}

// Register adds a procedure handler. Duplicate names are a programmer error.
func (r *Registry) Register(name string, handler *RegisteredAnalysis) {
	if _, exists := r.procedures[name]; exists {
		panic(fmt.Sprintf("analysis procedure %q already registered", name))
	}
	if handler.Fn == nil {
		panic(fmt.Sprintf("analysis procedure %q registered without a handler function", name))
	}
	r.procedures[name] = handler
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (*RegisteredAnalysis, bool) {
	h, ok := r.procedures[name]
	return h, ok
}

// Names returns the registered procedure names in unspecified order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.procedures))
	for name := range r.procedures {
		names = append(names, name)
	}
	return names
}

// Validate checks that the configured procedure resolves to a registered
// handler. Run before any region is processed.
func (r *Registry) Validate(procedure string) error {
	if _, ok := r.procedures[procedure]; !ok {
		return fmt.Errorf("analysis procedure %q is not registered", procedure)
	}
	return nil
}

// Invoke decodes the procedure's arguments body against the request's eval
// context and calls the handler. args may be nil when the run config has no
// arguments block.
func (r *Registry) Invoke(ctx context.Context, name string, req *analysis.Request, args hcl.Body) (*analysis.Delta, error) {
	logger := ctxlog.FromContext(ctx)

	handler, ok := r.procedures[name]
	if !ok {
		return nil, fmt.Errorf("analysis procedure %q is not registered", name)
	}

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
		if args != nil {
			diags := gohcl.DecodeBody(args, analysis.EvalContext(req), input)
			if diags.HasErrors() {
				return nil, fmt.Errorf("decoding arguments for procedure %q: %w", name, diags)
			}
		}
	}

	logger.Debug("Invoking analysis procedure.", "procedure", name, "region", req.Region.Code)
	return handler.Fn(ctx, req, input)
}
