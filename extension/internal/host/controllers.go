package host

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/types"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
)

// ControllerRegistry offers one controller per kernel spec of the Jupyter Server. The controller
// selected for a notebook is the one whose kernel spec its session runs.
type ControllerRegistry struct {
	log logger.Logger

	client  *jupyterapi.Client
	timeout time.Duration

	mu          sync.RWMutex
	controllers []kernel.Controller
}

func NewControllerRegistry(client *jupyterapi.Client, timeout time.Duration) *ControllerRegistry {
	registry := &ControllerRegistry{
		client:  client,
		timeout: timeout,
	}
	config.InitLogger(&registry.log, registry)

	return registry
}

// Refresh reloads the kernel specs from the server.
func (r *ControllerRegistry) Refresh(ctx context.Context) error {
	specs, err := r.client.KernelSpecs(ctx)
	if err != nil {
		return err
	}

	controllers := make([]kernel.Controller, 0, len(specs.KernelSpecs))
	for name, spec := range specs.KernelSpecs {
		if spec.Name != "" {
			name = spec.Name
		}
		controllers = append(controllers, kernel.Controller{
			ID:             name,
			Label:          spec.Spec.DisplayName,
			Language:       strings.ToLower(spec.Spec.Language),
			KernelSpecName: name,
		})
	}
	slices.SortFunc(controllers, func(a, b kernel.Controller) int {
		return strings.Compare(a.ID, b.ID)
	})

	r.mu.Lock()
	r.controllers = controllers
	r.mu.Unlock()

	r.log.Debug("Loaded %d controller(s) from the kernel specs of %s.", len(controllers), r.client.BaseUrl())
	return nil
}

// All returns every controller, loading the kernel specs first if they have not been loaded yet.
func (r *ControllerRegistry) All() []kernel.Controller {
	r.mu.RLock()
	loaded := r.controllers != nil
	r.mu.RUnlock()

	if !loaded {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.Refresh(ctx); err != nil {
			r.log.Error("Failed to load kernel specs: %v", err)
			return []kernel.Controller{}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.controllers)
}

// Lookup returns the controller with the given ID.
func (r *ControllerRegistry) Lookup(id string) (kernel.Controller, bool) {
	for _, controller := range r.All() {
		if controller.ID == id {
			return controller, true
		}
	}
	return kernel.Controller{}, false
}

func (r *ControllerRegistry) Selected(doc *notebook.Document) (kernel.Controller, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	session, ok, err := r.client.SessionForPath(ctx, doc.URI())
	if err != nil {
		r.log.Error("Failed to look up the session of \"%s\": %v", doc.URI(), err)
		return kernel.Controller{}, false
	}
	if !ok || session.Kernel == nil {
		return kernel.Controller{}, false
	}

	return r.Lookup(session.Kernel.Name)
}

// Select switches the notebook's session to the kernel spec of the given controller.
func (r *ControllerRegistry) Select(ctx context.Context, doc *notebook.Document, id string) (kernel.Controller, error) {
	controller, ok := r.Lookup(id)
	if !ok {
		return kernel.Controller{}, fmt.Errorf("%w: unknown controller \"%s\"", types.ErrInvalidArgument, id)
	}

	session, ok, err := r.client.SessionForPath(ctx, doc.URI())
	if err != nil {
		return kernel.Controller{}, err
	}
	if !ok {
		return kernel.Controller{}, fmt.Errorf("%w: no session for \"%s\"", types.ErrKernelNotFound, doc.URI())
	}

	if session.Kernel != nil && session.Kernel.Name == controller.KernelSpecName {
		return controller, nil
	}

	if _, err := r.client.SetSessionKernel(ctx, session.ID, controller.KernelSpecName); err != nil {
		return kernel.Controller{}, err
	}

	r.log.Debug("Selected controller %s for \"%s\".", controller, doc.URI())
	return controller, nil
}
