package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/types"
	"github.com/scusemua/notebook-commands/extension/internal/commands"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
)

// Host is a notebook host backed by a Jupyter Server. It implements the host side of the
// notebook commands, including the built-in notebook.* commands.
type Host struct {
	log logger.Logger

	Client      *jupyterapi.Client
	Workspace   *Workspace
	Controllers *ControllerRegistry
	Kernels     *KernelProvider
	Connector   *Connector
	Runner      *Runner

	mu          sync.Mutex
	unregisters []func()
}

func NewHost(client *jupyterapi.Client, timeout time.Duration) *Host {
	controllers := NewControllerRegistry(client, timeout)
	kernels := NewKernelProvider(client, controllers, timeout)
	workspace := NewWorkspace(client)

	host := &Host{
		Client:      client,
		Workspace:   workspace,
		Controllers: controllers,
		Kernels:     kernels,
		Connector:   NewConnector(client, kernels, timeout),
		Runner:      NewRunner(client, workspace, kernels),
	}
	config.InitLogger(&host.log, host)

	return host
}

// SetReporter makes the host report successful kernel operations to r. It must be called before
// the host is used.
func (h *Host) SetReporter(r Reporter) {
	h.Connector.reporter = r
}

// RegisterBuiltins registers the built-in notebook commands with the registry.
func (h *Host) RegisterBuiltins(registry *commands.Registry) error {
	builtins := []struct {
		id      string
		handler commands.Handler
	}{
		{commands.NotebookOpen, h.open},
		{commands.NotebookSetSelection, h.setSelection},
		{commands.NotebookCellExecute, h.executeCells},
		{commands.NotebookExecute, h.executeNotebook},
		{commands.NotebookInsertCodeCellBelow, h.insertCodeCellBelow},
		{commands.NotebookSelectKernel, h.selectKernel},
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, builtin := range builtins {
		unregister, err := registry.Register(builtin.id, builtin.handler)
		if err != nil {
			for _, registered := range h.unregisters {
				registered()
			}
			h.unregisters = nil
			return err
		}
		h.unregisters = append(h.unregisters, unregister)
	}
	return nil
}

// Dispose unregisters the built-in commands.
func (h *Host) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, unregister := range h.unregisters {
		unregister()
	}
	h.unregisters = nil
}

// document returns the editor of the notebook with the given URI, or the active editor.
func (h *Host) document(ctx context.Context, uri string) (*notebook.Editor, error) {
	if uri == "" {
		editor, ok := h.Workspace.ActiveEditor()
		if !ok {
			return nil, types.ErrNoActiveEditor
		}
		return editor, nil
	}

	doc, err := h.Workspace.OpenDocument(ctx, uri)
	if err != nil {
		return nil, err
	}

	for _, editor := range h.Workspace.VisibleEditors() {
		if editor.Document == doc {
			return editor, nil
		}
	}
	return &notebook.Editor{Document: doc}, nil
}

func (h *Host) open(ctx context.Context, args ...interface{}) (interface{}, error) {
	uri, err := commands.StringArg(args, 0)
	if err != nil {
		return nil, err
	}
	if uri == "" {
		return nil, fmt.Errorf("%w: a notebook URI is required", types.ErrInvalidArgument)
	}

	doc, err := h.Workspace.OpenDocument(ctx, uri)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"uri":       doc.URI(),
		"cellCount": doc.CellCount(),
	}, nil
}

func (h *Host) setSelection(ctx context.Context, args ...interface{}) (interface{}, error) {
	uri, err := commands.StringArg(args, 0)
	if err != nil {
		return nil, err
	}

	selection, ok := commands.RangeArg(commands.Arg(args, 1))
	if !ok {
		return nil, fmt.Errorf("%w: a selection of the form {start, end} is required", types.ErrInvalidArgument)
	}

	return nil, h.Workspace.SetSelection(ctx, uri, selection)
}

// executeCells accepts {ranges, document}, a single range followed by a notebook URI, or nothing,
// which runs the active editor's selection.
func (h *Host) executeCells(ctx context.Context, args ...interface{}) (interface{}, error) {
	var (
		uri    string
		ranges []notebook.Range
	)

	if options, ok := commands.Arg(args, 0).(map[string]interface{}); ok && options["ranges"] != nil {
		uri, _ = options["document"].(string)

		rawRanges, ok := options["ranges"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: ranges must be a list", types.ErrInvalidArgument)
		}
		for _, raw := range rawRanges {
			r, ok := commands.RangeArg(raw)
			if !ok {
				return nil, fmt.Errorf("%w: invalid range %v", types.ErrInvalidArgument, raw)
			}
			ranges = append(ranges, r)
		}
	} else if r, ok := commands.RangeArg(commands.Arg(args, 0)); ok {
		ranges = append(ranges, r)

		var err error
		if uri, err = commands.StringArg(args, 1); err != nil {
			return nil, err
		}
	}

	editor, err := h.document(ctx, uri)
	if err != nil {
		return nil, err
	}
	if ranges == nil {
		ranges = []notebook.Range{editor.Selection}
	}

	return nil, h.Runner.ExecuteCells(ctx, editor.Document, ranges...)
}

func (h *Host) executeNotebook(ctx context.Context, args ...interface{}) (interface{}, error) {
	uri, err := commands.StringArg(args, 0)
	if err != nil {
		return nil, err
	}

	editor, err := h.document(ctx, uri)
	if err != nil {
		return nil, err
	}

	doc := editor.Document
	return nil, h.Runner.ExecuteCells(ctx, doc, notebook.Range{Start: 0, End: doc.CellCount()})
}

// insertCodeCellBelow inserts an empty code cell below the active editor's selection and selects it.
func (h *Host) insertCodeCellBelow(ctx context.Context, _ ...interface{}) (interface{}, error) {
	editor, ok := h.Workspace.ActiveEditor()
	if !ok {
		return nil, types.ErrNoActiveEditor
	}

	doc := editor.Document
	index := min(editor.Selection.End, doc.CellCount())
	cell := notebook.CellData{
		Kind:     notebook.Code,
		Language: notebook.PreferredLanguage(doc.Metadata()),
	}

	applied, err := h.Workspace.ApplyEdit(ctx, doc.URI(), notebook.InsertCells(index, cell))
	if err != nil || !applied {
		return applied, err
	}

	return applied, h.Workspace.SetSelection(ctx, doc.URI(), notebook.Range{Start: index, End: index + 1})
}

// selectKernel accepts a controller ID or {id, extension}, and switches the active editor's
// notebook to that controller.
func (h *Host) selectKernel(ctx context.Context, args ...interface{}) (interface{}, error) {
	var id string
	switch v := commands.Arg(args, 0).(type) {
	case string:
		id = v
	case map[string]interface{}:
		if extension, _ := v["extension"].(string); extension != "" && extension != commands.ExtensionID {
			return nil, fmt.Errorf("%w: controllers of extension \"%s\" are not available", types.ErrInvalidArgument, extension)
		}
		id, _ = v["id"].(string)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: a controller ID is required", types.ErrInvalidArgument)
	}

	editor, ok := h.Workspace.ActiveEditor()
	if !ok {
		return nil, types.ErrNoActiveEditor
	}

	return h.Controllers.Select(ctx, editor.Document, id)
}
