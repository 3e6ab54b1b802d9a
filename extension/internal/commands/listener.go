package commands

import (
	"context"
	"sync"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/configuration"
	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/telemetry"
	"github.com/scusemua/notebook-commands/common/types"
)

//go:generate mockgen -source=listener.go -destination=mock_commands/mock_listener.go

// Prompter asks the user a question.
type Prompter interface {
	// ShowInformationMessage shows message with the given choices and returns the chosen one.
	// The second return value is false if the user dismissed the message.
	ShowInformationMessage(ctx context.Context, message string, modal bool, items ...string) (string, bool)
}

// KernelGuard starts kernel interrupts and restarts, coalescing concurrent requests per kernel.
type KernelGuard interface {
	Request(ctx context.Context, k kernel.Kernel, op kernel.Operation) *kernel.Pending
}

// Listener registers the notebook commands.
type Listener struct {
	log logger.Logger

	registry    *Registry
	workspace   notebook.Workspace
	editors     notebook.EditorProvider
	kernels     kernel.Provider
	controllers kernel.ControllerRegistry
	guard       KernelGuard
	settings    configuration.Store
	prompter    Prompter

	mu          sync.Mutex
	unregisters []func()
}

func NewListener(registry *Registry, workspace notebook.Workspace, editors notebook.EditorProvider, kernels kernel.Provider,
	controllers kernel.ControllerRegistry, guard KernelGuard, settings configuration.Store, prompter Prompter) *Listener {

	listener := &Listener{
		registry:    registry,
		workspace:   workspace,
		editors:     editors,
		kernels:     kernels,
		controllers: controllers,
		guard:       guard,
		settings:    settings,
		prompter:    prompter,
	}
	config.InitLogger(&listener.log, listener)

	return listener
}

// Register registers every command of the listener. If any registration fails, the commands
// registered so far are unregistered again.
func (l *Listener) Register() error {
	handlers := []struct {
		id      string
		handler Handler
	}{
		{NotebookEditorRemoveAllCells, l.removeAllCells},
		{NotebookEditorRunAllCells, l.runAllCells},
		{NotebookEditorAddCellBelow, l.addCellBelow},
		{RestartKernelAndRunUpToSelectedCell, l.restartKernelAndRunUpToSelectedCell},
		{AiInsertCellAbove, l.aiInsertCell(0)},
		{AiInsertCellBelow, l.aiInsertCell(1)},
		{AiGetCell, l.aiGetCell},
		{AiGetCellOutput, l.aiGetCellOutput},
		{AiGetCellType, l.aiGetCellType},
		{AiUpdateCell, l.aiUpdateCell},
		{AiDeleteCell, l.aiDeleteCell},
		{AiRunCell, l.aiRunCell},
		{AiGetAllKernel, l.aiGetAllKernel},
		{AiGetKernel, l.aiGetKernel},
		{AiSelectKernel, l.aiSelectKernel},
		{AiRestartKernel, l.aiRestartKernel},
		{AiInterruptKernel, l.aiInterruptKernel},
		{RestartKernel, l.restartKernelCommand},
		{InterruptKernel, l.interruptKernelCommand},
		{RestartKernelAndRunAllCells, l.restartKernelAndRunAllCells},
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, h := range handlers {
		unregister, err := l.registry.Register(h.id, h.handler)
		if err != nil {
			l.disposeLocked()
			return err
		}
		l.unregisters = append(l.unregisters, unregister)
	}

	l.log.Debug("Registered %d notebook commands.", len(handlers))
	return nil
}

// Dispose unregisters every command registered by the listener.
func (l *Listener) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disposeLocked()
}

func (l *Listener) disposeLocked() {
	for _, unregister := range l.unregisters {
		unregister()
	}
	l.unregisters = nil
}

////////////////////
// Cell commands. //
////////////////////

// aiGetNotebook resolves the notebook a cell command targets. Without a URI it is the first
// visible editor's notebook, which may not exist.
func (l *Listener) aiGetNotebook(ctx context.Context, args []interface{}) (*notebook.Document, error) {
	uri, err := StringArg(args, 0)
	if err != nil {
		return nil, err
	}

	if uri == "" {
		editors := l.editors.VisibleEditors()
		if len(editors) == 0 {
			return nil, nil
		}
		return editors[0].Document, nil
	}

	return l.workspace.OpenDocument(ctx, uri)
}

// aiCell resolves the notebook and the cell index a cell command targets. The returned bool is
// false if there is no notebook or the index is not the index of one of its cells.
func (l *Listener) aiCell(ctx context.Context, args []interface{}) (*notebook.Document, int, bool, error) {
	doc, err := l.aiGetNotebook(ctx, args)
	if err != nil {
		return nil, 0, false, err
	}

	index, ok := IntArg(args, 1)
	if doc == nil || !ok || index < 0 || index >= doc.CellCount() {
		l.log.Debug("Ignoring cell command for cell %v of %v.", Arg(args, 1), doc)
		return doc, index, false, nil
	}

	return doc, index, true, nil
}

// newCellData builds the cell a cell command writes. Kind 2 is a code cell, anything else markup.
func newCellData(doc *notebook.Document, args []interface{}) (notebook.CellData, error) {
	kind, _ := IntArg(args, 2)
	content, err := StringArg(args, 3)
	if err != nil {
		return notebook.CellData{}, err
	}

	return notebook.CellData{
		Kind:     notebook.CellKindFromArg(kind),
		Source:   content,
		Language: notebook.PreferredLanguage(doc.Metadata()),
	}, nil
}

func (l *Listener) aiInsertCell(offset int) Handler {
	return func(ctx context.Context, args ...interface{}) (interface{}, error) {
		doc, index, ok, err := l.aiCell(ctx, args)
		if err != nil || !ok {
			return false, err
		}

		cell, err := newCellData(doc, args)
		if err != nil {
			return false, err
		}

		return l.workspace.ApplyEdit(ctx, doc.URI(), notebook.InsertCells(index+offset, cell))
	}
}

func (l *Listener) aiGetCell(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, index, ok, err := l.aiCell(ctx, args)
	if err != nil || !ok {
		return false, err
	}

	cell, _ := doc.CellAt(index)
	return cell.Source(), nil
}

func (l *Listener) aiGetCellOutput(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, index, ok, err := l.aiCell(ctx, args)
	if err != nil || !ok {
		return false, err
	}

	cell, _ := doc.CellAt(index)
	outputs := cell.Outputs()
	if len(outputs) == 0 {
		return false, nil
	}

	text, ok := outputs[0].PlainText()
	if !ok {
		return false, nil
	}
	return text, nil
}

func (l *Listener) aiGetCellType(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, index, ok, err := l.aiCell(ctx, args)
	if err != nil || !ok {
		return false, err
	}

	cell, _ := doc.CellAt(index)
	return int(cell.Kind()), nil
}

func (l *Listener) aiUpdateCell(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, index, ok, err := l.aiCell(ctx, args)
	if err != nil || !ok {
		return false, err
	}

	cell, err := newCellData(doc, args)
	if err != nil {
		return false, err
	}

	return l.workspace.ApplyEdit(ctx, doc.URI(), notebook.ReplaceCells(notebook.Range{Start: index, End: index + 1}, cell))
}

func (l *Listener) aiDeleteCell(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, index, ok, err := l.aiCell(ctx, args)
	if err != nil || !ok {
		return false, err
	}

	return l.workspace.ApplyEdit(ctx, doc.URI(), notebook.DeleteCells(notebook.Range{Start: index, End: index + 1}))
}

func (l *Listener) aiRunCell(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, index, ok, err := l.aiCell(ctx, args)
	if err != nil || !ok {
		return false, err
	}

	return l.registry.Execute(ctx, NotebookCellExecute, notebook.Range{Start: index, End: index + 1}, doc.URI())
}

/////////////////////
// Kernel listing. //
/////////////////////

func (l *Listener) aiGetAllKernel(_ context.Context, _ ...interface{}) (interface{}, error) {
	return l.controllers.All(), nil
}

func (l *Listener) aiGetKernel(_ context.Context, args ...interface{}) (interface{}, error) {
	id, err := StringArg(args, 0)
	if err != nil {
		return false, err
	}

	for _, controller := range l.controllers.All() {
		if controller.ID == id {
			return controller, nil
		}
	}
	return false, nil
}

func (l *Listener) aiSelectKernel(ctx context.Context, args ...interface{}) (interface{}, error) {
	id, err := StringArg(args, 0)
	if err != nil {
		return nil, err
	}

	return l.registry.Execute(ctx, NotebookSelectKernel, map[string]interface{}{
		"id":        id,
		"extension": ExtensionID,
	})
}

//////////////////////
// Editor commands. //
//////////////////////

func (l *Listener) runAllCells(ctx context.Context, _ ...interface{}) (interface{}, error) {
	if _, ok := l.editors.ActiveEditor(); !ok {
		return nil, nil
	}

	if _, err := l.registry.Execute(ctx, NotebookExecute); err != nil {
		l.log.Warn("Failed to run all cells: %v", err)
	}
	return nil, nil
}

func (l *Listener) addCellBelow(ctx context.Context, _ ...interface{}) (interface{}, error) {
	if _, ok := l.editors.ActiveEditor(); !ok {
		return nil, nil
	}

	if _, err := l.registry.Execute(ctx, NotebookInsertCodeCellBelow); err != nil {
		l.log.Warn("Failed to add a cell below the selection: %v", err)
	}
	return nil, nil
}

func (l *Listener) removeAllCells(ctx context.Context, _ ...interface{}) (interface{}, error) {
	editor, ok := l.editors.ActiveEditor()
	if !ok {
		return nil, nil
	}

	doc := editor.Document
	empty := notebook.CellData{
		Kind:     notebook.Code,
		Source:   "",
		Language: notebook.PreferredLanguage(doc.Metadata()),
	}

	edit := notebook.ReplaceCells(notebook.Range{Start: 0, End: doc.CellCount()}, empty)
	if _, err := l.workspace.ApplyEdit(ctx, doc.URI(), edit); err != nil {
		l.log.Warn("Failed to remove all cells of \"%s\": %v", doc.URI(), err)
	}
	return nil, nil
}

//////////////////////
// Kernel commands. //
//////////////////////

// notebookUriArg accepts either a notebook URI or an editor context of the form
// {"notebookEditor": {"notebookUri": uri}}.
func notebookUriArg(args []interface{}) string {
	switch v := Arg(args, 0).(type) {
	case string:
		return v
	case map[string]interface{}:
		if editor, ok := v["notebookEditor"].(map[string]interface{}); ok {
			if uri, ok := editor["notebookUri"].(string); ok {
				return uri
			}
		}
	}
	return ""
}

// kernelFor returns the open document with the given URI, or the active editor's document if
// uri is empty, along with its kernel.
func (l *Listener) kernelFor(uri string) (*notebook.Document, kernel.Kernel, bool) {
	if uri == "" {
		editor, ok := l.editors.ActiveEditor()
		if !ok {
			return nil, nil, false
		}
		uri = editor.Document.URI()
	}

	doc, ok := notebook.FindOpenDocument(l.workspace, uri)
	if !ok {
		l.log.Debug("Notebook \"%s\" is not open.", uri)
		return nil, nil, false
	}

	k, ok := l.kernels.Get(doc)
	if !ok {
		l.log.Info("Kernel operation requested for \"%s\", but there is no kernel.", doc.URI())
		return doc, nil, false
	}

	return doc, k, true
}

func (l *Listener) interruptKernel(ctx context.Context, uri string) error {
	_, k, ok := l.kernelFor(uri)
	if !ok {
		return nil
	}

	l.log.Debug("Command interrupted kernel %s.", k.ID())
	if pending := l.guard.Request(ctx, k, kernel.Interrupt); pending != nil {
		return pending.WaitContext(ctx)
	}
	return nil
}

// restartKernel restarts the kernel of the notebook, asking the user first if they want to be
// asked. It returns nil if there is nothing to restart or the user declined.
func (l *Listener) restartKernel(ctx context.Context, uri string) *kernel.Pending {
	doc, k, ok := l.kernelFor(uri)
	if !ok {
		return nil
	}

	l.log.Debug("Restart kernel command handler for \"%s\" (language=%s).", doc.URI(), telemetry.SafeLanguage(k.Language()))

	if !l.shouldAskForRestart(ctx, doc.URI()) {
		return l.guard.Request(ctx, k, kernel.Restart)
	}

	response, answered := l.prompter.ShowInformationMessage(ctx, RestartKernelMessage, true,
		RestartKernelMessageYes, RestartKernelMessageDontAskAgain)
	switch {
	case answered && response == RestartKernelMessageDontAskAgain:
		l.disableAskForRestart(ctx)
		return l.guard.Request(ctx, k, kernel.Restart)
	case answered && response == RestartKernelMessageYes:
		return l.guard.Request(ctx, k, kernel.Restart)
	default:
		l.log.Debug("User did not confirm the restart of kernel %s.", k.ID())
		return nil
	}
}

func (l *Listener) shouldAskForRestart(ctx context.Context, uri string) bool {
	settings, err := l.settings.Settings(ctx, uri)
	if err != nil {
		l.log.Warn("Could not read settings for \"%s\", asking before restarting: %v", uri, err)
		return true
	}
	return settings.AskForKernelRestart
}

func (l *Listener) disableAskForRestart(ctx context.Context) {
	err := l.settings.UpdateSetting(ctx, configuration.KeyAskForKernelRestart, false, "", configuration.Global)
	if err != nil {
		l.log.Warn("Failed to disable %s: %v", configuration.KeyAskForKernelRestart, err)
	}
}

func (l *Listener) restartKernelCommand(ctx context.Context, args ...interface{}) (interface{}, error) {
	l.restartKernel(ctx, notebookUriArg(args))
	return nil, nil
}

func (l *Listener) interruptKernelCommand(ctx context.Context, args ...interface{}) (interface{}, error) {
	return nil, l.interruptKernel(ctx, notebookUriArg(args))
}

func (l *Listener) restartKernelAndRunAllCells(ctx context.Context, args ...interface{}) (interface{}, error) {
	if pending := l.restartKernel(ctx, notebookUriArg(args)); pending != nil {
		if err := pending.WaitContext(ctx); err != nil {
			return nil, err
		}
	}

	return l.runAllCells(ctx)
}

func (l *Listener) restartKernelAndRunUpToSelectedCell(ctx context.Context, _ ...interface{}) (interface{}, error) {
	editor, ok := l.editors.ActiveEditor()
	if !ok {
		return nil, nil
	}

	uri := editor.Document.URI()
	if pending := l.restartKernel(ctx, uri); pending != nil {
		if err := pending.WaitContext(ctx); err != nil {
			return nil, err
		}
	}

	_, err := l.registry.Execute(ctx, NotebookCellExecute, map[string]interface{}{
		"ranges":   []interface{}{notebook.Range{Start: 0, End: editor.Selection.End}},
		"document": uri,
	})
	if err != nil {
		l.log.Warn("Failed to run cells up to the selection of \"%s\": %v", uri, err)
	}
	return nil, nil
}

func (l *Listener) aiRestartKernel(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, err := l.aiGetNotebook(ctx, args)
	if err != nil || doc == nil {
		return nil, err
	}

	_, k, ok := l.kernelFor(doc.URI())
	if !ok {
		return nil, nil
	}

	l.log.Debug("AI restart kernel command handler for \"%s\".", doc.URI())
	l.guard.Request(ctx, k, kernel.Restart)
	return nil, nil
}

func (l *Listener) aiInterruptKernel(ctx context.Context, args ...interface{}) (interface{}, error) {
	doc, err := l.aiGetNotebook(ctx, args)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, types.ErrNoActiveEditor
	}

	return nil, l.interruptKernel(ctx, doc.URI())
}
