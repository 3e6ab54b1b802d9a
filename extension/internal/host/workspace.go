package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/types"
	"github.com/scusemua/notebook-commands/common/utils/hashmap"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
)

// Workspace holds the notebooks opened from a Jupyter Server's contents API. Every opened
// notebook is shown in an editor. The most recently used editor is the active one.
type Workspace struct {
	log logger.Logger

	client    *jupyterapi.Client
	documents *hashmap.CornelkMap[string, *notebook.Document]

	// editors is ordered from most to least recently used.
	editors   []*notebook.Editor
	editorsMu sync.Mutex
}

func NewWorkspace(client *jupyterapi.Client) *Workspace {
	workspace := &Workspace{
		client:    client,
		documents: hashmap.NewCornelkMap[string, *notebook.Document](64),
	}
	config.InitLogger(&workspace.log, workspace)

	return workspace
}

func (w *Workspace) Documents() []*notebook.Document {
	return w.documents.Values()
}

// OpenDocument loads the notebook from the server unless it is already open, and makes its
// editor the active one.
func (w *Workspace) OpenDocument(ctx context.Context, uri string) (*notebook.Document, error) {
	doc, err := w.load(ctx, uri)
	if err != nil {
		return nil, err
	}

	w.focus(doc, nil)
	return doc, nil
}

func (w *Workspace) load(ctx context.Context, uri string) (*notebook.Document, error) {
	if doc, loaded := w.documents.Load(uri); loaded {
		return doc, nil
	}

	doc, err := w.client.GetNotebook(ctx, uri)
	if err != nil {
		w.log.Warn("Failed to open notebook \"%s\": %v", uri, err)
		return nil, fmt.Errorf("%w: \"%s\": %w", types.ErrDocumentNotFound, uri, err)
	}

	// Another caller may have opened the same notebook concurrently. Keep the first one.
	actual, loaded := w.documents.LoadOrStore(uri, doc)
	if !loaded {
		w.log.Debug("Opened notebook \"%s\" with %d cell(s).", uri, doc.CellCount())
	}
	return actual, nil
}

// ApplyEdit applies the edits to the notebook and saves it. Edits that do not fit the notebook
// are refused without an error.
func (w *Workspace) ApplyEdit(ctx context.Context, uri string, edits ...notebook.Edit) (bool, error) {
	doc, err := w.load(ctx, uri)
	if err != nil {
		return false, err
	}

	if err := doc.Apply(edits...); err != nil {
		if errors.Is(err, notebook.ErrInvalidRange) {
			w.log.Warn("Refusing edits to \"%s\": %v", uri, err)
			return false, nil
		}
		return false, err
	}

	w.focus(doc, nil)

	if err := w.Save(ctx, uri); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the notebook back to the server.
func (w *Workspace) Save(ctx context.Context, uri string) error {
	doc, ok := w.documents.Load(uri)
	if !ok {
		return fmt.Errorf("%w: \"%s\"", types.ErrDocumentNotFound, uri)
	}

	if err := w.client.SaveNotebook(ctx, doc); err != nil {
		w.log.Error("Failed to save notebook \"%s\": %v", uri, err)
		return err
	}
	return nil
}

// SetSelection selects the given cells of the notebook and makes its editor the active one.
func (w *Workspace) SetSelection(ctx context.Context, uri string, selection notebook.Range) error {
	doc, err := w.load(ctx, uri)
	if err != nil {
		return err
	}

	if selection.Start < 0 || selection.Start > selection.End || selection.End > doc.CellCount() {
		return fmt.Errorf("%w: selection %s is outside of the %d cell(s) of \"%s\"",
			types.ErrInvalidArgument, selection, doc.CellCount(), uri)
	}

	w.focus(doc, &selection)
	return nil
}

// CloseDocument forgets the notebook and its editor.
func (w *Workspace) CloseDocument(uri string) {
	w.documents.Delete(uri)

	w.editorsMu.Lock()
	defer w.editorsMu.Unlock()
	for i, editor := range w.editors {
		if editor.Document.URI() == uri {
			w.editors = append(w.editors[:i], w.editors[i+1:]...)
			return
		}
	}
}

// focus moves the notebook's editor to the front, creating it if necessary. A nil selection
// keeps the current selection, clamped to the notebook's cells.
func (w *Workspace) focus(doc *notebook.Document, selection *notebook.Range) {
	w.editorsMu.Lock()
	defer w.editorsMu.Unlock()

	var editor *notebook.Editor
	for i, e := range w.editors {
		if e.Document == doc {
			editor = e
			w.editors = append(w.editors[:i], w.editors[i+1:]...)
			break
		}
	}

	if editor == nil {
		editor = &notebook.Editor{Document: doc, Selection: notebook.Range{Start: 0, End: min(1, doc.CellCount())}}
	}

	if selection != nil {
		editor.Selection = *selection
	} else {
		count := doc.CellCount()
		editor.Selection.End = min(editor.Selection.End, count)
		editor.Selection.Start = min(editor.Selection.Start, editor.Selection.End)
	}

	w.editors = append([]*notebook.Editor{editor}, w.editors...)
}

func (w *Workspace) ActiveEditor() (*notebook.Editor, bool) {
	w.editorsMu.Lock()
	defer w.editorsMu.Unlock()

	if len(w.editors) == 0 {
		return nil, false
	}

	editor := *w.editors[0]
	return &editor, true
}

// VisibleEditors returns the editors from most to least recently used.
func (w *Workspace) VisibleEditors() []*notebook.Editor {
	w.editorsMu.Lock()
	defer w.editorsMu.Unlock()

	editors := make([]*notebook.Editor, 0, len(w.editors))
	for _, e := range w.editors {
		editor := *e
		editors = append(editors, &editor)
	}
	return editors
}
