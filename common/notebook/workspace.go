package notebook

import "context"

//go:generate mockgen -source=workspace.go -destination=mock_notebook/mock_workspace.go

// Workspace is the host's view of the open notebook documents.
type Workspace interface {
	// Documents returns the notebook documents that are currently open.
	Documents() []*Document

	// OpenDocument returns the document with the given URI, opening it first if necessary.
	OpenDocument(ctx context.Context, uri string) (*Document, error)

	// ApplyEdit applies the edits to the document with the given URI.
	// ApplyEdit returns false if the host refused to apply the edits.
	ApplyEdit(ctx context.Context, uri string, edits ...Edit) (bool, error)
}

// EditorProvider exposes the notebook editors that are currently shown.
type EditorProvider interface {
	ActiveEditor() (*Editor, bool)
	VisibleEditors() []*Editor
}

// FindOpenDocument returns the open document with the given URI.
func FindOpenDocument(workspace Workspace, uri string) (*Document, bool) {
	for _, doc := range workspace.Documents() {
		if doc.URI() == uri {
			return doc, true
		}
	}
	return nil, false
}
