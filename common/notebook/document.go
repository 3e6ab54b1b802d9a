package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// DefaultLanguage is used for new cells when a notebook's metadata does not name a language.
	DefaultLanguage = "python"
)

var (
	ErrInvalidRange    = errors.New("invalid cell range")
	ErrCellNotFound    = errors.New("cell does not belong to the notebook")
	ErrInvalidNotebook = errors.New("invalid notebook")
)

type KernelSpec struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language,omitempty"`
}

type LanguageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Metadata is the notebook-level metadata. Keys other than the kernelspec and language_info are
// preserved verbatim in Extra.
type Metadata struct {
	KernelSpec   *KernelSpec
	LanguageInfo *LanguageInfo
	Extra        map[string]json.RawMessage
}

// PreferredLanguage returns the language that new cells of a notebook with the given metadata should use.
func PreferredLanguage(metadata Metadata) string {
	if metadata.LanguageInfo != nil && metadata.LanguageInfo.Name != "" {
		return strings.ToLower(metadata.LanguageInfo.Name)
	}

	if metadata.KernelSpec != nil && metadata.KernelSpec.Language != "" {
		return strings.ToLower(metadata.KernelSpec.Language)
	}

	return DefaultLanguage
}

// Document is an open notebook. All methods are safe for concurrent use.
type Document struct {
	mu sync.RWMutex

	uri      string
	cells    []*Cell
	metadata Metadata

	nbformat      int
	nbformatMinor int

	// version is incremented every time the document's cells change.
	version int
}

// NewDocument creates a Document with the given cells.
func NewDocument(uri string, metadata Metadata, cells ...CellData) *Document {
	doc := &Document{
		uri:           uri,
		metadata:      metadata,
		nbformat:      4,
		nbformatMinor: 5,
	}

	doc.cells = make([]*Cell, 0, len(cells))
	for _, data := range cells {
		doc.cells = append(doc.cells, newCell(doc, data))
	}

	return doc
}

func (d *Document) URI() string {
	return d.uri
}

func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *Document) Metadata() Metadata {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metadata
}

// SetMetadata replaces the notebook-level metadata.
func (d *Document) SetMetadata(metadata Metadata) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metadata = metadata
}

func (d *Document) CellCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cells)
}

// CellAt returns the cell at the given index, if the index is in range.
func (d *Document) CellAt(index int) (*Cell, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if index < 0 || index >= len(d.cells) {
		return nil, false
	}
	return d.cells[index], true
}

// Cells returns a snapshot of the document's cells in order.
func (d *Document) Cells() []*Cell {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Cell(nil), d.cells...)
}

// IndexOf returns the index of the given cell, or -1 if the cell is not (or no longer) part of the document.
func (d *Document) IndexOf(cell *Cell) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.indexOfLocked(cell)
}

func (d *Document) indexOfLocked(cell *Cell) int {
	for i, c := range d.cells {
		if c == cell {
			return i
		}
	}
	return -1
}

// Apply applies the edits in order. Either all edits are applied or, if any of them is invalid
// with respect to the document as modified by the preceding edits, none are.
func (d *Document) Apply(edits ...Edit) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	working := append([]*Cell(nil), d.cells...)
	for i, edit := range edits {
		if !edit.Range.within(len(working)) {
			return fmt.Errorf("%w: edit %d of %d has range %s but the notebook has %d cell(s)",
				ErrInvalidRange, i+1, len(edits), edit.Range, len(working))
		}

		replacement := make([]*Cell, 0, len(edit.Cells))
		for _, data := range edit.Cells {
			replacement = append(replacement, newCell(d, data))
		}

		next := make([]*Cell, 0, len(working)-edit.Range.Len()+len(replacement))
		next = append(next, working[:edit.Range.Start]...)
		next = append(next, replacement...)
		next = append(next, working[edit.Range.End:]...)
		working = next
	}

	d.cells = working
	d.version += 1
	return nil
}

// SetCellOutputs replaces all outputs of the given cell.
func (d *Document) SetCellOutputs(cell *Cell, outputs ...Output) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOfLocked(cell) < 0 {
		return ErrCellNotFound
	}

	cell.outputs = append([]Output(nil), outputs...)
	d.version += 1
	return nil
}

// AppendCellOutputs appends outputs to the given cell.
func (d *Document) AppendCellOutputs(cell *Cell, outputs ...Output) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOfLocked(cell) < 0 {
		return ErrCellNotFound
	}

	cell.outputs = append(cell.outputs, outputs...)
	d.version += 1
	return nil
}

func (d *Document) SetExecutionCount(cell *Cell, executionCount int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOfLocked(cell) < 0 {
		return ErrCellNotFound
	}

	cell.executionCount = &executionCount
	d.version += 1
	return nil
}

func (d *Document) String() string {
	return fmt.Sprintf("Document[URI=%s, Cells=%d]", d.uri, d.CellCount())
}

// Editor is a notebook document shown in an editor, along with its selection.
type Editor struct {
	Document  *Document
	Selection Range
}
