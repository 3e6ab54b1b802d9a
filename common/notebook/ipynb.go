package notebook

import (
	"encoding/json"
	"fmt"
)

const (
	ipynbCellTypeCode     = "code"
	ipynbCellTypeMarkdown = "markdown"
	ipynbCellTypeRaw      = "raw"

	// RawCellLanguage is the language given to raw nbformat cells, which are shown as code cells
	// but never executed.
	RawCellLanguage  = "raw"
	MarkdownLanguage = "markdown"
)

type ipynbNotebook struct {
	Cells         []ipynbCell                `json:"cells"`
	Metadata      map[string]json.RawMessage `json:"metadata"`
	NBFormat      int                        `json:"nbformat"`
	NBFormatMinor int                        `json:"nbformat_minor"`
}

type ipynbCell struct {
	ID             string                 `json:"id,omitempty"`
	CellType       string                 `json:"cell_type"`
	Source         MultilineString        `json:"source"`
	Metadata       map[string]interface{} `json:"metadata"`
	Outputs        []Output               `json:"outputs,omitempty"`
	ExecutionCount *int                   `json:"execution_count,omitempty"`
}

// MarshalJSON emits outputs and execution_count for code cells only, where nbformat requires them.
func (c ipynbCell) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"cell_type": c.CellType,
		"source":    c.Source,
		"metadata":  nonNilMap(c.Metadata),
	}

	if c.ID != "" {
		m["id"] = c.ID
	}

	if c.CellType == ipynbCellTypeCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []Output{}
		}
		m["outputs"] = outputs
		m["execution_count"] = c.ExecutionCount
	}

	return json.Marshal(m)
}

// Decode parses an nbformat v4 notebook into a Document with the given URI.
func Decode(uri string, data []byte) (*Document, error) {
	var nb ipynbNotebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotebook, err)
	}

	if nb.NBFormat != 4 {
		return nil, fmt.Errorf("%w: unsupported nbformat %d", ErrInvalidNotebook, nb.NBFormat)
	}

	metadata, err := decodeMetadata(nb.Metadata)
	if err != nil {
		return nil, err
	}

	language := PreferredLanguage(metadata)
	cells := make([]CellData, 0, len(nb.Cells))
	for i, c := range nb.Cells {
		data := CellData{
			Source:         string(c.Source),
			Metadata:       c.Metadata,
			Outputs:        c.Outputs,
			ExecutionCount: c.ExecutionCount,
		}

		if c.ID != "" {
			if data.Metadata == nil {
				data.Metadata = make(map[string]interface{})
			}
			data.Metadata[cellIdMetadataKey] = c.ID
		}

		switch c.CellType {
		case ipynbCellTypeCode:
			data.Kind, data.Language = Code, language
		case ipynbCellTypeMarkdown:
			data.Kind, data.Language = Markup, MarkdownLanguage
		case ipynbCellTypeRaw:
			data.Kind, data.Language = Code, RawCellLanguage
		default:
			return nil, fmt.Errorf("%w: cell %d has unknown type \"%s\"", ErrInvalidNotebook, i, c.CellType)
		}

		cells = append(cells, data)
	}

	doc := NewDocument(uri, metadata, cells...)
	doc.nbformat, doc.nbformatMinor = nb.NBFormat, nb.NBFormatMinor
	return doc, nil
}

// cellIdMetadataKey is where the nbformat 4.5 cell ID is kept while the cell is open.
const cellIdMetadataKey = "__nbformat_cell_id"

// Encode serializes the Document as an nbformat v4 notebook.
func Encode(doc *Document) ([]byte, error) {
	doc.mu.RLock()
	defer doc.mu.RUnlock()

	nb := ipynbNotebook{
		Cells:         make([]ipynbCell, 0, len(doc.cells)),
		Metadata:      make(map[string]json.RawMessage),
		NBFormat:      doc.nbformat,
		NBFormatMinor: doc.nbformatMinor,
	}

	for k, v := range doc.metadata.Extra {
		nb.Metadata[k] = v
	}

	if doc.metadata.KernelSpec != nil {
		encoded, err := json.Marshal(doc.metadata.KernelSpec)
		if err != nil {
			return nil, err
		}
		nb.Metadata["kernelspec"] = encoded
	}

	if doc.metadata.LanguageInfo != nil {
		encoded, err := json.Marshal(doc.metadata.LanguageInfo)
		if err != nil {
			return nil, err
		}
		nb.Metadata["language_info"] = encoded
	}

	for _, c := range doc.cells {
		cell := ipynbCell{
			Source:   MultilineString(c.source),
			Metadata: make(map[string]interface{}, len(c.metadata)),
		}

		for k, v := range c.metadata {
			if k == cellIdMetadataKey {
				cell.ID, _ = v.(string)
				continue
			}
			cell.Metadata[k] = v
		}

		switch {
		case c.kind == Markup:
			cell.CellType = ipynbCellTypeMarkdown
		case c.language == RawCellLanguage:
			cell.CellType = ipynbCellTypeRaw
		default:
			cell.CellType = ipynbCellTypeCode
			cell.Outputs = c.outputs
			cell.ExecutionCount = c.executionCount
		}

		nb.Cells = append(nb.Cells, cell)
	}

	return json.MarshalIndent(nb, "", " ")
}

func decodeMetadata(raw map[string]json.RawMessage) (Metadata, error) {
	metadata := Metadata{Extra: make(map[string]json.RawMessage)}

	for key, value := range raw {
		switch key {
		case "kernelspec":
			var spec KernelSpec
			if err := json.Unmarshal(value, &spec); err != nil {
				return metadata, fmt.Errorf("%w: malformed kernelspec: %v", ErrInvalidNotebook, err)
			}
			metadata.KernelSpec = &spec
		case "language_info":
			var info LanguageInfo
			if err := json.Unmarshal(value, &info); err != nil {
				return metadata, fmt.Errorf("%w: malformed language_info: %v", ErrInvalidNotebook, err)
			}
			metadata.LanguageInfo = &info
		default:
			metadata.Extra[key] = value
		}
	}

	return metadata, nil
}
