package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	OutputTypeStream        = "stream"
	OutputTypeExecuteResult = "execute_result"
	OutputTypeDisplayData   = "display_data"
	OutputTypeError         = "error"

	MimeTextPlain = "text/plain"
)

// CellKind mirrors the editor's numeric cell kinds.
type CellKind int

const (
	Markup CellKind = 1
	Code   CellKind = 2
)

// CellKindFromArg converts the numeric kind used by command arguments. Anything other than 2 is Markup.
func CellKindFromArg(kind int) CellKind {
	if kind == int(Code) {
		return Code
	}
	return Markup
}

func (k CellKind) String() string {
	switch k {
	case Code:
		return "code"
	case Markup:
		return "markup"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// CellData describes a cell that does not yet belong to a Document.
type CellData struct {
	Kind           CellKind
	Source         string
	Language       string
	Outputs        []Output
	ExecutionCount *int
	Metadata       map[string]interface{}
}

// Cell is a cell owned by a Document. A Cell's fields are guarded by the owning Document's lock
// and are only modified through Document methods.
type Cell struct {
	doc *Document

	kind           CellKind
	source         string
	language       string
	outputs        []Output
	executionCount *int
	metadata       map[string]interface{}
}

func newCell(doc *Document, data CellData) *Cell {
	metadata := data.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Cell{
		doc:            doc,
		kind:           data.Kind,
		source:         data.Source,
		language:       data.Language,
		outputs:        append([]Output(nil), data.Outputs...),
		executionCount: data.ExecutionCount,
		metadata:       metadata,
	}
}

// Document returns the Document that the Cell was created in.
func (c *Cell) Document() *Document {
	return c.doc
}

func (c *Cell) Kind() CellKind {
	c.doc.mu.RLock()
	defer c.doc.mu.RUnlock()
	return c.kind
}

func (c *Cell) Source() string {
	c.doc.mu.RLock()
	defer c.doc.mu.RUnlock()
	return c.source
}

func (c *Cell) Language() string {
	c.doc.mu.RLock()
	defer c.doc.mu.RUnlock()
	return c.language
}

// Outputs returns a copy of the cell's outputs.
func (c *Cell) Outputs() []Output {
	c.doc.mu.RLock()
	defer c.doc.mu.RUnlock()
	return append([]Output(nil), c.outputs...)
}

func (c *Cell) ExecutionCount() (int, bool) {
	c.doc.mu.RLock()
	defer c.doc.mu.RUnlock()

	if c.executionCount == nil {
		return 0, false
	}
	return *c.executionCount, true
}

func (c *Cell) String() string {
	return fmt.Sprintf("Cell[%s, Document=%s]", c.Kind(), c.doc.URI())
}

// Output is a single nbformat v4 cell output.
type Output struct {
	OutputType     string
	Name           string
	Text           string
	Data           map[string]interface{}
	Metadata       map[string]interface{}
	ExecutionCount *int
	EName          string
	EValue         string
	Traceback      []string
}

func StreamOutput(name string, text string) Output {
	return Output{OutputType: OutputTypeStream, Name: name, Text: text}
}

func ErrorOutput(ename string, evalue string, traceback ...string) Output {
	return Output{OutputType: OutputTypeError, EName: ename, EValue: evalue, Traceback: traceback}
}

func ExecuteResultOutput(data map[string]interface{}, executionCount *int) Output {
	return Output{OutputType: OutputTypeExecuteResult, Data: data, ExecutionCount: executionCount}
}

func DisplayDataOutput(data map[string]interface{}) Output {
	return Output{OutputType: OutputTypeDisplayData, Data: data}
}

// PlainText returns the textual representation of the output, if it has one.
func (o Output) PlainText() (string, bool) {
	switch o.OutputType {
	case OutputTypeStream:
		return o.Text, true
	case OutputTypeError:
		return fmt.Sprintf("%s: %s", o.EName, o.EValue), true
	case OutputTypeExecuteResult, OutputTypeDisplayData:
		text, ok := o.Data[MimeTextPlain]
		if !ok {
			return "", false
		}
		return joinMultiline(text)
	default:
		return "", false
	}
}

func joinMultiline(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		return strings.Join(t, ""), true
	case []interface{}:
		var sb strings.Builder
		for _, line := range t {
			s, ok := line.(string)
			if !ok {
				return "", false
			}
			sb.WriteString(s)
		}
		return sb.String(), true
	default:
		return "", false
	}
}

// MarshalJSON encodes the output with exactly the fields nbformat v4 allows for its output type.
func (o Output) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"output_type": o.OutputType,
	}

	switch o.OutputType {
	case OutputTypeStream:
		m["name"] = o.Name
		m["text"] = MultilineString(o.Text)
	case OutputTypeError:
		m["ename"] = o.EName
		m["evalue"] = o.EValue
		traceback := o.Traceback
		if traceback == nil {
			traceback = []string{}
		}
		m["traceback"] = traceback
	case OutputTypeExecuteResult, OutputTypeDisplayData:
		m["data"] = nonNilMap(o.Data)
		m["metadata"] = nonNilMap(o.Metadata)
		if o.OutputType == OutputTypeExecuteResult {
			m["execution_count"] = o.ExecutionCount
		}
	default:
		return nil, fmt.Errorf("%w: unknown output type \"%s\"", ErrInvalidNotebook, o.OutputType)
	}

	return json.Marshal(m)
}

func (o *Output) UnmarshalJSON(data []byte) error {
	var raw struct {
		OutputType     string                 `json:"output_type"`
		Name           string                 `json:"name"`
		Text           MultilineString        `json:"text"`
		Data           map[string]interface{} `json:"data"`
		Metadata       map[string]interface{} `json:"metadata"`
		ExecutionCount *int                   `json:"execution_count"`
		EName          string                 `json:"ename"`
		EValue         string                 `json:"evalue"`
		Traceback      []string               `json:"traceback"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Output{
		OutputType:     raw.OutputType,
		Name:           raw.Name,
		Text:           string(raw.Text),
		Data:           raw.Data,
		Metadata:       raw.Metadata,
		ExecutionCount: raw.ExecutionCount,
		EName:          raw.EName,
		EValue:         raw.EValue,
		Traceback:      raw.Traceback,
	}
	return nil
}

// MultilineString is an nbformat multi-line string, which may be encoded either as a single string
// or as a list of lines.
type MultilineString string

func (s *MultilineString) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = MultilineString(single)
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("%w: expected a string or a list of strings", ErrInvalidNotebook)
	}

	*s = MultilineString(strings.Join(lines, ""))
	return nil
}

// MarshalJSON encodes the string as a list of lines, each line keeping its trailing newline.
func (s MultilineString) MarshalJSON() ([]byte, error) {
	lines := strings.SplitAfter(string(s), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return json.Marshal(lines)
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return make(map[string]interface{})
	}
	return m
}
