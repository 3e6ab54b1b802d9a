package notebook

import "fmt"

// Range is a half-open range [Start, End) of cell indices.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

func (r Range) within(cellCount int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= cellCount
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Edit replaces the cells in Range with Cells.
type Edit struct {
	Range Range
	Cells []CellData
}

// InsertCells returns an Edit that inserts cells before the cell currently at index.
func InsertCells(index int, cells ...CellData) Edit {
	return Edit{Range: Range{Start: index, End: index}, Cells: cells}
}

func ReplaceCells(r Range, cells ...CellData) Edit {
	return Edit{Range: r, Cells: cells}
}

func DeleteCells(r Range) Edit {
	return Edit{Range: r}
}

func (e Edit) String() string {
	return fmt.Sprintf("Edit[Range=%s, NewCells=%d]", e.Range, len(e.Cells))
}
