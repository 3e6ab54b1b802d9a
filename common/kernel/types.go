package kernel

import (
	"context"
	"fmt"

	"github.com/scusemua/notebook-commands/common/notebook"
)

//go:generate mockgen -source=types.go -destination=mock_kernel/mock_kernel.go

// Operation is a kernel lifecycle operation that is subject to single-flight coalescing.
type Operation int

const (
	Interrupt Operation = iota
	Restart
)

func (op Operation) String() string {
	switch op {
	case Interrupt:
		return "interrupt"
	case Restart:
		return "restart"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// FailureMessage is the user-facing description of a failed operation.
func FailureMessage(op Operation, err error) string {
	if err == nil {
		return fmt.Sprintf("Failed to %s the kernel.", op)
	}
	return fmt.Sprintf("Failed to %s the kernel. %v", op, err)
}

// Kernel is a running kernel bound to a notebook document.
type Kernel interface {
	// ID returns the stable identifier of the kernel. It is used as the key of per-kernel state.
	ID() string

	// Notebook returns the document the kernel is attached to.
	Notebook() *notebook.Document

	// Language returns the language reported by the kernel, or an empty string if it is not known yet.
	Language() string
}

// Execution tracks the cells a kernel is executing or has queued.
type Execution interface {
	// PendingCells returns the executing cell followed by the queued cells, in execution order.
	PendingCells() []*notebook.Cell

	// EndCell ends the execution of the given cell.
	EndCell(cell *notebook.Cell, success bool)
}

// Provider resolves the kernel of a document.
type Provider interface {
	Get(doc *notebook.Document) (Kernel, bool)
	Execution(kernel Kernel) Execution
}

// Controller executes a notebook's cells against a particular kind of kernel.
type Controller struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Language       string `json:"language"`
	KernelSpecName string `json:"kernelSpecName"`
}

func (c Controller) String() string {
	return fmt.Sprintf("Controller[ID=%s, Label=%s, Language=%s]", c.ID, c.Label, c.Language)
}

// ControllerRegistry knows every available controller and which one is selected for a document.
type ControllerRegistry interface {
	All() []Controller
	Selected(doc *notebook.Document) (Controller, bool)
}

// DisplayOptions controls whether the connector reports progress and errors itself.
type DisplayOptions struct {
	Disable bool
}

// Connector performs the actual kernel operation.
type Connector interface {
	Run(ctx context.Context, controller Controller, kernel Kernel, op Operation, opts DisplayOptions) error
}

// ErrorDisplay shows failures to the user.
type ErrorDisplay interface {
	// DisplayErrorInCell renders the failure of op into the output of the given cell.
	DisplayErrorInCell(ctx context.Context, kernel Kernel, cell *notebook.Cell, op Operation, err error) error

	// ShowErrorMessage shows a standalone error notification.
	ShowErrorMessage(ctx context.Context, message string)
}
