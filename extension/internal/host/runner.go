package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/jupyter/messaging"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/types"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
)

// Runner executes notebook cells on their notebook's kernel, one cell at a time per kernel.
type Runner struct {
	log logger.Logger

	client    *jupyterapi.Client
	workspace *Workspace
	kernels   *KernelProvider
}

func NewRunner(client *jupyterapi.Client, workspace *Workspace, kernels *KernelProvider) *Runner {
	runner := &Runner{
		client:    client,
		workspace: workspace,
		kernels:   kernels,
	}
	config.InitLogger(&runner.log, runner)

	return runner
}

// ExecuteCells runs the code cells in the given ranges in notebook order. Markup cells are
// skipped. Execution stops at the first cell that fails. The notebook is saved afterwards.
func (r *Runner) ExecuteCells(ctx context.Context, doc *notebook.Document, ranges ...notebook.Range) error {
	k, ok := r.kernels.Get(doc)
	if !ok {
		return fmt.Errorf("%w: notebook \"%s\" has no kernel", types.ErrKernelNotFound, doc.URI())
	}

	cells, err := codeCells(doc, ranges)
	if err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
	}

	execution := r.kernels.execution(k.ID())
	queued := execution.enqueue(cells...)

	execution.running.Lock()
	defer execution.running.Unlock()

	runCtx, endRun := execution.startRun(ctx)
	defer endRun()

	r.log.Debug("Executing %d cell(s) of \"%s\" on kernel %s.", len(queued), doc.URI(), k.ID())

	var runErr error
	for i, cell := range queued {
		// Cells ended while queued were interrupted, or failed to be.
		if !execution.IsPending(cell) {
			continue
		}

		success, err := r.executeCell(runCtx, k.ID(), execution, cell)
		if err != nil && runCtx.Err() != nil && ctx.Err() == nil {
			err = fmt.Errorf("%w: kernel %s was restarted", jupyterapi.ErrExecutionAborted, k.ID())
		}
		if err != nil || !success {
			for _, remaining := range queued[i:] {
				execution.EndCell(remaining, false)
			}
			runErr = err
			break
		}
	}

	if err := r.workspace.Save(ctx, doc.URI()); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func (r *Runner) executeCell(ctx context.Context, kernelID string, execution *CellExecution, cell *notebook.Cell) (bool, error) {
	doc := cell.Document()

	result, err := r.client.Execute(ctx, kernelID, cell.Source())
	if err != nil {
		r.log.Error("Failed to execute cell %d of \"%s\": %v", doc.IndexOf(cell), doc.URI(), err)
		return false, err
	}

	// The cell's outputs already describe why it was ended.
	if !execution.IsPending(cell) {
		return result.Status == messaging.MessageStatusOK, nil
	}

	if err := doc.SetCellOutputs(cell, result.Outputs...); err != nil {
		r.log.Warn("Could not write the outputs of a cell of \"%s\": %v", doc.URI(), err)
	}
	if result.ExecutionCount != nil {
		_ = doc.SetExecutionCount(cell, *result.ExecutionCount)
	}

	success := result.Status == messaging.MessageStatusOK
	execution.EndCell(cell, success)
	return success, nil
}

// codeCells returns the executable code cells in the ranges, in notebook order and without duplicates.
func codeCells(doc *notebook.Document, ranges []notebook.Range) ([]*notebook.Cell, error) {
	all := doc.Cells()
	selected := make([]bool, len(all))

	for _, r := range ranges {
		if r.Start < 0 || r.Start > r.End || r.End > len(all) {
			return nil, fmt.Errorf("%w: range %s is outside of the %d cell(s) of \"%s\"",
				notebook.ErrInvalidRange, r, len(all), doc.URI())
		}
		for i := r.Start; i < r.End; i++ {
			selected[i] = true
		}
	}

	cells := make([]*notebook.Cell, 0, len(all))
	for i, cell := range all {
		if selected[i] && cell.Kind() == notebook.Code && cell.Language() != notebook.RawCellLanguage {
			cells = append(cells, cell)
		}
	}
	return cells, nil
}
