package commands

const (
	NotebookEditorRemoveAllCells        = "jupyter.notebookeditor.removeallcells"
	NotebookEditorRunAllCells           = "jupyter.notebookeditor.runallcells"
	NotebookEditorAddCellBelow          = "jupyter.notebookeditor.addcellbelow"
	RestartKernel                       = "jupyter.notebookeditor.restartkernel"
	InterruptKernel                     = "jupyter.notebookeditor.interruptkernel"
	RestartKernelAndRunAllCells         = "jupyter.notebookeditor.restartkernelandrunallcells"
	RestartKernelAndRunUpToSelectedCell = "jupyter.restartkernelandrunuptoselectedcell"

	AiInsertCellAbove = "jupyter.ai.insertCellAbove"
	AiInsertCellBelow = "jupyter.ai.insertCellBelow"
	AiGetCell         = "jupyter.ai.getCell"
	AiGetCellOutput   = "jupyter.ai.getCellOutput"
	AiGetCellType     = "jupyter.ai.getCellType"
	AiUpdateCell      = "jupyter.ai.updateCell"
	AiDeleteCell      = "jupyter.ai.deleteCell"
	AiRunCell         = "jupyter.ai.runCell"
	AiGetAllKernel    = "jupyter.ai.getAllKernel"
	AiGetKernel       = "jupyter.ai.getKernel"
	AiSelectKernel    = "jupyter.ai.selectKernel"
	AiRestartKernel   = "jupyter.ai.restartKernel"
	AiInterruptKernel = "jupyter.ai.interruptKernel"

	ListCommands = "jupyter.listCommands"
)

// Commands implemented by the notebook host.
const (
	NotebookOpen                = "notebook.open"
	NotebookSetSelection        = "notebook.setSelection"
	NotebookCellExecute         = "notebook.cell.execute"
	NotebookExecute             = "notebook.execute"
	NotebookInsertCodeCellBelow = "notebook.cell.insertCodeCellBelow"
	NotebookSelectKernel        = "notebook.selectKernel"
)

const (
	// ExtensionID identifies this daemon as the owner of the controllers it selects.
	ExtensionID = "ms-toolsai.jupyter"

	RestartKernelMessage             = "Do you want to restart the Jupyter kernel? All variables will be lost."
	RestartKernelMessageYes          = "Restart"
	RestartKernelMessageDontAskAgain = "Don't Ask Again"
)
