package commands_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/scusemua/notebook-commands/common/configuration"
	"github.com/scusemua/notebook-commands/common/configuration/mock_configuration"
	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/kernel/mock_kernel"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/notebook/mock_notebook"
	"github.com/scusemua/notebook-commands/common/types"
	"github.com/scusemua/notebook-commands/extension/internal/commands"
	"github.com/scusemua/notebook-commands/extension/internal/commands/mock_commands"
)

var _ = Describe("Listener", func() {
	const uri = "work/analysis.ipynb"

	var (
		mockCtrl    *gomock.Controller
		workspace   *mock_notebook.MockWorkspace
		editors     *mock_notebook.MockEditorProvider
		kernels     *mock_kernel.MockProvider
		controllers *mock_kernel.MockControllerRegistry
		guard       *mock_commands.MockKernelGuard
		settings    *mock_configuration.MockStore
		prompter    *mock_commands.MockPrompter
		k           *mock_kernel.MockKernel
		registry    *commands.Registry
		listener    *commands.Listener
		doc         *notebook.Document
		editor      *notebook.Editor
		ctx         context.Context
	)

	// hostCommand registers a stand-in for a host command and returns the arguments of its calls.
	hostCommand := func(id string) *[][]interface{} {
		calls := &[][]interface{}{}
		_, err := registry.Register(id, func(_ context.Context, args ...interface{}) (interface{}, error) {
			*calls = append(*calls, args)
			return nil, nil
		})
		Expect(err).To(BeNil())
		return calls
	}

	// expectEdits expects the notebook to be edited once and returns the edits it received.
	expectEdits := func(applied bool) *[]notebook.Edit {
		received := &[]notebook.Edit{}
		workspace.EXPECT().ApplyEdit(gomock.Any(), uri, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, edits ...notebook.Edit) (bool, error) {
				*received = edits
				return applied, nil
			}).Times(1)
		return received
	}

	execute := func(id string, args ...interface{}) interface{} {
		result, err := registry.Execute(ctx, id, args...)
		Expect(err).To(BeNil())
		return result
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		workspace = mock_notebook.NewMockWorkspace(mockCtrl)
		editors = mock_notebook.NewMockEditorProvider(mockCtrl)
		kernels = mock_kernel.NewMockProvider(mockCtrl)
		controllers = mock_kernel.NewMockControllerRegistry(mockCtrl)
		guard = mock_commands.NewMockKernelGuard(mockCtrl)
		settings = mock_configuration.NewMockStore(mockCtrl)
		prompter = mock_commands.NewMockPrompter(mockCtrl)

		doc = notebook.NewDocument(uri, notebook.Metadata{LanguageInfo: &notebook.LanguageInfo{Name: "Python"}},
			notebook.CellData{Kind: notebook.Markup, Source: "# Analysis", Language: "markdown"},
			notebook.CellData{Kind: notebook.Code, Source: "x = 1", Language: "python"},
			notebook.CellData{Kind: notebook.Code, Source: "x + 1", Language: "python"},
		)
		editor = &notebook.Editor{Document: doc, Selection: notebook.Range{Start: 1, End: 2}}

		k = mock_kernel.NewMockKernel(mockCtrl)
		k.EXPECT().ID().Return("kernel-1").AnyTimes()
		k.EXPECT().Language().Return("python").AnyTimes()
		k.EXPECT().Notebook().Return(doc).AnyTimes()

		workspace.EXPECT().OpenDocument(gomock.Any(), uri).Return(doc, nil).AnyTimes()

		ctx = context.Background()
		registry = commands.NewRegistry()
		listener = commands.NewListener(registry, workspace, editors, kernels, controllers, guard, settings, prompter)
		Expect(listener.Register()).To(Succeed())
	})

	AfterEach(func() {
		listener.Dispose()
		mockCtrl.Finish()
	})

	Context("Registration", func() {
		It("Will register every command once and unregister them when disposed", func() {
			Expect(registry.Commands()).To(ContainElements(
				commands.NotebookEditorRemoveAllCells,
				commands.RestartKernelAndRunUpToSelectedCell,
				commands.AiInsertCellAbove,
				commands.AiInterruptKernel,
				commands.RestartKernelAndRunAllCells,
			))
			Expect(registry.Commands()).To(HaveLen(20))

			other := commands.NewListener(registry, workspace, editors, kernels, controllers, guard, settings, prompter)
			Expect(other.Register()).To(MatchError(commands.ErrCommandExists))
			Expect(registry.Commands()).To(HaveLen(20))

			listener.Dispose()
			Expect(registry.Commands()).To(BeEmpty())
		})
	})

	Context("Cell commands", func() {
		It("Will insert cells above and below a cell in the notebook's language", func() {
			edits := expectEdits(true)
			Expect(execute(commands.AiInsertCellAbove, uri, 1.0, 2.0, "y = 2")).To(Equal(true))
			Expect(*edits).To(Equal([]notebook.Edit{
				notebook.InsertCells(1, notebook.CellData{Kind: notebook.Code, Source: "y = 2", Language: "python"}),
			}))

			edits = expectEdits(true)
			Expect(execute(commands.AiInsertCellBelow, uri, "1", 1.0, "Notes")).To(Equal(true))
			Expect(*edits).To(Equal([]notebook.Edit{
				notebook.InsertCells(2, notebook.CellData{Kind: notebook.Markup, Source: "Notes", Language: "python"}),
			}))
		})

		It("Will return whether the host applied the edit", func() {
			expectEdits(false)
			Expect(execute(commands.AiDeleteCell, uri, 1.0)).To(Equal(false))
		})

		DescribeTable("Will refuse cell indices that are not the index of a cell",
			func(index interface{}) {
				workspace.EXPECT().ApplyEdit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

				Expect(execute(commands.AiInsertCellAbove, uri, index, 2.0, "y = 2")).To(Equal(false))
				Expect(execute(commands.AiUpdateCell, uri, index, 2.0, "y = 2")).To(Equal(false))
				Expect(execute(commands.AiDeleteCell, uri, index)).To(Equal(false))
				Expect(execute(commands.AiGetCell, uri, index)).To(Equal(false))
			},
			Entry("one past the last cell", 3.0),
			Entry("negative", -1.0),
			Entry("not a number", "first"),
			Entry("missing", nil),
		)

		It("Will use the first visible editor when no notebook is given", func() {
			editors.EXPECT().VisibleEditors().Return([]*notebook.Editor{editor}).Times(1)
			Expect(execute(commands.AiGetCell, "", 1.0)).To(Equal("x = 1"))

			editors.EXPECT().VisibleEditors().Return(nil).Times(1)
			Expect(execute(commands.AiGetCell, nil, 1.0)).To(Equal(false))
		})

		It("Will return the cell's source, kind and first output", func() {
			Expect(execute(commands.AiGetCell, uri, 2.0)).To(Equal("x + 1"))
			Expect(execute(commands.AiGetCellType, uri, 0.0)).To(Equal(1))
			Expect(execute(commands.AiGetCellType, uri, 2.0)).To(Equal(2))

			Expect(execute(commands.AiGetCellOutput, uri, 2.0)).To(Equal(false))

			cell, _ := doc.CellAt(2)
			Expect(doc.SetCellOutputs(cell, notebook.StreamOutput("stdout", "2\n"), notebook.StreamOutput("stderr", "warning\n"))).To(Succeed())
			Expect(execute(commands.AiGetCellOutput, uri, 2.0)).To(Equal("2\n"))

			Expect(doc.SetCellOutputs(cell, notebook.ErrorOutput("NameError", "name 'x' is not defined"))).To(Succeed())
			Expect(execute(commands.AiGetCellOutput, uri, 2.0)).To(Equal("NameError: name 'x' is not defined"))
		})

		It("Will update and delete a single cell", func() {
			edits := expectEdits(true)
			Expect(execute(commands.AiUpdateCell, uri, 2.0, 2.0, "x * 2")).To(Equal(true))
			Expect(*edits).To(Equal([]notebook.Edit{
				notebook.ReplaceCells(notebook.Range{Start: 2, End: 3}, notebook.CellData{Kind: notebook.Code, Source: "x * 2", Language: "python"}),
			}))

			edits = expectEdits(true)
			Expect(execute(commands.AiDeleteCell, uri, 0.0)).To(Equal(true))
			Expect(*edits).To(Equal([]notebook.Edit{notebook.DeleteCells(notebook.Range{Start: 0, End: 1})}))
		})

		It("Will run a single cell through the host", func() {
			calls := hostCommand(commands.NotebookCellExecute)

			execute(commands.AiRunCell, uri, "1")
			Expect(*calls).To(Equal([][]interface{}{{notebook.Range{Start: 1, End: 2}, uri}}))
		})
	})

	Context("Kernel listing", func() {
		python := kernel.Controller{ID: "python3", Label: "Python 3", Language: "python", KernelSpecName: "python3"}
		r := kernel.Controller{ID: "ir", Label: "R", Language: "r", KernelSpecName: "ir"}

		BeforeEach(func() {
			controllers.EXPECT().All().Return([]kernel.Controller{python, r}).AnyTimes()
		})

		It("Will list and look up controllers", func() {
			Expect(execute(commands.AiGetAllKernel)).To(Equal([]kernel.Controller{python, r}))
			Expect(execute(commands.AiGetKernel, "ir")).To(Equal(r))
			Expect(execute(commands.AiGetKernel, "julia")).To(Equal(false))
		})

		It("Will select a controller through the host", func() {
			calls := hostCommand(commands.NotebookSelectKernel)

			execute(commands.AiSelectKernel, "ir")
			Expect(*calls).To(Equal([][]interface{}{{map[string]interface{}{"id": "ir", "extension": commands.ExtensionID}}}))
		})
	})

	Context("Editor commands", func() {
		It("Will run all cells and add cells only when there is an active editor", func() {
			runAll := hostCommand(commands.NotebookExecute)
			addBelow := hostCommand(commands.NotebookInsertCodeCellBelow)

			editors.EXPECT().ActiveEditor().Return(nil, false).Times(2)
			execute(commands.NotebookEditorRunAllCells)
			execute(commands.NotebookEditorAddCellBelow)
			Expect(*runAll).To(BeEmpty())
			Expect(*addBelow).To(BeEmpty())

			editors.EXPECT().ActiveEditor().Return(editor, true).Times(2)
			execute(commands.NotebookEditorRunAllCells)
			execute(commands.NotebookEditorAddCellBelow)
			Expect(*runAll).To(HaveLen(1))
			Expect(*addBelow).To(HaveLen(1))
		})

		It("Will replace every cell with one empty code cell", func() {
			editors.EXPECT().ActiveEditor().Return(editor, true).Times(1)
			edits := expectEdits(true)

			execute(commands.NotebookEditorRemoveAllCells)
			Expect(*edits).To(Equal([]notebook.Edit{
				notebook.ReplaceCells(notebook.Range{Start: 0, End: 3}, notebook.CellData{Kind: notebook.Code, Source: "", Language: "python"}),
			}))
		})
	})

	Context("Kernel commands", func() {
		askForRestart := func(ask bool) {
			settings.EXPECT().Settings(gomock.Any(), uri).Return(configuration.Settings{AskForKernelRestart: ask}, nil).Times(1)
		}

		BeforeEach(func() {
			workspace.EXPECT().Documents().Return([]*notebook.Document{doc}).AnyTimes()
		})

		It("Will restart without asking when the user does not want to be asked", func() {
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			askForRestart(false)
			prompter.EXPECT().ShowInformationMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			guard.EXPECT().Request(gomock.Any(), k, kernel.Restart).Return(nil).Times(1)

			execute(commands.RestartKernel, uri)
		})

		It("Will restart once the user confirms", func() {
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			askForRestart(true)
			gomock.InOrder(
				prompter.EXPECT().ShowInformationMessage(gomock.Any(), commands.RestartKernelMessage, true,
					commands.RestartKernelMessageYes, commands.RestartKernelMessageDontAskAgain).
					Return(commands.RestartKernelMessageYes, true).Times(1),
				guard.EXPECT().Request(gomock.Any(), k, kernel.Restart).Return(nil).Times(1),
			)
			settings.EXPECT().UpdateSetting(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			execute(commands.RestartKernel, map[string]interface{}{
				"notebookEditor": map[string]interface{}{"notebookUri": uri},
			})
		})

		It("Will stop asking globally when told not to ask again", func() {
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			askForRestart(true)
			gomock.InOrder(
				prompter.EXPECT().ShowInformationMessage(gomock.Any(), gomock.Any(), true, gomock.Any(), gomock.Any()).
					Return(commands.RestartKernelMessageDontAskAgain, true).Times(1),
				settings.EXPECT().UpdateSetting(gomock.Any(), configuration.KeyAskForKernelRestart, false, "", configuration.Global).
					Return(nil).Times(1),
				guard.EXPECT().Request(gomock.Any(), k, kernel.Restart).Return(nil).Times(1),
			)

			execute(commands.RestartKernel, uri)
		})

		It("Will not restart when the question is dismissed", func() {
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			askForRestart(true)
			prompter.EXPECT().ShowInformationMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return("", false).Times(1)
			guard.EXPECT().Request(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			execute(commands.RestartKernel, uri)
		})

		It("Will use the active editor's notebook when none is given", func() {
			editors.EXPECT().ActiveEditor().Return(editor, true).Times(1)
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			guard.EXPECT().Request(gomock.Any(), k, kernel.Interrupt).Return(nil).Times(1)

			execute(commands.InterruptKernel)
		})

		It("Will do nothing for notebooks that are not open or have no kernel", func() {
			guard.EXPECT().Request(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			execute(commands.InterruptKernel, "work/closed.ipynb")
			execute(commands.RestartKernel, "work/closed.ipynb")

			kernels.EXPECT().Get(doc).Return(nil, false).Times(2)
			execute(commands.InterruptKernel, uri)
			execute(commands.AiRestartKernel, uri)

			editors.EXPECT().ActiveEditor().Return(nil, false).Times(1)
			execute(commands.RestartKernel)
		})

		It("Will restart and then run every cell", func() {
			runAll := hostCommand(commands.NotebookExecute)

			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			askForRestart(false)
			guard.EXPECT().Request(gomock.Any(), k, kernel.Restart).Return(nil).Times(1)
			editors.EXPECT().ActiveEditor().Return(editor, true).Times(1)

			execute(commands.RestartKernelAndRunAllCells, uri)
			Expect(*runAll).To(HaveLen(1))
		})

		It("Will restart and then run the cells up to the end of the selection", func() {
			runCells := hostCommand(commands.NotebookCellExecute)

			editors.EXPECT().ActiveEditor().Return(editor, true).Times(1)
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			askForRestart(false)
			guard.EXPECT().Request(gomock.Any(), k, kernel.Restart).Return(nil).Times(1)

			execute(commands.RestartKernelAndRunUpToSelectedCell)
			Expect(*runCells).To(Equal([][]interface{}{{map[string]interface{}{
				"ranges":   []interface{}{notebook.Range{Start: 0, End: 2}},
				"document": uri,
			}}}))
		})

		It("Will restart without asking from the AI command", func() {
			settings.EXPECT().Settings(gomock.Any(), gomock.Any()).Times(0)
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			guard.EXPECT().Request(gomock.Any(), k, kernel.Restart).Return(nil).Times(1)

			execute(commands.AiRestartKernel, uri)
		})

		It("Will fail to interrupt from the AI command without any notebook", func() {
			editors.EXPECT().VisibleEditors().Return(nil).Times(1)

			_, err := registry.Execute(ctx, commands.AiInterruptKernel)
			Expect(err).To(MatchError(types.ErrNoActiveEditor))
		})

		It("Will wait for the interrupt to finish", func() {
			connector := mock_kernel.NewMockConnector(mockCtrl)
			display := mock_kernel.NewMockErrorDisplay(mockCtrl)
			execution := mock_kernel.NewMockExecution(mockCtrl)

			realGuard := kernel.NewGuard(kernels, controllers, connector, display)
			listener.Dispose()
			listener = commands.NewListener(registry, workspace, editors, kernels, controllers, realGuard, settings, prompter)
			Expect(listener.Register()).To(Succeed())

			var interrupted atomic.Bool
			kernels.EXPECT().Get(doc).Return(k, true).Times(1)
			kernels.EXPECT().Execution(k).Return(execution).Times(1)
			execution.EXPECT().PendingCells().Return(nil).Times(1)
			controllers.EXPECT().Selected(doc).Return(kernel.Controller{ID: "python3"}, true).Times(1)
			connector.EXPECT().Run(gomock.Any(), gomock.Any(), k, kernel.Interrupt, kernel.DisplayOptions{Disable: false}).
				DoAndReturn(func(_ context.Context, _ kernel.Controller, _ kernel.Kernel, _ kernel.Operation, _ kernel.DisplayOptions) error {
					time.Sleep(50 * time.Millisecond)
					interrupted.Store(true)
					return nil
				}).Times(1)

			execute(commands.AiInterruptKernel, uri)
			Expect(interrupted.Load()).To(BeTrue())
		})
	})
})
