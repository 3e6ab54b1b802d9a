package host_test

import (
	"context"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scusemua/notebook-commands/common/configuration"
	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/extension/internal/commands"
	"github.com/scusemua/notebook-commands/extension/internal/host"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi/jupyterapitest"
	"github.com/scusemua/notebook-commands/extension/internal/notifier"
)

type notificationRecorder struct {
	mu            sync.Mutex
	notifications []notifier.Notification
}

func (r *notificationRecorder) Notify(_ context.Context, n notifier.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *notificationRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := make([]string, 0, len(r.notifications))
	for _, n := range r.notifications {
		messages = append(messages, n.Message)
	}
	return messages
}

var _ = Describe("Notebook commands against a Jupyter Server", func() {
	const notebookPath = "work/analysis.ipynb"

	var (
		server        *jupyterapitest.Server
		h             *host.Host
		registry      *commands.Registry
		listener      *commands.Listener
		settings      *configuration.MemoryStore
		notifications *notificationRecorder
		kernelId      string
		ctx           context.Context
		cancel        context.CancelFunc
	)

	setUp := func(answer string) {
		client := jupyterapi.NewClient(server.URL, jupyterapitest.Token, 5*time.Second)

		h = host.NewHost(client, 5*time.Second)
		n := notifier.NewNotifier(h.Kernels, GinkgoWriter)
		n.AddSink(notifications)
		h.SetReporter(n)

		guard := kernel.NewGuard(h.Kernels, h.Controllers, h.Connector, n)

		registry = commands.NewRegistry()
		Expect(h.RegisterBuiltins(registry)).To(Succeed())

		listener = commands.NewListener(registry, h.Workspace, h.Workspace, h.Kernels, h.Controllers, guard,
			settings, host.NewFixedPrompter(answer))
		Expect(listener.Register()).To(Succeed())
	}

	BeforeEach(func() {
		server = jupyterapitest.NewServer()
		kernelId = server.AddNotebook(notebookPath, analysisNotebook, "python3")
		settings = configuration.NewMemoryStore()
		notifications = &notificationRecorder{}
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	})

	AfterEach(func() {
		cancel()
		listener.Dispose()
		h.Dispose()
		server.Close()
	})

	It("Will restart the kernel after confirmation and then run every cell", func() {
		setUp("restart")

		doc, err := h.Workspace.OpenDocument(ctx, notebookPath)
		Expect(err).To(BeNil())

		_, err = registry.Execute(ctx, commands.RestartKernelAndRunAllCells, notebookPath)
		Expect(err).To(BeNil())

		Expect(server.Restarts()).To(Equal([]string{kernelId}))
		Expect(server.Executed()).To(Equal([]string{"x = 1", "x + 1"}))

		cell, _ := doc.CellAt(2)
		count, _ := cell.ExecutionCount()
		Expect(count).To(Equal(2))

		current, err := settings.Settings(ctx, notebookPath)
		Expect(err).To(BeNil())
		Expect(current.AskForKernelRestart).To(BeTrue())
	})

	It("Will stop asking once told not to ask again", func() {
		setUp("dont-ask-again")

		_, err := h.Workspace.OpenDocument(ctx, notebookPath)
		Expect(err).To(BeNil())

		_, err = registry.Execute(ctx, commands.RestartKernel, map[string]interface{}{
			"notebookEditor": map[string]interface{}{"notebookUri": notebookPath},
		})
		Expect(err).To(BeNil())
		Eventually(server.Restarts).Should(Equal([]string{kernelId}))

		current, err := settings.Settings(ctx, "")
		Expect(err).To(BeNil())
		Expect(current.AskForKernelRestart).To(BeFalse())
	})

	It("Will not restart when the question is dismissed", func() {
		setUp("dismiss")

		_, err := h.Workspace.OpenDocument(ctx, notebookPath)
		Expect(err).To(BeNil())

		_, err = registry.Execute(ctx, commands.RestartKernel)
		Expect(err).To(BeNil())
		Consistently(server.Restarts, 100*time.Millisecond).Should(BeEmpty())
	})

	It("Will notify the user when a restart fails and no cell is running", func() {
		setUp("restart")
		server.SetRestartStatus(http.StatusInternalServerError)

		_, err := h.Workspace.OpenDocument(ctx, notebookPath)
		Expect(err).To(BeNil())

		_, err = registry.Execute(ctx, commands.AiRestartKernel, notebookPath)
		Expect(err).To(BeNil())

		Eventually(notifications.messages).Should(ContainElement(ContainSubstring("Failed to restart the kernel.")))
	})

	It("Will show a failed interrupt in the running cell", func() {
		setUp("restart")

		doc, err := h.Workspace.OpenDocument(ctx, notebookPath)
		Expect(err).To(BeNil())

		k, ok := h.Kernels.Get(doc)
		Expect(ok).To(BeTrue())

		running, _ := doc.CellAt(1)
		execution := h.Kernels.Execution(k).(*host.CellExecution)
		host.Enqueue(execution, running)
		server.SetInterruptStatus(http.StatusInternalServerError)

		_, err = registry.Execute(ctx, commands.InterruptKernel, map[string]interface{}{
			"notebookEditor": map[string]interface{}{"notebookUri": notebookPath},
		})
		Expect(err).To(BeNil())

		Expect(running.Outputs()).To(HaveLen(1))
		Expect(running.Outputs()[0].EName).To(Equal(notifier.KernelErrorName))
		Expect(running.Outputs()[0].EValue).To(HavePrefix("Failed to interrupt the kernel."))
		Expect(execution.PendingCells()).To(BeEmpty())
		Expect(notifications.messages()).To(BeEmpty())
	})

	It("Will edit, run and read cells through the cell commands", func() {
		setUp("restart")

		inserted, err := registry.Execute(ctx, commands.AiInsertCellBelow, notebookPath, "2", 2.0, "y = 2")
		Expect(err).To(BeNil())
		Expect(inserted).To(Equal(true))

		content, _ := server.NotebookContent(notebookPath)
		Expect(string(content)).To(ContainSubstring("y = 2"))

		_, err = registry.Execute(ctx, commands.AiRunCell, notebookPath, 3.0)
		Expect(err).To(BeNil())
		Expect(server.Executed()).To(Equal([]string{"y = 2"}))

		output, err := registry.Execute(ctx, commands.AiGetCellOutput, notebookPath, 3.0)
		Expect(err).To(BeNil())
		Expect(output).To(Equal("computing\ndone\n"))

		kind, err := registry.Execute(ctx, commands.AiGetCellType, "", 0.0)
		Expect(err).To(BeNil())
		Expect(kind).To(Equal(int(notebook.Markup)))
	})
})
