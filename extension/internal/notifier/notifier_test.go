package notifier_test

import (
	"bytes"
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/scusemua/notebook-commands/common/jupyter/messaging"
	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/kernel/mock_kernel"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/extension/internal/notifier"
)

type recordingSink struct {
	mu            sync.Mutex
	notifications []notifier.Notification
}

func (s *recordingSink) Notify(_ context.Context, n notifier.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *recordingSink) received() []notifier.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notifier.Notification(nil), s.notifications...)
}

var _ = Describe("Notifier", func() {
	var (
		mockCtrl  *gomock.Controller
		kernels   *mock_kernel.MockProvider
		execution *mock_kernel.MockExecution
		k         *mock_kernel.MockKernel
		doc       *notebook.Document
		out       *bytes.Buffer
		n         *notifier.Notifier
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		kernels = mock_kernel.NewMockProvider(mockCtrl)
		execution = mock_kernel.NewMockExecution(mockCtrl)
		k = mock_kernel.NewMockKernel(mockCtrl)
		k.EXPECT().ID().Return("kernel-1").AnyTimes()

		doc = notebook.NewDocument("work/analysis.ipynb", notebook.Metadata{},
			notebook.CellData{Kind: notebook.Code, Source: "while True: pass", Language: "python",
				Outputs: []notebook.Output{notebook.StreamOutput("stdout", "still running\n")}},
		)

		out = &bytes.Buffer{}
		n = notifier.NewNotifier(kernels, out)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("Will replace the cell's outputs with the failure and end its execution", func() {
		cell, _ := doc.CellAt(0)
		kernels.EXPECT().Execution(k).Return(execution).Times(1)
		execution.EXPECT().EndCell(cell, false).Times(1)

		err := n.DisplayErrorInCell(context.Background(), k, cell, kernel.Interrupt, errors.New("kernel is dead"))
		Expect(err).To(BeNil())

		outputs := cell.Outputs()
		Expect(outputs).To(HaveLen(1))
		Expect(outputs[0].OutputType).To(Equal(notebook.OutputTypeError))
		Expect(outputs[0].EName).To(Equal(notifier.KernelErrorName))

		text, ok := outputs[0].PlainText()
		Expect(ok).To(BeTrue())
		Expect(text).To(ContainSubstring("Failed to interrupt the kernel"))
		Expect(text).To(ContainSubstring("kernel is dead"))
	})

	It("Will fail to display an error in a cell that was deleted", func() {
		cell, _ := doc.CellAt(0)
		Expect(doc.Apply(notebook.DeleteCells(notebook.Range{Start: 0, End: 1}))).To(Succeed())

		err := n.DisplayErrorInCell(context.Background(), k, cell, kernel.Restart, errors.New("boom"))
		Expect(err).To(MatchError(notebook.ErrCellNotFound))
	})

	It("Will forward notifications to every sink until it is removed", func() {
		first, second := &recordingSink{}, &recordingSink{}
		removeFirst := n.AddSink(first)
		n.AddSink(second)

		n.ShowErrorMessage(context.Background(), "Failed to restart the kernel.")

		Expect(first.received()).To(HaveLen(1))
		Expect(second.received()).To(HaveLen(1))

		notification := first.received()[0]
		Expect(notification.ID).ToNot(BeEmpty())
		Expect(notification.Type).To(Equal(messaging.ErrorNotification))
		Expect(notification.Title).To(Equal("Kernel"))
		Expect(notification.Message).To(Equal("Failed to restart the kernel."))
		Expect(out.String()).To(ContainSubstring("Failed to restart the kernel."))

		removeFirst()
		n.NotifyInfo(context.Background(), "Kernel", "Restarted.")

		Expect(first.received()).To(HaveLen(1))
		Expect(second.received()).To(HaveLen(2))
		Expect(second.received()[1].Type).To(Equal(messaging.InfoNotification))
	})

	It("Will accept plain functions as sinks", func() {
		var titles []string
		n.AddSink(notifier.SinkFunc(func(_ context.Context, notification notifier.Notification) {
			titles = append(titles, notification.Title)
		}))

		n.NotifyError(context.Background(), "Settings", "Could not persist a setting.")
		Expect(titles).To(Equal([]string{"Settings"}))
	})
})
