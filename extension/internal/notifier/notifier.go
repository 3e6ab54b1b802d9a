package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/google/uuid"

	"github.com/scusemua/notebook-commands/common/jupyter/messaging"
	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/utils"
	"github.com/scusemua/notebook-commands/common/utils/hashmap"
)

const (
	// KernelErrorName is the ename of the error output written into a cell when a kernel operation fails.
	KernelErrorName = "KernelOperationError"
)

// Notification is a message shown to the user outside any notebook cell.
type Notification struct {
	ID        string                     `json:"id"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	Type      messaging.NotificationType `json:"type"`
	Timestamp string                     `json:"timestamp"`
}

// Sink receives every notification, e.g. to forward it to connected clients.
type Sink interface {
	Notify(ctx context.Context, notification Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, notification Notification)

func (f SinkFunc) Notify(ctx context.Context, notification Notification) {
	f(ctx, notification)
}

// Notifier shows kernel operation failures in notebook cells and everything else as notifications.
type Notifier struct {
	log logger.Logger

	kernels kernel.Provider
	out     io.Writer
	sinks   *hashmap.ConcurrentMap[string, Sink]
}

// NewNotifier creates a Notifier that prints notifications to out, or to stdout if out is nil.
func NewNotifier(kernels kernel.Provider, out io.Writer) *Notifier {
	if out == nil {
		out = os.Stdout
	}

	return &Notifier{
		log:     config.GetLogger("Notifier "),
		kernels: kernels,
		out:     out,
		sinks:   hashmap.NewConcurrentMap[Sink](0),
	}
}

// AddSink registers a sink and returns a function that unregisters it.
func (n *Notifier) AddSink(sink Sink) func() {
	id := uuid.NewString()
	n.sinks.Store(id, sink)

	return func() {
		n.sinks.Delete(id)
	}
}

// DisplayErrorInCell replaces the outputs of the cell with the failure and ends the cell's execution.
func (n *Notifier) DisplayErrorInCell(_ context.Context, k kernel.Kernel, cell *notebook.Cell, op kernel.Operation, err error) error {
	doc := cell.Document()
	message := kernel.FailureMessage(op, err)

	output := notebook.ErrorOutput(KernelErrorName, message)
	if setErr := doc.SetCellOutputs(cell, output); setErr != nil {
		return fmt.Errorf("could not write %s failure into cell %d of \"%s\": %w", op, doc.IndexOf(cell), doc.URI(), setErr)
	}

	if execution := n.kernels.Execution(k); execution != nil {
		execution.EndCell(cell, false)
	}

	n.log.Debug("Displayed %s failure of kernel %s in cell %d of \"%s\".", op, k.ID(), doc.IndexOf(cell), doc.URI())
	_, _ = fmt.Fprintln(n.out, utils.CellStyle.Render(utils.RedStyle.Render(KernelErrorName+": ")+message))

	return nil
}

// ShowErrorMessage shows an error notification.
func (n *Notifier) ShowErrorMessage(ctx context.Context, message string) {
	n.NotifyError(ctx, "Kernel", message)
}

// Notify prints the notification and forwards it to every sink.
func (n *Notifier) Notify(ctx context.Context, title string, message string, typ messaging.NotificationType) {
	notification := Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Timestamp: time.Now().Format(messaging.JavascriptISOString),
	}

	style := utils.NotificationStyle(int(typ))
	_, _ = fmt.Fprintf(n.out, "%s %s\n", style.Inherit(utils.TitleStyle).Render(fmt.Sprintf("[%s] %s:", typ, title)), style.Render(message))

	n.sinks.Range(func(_ string, sink Sink) bool {
		sink.Notify(ctx, notification)
		return true
	})

	n.log.Debug("Issued \"%s\" notification \"%s\" to %d sink(s).", typ.String(), title, n.sinks.Len())
}

func (n *Notifier) NotifyInfo(ctx context.Context, title string, message string) {
	n.Notify(ctx, title, message, messaging.InfoNotification)
}

func (n *Notifier) NotifyError(ctx context.Context, title string, message string) {
	n.Notify(ctx, title, message, messaging.ErrorNotification)
}
