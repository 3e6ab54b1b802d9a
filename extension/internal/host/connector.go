package host

import (
	"context"
	"fmt"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
)

// Reporter shows the outcome of kernel operations.
type Reporter interface {
	NotifyInfo(ctx context.Context, title string, message string)
}

// Connector interrupts and restarts kernels through the REST API of the Jupyter Server.
type Connector struct {
	log logger.Logger

	client   *jupyterapi.Client
	kernels  *KernelProvider
	reporter Reporter
	timeout  time.Duration
}

func NewConnector(client *jupyterapi.Client, kernels *KernelProvider, timeout time.Duration) *Connector {
	connector := &Connector{
		client:  client,
		kernels: kernels,
		timeout: timeout,
	}
	config.InitLogger(&connector.log, connector)

	return connector
}

func (c *Connector) Run(ctx context.Context, controller kernel.Controller, k kernel.Kernel, op kernel.Operation, opts kernel.DisplayOptions) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		err  error
		done string
	)
	switch op {
	case kernel.Interrupt:
		err = c.client.InterruptKernel(ctx, k.ID())
		done = "interrupted"
	case kernel.Restart:
		_, err = c.client.RestartKernel(ctx, k.ID())
		done = "restarted"
	default:
		return fmt.Errorf("unsupported kernel operation %s", op)
	}

	if err != nil {
		return err
	}

	// A restarted kernel has forgotten its queue.
	if op == kernel.Restart {
		if ended := c.kernels.execution(k.ID()).endAll(); ended > 0 {
			c.log.Debug("Ended %d pending cell(s) of restarted kernel %s.", ended, k.ID())
		}
	}

	if !opts.Disable && c.reporter != nil {
		c.reporter.NotifyInfo(ctx, "Kernel", fmt.Sprintf("%s kernel of \"%s\" %s.", controller.Label, k.Notebook().URI(), done))
	}
	return nil
}
