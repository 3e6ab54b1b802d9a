package jupyterapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/scusemua/notebook-commands/common/jupyter/messaging"
	"github.com/scusemua/notebook-commands/common/notebook"
)

const (
	// maxChannelMessageSize bounds a single message read from the kernel channels, which may carry images.
	maxChannelMessageSize = 32 << 20
)

// ExecutionResult is what a kernel produced for a single execute_request.
type ExecutionResult struct {
	Status         string
	ExecutionCount *int
	Outputs        []notebook.Output
}

// Execute runs code on the kernel through its websocket channels and collects the outputs.
// Execute returns once the kernel has replied to the request and gone idle, or with
// ErrExecutionAborted if the kernel is restarted or dies before that.
func (c *Client) Execute(ctx context.Context, kernelID string, code string) (*ExecutionResult, error) {
	sessionID := uuid.NewString()

	channelsUrl, err := c.channelsUrl(kernelID, sessionID)
	if err != nil {
		return nil, err
	}

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if c.token != "" {
		opts.HTTPHeader.Set("Authorization", "token "+c.token)
	}

	conn, _, err := websocket.Dial(ctx, channelsUrl, opts)
	if err != nil {
		c.log.Error("Failed to connect to channels of kernel %s: %v", kernelID, err)
		return nil, err
	}
	defer func() {
		if ctx.Err() != nil {
			_ = conn.CloseNow()
			return
		}
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()
	conn.SetReadLimit(maxChannelMessageSize)

	request, err := messaging.NewMessage(sessionID, messaging.ShellChannel, messaging.ShellExecuteRequest, messaging.NewExecuteRequest(code))
	if err != nil {
		return nil, err
	}

	if err := wsjson.Write(ctx, conn, request); err != nil {
		return nil, err
	}
	c.log.Debug("Sent execute_request %s to kernel %s.", request.Header.MsgID, kernelID)

	var (
		result  = &ExecutionResult{}
		replied bool
		idle    bool
	)
	for !replied || !idle {
		var msg messaging.Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return nil, fmt.Errorf("failed to read from channels of kernel %s: %w", kernelID, err)
		}

		if msg.Header.MsgType == messaging.IOStatusMessage {
			var status messaging.MessageKernelStatus
			if err := msg.DecodeContent(&status); err != nil {
				return nil, err
			}

			switch {
			case status.Status == messaging.MessageKernelStatusRestarting || status.Status == messaging.MessageKernelStatusDead:
				// The kernel forgot the request, so no reply will come.
				c.log.Warn("Kernel %s is %s. Abandoning execution %s.", kernelID, status.Status, request.Header.MsgID)
				return nil, fmt.Errorf("%w: kernel %s is %s", ErrExecutionAborted, kernelID, status.Status)
			case msg.ParentHeader.MsgID == request.Header.MsgID:
				idle = status.Status == messaging.MessageKernelStatusIdle
			}
			continue
		}

		if msg.ParentHeader.MsgID != request.Header.MsgID {
			continue
		}

		switch msg.Header.MsgType {
		case messaging.ShellExecuteReply:
			var reply messaging.MessageExecuteReply
			if err := msg.DecodeContent(&reply); err != nil {
				return nil, err
			}
			result.Status = reply.Status
			executionCount := reply.ExecutionCount
			result.ExecutionCount = &executionCount
			replied = true
		default:
			if err := collectOutput(result, &msg); err != nil {
				return nil, err
			}
		}
	}

	c.log.Debug("Execution %s on kernel %s finished with status \"%s\" and %d output(s).",
		request.Header.MsgID, kernelID, result.Status, len(result.Outputs))

	return result, nil
}

func collectOutput(result *ExecutionResult, msg *messaging.Message) error {
	switch msg.Header.MsgType {
	case messaging.IOStreamMessage:
		var stream messaging.MessageStream
		if err := msg.DecodeContent(&stream); err != nil {
			return err
		}

		// Consecutive chunks of the same stream are shown as one output.
		if last := len(result.Outputs) - 1; last >= 0 &&
			result.Outputs[last].OutputType == notebook.OutputTypeStream && result.Outputs[last].Name == stream.Name {
			result.Outputs[last].Text += stream.Text
			return nil
		}
		result.Outputs = append(result.Outputs, notebook.StreamOutput(stream.Name, stream.Text))
	case messaging.IOExecuteResultMessage:
		var data messaging.MessageDisplayData
		if err := msg.DecodeContent(&data); err != nil {
			return err
		}
		output := notebook.ExecuteResultOutput(data.Data, data.ExecutionCount)
		output.Metadata = data.Metadata
		result.Outputs = append(result.Outputs, output)
	case messaging.IODisplayDataMessage:
		var data messaging.MessageDisplayData
		if err := msg.DecodeContent(&data); err != nil {
			return err
		}
		output := notebook.DisplayDataOutput(data.Data)
		output.Metadata = data.Metadata
		result.Outputs = append(result.Outputs, output)
	case messaging.IOErrorMessage:
		var kernelErr messaging.MessageError
		if err := msg.DecodeContent(&kernelErr); err != nil {
			return err
		}
		result.Outputs = append(result.Outputs, notebook.ErrorOutput(kernelErr.ErrName, kernelErr.ErrValue, kernelErr.Traceback...))
	case messaging.IOClearOutputMessage:
		result.Outputs = nil
	}

	return nil
}

func (c *Client) channelsUrl(kernelID string, sessionID string) (string, error) {
	u, err := url.Parse(c.baseUrl)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/kernels/" + url.PathEscape(kernelID) + "/channels"
	u.RawQuery = url.Values{"session_id": []string{sessionID}}.Encode()

	return u.String(), nil
}
