package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MessageHeaderDefaultUsername = "username"

	// ProtocolVersion is the version of the Jupyter messaging protocol spoken by this package.
	ProtocolVersion = "5.3"

	ShellChannel = "shell"
	IOPubChannel = "iopub"

	IOStatusMessage        = "status"
	IOStreamMessage        = "stream"
	IOExecuteResultMessage = "execute_result"
	IODisplayDataMessage   = "display_data"
	IOErrorMessage         = "error"
	IOExecuteInputMessage  = "execute_input"
	IOClearOutputMessage   = "clear_output"

	ShellExecuteRequest = "execute_request"
	ShellExecuteReply   = "execute_reply"

	ErrorNotification   NotificationType = 0
	WarningNotification NotificationType = 1
	InfoNotification    NotificationType = 2
	SuccessNotification NotificationType = 3

	JavascriptISOString = "2006-01-02T15:04:05.999Z07:00"
)

var (
	ErrInvalidJupyterMessage = fmt.Errorf("invalid jupyter message")
)

type JupyterMessageType string

func (t JupyterMessageType) String() string {
	return string(t)
}

type NotificationType int32

// Int32 returns the NotificationType as an int32.
func (nt NotificationType) Int32() int32 {
	return int32(nt)
}

func (nt NotificationType) String() string {
	switch nt {
	case ErrorNotification:
		return "error"
	case WarningNotification:
		return "warning"
	case InfoNotification:
		return "info"
	case SuccessNotification:
		return "success"
	default:
		return fmt.Sprintf("NotificationType(%d)", int32(nt))
	}
}

// Message is a Jupyter message as exchanged over the Jupyter Server's websocket kernel channels.
// Unlike the ZMQ wire format, every part of the message is carried in a single JSON document.
type Message struct {
	Header       MessageHeader          `json:"header"`
	ParentHeader MessageHeader          `json:"parent_header"`
	Metadata     map[string]interface{} `json:"metadata"`
	Content      json.RawMessage        `json:"content"`
	Channel      string                 `json:"channel"`
	Buffers      []interface{}          `json:"buffers"`
}

// NewMessage creates a new Message with a freshly generated message ID for the given session.
func NewMessage(session string, channel string, msgType JupyterMessageType, content interface{}) (*Message, error) {
	encoded, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	return &Message{
		Header: MessageHeader{
			MsgID:    uuid.NewString(),
			Username: MessageHeaderDefaultUsername,
			Session:  session,
			Date:     time.Now().UTC().Format(JavascriptISOString),
			MsgType:  msgType,
			Version:  ProtocolVersion,
		},
		Metadata: make(map[string]interface{}),
		Content:  encoded,
		Channel:  channel,
		Buffers:  make([]interface{}, 0),
	}, nil
}

// DecodeContent unmarshals the message's content into v.
func (msg *Message) DecodeContent(v interface{}) error {
	if len(msg.Content) == 0 {
		return fmt.Errorf("%w: message \"%s\" has no content", ErrInvalidJupyterMessage, msg.Header.MsgID)
	}

	return json.Unmarshal(msg.Content, v)
}

func (msg *Message) String() string {
	m, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}

	return string(m)
}

// MessageHeader is a Jupyter message header.
// http://jupyter-client.readthedocs.io/en/latest/messaging.html#general-message-format
type MessageHeader struct {
	MsgID    string             `json:"msg_id"`
	Username string             `json:"username"`
	Session  string             `json:"session"`
	Date     string             `json:"date"`
	MsgType  JupyterMessageType `json:"msg_type"`
	Version  string             `json:"version"`
}

func (header *MessageHeader) String() string {
	m, err := json.Marshal(header)
	if err != nil {
		panic(err)
	}

	return string(m)
}

type MessageKernelStatus struct {
	Status string `json:"execution_state"`
}

const (
	MessageKernelStatusIdle     = "idle"
	MessageKernelStatusBusy     = "busy"
	MessageKernelStatusStarting = "starting"

	// Broadcast by the Jupyter Server, without a parent, when a kernel is restarted or dies.
	MessageKernelStatusRestarting = "restarting"
	MessageKernelStatusDead       = "dead"
)

type MessageError struct {
	Status    string   `json:"status"`
	ErrName   string   `json:"ename"`
	ErrValue  string   `json:"evalue"`
	Traceback []string `json:"traceback,omitempty"`
}

func (m *MessageError) String() string {
	out, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}

	return string(out)
}

const (
	MessageStatusOK    = "ok"
	MessageStatusError = "error"
)

// ExecuteRequest is the content of an "execute_request" message.
type ExecuteRequest struct {
	Code            string                 `json:"code"`
	Silent          bool                   `json:"silent"`
	StoreHistory    bool                   `json:"store_history"`
	UserExpressions map[string]interface{} `json:"user_expressions"`
	AllowStdin      bool                   `json:"allow_stdin"`
	StopOnError     bool                   `json:"stop_on_error"`
}

// NewExecuteRequest returns the content of a non-silent "execute_request" for the given code.
func NewExecuteRequest(code string) *ExecuteRequest {
	return &ExecuteRequest{
		Code:            code,
		StoreHistory:    true,
		UserExpressions: make(map[string]interface{}),
		StopOnError:     true,
	}
}

// MessageStream is the content of an iopub "stream" message.
type MessageStream struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// MessageDisplayData is the content of an iopub "execute_result" or "display_data" message.
type MessageDisplayData struct {
	Data           map[string]interface{} `json:"data"`
	Metadata       map[string]interface{} `json:"metadata"`
	ExecutionCount *int                   `json:"execution_count,omitempty"`
}

// MessageExecuteReply is the content of a shell "execute_reply" message.
type MessageExecuteReply struct {
	MessageError
	ExecutionCount int `json:"execution_count"`
}
