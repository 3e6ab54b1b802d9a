package messaging_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scusemua/notebook-commands/common/jupyter/messaging"
)

var _ = Describe("Message", func() {
	It("Will build an execute_request that the Jupyter Server can route", func() {
		msg, err := messaging.NewMessage("f8b1709e-51e5-46e7-9047-99a3636bef14", messaging.ShellChannel,
			messaging.ShellExecuteRequest, messaging.NewExecuteRequest("print('hi')"))
		Expect(err).To(BeNil())
		Expect(msg.Header.MsgID).ToNot(BeEmpty())
		Expect(msg.Header.Version).To(Equal(messaging.ProtocolVersion))
		Expect(msg.Header.MsgType).To(Equal(messaging.JupyterMessageType(messaging.ShellExecuteRequest)))

		var decoded map[string]interface{}
		Expect(json.Unmarshal([]byte(msg.String()), &decoded)).To(Succeed())
		Expect(decoded["channel"]).To(Equal("shell"))
		Expect(decoded["buffers"]).To(BeEmpty())

		var content messaging.ExecuteRequest
		Expect(msg.DecodeContent(&content)).To(Succeed())
		Expect(content.Code).To(Equal("print('hi')"))
		Expect(content.StoreHistory).To(BeTrue())
		Expect(content.Silent).To(BeFalse())
	})

	It("Will decode iopub content from the wire format", func() {
		raw := `{
			"header": {"msg_id": "a", "msg_type": "stream", "session": "s", "username": "u", "date": "", "version": "5.3"},
			"parent_header": {"msg_id": "b", "msg_type": "execute_request", "session": "s", "username": "u", "date": "", "version": "5.3"},
			"metadata": {},
			"content": {"name": "stdout", "text": "hello\n"},
			"channel": "iopub",
			"buffers": []
		}`

		var msg messaging.Message
		Expect(json.Unmarshal([]byte(raw), &msg)).To(Succeed())
		Expect(msg.ParentHeader.MsgID).To(Equal("b"))

		var stream messaging.MessageStream
		Expect(msg.DecodeContent(&stream)).To(Succeed())
		Expect(stream.Name).To(Equal("stdout"))
		Expect(stream.Text).To(Equal("hello\n"))
	})

	It("Will reject messages without content", func() {
		msg := &messaging.Message{Header: messaging.MessageHeader{MsgID: "empty"}}
		var stream messaging.MessageStream
		Expect(msg.DecodeContent(&stream)).To(MatchError(messaging.ErrInvalidJupyterMessage))
	})

	It("Will name notification types", func() {
		Expect(messaging.ErrorNotification.String()).To(Equal("error"))
		Expect(messaging.SuccessNotification.Int32()).To(Equal(int32(3)))
		Expect(messaging.NotificationType(9).String()).To(Equal("NotificationType(9)"))
	})
})
