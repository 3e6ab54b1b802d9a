package websocket_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/scusemua/notebook-commands/common/metrics"
	ws "github.com/scusemua/notebook-commands/common/websocket"
	"github.com/scusemua/notebook-commands/common/websocket/mock_websocket"
)

var _ = Describe("CommandServer", func() {
	var (
		mockCtrl *gomock.Controller
		executor *mock_websocket.MockExecutor
		server   *ws.CommandServer
		ctx      context.Context
		cancel   context.CancelFunc
	)

	start := func(commandsPerSecond int) *ws.CommandServer {
		srv := ws.NewCommandServer("127.0.0.1:0", executor, commandsPerSecond, time.Second*5)
		Expect(srv.Listen()).To(Succeed())
		DeferCleanup(func() {
			_ = srv.Close(context.Background())
		})
		return srv
	}

	dial := func(srv *ws.CommandServer) *websocket.Conn {
		conn, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s%s", srv.Addr(), ws.CommandsPath), nil)
		Expect(err).To(BeNil())
		DeferCleanup(func() {
			_ = conn.CloseNow()
		})
		return conn
	}

	send := func(conn *websocket.Conn, req ws.Request) {
		Expect(wsjson.Write(ctx, conn, req)).To(Succeed())
	}

	receive := func(conn *websocket.Conn) ws.Response {
		var resp ws.Response
		Expect(wsjson.Read(ctx, conn, &resp)).To(Succeed())
		return resp
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		executor = mock_websocket.NewMockExecutor(mockCtrl)
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*10)
		server = start(0)
	})

	AfterEach(func() {
		cancel()
	})

	It("Will execute commands and return their results", func() {
		executor.EXPECT().Execute(gomock.Any(), "jupyter.ai.getCell", "work/analysis.ipynb", 1.0).Return("x = 1", nil).Times(1)
		conn := dial(server)

		send(conn, ws.Request{ID: "1", Command: "jupyter.ai.getCell", Args: []interface{}{"work/analysis.ipynb", 1}})
		Expect(receive(conn)).To(Equal(ws.Response{ID: "1", Result: "x = 1"}))
	})

	It("Will return the error of failed commands", func() {
		executor.EXPECT().Execute(gomock.Any(), "jupyter.ai.getKernel").Return(nil, errors.New("no such kernel")).Times(1)
		conn := dial(server)

		send(conn, ws.Request{ID: "2", Command: "jupyter.ai.getKernel"})
		Expect(receive(conn)).To(Equal(ws.Response{ID: "2", Error: "no such kernel"}))
	})

	It("Will answer invalid requests with an error and keep the connection open", func() {
		executor.EXPECT().Execute(gomock.Any(), "jupyter.listCommands").Return([]string{"jupyter.listCommands"}, nil).Times(1)
		conn := dial(server)

		Expect(conn.Write(ctx, websocket.MessageText, []byte("{not json"))).To(Succeed())
		resp := receive(conn)
		Expect(resp.Error).To(ContainSubstring(ws.ErrInvalidRequest.Error()))

		send(conn, ws.Request{ID: "3"})
		resp = receive(conn)
		Expect(resp.ID).To(Equal("3"))
		Expect(resp.Error).To(ContainSubstring("missing command"))

		send(conn, ws.Request{ID: "4", Command: "jupyter.listCommands"})
		Expect(receive(conn)).To(Equal(ws.Response{ID: "4", Result: []interface{}{"jupyter.listCommands"}}))
	})

	It("Will serve the requests of a client concurrently", func() {
		release := make(chan struct{})

		executor.EXPECT().Execute(gomock.Any(), "test.slow").
			DoAndReturn(func(ctx context.Context, _ string, _ ...interface{}) (interface{}, error) {
				select {
				case <-release:
					return "slow", nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}).Times(1)
		executor.EXPECT().Execute(gomock.Any(), "test.fast").Return("fast", nil).Times(1)

		conn := dial(server)
		send(conn, ws.Request{ID: "slow", Command: "test.slow"})
		send(conn, ws.Request{ID: "fast", Command: "test.fast"})

		Expect(receive(conn)).To(Equal(ws.Response{ID: "fast", Result: "fast"}))

		close(release)
		Expect(receive(conn)).To(Equal(ws.Response{ID: "slow", Result: "slow"}))
	})

	It("Will push notifications to every client", func() {
		first := dial(server)
		second := dial(server)
		Eventually(server.NumClients, time.Second*2).Should(Equal(2))

		server.Broadcast(ctx, map[string]interface{}{"title": "Kernel", "message": "Failed to restart the kernel."})

		for _, conn := range []*websocket.Conn{first, second} {
			var frame map[string]interface{}
			Expect(wsjson.Read(ctx, conn, &frame)).To(Succeed())
			Expect(frame).To(HaveKeyWithValue("notification", HaveKeyWithValue("title", "Kernel")))
		}
	})

	It("Will limit the number of commands a client sends per second", func() {
		executor.EXPECT().Execute(gomock.Any(), "test.echo").Return("ok", nil).Times(3)

		limited := start(2)
		conn := dial(limited)

		st := time.Now()
		for i := 0; i < 3; i++ {
			send(conn, ws.Request{ID: fmt.Sprintf("%d", i), Command: "test.echo"})
		}
		for i := 0; i < 3; i++ {
			Expect(receive(conn).Result).To(Equal("ok"))
		}
		Expect(time.Since(st)).To(BeNumerically(">=", time.Millisecond*300))
	})

	It("Will disconnect clients when closed", func() {
		conn := dial(server)
		Eventually(server.NumClients, time.Second*2).Should(Equal(1))

		readErr := make(chan error, 1)
		go func() {
			_, _, err := conn.Read(ctx)
			readErr <- err
		}()

		Expect(server.Close(ctx)).To(Succeed())

		var err error
		Eventually(readErr, time.Second*5).Should(Receive(&err))
		Expect(websocket.CloseStatus(err)).To(Equal(websocket.StatusGoingAway))
		Eventually(server.Errors(), time.Second*2).Should(BeClosed())
		Eventually(server.NumClients, time.Second*2).Should(Equal(0))
	})

	It("Will count served commands and expose them for scraping", func() {
		m, err := metrics.NewCommandMetrics()
		Expect(err).To(BeNil())

		gomock.InOrder(
			executor.EXPECT().Execute(gomock.Any(), "jupyter.ai.getCell", gomock.Any()).Return("x = 1", nil),
			executor.EXPECT().Execute(gomock.Any(), "jupyter.ai.getCell", gomock.Any()).Return(nil, errors.New("invalid cell")),
		)

		measured := ws.NewCommandServer("127.0.0.1:0", executor, 0, time.Second*5)
		measured.SetMetrics(m)
		Expect(measured.Listen()).To(Succeed())
		DeferCleanup(func() {
			_ = measured.Close(context.Background())
		})

		conn := dial(measured)
		send(conn, ws.Request{ID: "1", Command: "jupyter.ai.getCell", Args: []interface{}{1}})
		Expect(receive(conn).Result).To(Equal("x = 1"))
		send(conn, ws.Request{ID: "2", Command: "jupyter.ai.getCell", Args: []interface{}{7}})
		Expect(receive(conn).Error).To(Equal("invalid cell"))

		resp, err := http.Get(fmt.Sprintf("http://%s%s", measured.Addr(), ws.MetricsPath))
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())
		Expect(string(body)).To(ContainSubstring(`notebook_commands_command_requests_total{command="jupyter.ai.getCell",status="succeeded"} 1`))
		Expect(string(body)).To(ContainSubstring(`notebook_commands_command_requests_total{command="jupyter.ai.getCell",status="failed"} 1`))
		Expect(string(body)).To(ContainSubstring(`notebook_commands_command_latency_seconds_count{command="jupyter.ai.getCell"} 2`))
	})

	It("Will not serve metrics when it has none", func() {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", server.Addr(), ws.MetricsPath))
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})
})
