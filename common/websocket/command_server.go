package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/scusemua/notebook-commands/common/metrics"
	"github.com/scusemua/notebook-commands/common/utils/hashmap"
)

//go:generate mockgen -source=command_server.go -destination=mock_websocket/mock_command_server.go

const (
	// CommandsPath is the path the command endpoint is served on.
	CommandsPath = "/commands"

	// MetricsPath is the path Prometheus metrics are served on, if the server has metrics.
	MetricsPath = "/metrics"

	writeTimeout = time.Second * 10
)

var (
	ErrInvalidRequest = errors.New("invalid command request")
	ErrServerStopped  = errors.New("command server stopped")
)

// Executor runs commands by ID.
type Executor interface {
	Execute(ctx context.Context, id string, args ...interface{}) (interface{}, error)
}

// commandLister is implemented by executors that can tell whether a command exists.
type commandLister interface {
	Has(id string) bool
}

// Request asks the server to execute a command. The ID is echoed in the response.
type Request struct {
	ID      string        `json:"id"`
	Command string        `json:"command"`
	Args    []interface{} `json:"args"`
}

// Response carries the result of a Request. Error is empty if the command succeeded.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NotificationFrame is pushed to every connected client when a notification is issued.
type NotificationFrame struct {
	Notification interface{} `json:"notification"`
}

type commandClient struct {
	id      string
	conn    *websocket.Conn
	limiter *rate.Limiter
	remote  string
}

// CommandServer executes commands sent by websocket clients and pushes notifications to them.
//
// Requests of a single client are served concurrently, so responses may arrive in a different
// order than the requests were sent. Each client is limited to a fixed number of commands per second.
type CommandServer struct {
	log logger.Logger

	address           string
	executor          Executor
	commandsPerSecond int
	requestTimeout    time.Duration
	metrics           *metrics.CommandMetrics

	clients *hashmap.ConcurrentMap[string, *commandClient]

	server    *http.Server
	listener  net.Listener
	stopChan  chan struct{} // Closed when the server is told to stop.
	errorChan chan error    // Receives the error that made the HTTP server stop serving.
	stopOnce  sync.Once
}

func NewCommandServer(address string, executor Executor, commandsPerSecond int, requestTimeout time.Duration) *CommandServer {
	srv := &CommandServer{
		address:           address,
		executor:          executor,
		commandsPerSecond: commandsPerSecond,
		requestTimeout:    requestTimeout,
		clients:           hashmap.NewConcurrentMap[*commandClient](0),
		stopChan:          make(chan struct{}),
		errorChan:         make(chan error, 1),
	}
	config.InitLogger(&srv.log, srv)

	return srv
}

// SetMetrics makes the server record served commands and expose m at MetricsPath.
// It must be called before Listen.
func (s *CommandServer) SetMetrics(m *metrics.CommandMetrics) {
	s.metrics = m
}

// Listen starts serving the command endpoint on the server's address in the background.
func (s *CommandServer) Listen() error {
	mux := http.NewServeMux()
	mux.Handle(CommandsPath, s)
	if s.metrics != nil {
		mux.Handle(MetricsPath, s.metrics.Handler())
	}

	s.server = &http.Server{
		Handler: mux,
	}

	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.listener = lis

	s.log.Debug("Listening for commands on ws://%s%s", lis.Addr(), CommandsPath)

	go func() {
		defer close(s.errorChan)

		// Serve until there's an error, at which point we send the error over the associated channel.
		if err := s.server.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			s.errorChan <- err
		}
	}()

	return nil
}

// Addr returns the address the server listens on, which differs from the configured one if the
// configured port was 0.
func (s *CommandServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Errors receives the error that made the server stop serving. It is closed once the server stopped.
func (s *CommandServer) Errors() <-chan error {
	return s.errorChan
}

// Close disconnects every client and stops the server.
func (s *CommandServer) Close(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	s.clients.Range(func(_ string, c *commandClient) bool {
		_ = c.conn.Close(websocket.StatusGoingAway, "server stopped")
		return true
	})

	if s.server == nil {
		return nil
	}

	s.log.Debug("Shutting down command server.")
	return s.server.Shutdown(ctx)
}

// NumClients returns the number of connected clients.
func (s *CommandServer) NumClients() int {
	return s.clients.Len()
}

// Broadcast sends v to every connected client as a notification frame.
func (s *CommandServer) Broadcast(ctx context.Context, v interface{}) {
	frame := NotificationFrame{Notification: v}

	s.clients.Range(func(id string, c *commandClient) bool {
		if err := s.write(ctx, c, frame); err != nil {
			s.log.Warn("Failed to push notification to client %s (%s): %v", id, c.remote, err)
		}
		return true
	})
}

func (s *CommandServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.stopChan:
		http.Error(w, ErrServerStopped.Error(), http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
	if err != nil {
		s.log.Error("Failed to accept websocket connection because: %v", err)
		return
	}
	defer conn.CloseNow()

	c := &commandClient{
		id:      uuid.NewString(),
		conn:    conn,
		limiter: s.newLimiter(),
		remote:  r.RemoteAddr,
	}
	s.clients.Store(c.id, c)
	defer s.clients.Delete(c.id)

	s.log.Debug("Client %s connected from %s.", c.id, c.remote)

	// In-flight commands are cancelled before waiting for them.
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		req, err := s.readRequest(ctx, c)

		switch {
		case websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway:
			s.log.Debug("Client %s disconnected.", c.id)
			return
		case errors.Is(err, ErrInvalidRequest):
			s.log.Warn("Received invalid request from client %s: %v", c.id, err)
			if writeErr := s.write(ctx, c, Response{ID: req.ID, Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		case err != nil:
			s.log.Error("Failed to read from client %s (%s): %v", c.id, c.remote, err)
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serve(ctx, c, req)
		}()
	}
}

// newLimiter returns the limiter of a new client. A non-positive rate disables limiting.
func (s *CommandServer) newLimiter() *rate.Limiter {
	if s.commandsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(s.commandsPerSecond), s.commandsPerSecond)
}

// readRequest waits until the client may send another command, then reads its next request.
func (s *CommandServer) readRequest(ctx context.Context, c *commandClient) (Request, error) {
	var req Request

	if err := c.limiter.Wait(ctx); err != nil {
		return req, err
	}

	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return req, err
	}
	if typ != websocket.MessageText {
		return req, fmt.Errorf("%w: expected a text message", ErrInvalidRequest)
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Command == "" {
		return req, fmt.Errorf("%w: missing command", ErrInvalidRequest)
	}

	return req, nil
}

func (s *CommandServer) serve(ctx context.Context, c *commandClient, req Request) {
	execCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	st := time.Now()
	result, err := s.executor.Execute(execCtx, req.Command, req.Args...)
	s.metrics.CommandServed(s.commandLabel(req.Command), time.Since(st), err)

	resp := Response{ID: req.ID, Result: result}
	if err != nil {
		s.log.Warn("Command \"%s\" (request %s) of client %s failed after %v: %v", req.Command, req.ID, c.id, time.Since(st), err)
		resp = Response{ID: req.ID, Error: err.Error()}
	} else {
		s.log.Debug("Command \"%s\" (request %s) of client %s finished in %v.", req.Command, req.ID, c.id, time.Since(st))
	}

	if err := s.write(ctx, c, resp); err != nil {
		s.log.Warn("Failed to send response to request %s of client %s: %v", req.ID, c.id, err)
	}
}

// commandLabel keeps the label values of the command metrics bounded to the registered commands.
func (s *CommandServer) commandLabel(command string) string {
	if lister, ok := s.executor.(commandLister); ok && !lister.Has(command) {
		return metrics.UnknownCommand
	}
	return command
}

func (s *CommandServer) write(ctx context.Context, c *commandClient, v interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return wsjson.Write(ctx, c.conn, v)
}
