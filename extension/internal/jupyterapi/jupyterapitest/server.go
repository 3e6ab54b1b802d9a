// Package jupyterapitest provides an in-process Jupyter Server for tests.
package jupyterapitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/scusemua/notebook-commands/common/jupyter/messaging"
)

const (
	Token = "secret-token"

	// Notebook is a single-cell Python notebook.
	Notebook = `{
 "cells": [
  {"cell_type": "code", "execution_count": null, "metadata": {}, "outputs": [], "source": "1 + 1"}
 ],
 "metadata": {"kernelspec": {"display_name": "Python 3", "language": "python", "name": "python3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`
)

type session struct {
	id         string
	path       string
	kernelID   string
	kernelName string
}

// Server implements the parts of the Jupyter Server REST and kernel channels APIs used by the daemon.
//
// Every execute_request is answered with a busy status, an execute_input, two stdout chunks, an
// execute_result whose text/plain is the executed code, an idle status and an execute_reply.
// Code set with HangOn is only answered with a busy status until the kernel is restarted, at which
// point every channels connection of the kernel receives a restarting status.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	sessions        []session
	notebooks       map[string]json.RawMessage
	restarts        []string
	interrupts      []string
	executed        []string
	restartStatus   int
	interruptStatus int
	executionCount  int

	hangOn           string
	silentRestarts   bool
	restartBroadcast chan struct{} // Closed and replaced on every restart.
	closed           chan struct{}
	closeOnce        sync.Once
}

func NewServer() *Server {
	s := &Server{
		notebooks:        make(map[string]json.RawMessage),
		restartStatus:    http.StatusOK,
		interruptStatus:  http.StatusNoContent,
		restartBroadcast: make(chan struct{}),
		closed:           make(chan struct{}),
	}
	s.Server = httptest.NewServer(s.handler())
	return s
}

// AddNotebook makes a notebook available through the contents API and starts a kernel for it.
func (s *Server) AddNotebook(path string, content string, kernelName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	kernelID := uuid.NewString()
	s.notebooks[path] = json.RawMessage(content)
	s.sessions = append(s.sessions, session{id: uuid.NewString(), path: path, kernelID: kernelID, kernelName: kernelName})
	return kernelID
}

// SetRestartStatus makes subsequent restart requests respond with the given status code.
func (s *Server) SetRestartStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restartStatus = status
}

// SetInterruptStatus makes subsequent interrupt requests respond with the given status code.
func (s *Server) SetInterruptStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interruptStatus = status
}

// Close releases the channels connections that are hanging and shuts the server down.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.Server.Close()
}

// HangOn makes the kernel never finish executing code, until it is restarted.
func (s *Server) HangOn(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hangOn = code
}

// SetSilentRestarts makes restarts skip the restarting status on the kernel channels.
func (s *Server) SetSilentRestarts(silent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silentRestarts = silent
}

func (s *Server) Restarts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.restarts...)
}

func (s *Server) Interrupts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.interrupts...)
}

// Executed returns the code of every execute_request received, in order.
func (s *Server) Executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executed...)
}

// NotebookContent returns the current content of the notebook at path.
func (s *Server) NotebookContent(path string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.notebooks[path]
	return content, ok
}

func (s *Server) kernelExists(kernelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.kernelID == kernelID {
			return true
		}
	}
	return false
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", s.serveSessions)
	mux.HandleFunc("/api/sessions/", s.serveSession)
	mux.HandleFunc("/api/kernelspecs", s.serveKernelSpecs)
	mux.HandleFunc("/api/kernels/", s.serveKernels)
	mux.HandleFunc("/api/contents/", s.serveContents)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token "+Token {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (sess session) model() map[string]interface{} {
	return map[string]interface{}{
		"id":   sess.id,
		"path": sess.path,
		"name": sess.path[strings.LastIndex(sess.path, "/")+1:],
		"type": "notebook",
		"kernel": map[string]interface{}{
			"id":              sess.kernelID,
			"name":            sess.kernelName,
			"execution_state": "idle",
		},
	}
}

func (s *Server) serveSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	models := make([]map[string]interface{}, 0, len(s.sessions))
	for _, sess := range s.sessions {
		models = append(models, sess.model())
	}
	s.mu.Unlock()

	writeJson(w, http.StatusOK, models)
}

// serveSession handles PATCH requests that switch a session to a new kernel.
func (s *Server) serveSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Kernel struct {
			Name string `json:"name"`
		} `json:"kernel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Kernel.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/sessions/")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].id != sessionID {
			continue
		}

		s.sessions[i].kernelName = body.Kernel.Name
		s.sessions[i].kernelID = uuid.NewString()
		writeJson(w, http.StatusOK, s.sessions[i].model())
		return
	}

	writeJson(w, http.StatusNotFound, map[string]string{"message": "Session not found: " + sessionID})
}

func (s *Server) serveKernelSpecs(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, http.StatusOK, map[string]interface{}{
		"default": "python3",
		"kernelspecs": map[string]interface{}{
			"python3": map[string]interface{}{
				"name": "python3",
				"spec": map[string]interface{}{"display_name": "Python 3 (ipykernel)", "language": "python"},
			},
			"ir": map[string]interface{}{
				"name": "ir",
				"spec": map[string]interface{}{"display_name": "R", "language": "R"},
			},
		},
	})
}

func (s *Server) serveKernels(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/kernels/"), "/")
	kernelID := parts[0]
	if !s.kernelExists(kernelID) {
		writeJson(w, http.StatusNotFound, map[string]string{"message": "Kernel does not exist: " + kernelID})
		return
	}

	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "channels":
		s.serveChannels(w, r)
	case action == "restart" && r.Method == http.MethodPost:
		s.mu.Lock()
		status := s.restartStatus
		if status == http.StatusOK {
			s.restarts = append(s.restarts, kernelID)
			s.executionCount = 0
			if !s.silentRestarts {
				close(s.restartBroadcast)
				s.restartBroadcast = make(chan struct{})
			}
		}
		s.mu.Unlock()

		if status != http.StatusOK {
			writeJson(w, status, map[string]string{"message": "Kernel restart failed"})
			return
		}
		writeJson(w, http.StatusOK, map[string]interface{}{"id": kernelID, "name": "python3", "execution_state": "restarting"})
	case action == "interrupt" && r.Method == http.MethodPost:
		s.mu.Lock()
		status := s.interruptStatus
		if status == http.StatusNoContent {
			s.interrupts = append(s.interrupts, kernelID)
		}
		s.mu.Unlock()

		if status != http.StatusNoContent {
			writeJson(w, status, map[string]string{"message": "Kernel interrupt failed"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "" && r.Method == http.MethodGet:
		writeJson(w, http.StatusOK, map[string]interface{}{"id": kernelID, "name": "python3", "execution_state": "idle"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveContents(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/contents/")

	switch r.Method {
	case http.MethodGet:
		content, ok := s.NotebookContent(path)
		if !ok {
			writeJson(w, http.StatusNotFound, map[string]string{"message": "No such file or directory: " + path})
			return
		}

		writeJson(w, http.StatusOK, map[string]interface{}{
			"name":    path[strings.LastIndex(path, "/")+1:],
			"path":    path,
			"type":    "notebook",
			"format":  "json",
			"content": content,
		})
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var model struct {
			Type    string          `json:"type"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(body, &model); err != nil || model.Type != "notebook" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.notebooks[path] = model.Content
		s.mu.Unlock()

		writeJson(w, http.StatusOK, map[string]interface{}{"name": path, "path": path, "type": "notebook"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveChannels(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sessionID := r.URL.Query().Get("session_id")

	for {
		var request messaging.Message
		if err := wsjson.Read(ctx, conn, &request); err != nil {
			return
		}

		var content messaging.ExecuteRequest
		_ = request.DecodeContent(&content)

		s.mu.Lock()
		s.executed = append(s.executed, content.Code)
		s.executionCount++
		count := s.executionCount
		hang := s.hangOn != "" && s.hangOn == content.Code
		restarted := s.restartBroadcast
		s.mu.Unlock()

		reply := func(channel string, msgType messaging.JupyterMessageType, body interface{}, parent messaging.MessageHeader) {
			msg, _ := messaging.NewMessage(sessionID, channel, msgType, body)
			msg.ParentHeader = parent
			_ = wsjson.Write(ctx, conn, msg)
		}

		if hang {
			reply(messaging.IOPubChannel, messaging.IOStatusMessage, messaging.MessageKernelStatus{Status: messaging.MessageKernelStatusBusy}, request.Header)
			select {
			case <-restarted:
				reply(messaging.IOPubChannel, messaging.IOStatusMessage,
					messaging.MessageKernelStatus{Status: messaging.MessageKernelStatusRestarting}, messaging.MessageHeader{})
				continue
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			}
		}

		reply(messaging.IOPubChannel, messaging.IOStreamMessage, messaging.MessageStream{Name: "stdout", Text: "not ours\n"},
			messaging.MessageHeader{MsgID: "unrelated"})

		reply(messaging.IOPubChannel, messaging.IOStatusMessage, messaging.MessageKernelStatus{Status: messaging.MessageKernelStatusBusy}, request.Header)
		reply(messaging.IOPubChannel, messaging.IOExecuteInputMessage, map[string]interface{}{"code": content.Code, "execution_count": count}, request.Header)
		reply(messaging.IOPubChannel, messaging.IOStreamMessage, messaging.MessageStream{Name: "stdout", Text: "computing\n"}, request.Header)
		reply(messaging.IOPubChannel, messaging.IOStreamMessage, messaging.MessageStream{Name: "stdout", Text: "done\n"}, request.Header)
		reply(messaging.IOPubChannel, messaging.IOExecuteResultMessage, messaging.MessageDisplayData{
			Data:           map[string]interface{}{"text/plain": content.Code},
			Metadata:       map[string]interface{}{},
			ExecutionCount: &count,
		}, request.Header)
		reply(messaging.IOPubChannel, messaging.IOStatusMessage, messaging.MessageKernelStatus{Status: messaging.MessageKernelStatusIdle}, request.Header)
		reply(messaging.ShellChannel, messaging.ShellExecuteReply, messaging.MessageExecuteReply{
			MessageError:   messaging.MessageError{Status: messaging.MessageStatusOK},
			ExecutionCount: count,
		}, request.Header)
	}
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
