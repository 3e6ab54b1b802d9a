package jupyterapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/go-resty/resty/v2"

	"github.com/scusemua/notebook-commands/common/notebook"
)

const (
	ContentsTypeNotebook = "notebook"
	ContentsFormatJson   = "json"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status from the Jupyter Server")
	ErrNotANotebook     = errors.New("contents are not a notebook")
	ErrExecutionAborted = errors.New("kernel restarted or died during execution")
)

// Client talks to the REST API of a Jupyter Server.
type Client struct {
	log logger.Logger

	baseUrl string
	token   string
	resty   *resty.Client
}

func NewClient(baseUrl string, token string, timeout time.Duration) *Client {
	baseUrl = strings.TrimSuffix(baseUrl, "/")

	restyClient := resty.New().
		SetBaseURL(baseUrl).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if token != "" {
		restyClient.SetHeader("Authorization", "token "+token)
	}

	client := &Client{
		baseUrl: baseUrl,
		token:   token,
		resty:   restyClient,
	}
	config.InitLogger(&client.log, client)

	return client
}

func (c *Client) BaseUrl() string {
	return c.baseUrl
}

// Sessions lists the sessions of the server.
func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(&sessions).
		Get("/api/sessions")
	if err := c.check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	return sessions, nil
}

// SessionForPath returns the session of the notebook at the given path.
func (c *Client) SessionForPath(ctx context.Context, path string) (*Session, bool, error) {
	sessions, err := c.Sessions(ctx)
	if err != nil {
		return nil, false, err
	}

	for i := range sessions {
		if sessions[i].Path == path {
			return &sessions[i], true, nil
		}
	}

	return nil, false, nil
}

// SetSessionKernel switches the session to a new kernel started from the named kernel spec.
func (c *Client) SetSessionKernel(ctx context.Context, sessionID string, kernelName string) (*Session, error) {
	c.log.Debug("Switching session %s to kernel spec \"%s\".", sessionID, kernelName)

	session := &Session{}
	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("sessionId", sessionID).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"kernel": map[string]string{"name": kernelName},
		}).
		SetResult(session).
		Patch("/api/sessions/{sessionId}")
	if err := c.check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	return session, nil
}

func (c *Client) KernelSpecs(ctx context.Context) (*KernelSpecs, error) {
	specs := &KernelSpecs{}
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(specs).
		Get("/api/kernelspecs")
	if err := c.check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	return specs, nil
}

func (c *Client) Kernel(ctx context.Context, kernelID string) (*KernelModel, error) {
	model := &KernelModel{}
	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("kernelId", kernelID).
		SetResult(model).
		Get("/api/kernels/{kernelId}")
	if err := c.check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	return model, nil
}

func (c *Client) RestartKernel(ctx context.Context, kernelID string) (*KernelModel, error) {
	c.log.Debug("Restarting kernel %s.", kernelID)

	model := &KernelModel{}
	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("kernelId", kernelID).
		SetResult(model).
		Post("/api/kernels/{kernelId}/restart")
	if err := c.check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	return model, nil
}

func (c *Client) InterruptKernel(ctx context.Context, kernelID string) error {
	c.log.Debug("Interrupting kernel %s.", kernelID)

	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("kernelId", kernelID).
		Post("/api/kernels/{kernelId}/interrupt")
	return c.check(resp, err, http.StatusNoContent, http.StatusOK)
}

// GetNotebook loads the notebook at the given path.
func (c *Client) GetNotebook(ctx context.Context, path string) (*notebook.Document, error) {
	contents := &Contents{}
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"type":    ContentsTypeNotebook,
			"content": "1",
		}).
		SetResult(contents).
		Get(contentsPath(path))
	if err := c.check(resp, err, http.StatusOK); err != nil {
		return nil, err
	}

	if contents.Type != ContentsTypeNotebook || len(contents.Content) == 0 {
		return nil, fmt.Errorf("%w: \"%s\" has type \"%s\"", ErrNotANotebook, path, contents.Type)
	}

	return notebook.Decode(path, contents.Content)
}

// SaveNotebook writes the document back to its path.
func (c *Client) SaveNotebook(ctx context.Context, doc *notebook.Document) error {
	encoded, err := notebook.Encode(doc)
	if err != nil {
		return err
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&Contents{
			Type:    ContentsTypeNotebook,
			Format:  ContentsFormatJson,
			Content: json.RawMessage(encoded),
		}).
		Put(contentsPath(doc.URI()))
	return c.check(resp, err, http.StatusOK, http.StatusCreated)
}

func (c *Client) check(resp *resty.Response, err error, expected ...int) error {
	if err != nil {
		c.log.Error("Request to Jupyter Server failed: %v", err)
		return err
	}

	for _, status := range expected {
		if resp.StatusCode() == status {
			return nil
		}
	}

	c.log.Warn("%s %s returned %d: %s", resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.String())
	return fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, resp.Request.Method, resp.Request.URL, resp.StatusCode())
}

func contentsPath(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return "/api/contents/" + strings.Join(segments, "/")
}
