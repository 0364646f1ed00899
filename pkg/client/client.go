package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mrshanahan/notes-console/pkg/notes"
)

const DefaultURL = "https://iwb283jfm0.execute-api.us-east-1.amazonaws.com/default"

// Upper bound on a response body; the largest payload is the full note list.
const maxResponseBytes = 16 << 20

var ErrMalformedEnvelope = errors.New("malformed response envelope")

// APIError is returned when the backend answers with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// envelope is the wrapper every backend response shares. Success is a pointer
// so that a missing flag is told apart from an explicit false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type Client struct {
	URL        string
	Token      string
	HTTPClient *http.Client
}

func NewClient(url string, token string) *Client {
	return &Client{URL: url, Token: token, HTTPClient: http.DefaultClient}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	copied := *c
	copied.Token = token
	return &copied
}

func (c *Client) ListNotes(ctx context.Context) ([]*notes.Note, error) {
	var list []*notes.Note
	if err := c.Request(ctx, http.MethodGet, "/api/notes", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*notes.Note, error) {
	var note *notes.Note
	if err := c.Request(ctx, http.MethodGet, notePath(id), nil, &note); err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("no note with id: %s", id)
	}
	return note, nil
}

func (c *Client) CreateNote(ctx context.Context, req *notes.CreateRequest) error {
	return c.Request(ctx, http.MethodPost, "/api/notes", req, nil)
}

func (c *Client) UpdateNote(ctx context.Context, id string, req *notes.UpdateRequest) error {
	return c.Request(ctx, http.MethodPut, notePath(id), req, nil)
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.Request(ctx, http.MethodDelete, notePath(id), nil, nil)
}

func (c *Client) TestPush(ctx context.Context) error {
	return c.Request(ctx, http.MethodPost, "/api/push/test", nil, nil)
}

func (c *Client) PushNow(ctx context.Context) error {
	return c.Request(ctx, http.MethodPost, "/api/push/now", nil, nil)
}

// Request sends body (JSON-encoded when non-nil) to path and decodes the
// envelope's data into out (skipped when out is nil).
func (c *Client) Request(ctx context.Context, method string, path string, body any, out any) error {
	resp, err := c.invoke(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := decodeEnvelope(resp)
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error JSON-decoding response data: %w", err)
	}
	return nil
}

// Private functions

func notePath(id string) string {
	return "/api/notes/" + url.PathEscape(id)
}

func (c *Client) invoke(ctx context.Context, method string, path string, body any) (*http.Response, error) {
	requestUrl := strings.TrimRight(c.URL, "/") + path

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error JSON-encoding request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestUrl, payload)
	if err != nil {
		return nil, fmt.Errorf("error building API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error invoking API: %w", err)
	}
	return resp, nil
}

func decodeEnvelope(resp *http.Response) (json.RawMessage, error) {
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	env := &envelope{}
	if err := json.Unmarshal(respBytes, env); err != nil || env.Success == nil {
		respStr := strings.TrimSpace(string(respBytes))
		if len(respStr) > 200 {
			respStr = respStr[:200] + "..."
		}
		return nil, fmt.Errorf("%w (status: %d, response: %s)", ErrMalformedEnvelope, resp.StatusCode, respStr)
	}

	if !*env.Success {
		message := env.Message
		if message == "" {
			message = "request failed"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil, nil
	}
	return env.Data, nil
}
