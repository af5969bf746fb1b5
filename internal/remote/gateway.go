package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/idilsaglam/todosync/internal/model"
)

// HeaderUserID carries the installation identity on every request.
const HeaderUserID = "x-user-id"

const defaultTimeout = 10 * time.Second

// Gateway speaks the todo wire protocol. Stateless apart from the base
// URL and the identity it attaches to every call. No retries, no
// backoff; a failure is reported once and the caller decides what it
// means.
type Gateway struct {
	baseURL string
	userID  string
	client  *http.Client
}

func NewGateway(baseURL, userID string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (g *Gateway) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderUserID, g.userID)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	glog.V(2).Infof("%s %s -> %d", method, path, resp.StatusCode)
	return resp, nil
}

// List fetches every record visible to this identity, in server order.
func (g *Gateway) List(ctx context.Context) ([]model.Todo, error) {
	resp, err := g.do(ctx, http.MethodGet, "/todos", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{Status: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return model.DecodeTodos(b)
}

// Create posts a new record and returns the server's authoritative copy,
// id included. The backend answers 200 or 201 depending on version; both
// count as success.
func (g *Gateway) Create(ctx context.Context, title string) (model.Todo, error) {
	resp, err := g.do(ctx, http.MethodPost, "/todos", model.CreatePayload{Title: title})
	if err != nil {
		return model.Todo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return model.Todo{}, &ServerError{Status: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Todo{}, &TransportError{Err: err}
	}
	return model.DecodeTodo(b)
}

// Update sets the done flag for one record. The response has no body, so
// there is nothing to merge on success.
func (g *Gateway) Update(ctx context.Context, id string, done bool) error {
	resp, err := g.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), model.UpdatePayload{Done: done})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ServerError{Status: resp.StatusCode}
	}
	return nil
}

// Delete removes one record by id.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	resp, err := g.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ServerError{Status: resp.StatusCode}
	}
	return nil
}
