package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/model"
)

type recordedRequest struct {
	method string
	path   string
	header http.Header
	body   map[string]any
}

// newServer records every request and plays back the canned handler.
func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, header: r.Header.Clone()}
		if r.Body != nil {
			var m map[string]any
			if err := json.NewDecoder(r.Body).Decode(&m); err == nil {
				rec.body = m
			}
		}
		reqs = append(reqs, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestListAttachesIdentity(t *testing.T) {
	srv, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":{"$oid":"1"},"title":"a","done":false}]`))
	})
	gw := NewGateway(srv.URL, "user-1")

	todos, err := gw.List(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, model.Todo{ID: "1", Title: "a", Done: false}, todos[0])

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/todos", got.path)
	assert.Equal(t, "user-1", got.header.Get(HeaderUserID))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
}

func TestListServerError(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	gw := NewGateway(srv.URL, "u")

	_, err := gw.List(context.Background())
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 500, se.Status)
}

func TestListTransportError(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()
	gw := NewGateway(srv.URL, "u")

	_, err := gw.List(context.Background())
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestListParseError(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"done":false}]`))
	})
	gw := NewGateway(srv.URL, "u")

	_, err := gw.List(context.Background())
	var pe *model.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestCreate(t *testing.T) {
	srv, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":{"$oid":"abc"},"title":"milk","done":false}`))
	})
	gw := NewGateway(srv.URL, "u")

	todo, err := gw.Create(context.Background(), "milk")
	require.NoError(t, err)
	assert.Equal(t, "abc", todo.ID)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.method)
	// create sends only title and done; never an id
	assert.Equal(t, map[string]any{"title": "milk", "done": false}, got.body)
}

func TestCreateBadStatus(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	gw := NewGateway(srv.URL, "u")

	_, err := gw.Create(context.Background(), "milk")
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 400, se.Status)
}

func TestUpdate(t *testing.T) {
	srv, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	gw := NewGateway(srv.URL, "u")

	require.NoError(t, gw.Update(context.Background(), "abc", true))

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/todos/abc", got.path)
	assert.Equal(t, map[string]any{"done": true}, got.body)
}

func TestUpdateNotFound(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	gw := NewGateway(srv.URL, "u")

	err := gw.Update(context.Background(), "abc", true)
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Status)
}

func TestDelete(t *testing.T) {
	srv, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {})
	gw := NewGateway(srv.URL, "u")

	require.NoError(t, gw.Delete(context.Background(), "abc"))

	got := (*reqs)[0]
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/todos/abc", got.path)
	assert.Equal(t, "u", got.header.Get(HeaderUserID))
}

func TestDeleteServerError(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	gw := NewGateway(srv.URL, "u")

	err := gw.Delete(context.Background(), "abc")
	var se *ServerError
	assert.ErrorAs(t, err, &se)
}
