package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
	"github.com/bryanwahyu/fraudscope/internal/jsonx"
)

func TestClient_Customers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/customers", r.URL.Path)
		_, _ = io.WriteString(w, `{"customers":["정우성","김민지"]}`)
	}))
	defer srv.Close()

	names, err := NewClient(srv.URL+"/", 0).Customers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"정우성", "김민지"}, names)
}

func TestClient_CustomersMissingKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"other":1}`)
	}))
	defer srv.Close()

	names, err := NewClient(srv.URL, 0).Customers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NotNil(t, names)
}

func TestClient_CustomersServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "internal error")
	}))
	defer srv.Close()

	names, err := NewClient(srv.URL, 0).Customers(context.Background())
	require.Error(t, err)
	assert.Nil(t, names)

	var perr *analysis.ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 500, perr.StatusCode)
	assert.Equal(t, "Internal Server Error", perr.StatusText)
	assert.Equal(t, "internal error", perr.Body)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal error")
}

func TestClient_RunSendsBodyAndKeepsOrder(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/run", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"result":{"draft":{"route":"STR"},"customer_raw":{"z":1,"a":2}}}`)
	}))
	defer srv.Close()

	on := false
	raw, err := NewClient(srv.URL, time.Second).Run(context.Background(), analysis.RunRequest{
		CustomerName: "정우성", LLMModel: analysis.ModelGPT5, UseCache: &on,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"customer_name": "정우성", "llm_model": "gpt5", "use_cache": false}, got)

	res := analysis.Normalize(raw)
	draft, ok := res.Draft.Get()
	require.True(t, ok)
	route, _ := draft.Route.Get()
	assert.Equal(t, "STR", route)

	customer, ok := res.Customer.Get()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, customer.Keys())

	// raw keeps the wrapper; normalization unwraps it
	obj, ok := raw.(*jsonx.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"result"}, obj.Keys())
}

func TestClient_RunMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"draft":`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Run(context.Background(), analysis.RunRequest{CustomerName: "a", LLMModel: analysis.ModelOllama})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode run response")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 0).Customers(context.Background())
	require.Error(t, err)
	var terr *analysis.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "GET /customers", terr.Op)
	assert.Equal(t, terr.Err.Error(), err.Error())
}

func TestClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	c := NewClient(srv.URL, 0)
	assert.NoError(t, c.Check(context.Background()), "any HTTP answer means reachable")

	srv.Close()
	assert.Error(t, c.Check(context.Background()))
}
