package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalith/predictit-etl/internal/model"
)

const sampleBody = `{"markets":[{"id":7419,"name":"Test market","shortName":"Test","url":"https://example.org/7419","status":"Open","contracts":[{"id":1,"name":"Yes","status":"Open","lastTradePrice":0.42,"bestBuyYesCost":0.43,"bestBuyNoCost":0.59,"bestSellYesCost":0.41,"bestSellNoCost":0.57,"lastClosePrice":0.42,"displayOrder":1}]}]}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "predictit-etl/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	ex := New(srv.URL, testLogger())
	list, body, err := ex.Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list.Markets, 1)
	assert.Equal(t, 7419, list.Markets[0].ID)
	assert.Equal(t, sampleBody, string(body))
}

func TestFetchBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"markets":[]}`))
	}))
	defer srv.Close()

	ex := New(srv.URL, testLogger(), WithToken("sekrit"))
	_, _, err := ex.Fetch(context.Background(), nil)
	require.NoError(t, err)
}

func TestFetchHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	ex := New(srv.URL, testLogger())
	_, _, err := ex.Fetch(context.Background(), nil)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestFetchDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	ex := New(srv.URL, testLogger())
	_, _, err := ex.Fetch(context.Background(), nil)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	ex := New(srv.URL, testLogger())
	_, _, err := ex.Fetch(context.Background(), nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestExtractAndPersist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	fixed := time.Date(2026, 2, 23, 14, 30, 0, 0, time.UTC)
	ex := New(srv.URL, testLogger(), WithClock(func() time.Time { return fixed }))

	dir := t.TempDir()
	path, err := ex.ExtractAndPersist(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, path, "predictit_markets_20260223_143000.json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var env model.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, fixed, env.ExtractedAt)
	assert.Equal(t, srv.URL, env.Source)
	// The envelope's data field holds the fetched payload exactly.
	assert.JSONEq(t, sampleBody, string(env.Data))
}

func TestExtractAndPersistFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ex := New(srv.URL, testLogger())
	_, err := ex.ExtractAndPersist(context.Background(), t.TempDir())

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
}

func TestVerifyJSONFile(t *testing.T) {
	dir := t.TempDir()

	empty := dir + "/empty.json"
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	var perr *PersistenceError
	require.ErrorAs(t, verifyJSONFile(empty), &perr)

	bad := dir + "/bad.json"
	require.NoError(t, os.WriteFile(bad, []byte("{broken"), 0o644))
	require.ErrorAs(t, verifyJSONFile(bad), &perr)

	good := dir + "/good.json"
	require.NoError(t, os.WriteFile(good, []byte(`{"ok":true}`), 0o644))
	assert.NoError(t, verifyJSONFile(good))
}
