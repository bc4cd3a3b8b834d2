package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"khetmitra-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Postgres
// ==========================

func TestPostgres_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS farmer_profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))

	client := &PostgresClient{DB: db}
	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_EnsureSchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS farmer_profiles").
		WillReturnError(errors.New("permission denied"))

	err = (&PostgresClient{DB: db}).EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "farmer_profiles")
}

// ==========================
// Redis
// ==========================

func TestRedis_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestRedis_RejectsEmptyAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

// ==========================
// Elasticsearch
// ==========================

func newFakeES(t *testing.T, indexExists bool) (*ElasticsearchClient, *int32) {
	t.Helper()
	var creates int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/market-listings":
			if indexExists {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/market-listings":
			atomic.AddInt32(&creates, 1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, &creates
}

func TestElasticsearch_EnsureMarketIndexCreatesWhenMissing(t *testing.T) {
	client, creates := newFakeES(t, false)
	require.NoError(t, client.EnsureMarketIndex(context.Background(), "market-listings"))
	assert.Equal(t, int32(1), atomic.LoadInt32(creates))
}

func TestElasticsearch_EnsureMarketIndexSkipsExisting(t *testing.T) {
	client, creates := newFakeES(t, true)
	require.NoError(t, client.EnsureMarketIndex(context.Background(), "market-listings"))
	assert.Equal(t, int32(0), atomic.LoadInt32(creates))
}

func TestElasticsearch_Ping(t *testing.T) {
	client, _ := newFakeES(t, true)
	assert.NoError(t, client.Ping(context.Background()))
}
