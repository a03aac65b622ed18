package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupNationalID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/national-id", r.URL.Path)
		assert.Equal(t, "12.345.678-9", r.URL.Query().Get("number"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"firstNames":"María José","paternalSurname":"González","maternalSurname":"Pérez"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token", 5*time.Second)

	person, err := client.LookupNationalID(context.Background(), "12.345.678-9")
	require.NoError(t, err)

	assert.Equal(t, "María José", person.FirstNames)
	assert.Equal(t, "María José González Pérez", person.FullName())
}

func TestLookupNationalID_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"firstNames":"Ana","paternalSurname":"Silva","maternalSurname":"Rojas"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)

	_, err := client.LookupNationalID(context.Background(), "11.111.111-1")
	require.NoError(t, err)
}

func TestLookupTaxID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tax-id", r.URL.Path)
		w.Write([]byte(`{"legalName":"Servicios Faena SpA","address":"Santiago","isActive":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)

	record, err := client.LookupTaxID(context.Background(), "76.123.456-7")
	require.NoError(t, err)

	assert.Equal(t, "Servicios Faena SpA", record.LegalName)
	assert.True(t, record.IsActive)
}

func TestLookup_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)

	_, err := client.LookupNationalID(context.Background(), "12.345.678-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestLookup_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)

	_, err := client.LookupTaxID(context.Background(), "76.123.456-7")
	assert.Error(t, err)
}

func TestLookup_QueryEscaping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a&b c", r.URL.Query().Get("number"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)

	_, err := client.LookupNationalID(context.Background(), "a&b c")
	require.NoError(t, err)
}
