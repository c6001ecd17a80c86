package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletdto "github.com/radieske/varsity-predictions/internal/wallet-service/dto"
)

func TestClient_Reserve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet/reserve", r.URL.Path)
		var req walletdto.ReserveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(100), req.Coins)
		assert.Equal(t, "pred-1", req.ExternalRef)
		_ = json.NewEncoder(w).Encode(walletdto.ReservationResponse{ReservationID: "res-1", Status: "PENDING"})
	}))
	defer srv.Close()

	id, err := New(srv.URL).Reserve(context.Background(), "u1", 100, "pred-1")

	require.NoError(t, err)
	assert.Equal(t, "res-1", id)
}

func TestClient_ReserveInsufficient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Reserve(context.Background(), "u1", 100, "pred-1")

	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestClient_Payout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet/payout", r.URL.Path)
		var req walletdto.PayoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(475), req.Coins)
		_, _ = w.Write([]byte(`{"status":"PAID"}`))
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Payout(context.Background(), "u1", "pred-1", 475))
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL).Commit(context.Background(), "u1", "pred-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientFunds)
}
