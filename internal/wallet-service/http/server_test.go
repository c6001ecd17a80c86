package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/wallet-service/dto"
	"github.com/radieske/varsity-predictions/internal/wallet-service/repo"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) GetOrCreateWallet(ctx context.Context, userID string) (string, int64, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (string, int64, error) {
	args := m.Called(ctx, userID, amount, externalRef)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) ClaimDaily(ctx context.Context, userID string) (bool, int64, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) Reserve(ctx context.Context, userID string, amount int64, externalRef string) (string, error) {
	args := m.Called(ctx, userID, amount, externalRef)
	return args.String(0), args.Error(1)
}

func (m *mockRepo) Commit(ctx context.Context, userID, externalRef string) error {
	return m.Called(ctx, userID, externalRef).Error(0)
}

func (m *mockRepo) Refund(ctx context.Context, userID, externalRef string) error {
	return m.Called(ctx, userID, externalRef).Error(0)
}

func (m *mockRepo) Payout(ctx context.Context, userID, externalRef string, coins int64) error {
	return m.Called(ctx, userID, externalRef, coins).Error(0)
}

func (m *mockRepo) ListRewards(ctx context.Context) ([]repo.Reward, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repo.Reward), args.Error(1)
}

func (m *mockRepo) Redeem(ctx context.Context, userID, rewardID string) (repo.Redemption, error) {
	args := m.Called(ctx, userID, rewardID)
	return args.Get(0).(repo.Redemption), args.Error(1)
}

func (m *mockRepo) ListRedemptions(ctx context.Context, userID string) ([]repo.Redemption, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]repo.Redemption), args.Error(1)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestGetWallet(t *testing.T) {
	r := new(mockRepo)
	r.On("GetOrCreateWallet", mock.Anything, "u1").Return("w1", int64(1000), nil)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodGet, "/wallet?userId=u1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(1000), out.Coins)
	r.AssertExpectations(t)
}

func TestGetWallet_MissingUser(t *testing.T) {
	srv := NewServer(zap.NewNop(), new(mockRepo)).Router()

	rec := do(t, srv, http.MethodGet, "/wallet", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReserve_InsufficientCoins(t *testing.T) {
	r := new(mockRepo)
	r.On("Reserve", mock.Anything, "u1", int64(5000), "pred-1").Return("", repo.ErrInsufficientFunds)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodPost, "/wallet/reserve", `{"userId":"u1","coins":5000,"external_ref":"pred-1"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	r.AssertExpectations(t)
}

func TestReserve_InvalidPayload(t *testing.T) {
	srv := NewServer(zap.NewNop(), new(mockRepo)).Router()

	rec := do(t, srv, http.MethodPost, "/wallet/reserve", `{"userId":"u1","coins":0,"external_ref":"pred-1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimDaily(t *testing.T) {
	r := new(mockRepo)
	r.On("ClaimDaily", mock.Anything, "u1").Return(true, int64(1500), nil)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodPost, "/wallet/daily", `{"userId":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.DailyClaimResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Granted)
	assert.Equal(t, int64(1500), out.Coins)
}

func TestPayout_NotFound(t *testing.T) {
	r := new(mockRepo)
	r.On("Payout", mock.Anything, "u1", "pred-9", int64(250)).Return(repo.ErrNotFound)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodPost, "/wallet/payout", `{"userId":"u1","external_ref":"pred-9","coins":250}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefund(t *testing.T) {
	r := new(mockRepo)
	r.On("Refund", mock.Anything, "u1", "pred-1").Return(nil)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodPost, "/wallet/refund", `{"userId":"u1","external_ref":"pred-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), repo.ReservationRefunded)
}

func TestDeposit(t *testing.T) {
	r := new(mockRepo)
	r.On("Deposit", mock.Anything, "u1", int64(250), "promo-1").Return("w1", int64(1250), nil)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodPost, "/wallet/deposit", `{"userId":"u1","coins":250,"external_ref":"promo-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.WalletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "w1", out.WalletID)
	assert.Equal(t, int64(1250), out.Coins)
	r.AssertExpectations(t)
}

func TestDeposit_InvalidPayload(t *testing.T) {
	srv := NewServer(zap.NewNop(), new(mockRepo)).Router()

	for _, body := range []string{`{"userId":"u1","coins":0}`, `{"coins":10}`, `nope`} {
		rec := do(t, srv, http.MethodPost, "/wallet/deposit", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestListRewards(t *testing.T) {
	stock := 3
	r := new(mockRepo)
	r.On("ListRewards", mock.Anything).Return([]repo.Reward{
		{ID: "rw-1", Title: "Sideline pass", CoinCost: 2000, Stock: &stock, Available: true},
	}, nil)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodGet, "/wallet/rewards", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var out []repo.Reward
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 3, *out[0].Stock)
}

func TestRedeem(t *testing.T) {
	r := new(mockRepo)
	r.On("Redeem", mock.Anything, "u1", "rw-1").
		Return(repo.Redemption{ID: "red-1", RewardID: "rw-1", UserID: "u1", CoinCost: 300, Code: "VARSITY-ABC123", Status: "fulfilled", Balance: 700}, nil)
	srv := NewServer(zap.NewNop(), r).Router()

	rec := do(t, srv, http.MethodPost, "/wallet/rewards/redeem", `{"userId":"u1","rewardId":"rw-1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var out repo.Redemption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "VARSITY-ABC123", out.Code)
	assert.Equal(t, int64(700), out.Balance)
	r.AssertExpectations(t)
}

func TestRedeem_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{repo.ErrOutOfStock, http.StatusConflict},
		{repo.ErrInsufficientFunds, http.StatusConflict},
		{repo.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		r := new(mockRepo)
		r.On("Redeem", mock.Anything, "u1", "rw-1").Return(repo.Redemption{}, tc.err)
		srv := NewServer(zap.NewNop(), r).Router()

		rec := do(t, srv, http.MethodPost, "/wallet/rewards/redeem", `{"userId":"u1","rewardId":"rw-1"}`)

		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}

func TestListRedemptions_MissingUser(t *testing.T) {
	srv := NewServer(zap.NewNop(), new(mockRepo)).Router()

	rec := do(t, srv, http.MethodGet, "/wallet/redemptions", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
