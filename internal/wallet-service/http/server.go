package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/wallet-service/dto"
	"github.com/radieske/varsity-predictions/internal/wallet-service/repo"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error)
	ClaimDaily(ctx context.Context, userID string) (granted bool, newBalance int64, err error)
	Reserve(ctx context.Context, userID string, amount int64, externalRef string) (reservationID string, err error)
	Commit(ctx context.Context, userID, externalRef string) error
	Refund(ctx context.Context, userID, externalRef string) error
	Payout(ctx context.Context, userID, externalRef string, coins int64) error

	ListRewards(ctx context.Context) ([]repo.Reward, error)
	Redeem(ctx context.Context, userID, rewardID string) (repo.Redemption, error)
	ListRedemptions(ctx context.Context, userID string) ([]repo.Redemption, error)
}

// Server expõe endpoints HTTP para operações da carteira de moedas
type Server struct {
	log  *zap.Logger
	repo Repo
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wallet", s.getWallet)          // ?userId=...
	mux.HandleFunc("POST /wallet/deposit", s.deposit)
	mux.HandleFunc("POST /wallet/daily", s.claimDaily)
	mux.HandleFunc("POST /wallet/reserve", s.reserve)
	mux.HandleFunc("POST /wallet/commit", s.commit)
	mux.HandleFunc("POST /wallet/refund", s.refund)
	mux.HandleFunc("POST /wallet/payout", s.payout)
	mux.HandleFunc("GET /wallet/rewards", s.listRewards)
	mux.HandleFunc("POST /wallet/rewards/redeem", s.redeem)
	mux.HandleFunc("GET /wallet/redemptions", s.listRedemptions) // ?userId=...
	return mux
}

// getWallet retorna (ou cria) a carteira e saldo do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	walletID, bal, err := s.repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		s.fail(w, "get wallet", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: userID, WalletID: walletID, Coins: bal})
}

// deposit adiciona moedas à carteira do usuário
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.Coins <= 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	walletID, bal, err := s.repo.Deposit(r.Context(), req.UserID, req.Coins, req.ExternalRef)
	if err != nil {
		s.fail(w, "deposit", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: req.UserID, WalletID: walletID, Coins: bal})
}

// claimDaily concede a mesada diária (uma vez por dia)
func (s *Server) claimDaily(w http.ResponseWriter, r *http.Request) {
	var req dto.DailyClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	granted, bal, err := s.repo.ClaimDaily(r.Context(), req.UserID)
	if err != nil {
		s.fail(w, "daily claim", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DailyClaimResponse{UserID: req.UserID, Granted: granted, Coins: bal})
}

// reserve bloqueia moedas para uma aposta
func (s *Server) reserve(w http.ResponseWriter, r *http.Request) {
	var req dto.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.Coins <= 0 || req.ExternalRef == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	resID, err := s.repo.Reserve(r.Context(), req.UserID, req.Coins, req.ExternalRef)
	if err != nil {
		s.fail(w, "reserve", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ReservationResponse{ReservationID: resID, Status: repo.ReservationPending})
}

// commit efetiva uma reserva (aposta perdida)
func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	var req dto.CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.ExternalRef == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := s.repo.Commit(r.Context(), req.UserID, req.ExternalRef); err != nil {
		s.fail(w, "commit", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": repo.ReservationCommitted})
}

// refund desfaz uma reserva, devolvendo as moedas ao usuário
func (s *Server) refund(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.ExternalRef == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := s.repo.Refund(r.Context(), req.UserID, req.ExternalRef); err != nil {
		s.fail(w, "refund", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": repo.ReservationRefunded})
}

// payout credita aposta + ganho de uma reserva vencedora
func (s *Server) payout(w http.ResponseWriter, r *http.Request) {
	var req dto.PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.ExternalRef == "" || req.Coins <= 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := s.repo.Payout(r.Context(), req.UserID, req.ExternalRef, req.Coins); err != nil {
		s.fail(w, "payout", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": repo.ReservationPaid})
}

// listRewards retorna o catálogo de recompensas disponíveis
func (s *Server) listRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := s.repo.ListRewards(r.Context())
	if err != nil {
		s.fail(w, "list rewards", err)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

// redeem troca moedas por uma recompensa e devolve o código de resgate
func (s *Server) redeem(w http.ResponseWriter, r *http.Request) {
	var req dto.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.RewardID == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	red, err := s.repo.Redeem(r.Context(), req.UserID, req.RewardID)
	if err != nil {
		s.fail(w, "redeem", err)
		return
	}
	s.log.Info("reward redeemed",
		zap.String("userId", req.UserID),
		zap.String("rewardId", req.RewardID),
		zap.Int64("coins", red.CoinCost),
	)
	writeJSON(w, http.StatusCreated, red)
}

func (s *Server) listRedemptions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}
	out, err := s.repo.ListRedemptions(r.Context(), userID)
	if err != nil {
		s.fail(w, "list redemptions", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// fail traduz erros do repositório para status HTTP
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrInsufficientFunds),
		errors.Is(err, repo.ErrOutOfStock):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
