package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/prediction-service/boost"
	"github.com/radieske/varsity-predictions/internal/prediction-service/dto"
	"github.com/radieske/varsity-predictions/internal/prediction-service/repo"
	"github.com/radieske/varsity-predictions/internal/prediction-service/service"
	"github.com/radieske/varsity-predictions/pkg/contracts/events"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

// Service define as operações do prediction-service usadas pela API
type Service interface {
	Quote(ctx context.Context, req service.QuoteRequest) (service.Quote, error)
	PlacePrediction(ctx context.Context, req service.PlaceRequest) (*repo.Prediction, error)
	SettlePrediction(ctx context.Context, id string, outcome payout.Outcome) (*repo.Prediction, error)
	RequestMarketSettlement(ctx context.Context, ev events.MarketSettled) error
	Get(ctx context.Context, id string) (*repo.Prediction, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*repo.Prediction, error)
	ListMarkets(ctx context.Context, userID string) ([]service.MarketView, error)
	GetMarket(ctx context.Context, userID, id string) (service.MarketView, error)
	CheckIn(ctx context.Context, userID, stadium string) (boost.Presence, error)
	CheckOut(ctx context.Context, userID string) (boost.Presence, error)
	Presence(ctx context.Context, userID string) (boost.Presence, error)
}

// API expõe os endpoints REST de mercados, apostas e presença no estádio
type API struct {
	Log *zap.Logger
	Svc Service
	WS  http.HandlerFunc // feed de atividade; opcional
}

// Router retorna o roteador chi com todas as rotas
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/v1/payout/quote", a.payoutQuote)

	r.Get("/v1/markets", a.listMarkets)               // ?userId=...
	r.Get("/v1/markets/{id}", a.getMarket)            // ?userId=...
	r.Post("/v1/markets/{id}/quote", a.quoteMarket)   // cotação com boost do usuário
	r.Post("/v1/markets/{id}/settle", a.settleMarket) // publica market_settled

	r.Post("/v1/predictions", a.placePrediction)
	r.Get("/v1/predictions", a.listPredictions) // ?userId=...&limit=...
	r.Get("/v1/predictions/{id}", a.getPrediction)
	r.Post("/v1/predictions/{id}/settle", a.settlePrediction)

	r.Post("/v1/presence", a.setPresence)
	r.Get("/v1/presence", a.getPresence)

	if a.WS != nil {
		r.Get("/ws/activity", a.WS)
	}
	return r
}

func (a *API) payoutQuote(w http.ResponseWriter, r *http.Request) {
	var req dto.PayoutQuoteRequest
	if !decode(w, r, &req) {
		return
	}
	wager, err := payout.NewWager(req.Amount, req.Odds, req.BoostMultiplier)
	if err != nil {
		a.fail(w, "payout quote", err)
		return
	}
	win, err := wager.PotentialWin()
	if err != nil {
		a.fail(w, "payout quote", err)
		return
	}
	dec, _ := payout.AmericanToDecimal(req.Odds)
	prob, _ := payout.ImpliedProbability(req.Odds)
	writeJSON(w, http.StatusOK, dto.PayoutQuoteResponse{
		Amount:             req.Amount,
		Odds:               payout.FormatAmerican(req.Odds),
		BoostMultiplier:    wager.BoostMultiplier,
		PotentialWin:       win,
		TotalReturn:        payout.TotalReturn(req.Amount, win),
		DecimalOdds:        dec,
		ImpliedProbability: prob,
		Boosted:            wager.Boosted(),
	})
}

func (a *API) listMarkets(w http.ResponseWriter, r *http.Request) {
	out, err := a.Svc.ListMarkets(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		a.fail(w, "list markets", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getMarket(w http.ResponseWriter, r *http.Request) {
	out, err := a.Svc.GetMarket(r.Context(), r.URL.Query().Get("userId"), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, "get market", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) quoteMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.MarketQuoteRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := a.Svc.Quote(r.Context(), service.QuoteRequest{
		UserID:   req.UserID,
		MarketID: chi.URLParam(r, "id"),
		OptionID: req.OptionID,
		Amount:   req.Amount,
	})
	if err != nil {
		a.fail(w, "market quote", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (a *API) settleMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleMarketRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Push && req.WinningOptionID == "" {
		writeError(w, http.StatusBadRequest, "winningOptionId or push required")
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.Svc.RequestMarketSettlement(r.Context(), events.MarketSettled{
		MarketID:        id,
		WinningOptionID: req.WinningOptionID,
		Push:            req.Push,
	}); err != nil {
		a.fail(w, "settle market", err)
		return
	}
	writeJSON(w, http.StatusAccepted, dto.SettleMarketResponse{MarketID: id, Status: "SETTLEMENT_REQUESTED"})
}

func (a *API) placePrediction(w http.ResponseWriter, r *http.Request) {
	var req dto.PlacePredictionRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := a.Svc.PlacePrediction(r.Context(), service.PlaceRequest{
		UserID:   req.UserID,
		MarketID: req.MarketID,
		OptionID: req.OptionID,
		Amount:   req.Amount,
	})
	if err != nil {
		a.fail(w, "place prediction", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) listPredictions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := a.Svc.ListByUser(r.Context(), r.URL.Query().Get("userId"), limit)
	if err != nil {
		a.fail(w, "list predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getPrediction(w http.ResponseWriter, r *http.Request) {
	p, err := a.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, "get prediction", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) settlePrediction(w http.ResponseWriter, r *http.Request) {
	var req dto.SettlePredictionRequest
	if !decode(w, r, &req) {
		return
	}
	outcome, err := payout.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.Svc.SettlePrediction(r.Context(), chi.URLParam(r, "id"), outcome)
	if err != nil {
		a.fail(w, "settle prediction", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) setPresence(w http.ResponseWriter, r *http.Request) {
	var req dto.PresenceRequest
	if !decode(w, r, &req) {
		return
	}
	var (
		p   boost.Presence
		err error
	)
	if req.AtStadium {
		p, err = a.Svc.CheckIn(r.Context(), req.UserID, req.StadiumName)
	} else {
		p, err = a.Svc.CheckOut(r.Context(), req.UserID)
	}
	if err != nil {
		a.fail(w, "presence", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) getPresence(w http.ResponseWriter, r *http.Request) {
	p, err := a.Svc.Presence(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		a.fail(w, "presence", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// fail traduz erros de domínio para status HTTP
func (a *API) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, payout.ErrInvalidOdds),
		errors.Is(err, payout.ErrInvalidWager),
		errors.Is(err, payout.ErrInvalidBoost),
		errors.Is(err, payout.ErrPayoutOverflow),
		errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMarketNotFound),
		errors.Is(err, service.ErrOptionNotFound),
		errors.Is(err, service.ErrPredictionNotFound),
		errors.Is(err, service.ErrWalletNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStadiumOnly):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMarketClosed),
		errors.Is(err, service.ErrAlreadySettled),
		errors.Is(err, service.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, err.Error())
	default:
		a.Log.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
