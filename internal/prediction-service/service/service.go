package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
	"github.com/radieske/varsity-predictions/internal/prediction-service/boost"
	"github.com/radieske/varsity-predictions/internal/prediction-service/market"
	"github.com/radieske/varsity-predictions/internal/prediction-service/repo"
	"github.com/radieske/varsity-predictions/internal/prediction-service/wallet"
	"github.com/radieske/varsity-predictions/pkg/contracts/events"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

var (
	ErrMarketNotFound     = errors.New("market not found")
	ErrMarketClosed       = errors.New("market is not open")
	ErrOptionNotFound     = errors.New("option not found in market")
	ErrStadiumOnly        = errors.New("market is exclusive to fans at the stadium")
	ErrInsufficientFunds  = errors.New("insufficient coins")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrAlreadySettled     = errors.New("prediction already settled")
	ErrInvalidRequest     = errors.New("invalid request")
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Service struct {
	log       *zap.Logger
	markets   MarketStore
	presence  PresenceStore
	resolver  boost.Resolver
	repo      PredictionRepo
	wallet    Wallet
	publisher Publisher
	activity  ActivityPublisher
	hooks     Hooks
	now       func() time.Time
}

func New(
	log *zap.Logger,
	markets MarketStore,
	presence PresenceStore,
	resolver boost.Resolver,
	r PredictionRepo,
	w Wallet,
	pub Publisher,
	act ActivityPublisher,
	hooks Hooks,
) *Service {
	return &Service{
		log: log, markets: markets, presence: presence, resolver: resolver,
		repo: r, wallet: w, publisher: pub, activity: act, hooks: hooks,
		now: time.Now,
	}
}

type QuoteRequest struct {
	UserID   string `json:"userId"`
	MarketID string `json:"marketId"`
	OptionID string `json:"optionId"`
	Amount   int64  `json:"amount"`
}

type PlaceRequest = QuoteRequest

type Quote struct {
	MarketID        string          `json:"marketId"`
	OptionID        string          `json:"optionId"`
	Amount          int64           `json:"amount"`
	Odds            int             `json:"odds"`
	BoostMultiplier decimal.Decimal `json:"boostMultiplier"`
	PotentialWin    int64           `json:"potentialWin"`
	TotalReturn     int64           `json:"totalReturn"`
	Boosted         bool            `json:"boosted"`
}

// MarketView é o mercado como um usuário específico o enxerga
type MarketView struct {
	market.Market
	EffectiveBoost decimal.Decimal `json:"effectiveBoost"`
	Locked         bool            `json:"locked"`
}

// Quote calcula o ganho potencial sem efeitos colaterais
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if req.Amount <= 0 {
		return Quote{}, payout.ErrInvalidWager
	}
	if req.MarketID == "" || req.OptionID == "" {
		return Quote{}, fmt.Errorf("%w: marketId and optionId are required", ErrInvalidRequest)
	}

	m, err := s.loadMarket(ctx, req.MarketID)
	if err != nil {
		return Quote{}, err
	}
	if !m.IsOpen(s.now()) {
		return Quote{}, ErrMarketClosed
	}
	opt, ok := m.Option(req.OptionID)
	if !ok {
		return Quote{}, ErrOptionNotFound
	}

	mult, locked := s.resolver.Effective(m, s.presenceOf(ctx, req.UserID))
	if locked {
		return Quote{}, ErrStadiumOnly
	}

	w, err := payout.NewWager(req.Amount, opt.Odds, mult)
	if err != nil {
		return Quote{}, err
	}
	win, err := w.PotentialWin()
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		MarketID:        m.ID,
		OptionID:        opt.ID,
		Amount:          req.Amount,
		Odds:            opt.Odds,
		BoostMultiplier: w.BoostMultiplier,
		PotentialWin:    win,
		TotalReturn:     payout.TotalReturn(req.Amount, win),
		Boosted:         w.Boosted(),
	}, nil
}

// PlacePrediction grava a aposta pending e reserva as moedas no wallet.
// Se a reserva falhar a aposta é anulada (void).
func (s *Service) PlacePrediction(ctx context.Context, req PlaceRequest) (*repo.Prediction, error) {
	if req.Amount > 0 && req.UserID == "" {
		return nil, fmt.Errorf("%w: userId required", ErrInvalidRequest)
	}
	q, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	p := &repo.Prediction{
		UserID:          req.UserID,
		MarketID:        q.MarketID,
		OptionID:        q.OptionID,
		CoinsWagered:    q.Amount,
		Odds:            q.Odds,
		BoostMultiplier: q.BoostMultiplier,
		PotentialWin:    q.PotentialWin,
		Boosted:         q.Boosted,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}

	if _, err := s.wallet.Reserve(ctx, p.UserID, p.CoinsWagered, p.ID); err != nil {
		if verr := s.repo.Void(ctx, p.ID); verr != nil {
			s.log.Error("void prediction failed", zap.String("predictionId", p.ID), zap.Error(verr))
		}
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		case errors.Is(err, wallet.ErrNotFound):
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("reserve coins: %w", err)
	}

	if err := s.publisher.PublishPredictionPlaced(ctx, events.PredictionPlaced{
		PredictionID:    p.ID,
		UserID:          p.UserID,
		MarketID:        p.MarketID,
		OptionID:        p.OptionID,
		CoinsWagered:    p.CoinsWagered,
		Odds:            p.Odds,
		BoostMultiplier: p.BoostMultiplier.String(),
		PotentialWin:    p.PotentialWin,
		Boosted:         p.Boosted,
	}); err != nil {
		s.log.Warn("publish prediction_placed failed", zap.String("predictionId", p.ID), zap.Error(err))
	}
	s.broadcast(ctx, activity.Activity{
		Type:         activity.TypePlaced,
		UserID:       p.UserID,
		PredictionID: p.ID,
		MarketID:     p.MarketID,
		OptionID:     p.OptionID,
		Coins:        p.CoinsWagered,
		PotentialWin: p.PotentialWin,
		Boosted:      p.Boosted,
	})
	if s.hooks.OnPlaced != nil {
		s.hooks.OnPlaced(p.Boosted, p.CoinsWagered, p.PotentialWin)
	}

	s.log.Info("prediction placed",
		zap.String("predictionId", p.ID),
		zap.String("userId", p.UserID),
		zap.String("marketId", p.MarketID),
		zap.Int64("coins", p.CoinsWagered),
		zap.Int64("potentialWin", p.PotentialWin),
		zap.String("boost", p.BoostMultiplier.String()),
	)
	return p, nil
}

// SettlePrediction liquida uma aposta pending usando o potentialWin gravado
func (s *Service) SettlePrediction(ctx context.Context, id string, outcome payout.Outcome) (*repo.Prediction, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPredictionNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Status != payout.OutcomePending {
		return nil, ErrAlreadySettled
	}
	if !p.Status.CanTransition(outcome) {
		return nil, fmt.Errorf("%w: outcome %q", ErrInvalidRequest, outcome)
	}
	if err := s.settle(ctx, p, outcome); err != nil {
		return nil, err
	}
	return p, nil
}

// SettlementSummary resume a liquidação de um mercado
type SettlementSummary struct {
	MarketID string `json:"marketId"`
	Won      int    `json:"won"`
	Lost     int    `json:"lost"`
	Push     int    `json:"push"`
	Failed   int    `json:"failed"`
	Credited int64  `json:"credited"`
}

// SettleMarket liquida todas as apostas pending do mercado.
// O mercado só é marcado settled quando nenhuma aposta falha; reprocessar é seguro.
func (s *Service) SettleMarket(ctx context.Context, ev events.MarketSettled) (SettlementSummary, error) {
	sum := SettlementSummary{MarketID: ev.MarketID}

	m, err := s.loadMarket(ctx, ev.MarketID)
	if err != nil {
		return sum, err
	}
	if !ev.Push {
		if _, ok := m.Option(ev.WinningOptionID); !ok {
			return sum, ErrOptionNotFound
		}
	}

	pending, err := s.repo.ListPendingByMarket(ctx, ev.MarketID)
	if err != nil {
		return sum, fmt.Errorf("list pending: %w", err)
	}

	var errs []error
	for _, p := range pending {
		outcome := payout.OutcomeLost
		switch {
		case ev.Push:
			outcome = payout.OutcomePush
		case p.OptionID == ev.WinningOptionID:
			outcome = payout.OutcomeWon
		}

		if err := s.settle(ctx, p, outcome); err != nil {
			if errors.Is(err, ErrAlreadySettled) {
				continue
			}
			sum.Failed++
			errs = append(errs, fmt.Errorf("prediction %s: %w", p.ID, err))
			continue
		}
		switch outcome {
		case payout.OutcomeWon:
			sum.Won++
		case payout.OutcomeLost:
			sum.Lost++
		case payout.OutcomePush:
			sum.Push++
		}
		sum.Credited += payout.Credit(outcome, p.CoinsWagered, p.PotentialWin)
	}

	if len(errs) > 0 {
		return sum, errors.Join(errs...)
	}
	if err := s.markets.MarkSettled(ctx, ev.MarketID); err != nil {
		return sum, fmt.Errorf("mark market settled: %w", err)
	}

	s.log.Info("market settled",
		zap.String("marketId", ev.MarketID),
		zap.Bool("push", ev.Push),
		zap.Int("won", sum.Won),
		zap.Int("lost", sum.Lost),
		zap.Int("push_count", sum.Push),
		zap.Int64("credited", sum.Credited),
	)
	return sum, nil
}

// RequestMarketSettlement valida o resultado e publica market_settled para o settlement-worker
func (s *Service) RequestMarketSettlement(ctx context.Context, ev events.MarketSettled) error {
	m, err := s.loadMarket(ctx, ev.MarketID)
	if err != nil {
		return err
	}
	if m.Status == market.StatusSettled {
		return ErrAlreadySettled
	}
	if !ev.Push {
		if _, ok := m.Option(ev.WinningOptionID); !ok {
			return ErrOptionNotFound
		}
	}
	ev.SettledAt = s.now().UTC()
	return s.publisher.PublishMarketSettled(ctx, ev)
}

func (s *Service) Get(ctx context.Context, id string) (*repo.Prediction, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPredictionNotFound
	}
	return p, err
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*repo.Prediction, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId required", ErrInvalidRequest)
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// ListMarkets retorna os mercados abertos com o boost efetivo para o usuário
func (s *Service) ListMarkets(ctx context.Context, userID string) ([]MarketView, error) {
	ms, err := s.markets.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	pr := s.presenceOf(ctx, userID)
	out := make([]MarketView, 0, len(ms))
	for _, m := range ms {
		out = append(out, s.view(m, pr))
	}
	return out, nil
}

func (s *Service) GetMarket(ctx context.Context, userID, id string) (MarketView, error) {
	m, err := s.loadMarket(ctx, id)
	if err != nil {
		return MarketView{}, err
	}
	return s.view(m, s.presenceOf(ctx, userID)), nil
}

func (s *Service) CheckIn(ctx context.Context, userID, stadium string) (boost.Presence, error) {
	if userID == "" {
		return boost.Presence{}, fmt.Errorf("%w: userId required", ErrInvalidRequest)
	}
	return s.presence.CheckIn(ctx, userID, stadium)
}

func (s *Service) CheckOut(ctx context.Context, userID string) (boost.Presence, error) {
	if userID == "" {
		return boost.Presence{}, fmt.Errorf("%w: userId required", ErrInvalidRequest)
	}
	return s.presence.CheckOut(ctx, userID)
}

func (s *Service) Presence(ctx context.Context, userID string) (boost.Presence, error) {
	if userID == "" {
		return boost.Presence{}, fmt.Errorf("%w: userId required", ErrInvalidRequest)
	}
	return s.presence.Get(ctx, userID)
}

// settle movimenta o wallet primeiro e depois grava o status.
// As operações do wallet são idempotentes por external_ref, então um retry após
// falha no banco não credita duas vezes.
func (s *Service) settle(ctx context.Context, p *repo.Prediction, outcome payout.Outcome) error {
	credited := payout.Credit(outcome, p.CoinsWagered, p.PotentialWin)

	var err error
	switch outcome {
	case payout.OutcomeWon:
		err = s.wallet.Payout(ctx, p.UserID, p.ID, credited)
	case payout.OutcomeLost:
		err = s.wallet.Commit(ctx, p.UserID, p.ID)
	case payout.OutcomePush:
		err = s.wallet.Refund(ctx, p.UserID, p.ID)
	default:
		return fmt.Errorf("%w: outcome %q", ErrInvalidRequest, outcome)
	}
	if err != nil {
		return fmt.Errorf("wallet %s: %w", outcome, err)
	}

	at := s.now().UTC()
	if err := s.repo.Settle(ctx, p.ID, outcome, at); err != nil {
		if errors.Is(err, repo.ErrNotPending) {
			return ErrAlreadySettled
		}
		return fmt.Errorf("persist settlement: %w", err)
	}
	p.Status = outcome
	p.SettledAt = &at

	if err := s.publisher.PublishPredictionSettled(ctx, events.PredictionSettled{
		PredictionID: p.ID,
		UserID:       p.UserID,
		MarketID:     p.MarketID,
		Outcome:      string(outcome),
		CoinsWagered: p.CoinsWagered,
		Credited:     credited,
		Ts:           at,
	}); err != nil {
		s.log.Warn("publish prediction_settled failed", zap.String("predictionId", p.ID), zap.Error(err))
	}
	s.broadcast(ctx, activity.Activity{
		Type:         activity.TypeSettled,
		UserID:       p.UserID,
		PredictionID: p.ID,
		MarketID:     p.MarketID,
		OptionID:     p.OptionID,
		Coins:        credited,
		Outcome:      string(outcome),
	})
	if s.hooks.OnSettled != nil {
		s.hooks.OnSettled(outcome)
	}
	return nil
}

func (s *Service) loadMarket(ctx context.Context, id string) (market.Market, error) {
	m, err := s.markets.Get(ctx, id)
	if errors.Is(err, market.ErrNotFound) {
		return market.Market{}, ErrMarketNotFound
	}
	return m, err
}

// presenceOf trata falha do Redis como "fora do estádio"
func (s *Service) presenceOf(ctx context.Context, userID string) boost.Presence {
	if userID == "" {
		return boost.Presence{}
	}
	p, err := s.presence.Get(ctx, userID)
	if err != nil {
		s.log.Warn("presence lookup failed", zap.String("userId", userID), zap.Error(err))
		return boost.Presence{UserID: userID}
	}
	return p
}

func (s *Service) view(m market.Market, p boost.Presence) MarketView {
	mult, locked := s.resolver.Effective(m, p)
	return MarketView{Market: m, EffectiveBoost: mult, Locked: locked}
}

func (s *Service) broadcast(ctx context.Context, a activity.Activity) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Publish(ctx, a); err != nil {
		s.log.Warn("activity publish failed", zap.String("type", a.Type), zap.Error(err))
	}
}
