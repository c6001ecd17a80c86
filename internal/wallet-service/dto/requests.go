package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	Coins       int64  `json:"coins"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ idempotência simples
}

type DailyClaimRequest struct {
	UserID string `json:"userId"`
}

type ReserveRequest struct {
	UserID      string `json:"userId"`
	Coins       int64  `json:"coins"`
	ExternalRef string `json:"external_ref"` // ex: predictionId
}

type CommitRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}

type RefundRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}

// PayoutRequest credita aposta + ganho de uma reserva vencedora
type PayoutRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
	Coins       int64  `json:"coins"`
}

// RedeemRequest troca moedas por uma recompensa do catálogo
type RedeemRequest struct {
	UserID   string `json:"userId"`
	RewardID string `json:"rewardId"`
}
