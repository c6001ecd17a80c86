package dto

type WalletResponse struct {
	UserID   string `json:"userId"`
	WalletID string `json:"walletId"`
	Coins    int64  `json:"coins"`
}

type DailyClaimResponse struct {
	UserID  string `json:"userId"`
	Granted bool   `json:"granted"`
	Coins   int64  `json:"coins"`
}

type ReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
