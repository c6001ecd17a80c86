package events

// Evento emitido pelo prediction-service quando uma aposta é aceita
type PredictionPlaced struct {
	PredictionID    string `json:"prediction_id"`
	UserID          string `json:"user_id"`
	MarketID        string `json:"market_id"`
	OptionID        string `json:"option_id"`
	CoinsWagered    int64  `json:"coins_wagered"`
	Odds            int    `json:"odds"`
	BoostMultiplier string `json:"boost_multiplier"` // decimal em string, ex: "2.5"
	PotentialWin    int64  `json:"potential_win"`
	Boosted         bool   `json:"boosted"`
	TsUnixMs        int64  `json:"ts_unix_ms"`
}
