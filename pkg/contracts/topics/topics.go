package topics

const (
	// Predictions
	PredictionPlaced  = "prediction_placed"
	PredictionSettled = "prediction_settled"

	// Markets
	MarketSettled = "market_settled"

	// DLQs
	MarketSettledDLQ = "market_settled_dlq"
)
