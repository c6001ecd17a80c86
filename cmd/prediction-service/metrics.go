package main

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/radieske/varsity-predictions/internal/prediction-service/service"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

var (
	mPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictions_placed_total",
		Help: "Predictions accepted, by boost",
	}, []string{"boosted"})

	mSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictions_settled_total",
		Help: "Predictions settled, by outcome",
	}, []string{"outcome"})

	mWagered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prediction_coins_wagered_total",
		Help: "Coins reserved by accepted predictions",
	})

	mPotentialWin = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_potential_win",
		Help:    "Potential win in coins at placement",
		Buckets: prometheus.ExponentialBuckets(10, 2, 10),
	})
)

func metricHooks() service.Hooks {
	return service.Hooks{
		OnPlaced: func(boosted bool, coins, potentialWin int64) {
			mPlaced.WithLabelValues(strconv.FormatBool(boosted)).Inc()
			mWagered.Add(float64(coins))
			mPotentialWin.Observe(float64(potentialWin))
		},
		OnSettled: func(o payout.Outcome) {
			mSettled.WithLabelValues(string(o)).Inc()
		},
	}
}
