package main

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func rp(to string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", to)
	}
	return httputil.NewSingleHostReverseProxy(u), nil
}

// newGateway monta o roteamento público:
//
//	/api/markets/*     -> prediction-service /v1/markets/*
//	/api/predictions/* -> prediction-service /v1/predictions/*
//	/api/presence      -> prediction-service /v1/presence
//	/api/payout/*      -> prediction-service /v1/payout/*
//	/api/wallet/*      -> wallet-service /wallet/*
//	/ws/activity       -> prediction-service /ws/activity
func newGateway(log *zap.Logger, predictionURL, walletURL string) (http.Handler, error) {
	pred, err := rp(predictionURL)
	if err != nil {
		return nil, err
	}
	wallet, err := rp(walletURL)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log))
	r.Use(withCORS)

	toV1 := rewrite("/api", "/v1", pred)
	r.Handle("/api/markets", toV1)
	r.Handle("/api/markets/*", toV1)
	r.Handle("/api/predictions", toV1)
	r.Handle("/api/predictions/*", toV1)
	r.Handle("/api/presence", toV1)
	r.Handle("/api/payout/*", toV1)
	r.Handle("/api/wallet", rewrite("/api", "", wallet))
	r.Handle("/api/wallet/*", rewrite("/api", "", wallet))
	r.Handle("/ws/activity", pred)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r, nil
}

// rewrite troca o prefixo do path antes de repassar ao upstream
func rewrite(from, to string, h http.Handler) http.Handler {
	return http.StripPrefix(from, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = to + r.URL.Path
		if r.URL.RawPath != "" {
			r.URL.RawPath = to + r.URL.RawPath
		}
		h.ServeHTTP(w, r)
	}))
}

func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// CORS permissivo para o app mobile
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
