package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/shared/config"
	"github.com/radieske/varsity-predictions/internal/shared/db"
	"github.com/radieske/varsity-predictions/internal/shared/logger"
	"github.com/radieske/varsity-predictions/internal/shared/metrics"
	whttp "github.com/radieske/varsity-predictions/internal/wallet-service/http"
	wrepo "github.com/radieske/varsity-predictions/internal/wallet-service/repo"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "wallet-service"
	}

	// Inicializa logger estruturado
	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Conexão com Postgres para operações de carteira
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	if cfg.AutoMigrate {
		if err := db.MigrateUp(pg, log); err != nil {
			log.Fatal("migrations", zap.Error(err))
		}
	}

	repo := wrepo.NewPostgres(pg, cfg.StartingCoins, cfg.DailyCoinAllowance)
	api := whttp.NewServer(log, repo)

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, pg.PingContext)

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort, // ex: 8082
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr),
			zap.Int64("startingCoins", cfg.StartingCoins),
			zap.Int64("dailyAllowance", cfg.DailyCoinAllowance),
		)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api srv", zap.Error(err))
		}
	}()

	// Encerramento gracioso
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("wallet-service stopped")
}
