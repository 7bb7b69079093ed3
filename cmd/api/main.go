package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendcore/vendcore/internal/api"
	"github.com/vendcore/vendcore/internal/auth"
	"github.com/vendcore/vendcore/internal/catalog"
	"github.com/vendcore/vendcore/internal/config"
	"github.com/vendcore/vendcore/internal/engine"
	"github.com/vendcore/vendcore/internal/ledger"
	"github.com/vendcore/vendcore/internal/logger"
	"github.com/vendcore/vendcore/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", false)
		fallback.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.LogLevel, cfg.Env == "development")

	var st store.Store
	switch cfg.Backend {
	case "memory":
		st = store.NewMemory()
	default:
		st, err = store.NewPostgres(cfg.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to connect to database")
		}
	}
	defer st.Close()

	// Initialize Layers
	ldg := ledger.New(st)
	cat := catalog.New(st)
	eng := engine.New(st, cat, ldg, log)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	handler := api.NewHandler(st, ldg, cat, eng, tokens, cfg.BcryptCost, log)

	// Router
	r := handler.Routes()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
