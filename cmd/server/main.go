package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/assets"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/catalog"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/config"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/economy"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/game"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/input"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/logging"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/model"
	"github.com/JoaoRebolo/NetMaster-sub000/internal/server"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.FromEnv(cfg)

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

// app is everything run wires together from a config.
type app struct {
	session *game.Session
	handler http.Handler
	sources []input.Source
}

func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	cat, err := catalog.Residential()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	colors := make([]model.Color, 0, len(cfg.Session.Colors))
	for _, s := range cfg.Session.Colors {
		c, err := model.ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("session colors: %w", err)
		}
		colors = append(colors, c)
	}

	policy := economy.Policy{
		SoldCards:         economy.SoldCardPolicy(cfg.Economy.SoldCards),
		ActivitySellValue: economy.ActivitySellValue(cfg.Economy.ActivitySellValue),
	}

	seed := time.Now().UnixNano()
	if cfg.SeededRNG.Enabled {
		seed = cfg.SeededRNG.Seed
	}

	opts := game.Options{
		Colors:          colors,
		StartingBalance: cfg.Session.StartingBalance,
		ShopBalance:     cfg.Shop.StartingBalance,
		Policy:          policy,
		Catalog:         cat,
		Rand:            rand.New(rand.NewSource(seed)),
		Logger:          logger,
	}
	var images *assets.DirSource
	if cfg.Assets.Dir != "" {
		images = &assets.DirSource{Root: cfg.Assets.Dir}
		opts.Assets = images
	}

	session, err := game.NewSession(ctx, opts)
	if err != nil {
		return nil, err
	}

	exit := input.NewChanSource()
	sources := []input.Source{exit}
	if cfg.Input.Signals {
		sources = append(sources, input.SignalSource{})
	}
	if cfg.Input.NATSURL != "" {
		sources = append(sources, input.NATSSource{URL: cfg.Input.NATSURL, Subject: cfg.Input.ExitSubject})
	}

	handler, err := server.NewHandler(server.Options{
		Session:        session,
		Exit:           exit,
		Images:         images,
		ThumbnailWidth: cfg.Assets.ThumbnailWidth,
		PublicURL:      cfg.Server.PublicURL,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("session ready",
		zap.String("session", session.ID()),
		zap.Strings("colors", cfg.Session.Colors),
		zap.Int64("seed", seed),
		zap.String("assets", cfg.Assets.Dir),
	)
	return &app{session: session, handler: handler, sources: sources}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			cancel()
		}
		serveErr <- err
	}()

	runErr := a.session.Run(runCtx, a.sources...)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := <-serveErr; err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return runErr
}
