package main

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/content"
	"github.com/DaanHessen/fanlife/internal/engine"
	"github.com/DaanHessen/fanlife/internal/store"
	"github.com/DaanHessen/fanlife/internal/text"
	"github.com/DaanHessen/fanlife/internal/ui"
	"github.com/DaanHessen/fanlife/internal/util"
)

var (
	version      = "0.1.0"
	seedAlphabet = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)
)

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	seedFlag := flag.String("seed", "", "seed for a new game (random if omitted)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides FANLIFE_DSN)")
	backend := flag.String("backend", "", "save backend: memory|postgres|redis")
	saveKey := flag.String("save", "", "save slot name")
	tablesPath := flag.String("tables", "", "YAML file overriding the built-in content tables")
	theme := flag.String("theme", "", "color theme")
	fresh := flag.Bool("new", false, "start a new game even when a save exists")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fanlife [--seed S] [--backend B] [--dsn DSN] [--save KEY] [--new] | migrate up|down|version | version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := util.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	override(&cfg.Seed, *seedFlag)
	override(&cfg.DSN, *dsn)
	override(&cfg.Backend, *backend)
	override(&cfg.SaveKey, *saveKey)
	override(&cfg.TablesPath, *tablesPath)
	override(&cfg.Theme, *theme)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Println("fanlife", version)
			return
		case "migrate":
			if len(args) < 2 {
				log.Fatal("migrate requires 'up', 'down' or 'version'")
			}
			if err := runMigrate(cfg.DSN, args[1]); err != nil {
				log.Fatal(err)
			}
			return
		default:
			flag.Usage()
			os.Exit(2)
		}
	}

	logger, err := util.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables := content.Default()
	if cfg.TablesPath != "" {
		if tables, err = content.Load(cfg.TablesPath); err != nil {
			log.Fatalf("content tables: %v", err)
		}
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	writer, online, err := text.NewGhostwriter(text.Config{
		APIKey:  cfg.AIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}, logger)
	if err != nil {
		log.Fatalf("text service: %v", err)
	}
	logger.Info("ghostwriter ready", zap.Bool("online", online))

	saves := openSaves(ctx, cfg, tables, logger)
	opts := []engine.Option{engine.WithGhostwriter(writer), engine.WithLogger(logger)}
	game, err := loadOrCreate(ctx, saves, cfg.Seed, *fresh, tables, opts)
	if err != nil {
		log.Fatal(err)
	}

	if err := ui.Run(ctx, game, saves, cfg.Theme, logger); err != nil {
		log.Fatal(err)
	}
}

func override(dst *string, flagValue string) {
	if v := strings.TrimSpace(flagValue); v != "" {
		*dst = v
	}
}

func runMigrate(dsn, action string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	migrator, err := store.NewMigrator(dsn)
	if err != nil {
		return err
	}
	switch action {
	case "up":
		if err := migrator.Up(ctx); err != nil && !errors.Is(err, store.ErrNoChange) {
			return err
		}
		fmt.Println("Migrations applied")
	case "down":
		if err := migrator.Down(ctx); err != nil && !errors.Is(err, store.ErrNoChange) {
			return err
		}
		fmt.Println("Migrations rolled back")
	case "version":
		v, dirty, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("schema version %d (dirty=%t)\n", v, dirty)
	default:
		return fmt.Errorf("unknown migrate action %q; use up|down|version", action)
	}
	return nil
}

// openSaves connects the configured backend. Any failure falls back to memory
// so the game stays playable.
func openSaves(ctx context.Context, cfg util.Config, tables *content.Tables, logger *zap.Logger) *store.Saves {
	if cfg.Backend == "postgres" {
		mig, err := store.NewMigrator(cfg.DSN)
		if err == nil {
			migCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err = mig.Up(migCtx)
			cancel()
		}
		if err != nil && !errors.Is(err, store.ErrNoChange) {
			logger.Warn("migrations failed", zap.Error(err))
		}
	}
	backend, err := store.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Warn("save backend unavailable; playing in memory", zap.String("backend", cfg.Backend), zap.Error(err))
		fmt.Fprintf(os.Stderr, "saves unavailable (%v); progress will not persist\n", err)
		backend = store.NewMemoryBackend()
	}
	return store.NewSaves(backend, tables, cfg.SaveKey, logger)
}

func loadOrCreate(ctx context.Context, saves *store.Saves, seed string, fresh bool, tables *content.Tables, opts []engine.Option) (*engine.Game, error) {
	if !fresh {
		w, found, err := saves.Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not load save: %v\n", err)
		}
		if found {
			return engine.LoadGame(w, tables, opts...)
		}
	}
	if seed == "" {
		generated, err := generateSeed()
		if err != nil {
			return nil, fmt.Errorf("failed to generate seed: %w", err)
		}
		seed = generated
		fmt.Printf("New game seed: %s\n", seed)
	}
	return engine.NewGame(seed, tables, opts...)
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}

func generateSeed() (string, error) {
	buf := make([]byte, 15) // 24 characters base32
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToLower(seedAlphabet.EncodeToString(buf)), nil
}
