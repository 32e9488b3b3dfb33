// Command hearth runs the conversational listing-search service:
// an HTTP API, an MCP server, a one-shot query mode for the terminal,
// and an ingest command for loading listing inventories.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/hearthlabs/hearth/internal/api"
	"github.com/hearthlabs/hearth/internal/config"
	"github.com/hearthlabs/hearth/internal/ingest"
	"github.com/hearthlabs/hearth/internal/interpret"
	"github.com/hearthlabs/hearth/internal/listings"
	"github.com/hearthlabs/hearth/internal/mcp"
	"github.com/hearthlabs/hearth/internal/parser"
	"github.com/hearthlabs/hearth/internal/session"
)

const version = "0.1.0-dev"

func main() {
	// Local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "ingest":
		err = runIngest(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("hearth %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are shared by serve, mcp, and query.
type commonFlags struct {
	configPath string
	parserKind string
	model      string
	provider   string
	dbPath     string
	addr       string
	rest       []string
}

func parseCommonFlags(args []string) (commonFlags, error) {
	var f commonFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}

		var err error
		switch arg {
		case "--config":
			f.configPath, err = value()
		case "--parser":
			f.parserKind, err = value()
		case "--model":
			f.model, err = value()
		case "--provider":
			f.provider, err = value()
		case "--db":
			f.dbPath, err = value()
		case "--addr":
			f.addr, err = value()
		default:
			if strings.HasPrefix(arg, "-") {
				return f, fmt.Errorf("unknown flag: %s", arg)
			}
			f.rest = append(f.rest, arg)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func resolve(f commonFlags) (config.ResolvedConfig, error) {
	return config.ResolveConfig(config.ResolveOptions{
		ConfigPath:  f.configPath,
		CLIParser:   f.parserKind,
		CLIModel:    f.model,
		CLIProvider: f.provider,
		CLIDBPath:   f.dbPath,
		CLIAddr:     f.addr,
	})
}

func newLogger(cfg config.ResolvedConfig, w *os.File) *slog.Logger {
	level := slog.LevelInfo
	if cfg.DebugEnabled() {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// buildService assembles the interpretation pipeline from resolved
// configuration. The returned closer is non-nil for the sqlite provider.
func buildService(cfg config.ResolvedConfig, log *slog.Logger) (*interpret.Service, func() error, error) {
	var (
		provider listings.Provider
		closer   func() error
	)
	switch cfg.Provider.Value {
	case "", "static":
		provider = listings.NewStaticProvider()
	case "sqlite":
		sp, err := listings.NewSQLiteProvider(listings.SQLiteConfig{DBPath: cfg.DBPath.Value})
		if err != nil {
			return nil, nil, fmt.Errorf("opening listings db: %w", err)
		}
		provider = sp
		closer = sp.Close
	default:
		return nil, nil, fmt.Errorf("unknown listings provider %q (want static or sqlite)", cfg.Provider.Value)
	}

	plugin, err := parser.New(parser.Config{
		Kind:   cfg.Parser.Value,
		Model:  cfg.Model.Value,
		APIKey: cfg.APIKeyForProvider(cfg.Parser.Value).Value,
		Debug:  cfg.DebugEnabled(),
		Log:    log,
	})
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, nil, err
	}

	var store session.Store = session.NewMemoryStore()
	if ttl := cfg.EffectiveSessionTTL(); ttl > 0 {
		store = session.NewExpiringStore(ttl)
	}

	return interpret.New(store, plugin, provider, log), closer, nil
}

func runServe(args []string) error {
	flags, err := parseCommonFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolve(flags)
	if err != nil {
		return err
	}
	log := newLogger(cfg, os.Stderr)

	svc, closer, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	log.Info("starting server",
		"addr", cfg.Addr.Value,
		"parser", fmt.Sprintf("%s (%s)", cfg.Parser.Value, cfg.Parser.Source),
		"provider", fmt.Sprintf("%s (%s)", cfg.Provider.Value, cfg.Provider.Source),
		"session_ttl", cfg.EffectiveSessionTTL().String(),
		"version", version)

	srv := &http.Server{
		Addr:              cfg.Addr.Value,
		Handler:           api.NewServer(svc, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(args []string) error {
	flags, err := parseCommonFlags(args)
	if err != nil {
		return err
	}
	cfg, err := resolve(flags)
	if err != nil {
		return err
	}
	// Stdout carries the protocol; logs must stay on stderr.
	log := newLogger(cfg, os.Stderr)

	svc, closer, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	return mcp.ServeStdio(mcp.NewServer(mcp.ServerConfig{Service: svc, Version: version}))
}

func runQuery(args []string) error {
	flags, err := parseCommonFlags(args)
	if err != nil {
		return err
	}
	if len(flags.rest) == 0 {
		return fmt.Errorf("usage: hearth query <message> [--parser rule-based] [--provider static]")
	}
	message := strings.Join(flags.rest, " ")

	cfg, err := resolve(flags)
	if err != nil {
		return err
	}
	log := newLogger(cfg, os.Stderr)

	svc, closer, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	res, err := svc.Interpret(context.Background(), uuid.NewString(), message, true)
	if err != nil {
		return err
	}

	fmt.Println(res.Summary)
	for _, q := range res.ClarifyingQuestions {
		fmt.Printf("  ? %s\n", q)
	}
	for _, l := range res.Page.Items {
		fmt.Printf("  %-10s $%-9d %d bd / %d ba  %s, %s  %s\n",
			l.ID, l.Price, l.Beds, l.Baths, l.City, l.State, l.Address)
	}
	if len(res.Refinements) > 0 {
		labels := make([]string, len(res.Refinements))
		for i, r := range res.Refinements {
			labels[i] = r.Label
		}
		fmt.Printf("Refine: %s\n", strings.Join(labels, " | "))
	}

	filtersJSON, err := json.MarshalIndent(res.Filters, "", "  ")
	if err == nil {
		fmt.Printf("Filters: %s\n", filtersJSON)
	}
	return nil
}

func runIngest(args []string) error {
	flags, err := parseCommonFlags(args)
	if err != nil {
		return err
	}
	if len(flags.rest) == 0 {
		return fmt.Errorf("usage: hearth ingest <file.json|file.csv> [--db path]")
	}

	cfg, err := resolve(flags)
	if err != nil {
		return err
	}
	log := newLogger(cfg, os.Stderr)

	store, err := listings.NewSQLiteProvider(listings.SQLiteConfig{DBPath: cfg.DBPath.Value})
	if err != nil {
		return fmt.Errorf("opening listings db: %w", err)
	}
	defer store.Close()

	engine := ingest.NewEngine(store)
	ctx := context.Background()
	for _, path := range flags.rest {
		res, err := engine.Run(ctx, path)
		if err != nil {
			return err
		}
		log.Info("ingested", "path", res.Path, "listings", res.Imported)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Done. %d listings in store.\n", total)
	return nil
}

func printUsage() {
	fmt.Println(`hearth - conversational real-estate search

Usage:
  hearth serve   [--addr :8080] [--parser rule-based|openai|anthropic|openrouter]
                 [--provider static|sqlite] [--db path] [--config path]
  hearth mcp     [same flags as serve]
  hearth query   <message> [same flags as serve]
  hearth ingest  <file.json|file.csv> [--db path]
  hearth version

Configuration is resolved from defaults, then ~/.hearth/config.yaml,
then HEARTH_* environment variables, then flags. LLM parsers read
OPENAI_API_KEY / ANTHROPIC_API_KEY / OPENROUTER_API_KEY.`)
}
