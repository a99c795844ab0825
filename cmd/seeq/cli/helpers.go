package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/seeqdb/seeq/internal/config"
	"github.com/seeqdb/seeq/internal/connector"
	"github.com/seeqdb/seeq/internal/connector/postgres"
	"github.com/seeqdb/seeq/internal/connector/sqlite"
	"github.com/seeqdb/seeq/internal/convert"
	"github.com/seeqdb/seeq/internal/dbcontext"
	"github.com/seeqdb/seeq/internal/llm"
	"github.com/seeqdb/seeq/internal/retrieval"
)

// loadConfig resolves the effective configuration: defaults, then the
// YAML file viper located, then SEEQ_* environment variables and bound
// flags on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	applyOverrides(cfg)
	return cfg, nil
}

// applyOverrides copies viper-resolved values (env vars, bound flags)
// over the file-based configuration.
func applyOverrides(cfg *config.Config) {
	set := map[string]func(string){
		"database.driver": func(v string) { cfg.Database.Driver = v },
		"database.dsn":    func(v string) { cfg.Database.DSN = v },
		"database.schema": func(v string) { cfg.Database.Schema = v },
		"llm.base_url":    func(v string) { cfg.LLM.BaseURL = v },
		"llm.model":       func(v string) { cfg.LLM.Model = v },
		"server.host":     func(v string) { cfg.Server.Host = v },
		"logging.level":   func(v string) { cfg.Logging.Level = v },
	}
	for key, apply := range set {
		if viper.IsSet(key) {
			if v := viper.GetString(key); v != "" {
				apply(v)
			}
		}
	}
	if viper.IsSet("server.port") {
		if p := viper.GetInt("server.port"); p > 0 {
			cfg.Server.Port = p
		}
	}
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig, dev bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if dev {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newRegistry creates a connector registry with all supported drivers.
func newRegistry() *connector.Registry {
	registry := connector.NewRegistry()
	registry.RegisterDriver("postgres", func() connector.Connector { return postgres.New() })
	registry.RegisterDriver("sqlite", func() connector.Connector { return sqlite.New() })
	return registry
}

// pipeline holds the wired conversion stack.
type pipeline struct {
	conn      connector.Connector
	cache     *dbcontext.Cache
	client    *llm.OllamaClient
	converter *convert.Converter
	suggester *convert.Suggester
}

// buildPipeline connects to the database and wires the full conversion
// stack from configuration. Callers must Close when done.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	connCfg := connector.ConnectionConfig{
		Driver:     cfg.Database.Driver,
		DSN:        cfg.Database.DSN,
		SchemaName: cfg.Database.Schema,
	}
	if pool := cfg.Database.Pool; pool != nil {
		connCfg.MaxOpenConns = pool.MaxOpenConns
		connCfg.MaxIdleConns = pool.MaxIdleConns
		connCfg.ConnMaxLifetime = config.Duration(pool.ConnMaxLifetime, 0)
	}

	conn, err := newRegistry().Open(connCfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", "driver", conn.DriverName())

	cache := dbcontext.NewCache(dbcontext.NewBuilder(conn, dbcontext.Config{
		SampleRows:  cfg.Context.SampleRows,
		DistinctCap: cfg.Context.DistinctCap,
	}, logger))

	corpus := &retrieval.Corpus{}
	if cfg.Retrieval.CorpusPath != "" {
		loaded, err := retrieval.LoadCorpus(cfg.Retrieval.CorpusPath)
		if err != nil {
			logger.Warn("documentation corpus unavailable", "path", cfg.Retrieval.CorpusPath, "error", err)
		} else {
			corpus = loaded
			logger.Info("documentation corpus loaded", "chunks", corpus.Len())
		}
	}
	index := retrieval.NewIndex(corpus)

	client := llm.NewOllamaClient(llm.OllamaConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: config.Duration(cfg.LLM.Timeout, 120*time.Second),
	})

	converter := convert.New(
		cache,
		index,
		llm.NewGenerator(client, logger),
		llm.NewVerifier(client, logger),
		conn,
		convert.Config{
			MaxAttempts:  cfg.Convert.MaxAttempts,
			TopK:         cfg.Retrieval.TopK,
			QueryTimeout: config.Duration(cfg.Convert.QueryTimeout, 30*time.Second),
		},
		logger,
	)

	return &pipeline{
		conn:      conn,
		cache:     cache,
		client:    client,
		converter: converter,
		suggester: convert.NewSuggester(cache),
	}, nil
}

// Close releases the database connection.
func (p *pipeline) Close() {
	_ = p.conn.Disconnect()
}
