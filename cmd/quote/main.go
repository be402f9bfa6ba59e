package main

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog"

	"github.com/geonokwon/autoquote-web/internal/catalog"
	"github.com/geonokwon/autoquote-web/internal/config"
	"github.com/geonokwon/autoquote-web/internal/obs"
	"github.com/geonokwon/autoquote-web/internal/quote"
	"github.com/geonokwon/autoquote-web/internal/selection"
)

// quote evaluates a selection snapshot against an exported rule catalog and
// prints the computed summary. With "check" as the only argument it runs the
// advisory catalog consistency scan instead.
func main() {
	logger := obs.NewLogger("console", "info")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger = obs.NewLogger(cfg.LogFormat, cfg.LogLevel)

	cat, err := loadCatalog(cfg.CatalogFile, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("load catalog")
	}

	issues := cat.Check()
	for _, issue := range issues {
		logger.Warn().
			Str("table", issue.Table).
			Str("key", issue.Key).
			Str("service", issue.Service).
			Str("label", issue.Label).
			Msg(issue.Reason)
	}

	if len(os.Args) > 1 && os.Args[1] == "check" {
		if err := writeJSON(issues); err != nil {
			logger.Fatal().Err(err).Msg("write check report")
		}
		if len(issues) > 0 {
			os.Exit(1)
		}
		return
	}

	if cfg.SelectionsFile == "" {
		logger.Fatal().Msg("SELECTIONS_FILE is required")
	}
	snap, err := loadSnapshot(cfg.SelectionsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.SelectionsFile).Msg("load selections")
	}

	svc := &quote.Service{Catalog: cat}
	summary := svc.Evaluate(snap, quote.Context{
		IsBusiness:         cfg.IsBusiness,
		ExcludedCombos:     cfg.ExcludedCombos,
		ApplyCardDiscounts: cfg.ApplyCardDiscounts,
	})

	if err := writeJSON(summary); err != nil {
		logger.Fatal().Err(err).Msg("write summary")
	}
}

func loadCatalog(path string, logger zerolog.Logger) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in catalog.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	return catalog.Load(in, logger)
}

func loadSnapshot(path string) (selection.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap selection.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
