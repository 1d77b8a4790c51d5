package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stmtlens/stmtlens/internal/config"
	"github.com/stmtlens/stmtlens/internal/logger"
	"github.com/stmtlens/stmtlens/internal/model"
	"github.com/stmtlens/stmtlens/internal/templates"
)

// project is the loaded state shared by the commands that work inside a
// project directory.
type project struct {
	Dir    string
	Config *config.Config
}

// loadProject reads the project config and stores a logger at its level in
// the command context.
func loadProject(cmd *cobra.Command) (*project, error) {
	dir, _ := cmd.Flags().GetString("dir")
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadOrDefault(absDir)
	if err != nil {
		return nil, err
	}
	log, err := logger.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return &project{Dir: absDir, Config: cfg}, nil
}

// templateSources returns the configured template documents. A non-empty
// templateDir replaces the directory of each document, keeping its file name.
func (p *project) templateSources(templateDir string) []templates.Source {
	sources := p.Config.TemplateSources(p.Dir)
	if templateDir == "" {
		return sources
	}
	for i := range sources {
		sources[i].Path = filepath.Join(templateDir, filepath.Base(sources[i].Path))
	}
	return sources
}

// loadTemplates merges the template documents. Unreadable sources are logged
// and skipped; a missing document is only worth a debug line.
func (p *project) loadTemplates(ctx context.Context, templateDir string) *templates.Set {
	log := logger.FromContext(ctx)
	set, errs := templates.Load(p.templateSources(templateDir))
	for _, err := range errs {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Err(err).Msg("template source missing")
			continue
		}
		log.Warn().Err(err).Msg("template source skipped")
	}
	log.Debug().Int("templates", set.Len()).Msg("templates loaded")
	return set
}

// parseMapping parses repeated "field=column" flag values.
func parseMapping(pairs []string) (model.FieldMapping, error) {
	var m model.FieldMapping
	for _, pair := range pairs {
		key, col, ok := strings.Cut(pair, "=")
		if !ok {
			return model.FieldMapping{}, fmt.Errorf("invalid mapping %q: expected field=column", pair)
		}
		f, err := model.ParseField(key)
		if err != nil {
			return model.FieldMapping{}, fmt.Errorf("invalid mapping %q: %w", pair, err)
		}
		if strings.TrimSpace(col) == "" {
			return model.FieldMapping{}, fmt.Errorf("invalid mapping %q: column is empty", pair)
		}
		m.Set(f, col)
	}
	return m, nil
}
