package app

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/config"
	"github.com/dokzlo13/colorname/internal/known"
)

// CatalogService builds catalogs from the configured option files and
// publishes them to the registry.
type CatalogService struct {
	cfg      *config.Config
	Registry *catalog.Registry

	// Serializes reloads; readers go through Registry and never block
	mu sync.Mutex
}

// NewCatalogService creates a CatalogService with an empty registry.
func NewCatalogService(cfg *config.Config) *CatalogService {
	return &CatalogService{
		cfg:      cfg,
		Registry: catalog.NewRegistry(),
	}
}

// Reload reads the option files and known-value table, builds both catalogs
// and publishes them. On error nothing is published.
func (s *CatalogService) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.knownTable()
	if err != nil {
		return err
	}

	colorOpts, err := loadOptions(s.cfg.ResolvePath(s.cfg.Catalog.ColorOptions))
	if err != nil {
		return fmt.Errorf("color options: %w", err)
	}
	tempOpts, err := loadOptions(s.cfg.ResolvePath(s.cfg.Catalog.TemperatureOptions))
	if err != nil {
		return fmt.Errorf("temperature options: %w", err)
	}

	colors := catalog.BuildColorCatalog(colorOpts, table.Colors,
		catalog.WithAchromaticOffset(s.cfg.Catalog.GetAchromaticOffset()))
	temperatures := catalog.BuildTemperatureCatalog(tempOpts, table.Temperatures)

	s.Registry.PublishColors(colors)
	s.Registry.PublishTemperatures(temperatures)
	return nil
}

func (s *CatalogService) knownTable() (*known.Table, error) {
	table := known.Default()

	path := s.cfg.ResolvePath(s.cfg.Catalog.KnownValues)
	if path == "" {
		return table, nil
	}
	extra, err := known.Load(path)
	if err != nil {
		return nil, fmt.Errorf("known values: %w", err)
	}
	log.Debug().
		Str("path", path).
		Int("colors", len(extra.Colors)).
		Int("temperatures", len(extra.Temperatures)).
		Msg("Merging known values")
	return table.Merge(extra), nil
}

// loadOptions reads a YAML or JSON list of {identifier, label}. An empty path
// yields no options.
func loadOptions(path string) ([]catalog.RawOption, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var opts []catalog.RawOption
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := opts[:0]
	for i, opt := range opts {
		if opt.ID == "" {
			log.Warn().Str("path", path).Int("index", i).Msg("Skipping option without identifier")
			continue
		}
		out = append(out, opt)
	}
	return out, nil
}
