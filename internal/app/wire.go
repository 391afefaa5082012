package app

import (
	"context"
	"fmt"

	"github.com/pawtrail/dogdeck/internal/config"
	"github.com/pawtrail/dogdeck/internal/logger"
	"github.com/pawtrail/dogdeck/internal/storage"
	"github.com/pawtrail/dogdeck/pkg/dogapi"
	"github.com/pawtrail/dogdeck/pkg/publishers"
)

// New builds a deck from configuration: the Dog API client, the seen-image
// journal and any configured vote publishers.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Deck, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := dogapi.New(dogapi.Options{
		BaseURL: cfg.DogAPIBaseURL,
		APIKey:  cfg.DogAPIKey,
		Timeout: cfg.DogAPITimeout,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("init dog api client: %w", err)
	}

	fanout, err := buildPublishers(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ImageTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"image_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return NewDeck(client, store, fanout, cfg.DeckRedrawLimit, log), nil
}

func buildPublishers(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}
