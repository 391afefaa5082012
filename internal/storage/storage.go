// Package storage keeps a local journal of images already shown to the user.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks shown image IDs.
type Store interface {
	Close() error
	SeenImage(id string) (bool, error)
	MarkImage(id string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ImageTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultImageTTL        = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ImageTTL <= 0 {
		opts.ImageTTL = defaultImageTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                   { return nil }
func (noopStore) SeenImage(string) (bool, error) { return false, nil }
func (noopStore) MarkImage(string) error         { return nil }
