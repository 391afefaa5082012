// Package app holds the dog deck runtime: drawing images, recording votes and
// managing favourites on top of the Dog API client.
package app

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/pawtrail/dogdeck/internal/domain"
	"github.com/pawtrail/dogdeck/internal/logger"
	"github.com/pawtrail/dogdeck/pkg/dogapi"
	"github.com/pawtrail/dogdeck/pkg/publishers"
)

// ImageClient is the subset of the Dog API client the deck uses.
type ImageClient interface {
	RandomImage(ctx context.Context) (domain.DogImage, error)
	AddFavorite(ctx context.Context, imageID string) error
	ListFavorites(ctx context.Context) ([]domain.DogImage, error)
	DeleteFavorite(ctx context.Context, favoriteID int) error
}

// SeenStore remembers which images were already shown.
type SeenStore interface {
	SeenImage(id string) (bool, error)
	MarkImage(id string) error
	Close() error
}

// VotePublisher delivers vote events downstream.
type VotePublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Close() error
}

// VoteResult is the outcome of a vote: the image to show next and, for a like,
// the error from saving the favourite.
type VoteResult struct {
	Event       publishers.Event
	Next        domain.DogImage
	FavoriteErr error
}

// Deck draws random images and records votes on them.
type Deck struct {
	client      ImageClient
	store       SeenStore
	publisher   VotePublisher
	redrawLimit int
	log         logger.Logger
}

// NewDeck assembles a deck from its parts. A nil store or publisher disables
// that feature.
func NewDeck(client ImageClient, store SeenStore, pub VotePublisher, redrawLimit int, log logger.Logger) *Deck {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if redrawLimit < 0 {
		redrawLimit = 0
	}
	return &Deck{
		client:      client,
		store:       store,
		publisher:   pub,
		redrawLimit: redrawLimit,
		log:         log,
	}
}

// Next draws a random image, redrawing up to the redraw limit while the drawn
// image was already shown. The returned image is marked as shown.
func (d *Deck) Next(ctx context.Context) (domain.DogImage, error) {
	var img domain.DogImage
	for attempt := 0; attempt <= d.redrawLimit; attempt++ {
		var err error
		img, err = d.client.RandomImage(ctx)
		if err != nil {
			return domain.DogImage{}, err
		}
		if !d.seen(img.ID) {
			break
		}
		d.log.DebugObj("drew an image already shown", "deck_redraw", map[string]any{
			"image_id": img.ID,
			"attempt":  attempt + 1,
		})
	}

	if d.store != nil {
		if err := d.store.MarkImage(img.ID); err != nil {
			d.log.WarnObj("failed to record shown image", "deck_store_error", map[string]any{
				"image_id": img.ID,
				"error":    err.Error(),
			})
		}
	}
	return img, nil
}

func (d *Deck) seen(id string) bool {
	if d.store == nil {
		return false
	}
	ok, err := d.store.SeenImage(id)
	if err != nil {
		d.log.WarnObj("seen lookup failed", "deck_store_error", map[string]any{
			"image_id": id,
			"error":    err.Error(),
		})
		return false
	}
	return ok
}

// Vote records a like or skip for img and draws the next image. A like also
// saves img as a favourite; that failure is reported in the result rather than
// stopping the next draw.
func (d *Deck) Vote(ctx context.Context, img domain.DogImage, like bool) (VoteResult, error) {
	if img.ID == "" {
		return VoteResult{}, fmt.Errorf("%w: image id is empty", dogapi.ErrInvalidRequest)
	}

	res := VoteResult{Event: publishers.NewVoteEvent(publishers.ActionFor(like), img)}
	if like {
		if err := d.client.AddFavorite(ctx, img.ID); err != nil {
			res.FavoriteErr = err
			d.log.ErrorObj("failed to add favourite", "deck_favorite_error", map[string]any{
				"image_id": img.ID,
				"error":    err.Error(),
			})
		}
	}
	d.publish(ctx, res.Event)

	next, err := d.Next(ctx)
	if err != nil {
		return res, fmt.Errorf("draw next image: %w", err)
	}
	res.Next = next
	return res, nil
}

func (d *Deck) publish(ctx context.Context, evt publishers.Event) {
	if d.publisher == nil {
		return
	}
	delivered, err := d.publisher.Publish(ctx, evt)
	if err != nil {
		d.log.ErrorObj("vote publish failed", "deck_publish_error", map[string]any{
			"event_id":  evt.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	d.log.DebugObj("vote published", "deck_publish", map[string]any{
		"event_id":  evt.ID,
		"action":    evt.Action,
		"delivered": delivered,
	})
}

// Favorites lists the saved favourites, each with its FavoriteID set.
func (d *Deck) Favorites(ctx context.Context) ([]domain.DogImage, error) {
	return d.client.ListFavorites(ctx)
}

// FavoritesSeq streams favourites when the client supports lazy listing.
func (d *Deck) FavoritesSeq(ctx context.Context) iter.Seq2[domain.DogImage, error] {
	type lazy interface {
		FavoriteRecords(ctx context.Context) ([]domain.FavoriteRecord, error)
		Favorites(ctx context.Context, records []domain.FavoriteRecord) iter.Seq2[domain.DogImage, error]
	}
	return func(yield func(domain.DogImage, error) bool) {
		lc, ok := d.client.(lazy)
		if !ok {
			images, err := d.client.ListFavorites(ctx)
			if err != nil {
				yield(domain.DogImage{}, err)
				return
			}
			for _, img := range images {
				if !yield(img, nil) {
					return
				}
			}
			return
		}

		records, err := lc.FavoriteRecords(ctx)
		if err != nil {
			yield(domain.DogImage{}, err)
			return
		}
		for img, err := range lc.Favorites(ctx, records) {
			if !yield(img, err) || err != nil {
				return
			}
		}
	}
}

// RemoveFavorite deletes the favourite behind img. An image without a
// FavoriteID is not a favourite and is left alone.
func (d *Deck) RemoveFavorite(ctx context.Context, img domain.DogImage) error {
	if img.FavoriteID == nil {
		return nil
	}
	return d.client.DeleteFavorite(ctx, *img.FavoriteID)
}

// Close releases the journal and the publishers.
func (d *Deck) Close() error {
	var errs []error
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publishers: %w", err))
		}
	}
	return errors.Join(errs...)
}
