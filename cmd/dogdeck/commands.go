package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"

	"github.com/pawtrail/dogdeck/internal/app"
	"github.com/pawtrail/dogdeck/internal/domain"
)

var errUsage = errors.New("usage: dogdeck [--pretty] random | like <image-id> | skip <image-id> | favorites | unfavorite <favorite-id>")

type deck interface {
	Next(ctx context.Context) (domain.DogImage, error)
	Vote(ctx context.Context, img domain.DogImage, like bool) (app.VoteResult, error)
	FavoritesSeq(ctx context.Context) iter.Seq2[domain.DogImage, error]
	RemoveFavorite(ctx context.Context, img domain.DogImage) error
}

type voteOutput struct {
	EventID string          `json:"event_id"`
	Action  string          `json:"action"`
	Next    domain.DogImage `json:"next"`
	Alert   string          `json:"alert,omitempty"`
}

// dispatch runs one subcommand and writes its JSON result to out.
func dispatch(ctx context.Context, d deck, args []string, out io.Writer, pretty bool) error {
	if len(args) == 0 {
		return errUsage
	}

	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "random":
		img, err := d.Next(ctx)
		if err != nil {
			return err
		}
		return enc.Encode(img)

	case "like", "skip":
		if len(rest) != 1 {
			return errUsage
		}
		res, err := d.Vote(ctx, domain.DogImage{ID: rest[0]}, cmd == "like")
		if err != nil {
			return err
		}
		vo := voteOutput{EventID: res.Event.ID, Action: string(res.Event.Action), Next: res.Next}
		if res.FavoriteErr != nil {
			vo.Alert = res.FavoriteErr.Error()
		}
		return enc.Encode(vo)

	case "favorites":
		for img, err := range d.FavoritesSeq(ctx) {
			if err != nil {
				return err
			}
			if err := enc.Encode(img); err != nil {
				return err
			}
		}
		return nil

	case "unfavorite":
		if len(rest) != 1 {
			return errUsage
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("favourite id %q must be an integer", rest[0])
		}
		if err := d.RemoveFavorite(ctx, domain.DogImage{FavoriteID: &id}); err != nil {
			return err
		}
		return enc.Encode(map[string]any{"removed": id})

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}
