package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pawtrail/dogdeck/internal/domain"
)

const maxBodyBytes = 1 << 20

type handler struct {
	deck Deck
	log  *zap.Logger
}

type voteRequest struct {
	ImageID  string `json:"image_id"`
	ImageURL string `json:"image_url,omitempty"`
	Like     bool   `json:"like"`
}

type voteResponse struct {
	EventID string          `json:"event_id"`
	Action  string          `json:"action"`
	Next    domain.DogImage `json:"next"`
	Alert   string          `json:"alert,omitempty"`
}

type favoritesResponse struct {
	Favorites []domain.DogImage `json:"favorites"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) randomImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.deck.Next(r.Context())
	if err != nil {
		h.fail(w, "random image failed", err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *handler) vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.deck.Vote(r.Context(), domain.DogImage{ID: req.ImageID, URL: req.ImageURL}, req.Like)
	if err != nil {
		h.fail(w, "vote failed", err)
		return
	}

	out := voteResponse{
		EventID: res.Event.ID,
		Action:  string(res.Event.Action),
		Next:    res.Next,
	}
	if res.FavoriteErr != nil {
		out.Alert = messageFor(res.FavoriteErr)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) favorites(w http.ResponseWriter, r *http.Request) {
	images, err := h.deck.Favorites(r.Context())
	if err != nil {
		h.fail(w, "list favourites failed", err)
		return
	}
	if images == nil {
		images = []domain.DogImage{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Favorites: images})
}

func (h *handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "favourite id must be an integer")
		return
	}

	if err := h.deck.RemoveFavorite(r.Context(), domain.DogImage{FavoriteID: &id}); err != nil {
		h.fail(w, "remove favourite failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	h.log.Warn(msg, zap.Int("status", status), zap.Error(err))
	writeError(w, status, messageFor(err))
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("request body contains badly-formed JSON (at position %d)", syntaxErr.Offset)
		default:
			return fmt.Errorf("invalid request body: %w", err)
		}
	}
	return nil
}
