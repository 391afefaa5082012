package dogapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pawtrail/dogdeck/internal/domain"
)

// Wire types use pointers for required fields so a missing key can be told
// apart from a zero value. Optional keys that are missing or null stay nil.

type wireImage struct {
	ID     *string     `json:"id"`
	URL    *string     `json:"url"`
	Width  *int        `json:"width"`
	Height *int        `json:"height"`
	Breeds []wireBreed `json:"breeds"`
}

type wireWeight struct {
	Imperial *string `json:"imperial"`
	Metric   *string `json:"metric"`
}

type wireBreed struct {
	Weight      *wireWeight `json:"weight"`
	Name        *string     `json:"name"`
	Temperament *string     `json:"temperament"`
	Origin      *string     `json:"origin"`
	Description *string     `json:"description"`
	LifeSpan    *string     `json:"life_span"`

	Adaptability   *int `json:"adaptability"`
	AffectionLevel *int `json:"affection_level"`
	ChildFriendly  *int `json:"child_friendly"`
	DogFriendly    *int `json:"dog_friendly"`
	EnergyLevel    *int `json:"energy_level"`
	Intelligence   *int `json:"intelligence"`
}

type wireFavorite struct {
	ID      *int    `json:"id"`
	ImageID *string `json:"image_id"`
}

func decodeImages(data []byte) ([]domain.DogImage, error) {
	var raw []wireImage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodingError{Err: err}
	}
	if raw == nil {
		return nil, &DecodingError{Err: errors.New("expected an array of images, got null")}
	}

	out := make([]domain.DogImage, 0, len(raw))
	for i, w := range raw {
		img, err := w.toDomain()
		if err != nil {
			return nil, &DecodingError{Err: fmt.Errorf("image[%d]: %w", i, err)}
		}
		out = append(out, img)
	}
	return out, nil
}

func decodeImage(data []byte) (domain.DogImage, error) {
	var raw *wireImage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.DogImage{}, &DecodingError{Err: err}
	}
	if raw == nil {
		return domain.DogImage{}, &DecodingError{Err: errors.New("expected an image object, got null")}
	}
	img, err := raw.toDomain()
	if err != nil {
		return domain.DogImage{}, &DecodingError{Err: err}
	}
	return img, nil
}

func decodeFavorites(data []byte) ([]domain.FavoriteRecord, error) {
	var raw []wireFavorite
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodingError{Err: err}
	}
	if raw == nil {
		return nil, &DecodingError{Err: errors.New("expected an array of favourites, got null")}
	}

	out := make([]domain.FavoriteRecord, 0, len(raw))
	for i, w := range raw {
		if w.ID == nil {
			return nil, &DecodingError{Err: fmt.Errorf("favourite[%d]: id is missing", i)}
		}
		if w.ImageID == nil {
			return nil, &DecodingError{Err: fmt.Errorf("favourite[%d]: image_id is missing", i)}
		}
		out = append(out, domain.FavoriteRecord{ID: *w.ID, ImageID: *w.ImageID})
	}
	return out, nil
}

func (w wireImage) toDomain() (domain.DogImage, error) {
	switch {
	case w.ID == nil:
		return domain.DogImage{}, errors.New("id is missing")
	case w.URL == nil:
		return domain.DogImage{}, errors.New("url is missing")
	case w.Width == nil:
		return domain.DogImage{}, errors.New("width is missing")
	case w.Height == nil:
		return domain.DogImage{}, errors.New("height is missing")
	}

	img := domain.DogImage{
		ID:     *w.ID,
		URL:    *w.URL,
		Width:  *w.Width,
		Height: *w.Height,
	}
	if len(w.Breeds) == 0 {
		return img, nil
	}

	img.Breeds = make([]domain.Breed, 0, len(w.Breeds))
	for i, b := range w.Breeds {
		breed, err := b.toDomain()
		if err != nil {
			return domain.DogImage{}, fmt.Errorf("breeds[%d]: %w", i, err)
		}
		img.Breeds = append(img.Breeds, breed)
	}
	return img, nil
}

func (w wireBreed) toDomain() (domain.Breed, error) {
	if w.Name == nil {
		return domain.Breed{}, errors.New("name is missing")
	}
	if w.Weight == nil || w.Weight.Imperial == nil || w.Weight.Metric == nil {
		return domain.Breed{}, fmt.Errorf("weight is missing for breed %q", *w.Name)
	}

	return domain.Breed{
		Name:           *w.Name,
		Weight:         domain.Weight{Imperial: *w.Weight.Imperial, Metric: *w.Weight.Metric},
		Temperament:    w.Temperament,
		Origin:         w.Origin,
		Description:    w.Description,
		LifeSpan:       w.LifeSpan,
		Adaptability:   w.Adaptability,
		AffectionLevel: w.AffectionLevel,
		ChildFriendly:  w.ChildFriendly,
		DogFriendly:    w.DogFriendly,
		EnergyLevel:    w.EnergyLevel,
		Intelligence:   w.Intelligence,
	}, nil
}
