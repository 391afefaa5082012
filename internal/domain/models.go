package domain

// Domain contains the records exchanged with the dog image service.

// DogImage is one image resource as returned by the service.
type DogImage struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// FavoriteID is only set on images obtained from a favorites listing.
	FavoriteID *int    `json:"favorite_id,omitempty"`
	Breeds     []Breed `json:"breeds,omitempty"`
}

// PrimaryBreed returns the first breed attached to the image, if any.
func (d DogImage) PrimaryBreed() (Breed, bool) {
	if len(d.Breeds) == 0 {
		return Breed{}, false
	}
	return d.Breeds[0], true
}

// Weight holds imperial and metric ranges such as "10 - 15".
type Weight struct {
	Imperial string `json:"imperial"`
	Metric   string `json:"metric"`
}

// Breed is descriptive breed metadata. Characteristics are on a 1-5 scale.
type Breed struct {
	Name        string  `json:"name"`
	Weight      Weight  `json:"weight"`
	Temperament *string `json:"temperament,omitempty"`
	Origin      *string `json:"origin,omitempty"`
	Description *string `json:"description,omitempty"`
	LifeSpan    *string `json:"life_span,omitempty"`

	Adaptability   *int `json:"adaptability,omitempty"`
	AffectionLevel *int `json:"affection_level,omitempty"`
	ChildFriendly  *int `json:"child_friendly,omitempty"`
	DogFriendly    *int `json:"dog_friendly,omitempty"`
	EnergyLevel    *int `json:"energy_level,omitempty"`
	Intelligence   *int `json:"intelligence,omitempty"`
}

// Characteristic is a labelled rating.
type Characteristic struct {
	Label  string `json:"label"`
	Rating int    `json:"rating"`
}

// Characteristics lists the ratings present on the breed in display order.
func (b Breed) Characteristics() []Characteristic {
	all := []struct {
		label string
		value *int
	}{
		{"Adaptability", b.Adaptability},
		{"Affection Level", b.AffectionLevel},
		{"Child Friendly", b.ChildFriendly},
		{"Dog Friendly", b.DogFriendly},
		{"Energy Level", b.EnergyLevel},
		{"Intelligence", b.Intelligence},
	}

	out := make([]Characteristic, 0, len(all))
	for _, c := range all {
		if c.value == nil {
			continue
		}
		out = append(out, Characteristic{Label: c.label, Rating: *c.value})
	}
	return out
}

// FavoriteRecord is a favorite persisted by the service. Its ID is distinct from the image ID.
type FavoriteRecord struct {
	ID      int    `json:"id"`
	ImageID string `json:"image_id"`
}
