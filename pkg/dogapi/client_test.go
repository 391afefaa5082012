package dogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrail/dogdeck/internal/domain"
)

const testKey = "test-key"

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/v1", APIKey: testKey})
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url", APIKey: "k"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = New(Options{BaseURL: "https://example.com/v1"})
	require.Error(t, err)

	c, err := New(Options{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.base.String())
}

func TestRandomImageReturnsFirstElement(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/images/search", r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `[
			{"id":"abc","url":"https://cdn.example/abc.jpg","width":640,"height":480,
			 "breeds":[{"name":"Beagle","weight":{"imperial":"20 - 30","metric":"9 - 14"},
			            "life_span":"12 - 15 years","energy_level":4}]},
			{"id":"def","url":"https://cdn.example/def.jpg","width":10,"height":10}
		]`)
	}))

	img, err := c.RandomImage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", img.ID)
	assert.Equal(t, 640, img.Width)
	assert.Nil(t, img.FavoriteID)
	require.Len(t, img.Breeds, 1)
	assert.Equal(t, "Beagle", img.Breeds[0].Name)
	assert.Equal(t, "9 - 14", img.Breeds[0].Weight.Metric)
	require.NotNil(t, img.Breeds[0].LifeSpan)
	assert.Equal(t, "12 - 15 years", *img.Breeds[0].LifeSpan)
	require.NotNil(t, img.Breeds[0].EnergyLevel)
	assert.Equal(t, 4, *img.Breeds[0].EnergyLevel)
	assert.Nil(t, img.Breeds[0].Origin)
}

func TestRandomImageEmptyArrayIsServiceError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))

	_, err := c.RandomImage(context.Background())
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "No dog image returned", svcErr.Message)
}

func TestRandomImageMalformedJSONIsDecodingError(t *testing.T) {
	for name, body := range map[string]string{
		"truncated":     `[{"id":"abc"`,
		"wrong type":    `[{"id":1,"url":"u","width":1,"height":1}]`,
		"missing field": `[{"id":"abc","width":1,"height":1}]`,
		"object":        `{"id":"abc","url":"u","width":1,"height":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, body)
			}))

			_, err := c.RandomImage(context.Background())
			var decErr *DecodingError
			require.ErrorAs(t, err, &decErr)
		})
	}
}

func TestRandomImageNon200IsServiceError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))

	_, err := c.RandomImage(context.Background())
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)
	assert.Contains(t, svcErr.Error(), "unauthorized")
}

func TestTransportFailureIsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, APIKey: testKey})
	require.NoError(t, err)

	_, err = c.RandomImage(context.Background())
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Zero(t, svcErr.StatusCode)
	assert.NotNil(t, svcErr.Err)
}

func TestAddFavoriteStatusPolicy(t *testing.T) {
	cases := []struct {
		status  int
		wantErr bool
	}{
		{http.StatusOK, false},
		{http.StatusCreated, false},
		{http.StatusNoContent, true},
		{http.StatusBadRequest, true},
	}
	for _, tc := range cases {
		t.Run(strconv.Itoa(tc.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/favourites", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, map[string]string{"image_id": "abc"}, body)
				w.WriteHeader(tc.status)
			}))

			err := c.AddFavorite(context.Background(), "abc")
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			var svcErr *ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tc.status, svcErr.StatusCode)
		})
	}
}

func TestAddFavoriteRejectsEmptyID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	}))
	require.ErrorIs(t, c.AddFavorite(context.Background(), " "), ErrInvalidRequest)
}

func TestListFavoritesSkipsUndecodableImages(t *testing.T) {
	var mu sync.Mutex
	var order []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/v1/favourites":
			fmt.Fprint(w, `[{"id":11,"image_id":"good"},{"id":12,"image_id":"bad"},{"id":13,"image_id":"also-good"}]`)
		case "/v1/images/good":
			fmt.Fprint(w, `{"id":"good","url":"https://cdn.example/good.jpg","width":1,"height":2}`)
		case "/v1/images/bad":
			fmt.Fprint(w, `{"id":"bad","url":`)
		case "/v1/images/also-good":
			fmt.Fprint(w, `{"id":"also-good","url":"https://cdn.example/ag.jpg","width":3,"height":4}`)
		default:
			http.NotFound(w, r)
		}
	}))

	images, err := c.ListFavorites(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "good", images[0].ID)
	require.NotNil(t, images[0].FavoriteID)
	assert.Equal(t, 11, *images[0].FavoriteID)
	assert.Equal(t, "also-good", images[1].ID)
	require.NotNil(t, images[1].FavoriteID)
	assert.Equal(t, 13, *images[1].FavoriteID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/v1/favourites", "/v1/images/good", "/v1/images/bad", "/v1/images/also-good"}, order)
}

func TestListFavoritesSkipsMissingImages(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/favourites":
			fmt.Fprint(w, `[{"id":1,"image_id":"gone"}]`)
		default:
			http.NotFound(w, r)
		}
	}))

	images, err := c.ListFavorites(context.Background())
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestListFavoritesPropagatesListingFailures(t *testing.T) {
	t.Run("decoding", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"id":"not-an-int","image_id":"x"}]`)
		}))
		_, err := c.ListFavorites(context.Background())
		var decErr *DecodingError
		require.ErrorAs(t, err, &decErr)
	})

	t.Run("status", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		_, err := c.ListFavorites(context.Background())
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
	})
}

func TestFavoritesSequenceStopsEarly(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		id := strings.TrimPrefix(r.URL.Path, "/v1/images/")
		fmt.Fprintf(w, `{"id":%q,"url":"u","width":1,"height":1}`, id)
	}))

	records := []domain.FavoriteRecord{{ID: 1, ImageID: "a"}, {ID: 2, ImageID: "b"}, {ID: 3, ImageID: "c"}}
	for img, err := range c.Favorites(context.Background(), records) {
		require.NoError(t, err)
		assert.Equal(t, "a", img.ID)
		break
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeleteFavoriteRequiresExactly200(t *testing.T) {
	for status, wantErr := range map[int]bool{
		http.StatusOK:        false,
		http.StatusNoContent: true,
		http.StatusNotFound:  true,
	} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/v1/favourites/42", r.URL.Path)
				w.WriteHeader(status)
			}))

			err := c.DeleteFavorite(context.Background(), 42)
			if !wantErr {
				require.NoError(t, err)
				return
			}
			var svcErr *ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, status, svcErr.StatusCode)
		})
	}
}

func TestEndpointRejectsPathTraversal(t *testing.T) {
	c, err := New(Options{BaseURL: "https://example.com/v1", APIKey: testKey})
	require.NoError(t, err)

	_, err = c.endpoint("images", "../favourites")
	require.ErrorIs(t, err, ErrInvalidRequest)

	got, err := c.endpoint("favourites", "7")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v1/favourites/7", got)
}

// fakeService is a small in-memory stand-in for the remote service.
type fakeService struct {
	mu        sync.Mutex
	images    map[string]string // id -> url
	order     []string
	favorites []domain.FavoriteRecord
	nextFavID int
}

func newFakeService(ids ...string) *fakeService {
	f := &fakeService{images: map[string]string{}, nextFavID: 100}
	for _, id := range ids {
		f.images[id] = "https://cdn.example/" + id + ".jpg"
		f.order = append(f.order, id)
	}
	return f
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("x-api-key") != testKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1")
	switch {
	case r.Method == http.MethodGet && path == "/images/search":
		id := f.order[0]
		writeJSON(w, []map[string]any{f.image(id)})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/images/"):
		id := strings.TrimPrefix(path, "/images/")
		if _, ok := f.images[id]; !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, f.image(id))
	case r.Method == http.MethodPost && path == "/favourites":
		var body struct {
			ImageID string `json:"image_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.nextFavID++
		f.favorites = append(f.favorites, domain.FavoriteRecord{ID: f.nextFavID, ImageID: body.ImageID})
		writeJSON(w, map[string]any{"message": "SUCCESS", "id": f.nextFavID})
	case r.Method == http.MethodGet && path == "/favourites":
		writeJSON(w, f.favorites)
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/favourites/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(path, "/favourites/"))
		for i, fav := range f.favorites {
			if fav.ID == id {
				f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
				writeJSON(w, map[string]any{"message": "SUCCESS"})
				return
			}
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) image(id string) map[string]any {
	return map[string]any{"id": id, "url": f.images[id], "width": 500, "height": 375}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestRoundTripRandomAddListDelete(t *testing.T) {
	svc := newFakeService("rnd1")
	c := newTestClient(t, svc)
	ctx := context.Background()

	img, err := c.RandomImage(ctx)
	require.NoError(t, err)
	require.NoError(t, c.AddFavorite(ctx, img.ID))

	first, err := c.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, img.ID, first[0].ID)
	require.NotNil(t, first[0].FavoriteID)

	second, err := c.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, c.DeleteFavorite(ctx, *first[0].FavoriteID))
	after, err := c.ListFavorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)

	err = c.DeleteFavorite(ctx, *first[0].FavoriteID)
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (r *recordingLogger) DebugObj(string, string, interface{}) {}
func (r *recordingLogger) WarnObj(msg, _ string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func TestSkippedFavoritesAreLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favourites" {
			fmt.Fprint(w, `[{"id":1,"image_id":"x"}]`)
			return
		}
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	log := &recordingLogger{}
	c, err := New(Options{BaseURL: srv.URL, APIKey: testKey, Logger: log})
	require.NoError(t, err)

	images, err := c.ListFavorites(context.Background())
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, []string{"favourite image skipped"}, log.warns)
}
