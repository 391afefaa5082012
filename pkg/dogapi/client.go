// Package dogapi is a client for The Dog API image and favourites endpoints.
package dogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pawtrail/dogdeck/internal/domain"
	"github.com/pawtrail/dogdeck/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public v1 endpoint.
	DefaultBaseURL = "https://api.thedogapi.com/v1"

	headerAPIKey      = "x-api-key"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"

	msgNoImage       = "No dog image returned"
	msgRandomFailed  = "Failed to fetch random image"
	msgAddFailed     = "Failed to add to favorites"
	msgListFailed    = "Failed to load favorites"
	msgDeleteFailed  = "Failed to delete favorite"
	maxSnippetLength = 512
)

// Logger is the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

var errSkipped = errors.New("favourite skipped")

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

// Options configures a Client. Only BaseURL and APIKey are required.
type Options struct {
	BaseURL string
	APIKey  string
	// Timeout applies when HTTP is nil; zero keeps the transport default.
	Timeout time.Duration
	HTTP    httpclient.Client
	Logger  Logger
}

// Client talks to the image and favourites endpoints. It holds no state beyond
// its configuration and is safe for concurrent use.
type Client struct {
	base    *url.URL
	headers map[string]string
	http    httpclient.Client
	log     Logger
}

// New validates the configuration and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("dogapi: api key is required")
	}

	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = httpclient.NewRestyClient(opts.Timeout)
	}
	var log Logger = noopLogger{}
	if opts.Logger != nil {
		log = opts.Logger
	}

	return &Client{
		base: base,
		headers: map[string]string{
			headerAPIKey:      key,
			headerContentType: contentTypeJSON,
		},
		http: httpClient,
		log:  log,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ErrInvalidRequest, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrInvalidRequest, raw)
	}
	return u, nil
}

// endpoint appends path segments to the base URL. Segments come from callers,
// so anything that would change the path structure is rejected.
func (c *Client) endpoint(segments ...string) (string, error) {
	for _, s := range segments {
		if s == "" || s == "." || s == ".." || strings.ContainsAny(s, "/?#") {
			return "", fmt.Errorf("%w: bad path segment %q", ErrInvalidRequest, s)
		}
	}
	return c.base.JoinPath(segments...).String(), nil
}

func (c *Client) send(ctx context.Context, method, target string, body []byte, failMsg string) (httpclient.Response, error) {
	resp, err := c.http.Do(ctx, method, target, c.headers, body)
	if err != nil {
		return nil, &ServiceError{Message: failMsg, Err: err}
	}
	return resp, nil
}

// RandomImage fetches one random image: the first element of /images/search.
func (c *Client) RandomImage(ctx context.Context) (domain.DogImage, error) {
	target, err := c.endpoint("images", "search")
	if err != nil {
		return domain.DogImage{}, err
	}

	resp, err := c.send(ctx, http.MethodGet, target, nil, msgRandomFailed)
	if err != nil {
		return domain.DogImage{}, err
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.DogImage{}, statusError(msgRandomFailed, resp)
	}

	images, err := decodeImages(resp.Body())
	if err != nil {
		return domain.DogImage{}, err
	}
	if len(images) == 0 {
		return domain.DogImage{}, &ServiceError{Message: msgNoImage}
	}
	return images[0], nil
}

type favoriteRequest struct {
	ImageID string `json:"image_id"`
}

// AddFavorite creates a favourite for the image. 200 and 201 count as success.
func (c *Client) AddFavorite(ctx context.Context, imageID string) error {
	imageID = strings.TrimSpace(imageID)
	if imageID == "" {
		return fmt.Errorf("%w: image id is empty", ErrInvalidRequest)
	}
	target, err := c.endpoint("favourites")
	if err != nil {
		return err
	}

	body, err := json.Marshal(favoriteRequest{ImageID: imageID})
	if err != nil {
		return &ServiceError{Message: msgAddFailed, Err: fmt.Errorf("encode body: %w", err)}
	}

	resp, err := c.send(ctx, http.MethodPost, target, body, msgAddFailed)
	if err != nil {
		return err
	}
	if code := resp.StatusCode(); code != http.StatusOK && code != http.StatusCreated {
		return statusError(msgAddFailed, resp)
	}
	return nil
}

// FavoriteRecords fetches the raw favourites listing.
func (c *Client) FavoriteRecords(ctx context.Context) ([]domain.FavoriteRecord, error) {
	target, err := c.endpoint("favourites")
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, http.MethodGet, target, nil, msgListFailed)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(msgListFailed, resp)
	}
	return decodeFavorites(resp.Body())
}

// Favorites lazily resolves each record to its image, one request at a time in
// record order. Images that cannot be fetched into a valid shape are skipped;
// a transport failure is yielded once and ends the sequence.
func (c *Client) Favorites(ctx context.Context, records []domain.FavoriteRecord) iter.Seq2[domain.DogImage, error] {
	return func(yield func(domain.DogImage, error) bool) {
		for _, rec := range records {
			img, err := c.favoriteImage(ctx, rec)
			if errors.Is(err, errSkipped) {
				c.log.WarnObj("favourite image skipped", "favourite_skip", map[string]any{
					"favourite_id": rec.ID,
					"image_id":     rec.ImageID,
					"reason":       err.Error(),
				})
				continue
			}
			if err != nil {
				yield(domain.DogImage{}, err)
				return
			}
			if !yield(img, nil) {
				return
			}
		}
	}
}

// ListFavorites returns the favourited images with FavoriteID set, in listing order.
func (c *Client) ListFavorites(ctx context.Context) ([]domain.DogImage, error) {
	records, err := c.FavoriteRecords(ctx)
	if err != nil {
		return nil, err
	}

	images := make([]domain.DogImage, 0, len(records))
	for img, err := range c.Favorites(ctx, records) {
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	c.log.DebugObj("favourites loaded", "favourites_meta", map[string]any{
		"records": len(records),
		"images":  len(images),
	})
	return images, nil
}

// favoriteImage fetches the image behind a record. Failures that only affect
// this record are wrapped in errSkipped.
func (c *Client) favoriteImage(ctx context.Context, rec domain.FavoriteRecord) (domain.DogImage, error) {
	target, err := c.endpoint("images", rec.ImageID)
	if err != nil {
		return domain.DogImage{}, fmt.Errorf("%w: %v", errSkipped, err)
	}

	resp, err := c.send(ctx, http.MethodGet, target, nil, msgListFailed)
	if err != nil {
		return domain.DogImage{}, err
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.DogImage{}, fmt.Errorf("%w: %v", errSkipped, statusError("image detail request failed", resp))
	}

	img, err := decodeImage(resp.Body())
	if err != nil {
		return domain.DogImage{}, fmt.Errorf("%w: %v", errSkipped, err)
	}
	favoriteID := rec.ID
	img.FavoriteID = &favoriteID
	return img, nil
}

// DeleteFavorite removes a favourite by its record id. Only 200 counts as success.
func (c *Client) DeleteFavorite(ctx context.Context, favoriteID int) error {
	target, err := c.endpoint("favourites", strconv.Itoa(favoriteID))
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, http.MethodDelete, target, nil, msgDeleteFailed)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return statusError(msgDeleteFailed, resp)
	}
	return nil
}

func statusError(msg string, resp httpclient.Response) *ServiceError {
	return &ServiceError{
		Message:    msg,
		StatusCode: resp.StatusCode(),
		Body:       responseSnippet(resp.Body()),
	}
}

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetLength {
		return s[:maxSnippetLength] + "..."
	}
	return s
}
