package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	pixabayBaseUrl = "https://pixabay.com/"
	// pixabayPageSize is the upstream per_page default; the search endpoint
	// does not send per_page.
	pixabayPageSize = 20
	defaultTimeout  = 30
)

var searchImagesEndpoint = Endpoint{
	Method: http.MethodGet,
	Path:   "api",
	Query:  []string{"key", "page"},
}

// PixabayApi is safe for concurrent use. It is built once in main and shared
// by everything that searches.
type PixabayApi struct {
	fetch   fetcher
	baseUrl *url.URL
	log     *log.Logger
}

func NewPixabayApi(cfg *Config, client *http.Client, cache *ReqCache) (*PixabayApi, error) {
	raw := cfg.Pixabay.BaseUrl
	if raw == "" {
		raw = pixabayBaseUrl
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("pixabay base url %q: %w", raw, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("pixabay base url %q: %w: must be absolute", raw, ErrInvalidArgument)
	}

	api := &PixabayApi{
		fetch:   client,
		baseUrl: base,
		log:     newLogger("(pixabay) "),
	}
	if cache != nil {
		api.fetch = cache
	}
	api.log.Println("Using", base.String())
	return api, nil
}

// NewHttpClient builds the transport shared by every request.
func NewHttpClient(cfg *Config) *http.Client {
	timeout := cfg.Pixabay.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: time.Duration(timeout) * time.Second}
}

func (api *PixabayApi) Type() string {
	return "pixabay"
}

func (api *PixabayApi) PageSize() int { return pixabayPageSize }

// SearchImages fetches one page of results. Pages start at 1.
func (api *PixabayApi) SearchImages(ctx context.Context, apiKey string, page int) (*ImageResponse, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: empty api key", ErrInvalidArgument)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", ErrInvalidArgument, page)
	}
	data, err := fetchJSON[ImageResponse](ctx, api.fetch, api.baseUrl, searchImagesEndpoint, apiKey, strconv.Itoa(page))
	if err != nil {
		return nil, err
	}
	return data, nil
}
