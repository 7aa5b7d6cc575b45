package main

import (
	"context"
	"encoding/json"
	"fmt"
)

// Hit is one image returned by the Pixabay search API. Hits are treated as
// immutable once decoded; the grid identifies them by pointer.
type Hit struct {
	Id              int    `json:"id"`
	PageUrl         string `json:"pageURL"`
	Type            string `json:"type"`
	Tags            string `json:"tags"`
	PreviewUrl      string `json:"previewURL"`
	PreviewWidth    int    `json:"previewWidth"`
	PreviewHeight   int    `json:"previewHeight"`
	WebFormatUrl    string `json:"webformatURL"`
	WebFormatWidth  int    `json:"webformatWidth"`
	WebFormatHeight int    `json:"webformatHeight"`
	LargeImageUrl   string `json:"largeImageURL"`
	ImageWidth      int    `json:"imageWidth"`
	ImageHeight     int    `json:"imageHeight"`
	Views           int    `json:"views"`
	Downloads       int    `json:"downloads"`
	Likes           int    `json:"likes"`
	Comments        int    `json:"comments"`
	UserId          int    `json:"user_id"`
	User            string `json:"user"`
	UserImageUrl    string `json:"userImageURL"`
}

// ImageResponse is one page of search results.
type ImageResponse struct {
	Total     int    `json:"total"`
	TotalHits int    `json:"totalHits"`
	Hits      []*Hit `json:"hits"`
}

type ImageSearcher interface {
	SearchImages(ctx context.Context, apiKey string, page int) (*ImageResponse, error)
}

type missingFieldError struct {
	object string
	field  string
}

func (e *missingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.object, e.field)
}

func (h *Hit) UnmarshalJSON(data []byte) error {
	type hitFields Hit
	aux := struct {
		*hitFields
		Id            *int    `json:"id"`
		PreviewUrl    *string `json:"previewURL"`
		LargeImageUrl *string `json:"largeImageURL"`
	}{hitFields: (*hitFields)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.Id == nil:
		return &missingFieldError{"hit", "id"}
	case aux.PreviewUrl == nil:
		return &missingFieldError{"hit", "previewURL"}
	case aux.LargeImageUrl == nil:
		return &missingFieldError{"hit", "largeImageURL"}
	}
	h.Id = *aux.Id
	h.PreviewUrl = *aux.PreviewUrl
	h.LargeImageUrl = *aux.LargeImageUrl
	return nil
}

func (r *ImageResponse) UnmarshalJSON(data []byte) error {
	aux := struct {
		Total     *int    `json:"total"`
		TotalHits *int    `json:"totalHits"`
		Hits      *[]*Hit `json:"hits"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.Total == nil:
		return &missingFieldError{"response", "total"}
	case aux.TotalHits == nil:
		return &missingFieldError{"response", "totalHits"}
	case aux.Hits == nil:
		return &missingFieldError{"response", "hits"}
	}
	for i, hit := range *aux.Hits {
		if hit == nil {
			return fmt.Errorf("response: hit %d is null", i)
		}
	}
	r.Total = *aux.Total
	r.TotalHits = *aux.TotalHits
	r.Hits = *aux.Hits
	return nil
}
