package main

import (
	"context"
	"log"
)

// Pager accumulates search pages in order and produces list snapshots for a
// GridAdapter. Begin, Complete and Fail must be called from the UI loop;
// Fetch may run anywhere.
type Pager struct {
	api          ImageSearcher
	key          string
	placeholders bool
	log          *log.Logger

	hits      []*Hit
	next      int
	inFlight  int
	totalHits int
	known     bool
	done      bool
}

func NewPager(api ImageSearcher, key string, placeholders bool) *Pager {
	return &Pager{
		api:          api,
		key:          key,
		placeholders: placeholders,
		log:          newLogger("(pager) "),
		next:         1,
	}
}

// Begin reserves the next page to load. It reports false while another page
// is in flight or once every hit has been loaded.
func (p *Pager) Begin() (int, bool) {
	if p.done || p.inFlight != 0 {
		return 0, false
	}
	p.inFlight = p.next
	return p.next, true
}

func (p *Pager) Fetch(ctx context.Context, page int) (*ImageResponse, error) {
	return p.api.SearchImages(ctx, p.key, page)
}

// Complete merges a loaded page and returns the new snapshot. Results for a
// page that was not reserved are dropped and ok is false.
func (p *Pager) Complete(page int, resp *ImageResponse) ([]*Hit, bool) {
	if page != p.inFlight {
		p.log.Println("Dropping unexpected page", page)
		return nil, false
	}
	p.inFlight = 0
	p.next = page + 1
	p.totalHits = resp.TotalHits
	p.known = true
	p.hits = append(p.hits, resp.Hits...)
	if len(resp.Hits) == 0 || len(p.hits) >= p.totalHits {
		p.done = true
	}
	return p.Snapshot(), true
}

// Fail releases the reservation so the same page can be tried again.
func (p *Pager) Fail(page int, err error) {
	if page != p.inFlight {
		return
	}
	p.inFlight = 0
	p.log.Println("Failed to load page", page, err.Error())
}

// Snapshot returns a fresh slice so earlier snapshots stay intact.
func (p *Pager) Snapshot() []*Hit {
	size := len(p.hits)
	if p.placeholders && p.known && p.totalHits > size && !p.done {
		size = p.totalHits
	}
	list := make([]*Hit, size)
	copy(list, p.hits)
	return list
}

func (p *Pager) Loaded() int    { return len(p.hits) }
func (p *Pager) Done() bool     { return p.done }
func (p *Pager) Loading() bool  { return p.inFlight != 0 }
func (p *Pager) TotalHits() int { return p.totalHits }
