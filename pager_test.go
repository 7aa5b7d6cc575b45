package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher serves fixed pages from memory.
type fakeSearcher struct {
	SearchImagesFunc func(ctx context.Context, apiKey string, page int) (*ImageResponse, error)
}

func (f *fakeSearcher) SearchImages(ctx context.Context, apiKey string, page int) (*ImageResponse, error) {
	return f.SearchImagesFunc(ctx, apiKey, page)
}

// pagedSearcher returns totalHits hits split into pages of size, with ids
// starting at 1.
func pagedSearcher(totalHits, size int) *fakeSearcher {
	return &fakeSearcher{
		SearchImagesFunc: func(ctx context.Context, apiKey string, page int) (*ImageResponse, error) {
			if err := ctx.Err(); err != nil {
				return nil, &TransportError{Err: err}
			}
			var ids []int
			for id := (page-1)*size + 1; id <= min(page*size, totalHits); id++ {
				ids = append(ids, id)
			}
			return &ImageResponse{Total: totalHits * 2, TotalHits: totalHits, Hits: makeHits(ids...)}, nil
		},
	}
}

func loadPage(t *testing.T, p *Pager) []*Hit {
	t.Helper()
	page, ok := p.Begin()
	require.True(t, ok)
	resp, err := p.Fetch(context.Background(), page)
	require.NoError(t, err)
	snapshot, ok := p.Complete(page, resp)
	require.True(t, ok)
	return snapshot
}

func TestPagerAccumulates(t *testing.T) {
	p := NewPager(pagedSearcher(5, 2), "abc123", false)

	s1 := loadPage(t, p)
	assert.Len(t, s1, 2)
	s2 := loadPage(t, p)
	assert.Len(t, s2, 4)
	assert.Same(t, s1[0], s2[0], "merged hits keep their identity")
	assert.False(t, p.Done())

	s3 := loadPage(t, p)
	assert.Len(t, s3, 5)
	assert.Equal(t, 5, s3[4].Id)
	assert.True(t, p.Done())

	_, ok := p.Begin()
	assert.False(t, ok)
}

func TestPagerSnapshotsAreIndependent(t *testing.T) {
	p := NewPager(pagedSearcher(10, 2), "abc123", false)
	s1 := loadPage(t, p)
	loadPage(t, p)
	assert.Len(t, s1, 2)
}

func TestPagerOnePageInFlight(t *testing.T) {
	p := NewPager(pagedSearcher(10, 2), "abc123", false)
	page, ok := p.Begin()
	require.True(t, ok)
	assert.Equal(t, 1, page)
	assert.True(t, p.Loading())
	_, ok = p.Begin()
	assert.False(t, ok)
}

func TestPagerDropsUnexpectedPage(t *testing.T) {
	p := NewPager(pagedSearcher(10, 2), "abc123", false)
	page, _ := p.Begin()
	resp, err := p.Fetch(context.Background(), 2)
	require.NoError(t, err)

	_, ok := p.Complete(page+1, resp)
	assert.False(t, ok)
	assert.Equal(t, 0, p.Loaded())
	assert.True(t, p.Loading())
}

func TestPagerFailReleases(t *testing.T) {
	calls := 0
	p := NewPager(&fakeSearcher{
		SearchImagesFunc: func(ctx context.Context, apiKey string, page int) (*ImageResponse, error) {
			calls++
			assert.Equal(t, "abc123", apiKey)
			return nil, &ApiError{StatusCode: 429, Body: "slow down"}
		},
	}, "abc123", false)

	page, _ := p.Begin()
	_, err := p.Fetch(context.Background(), page)
	require.Error(t, err)
	p.Fail(page, err)
	assert.False(t, p.Loading())

	again, ok := p.Begin()
	assert.True(t, ok)
	assert.Equal(t, page, again, "the failed page is retried")
	assert.Equal(t, 1, calls)
}

func TestPagerEmptyPageEnds(t *testing.T) {
	p := NewPager(&fakeSearcher{
		SearchImagesFunc: func(ctx context.Context, apiKey string, page int) (*ImageResponse, error) {
			return &ImageResponse{Total: 100, TotalHits: 100, Hits: []*Hit{}}, nil
		},
	}, "abc123", true)

	s := loadPage(t, p)
	assert.Empty(t, s)
	assert.True(t, p.Done())
}

func TestPagerPlaceholders(t *testing.T) {
	p := NewPager(pagedSearcher(5, 2), "abc123", true)
	s := loadPage(t, p)
	require.Len(t, s, 5)
	assert.NotNil(t, s[1])
	assert.Nil(t, s[2])

	loadPage(t, p)
	s = loadPage(t, p)
	require.Len(t, s, 5)
	assert.NotNil(t, s[4])
}

func TestPagerFetchCancelled(t *testing.T) {
	p := NewPager(pagedSearcher(5, 2), "abc123", false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page, _ := p.Begin()
	_, err := p.Fetch(ctx, page)
	assert.True(t, errors.Is(err, context.Canceled))
}
