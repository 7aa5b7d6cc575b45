package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type update struct {
	op    string
	pos   int
	count int
}

// recorder applies dispatched updates to a copy of the old list so tests can
// check that the script really turns old into new.
type recorder struct {
	updates []update
	list    []*Hit
	next    []*Hit
}

func (r *recorder) OnInserted(position, count int) {
	r.updates = append(r.updates, update{"insert", position, count})
	// Inserted slots are filled from the new list after the dispatch.
	r.list = append(r.list[:position], append(make([]*Hit, count), r.list[position:]...)...)
}

func (r *recorder) OnRemoved(position, count int) {
	r.updates = append(r.updates, update{"remove", position, count})
	r.list = append(r.list[:position], r.list[position+count:]...)
}

func (r *recorder) OnChanged(position, count int) {
	r.updates = append(r.updates, update{"change", position, count})
}

func dispatch(oldList, newList []*Hit) *recorder {
	r := &recorder{list: append([]*Hit(nil), oldList...), next: newList}
	CalculateDiff[*Hit](oldList, newList, HitDiff{}).DispatchUpdatesTo(r)
	return r
}

func makeHits(ids ...int) []*Hit {
	hits := make([]*Hit, len(ids))
	for i, id := range ids {
		hits[i] = &Hit{Id: id, PreviewUrl: fmt.Sprintf("p%d", id), LargeImageUrl: fmt.Sprintf("l%d", id)}
	}
	return hits
}

func concat(lists ...[]*Hit) []*Hit {
	var out []*Hit
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func TestDiffIdentical(t *testing.T) {
	a := makeHits(1, 2, 3)
	r := dispatch(a, append([]*Hit(nil), a...))
	assert.Empty(t, r.updates)
}

func TestDiffEmpty(t *testing.T) {
	assert.Empty(t, dispatch(nil, nil).updates)
	assert.Equal(t, []update{{"insert", 0, 3}}, dispatch(nil, makeHits(1, 2, 3)).updates)
	assert.Equal(t, []update{{"remove", 0, 2}}, dispatch(makeHits(1, 2), nil).updates)
}

func TestDiffAppendPage(t *testing.T) {
	page1, page2 := makeHits(1, 2, 3), makeHits(4, 5)
	r := dispatch(page1, concat(page1, page2))
	assert.Equal(t, []update{{"insert", 3, 2}}, r.updates)
}

func TestDiffRemoveMiddle(t *testing.T) {
	a := makeHits(1, 2, 3, 4)
	b := []*Hit{a[0], a[3]}
	r := dispatch(a, b)
	assert.Equal(t, []update{{"remove", 1, 2}}, r.updates)
	assert.Equal(t, b, r.list)
}

func TestDiffSameIdNewInstance(t *testing.T) {
	a := makeHits(1, 2, 3)
	refetched := makeHits(2)
	b := []*Hit{a[0], refetched[0], a[2]}
	r := dispatch(a, b)

	// A new instance is a different item even with the same id.
	inserts := 0
	for _, u := range r.updates {
		assert.NotEqual(t, "change", u.op)
		if u.op == "insert" {
			inserts += u.count
		}
	}
	assert.Equal(t, 1, inserts)
	assert.Len(t, r.list, 3)
	assert.Same(t, a[0], r.list[0])
	assert.Same(t, a[2], r.list[2])
}

// idCallback matches by id and compares tags, to exercise the change path.
type idCallback struct{}

func (idCallback) AreItemsTheSame(oldItem, newItem *Hit) bool {
	return oldItem.Id == newItem.Id
}

func (idCallback) AreContentsTheSame(oldItem, newItem *Hit) bool {
	return oldItem.Tags == newItem.Tags
}

func TestDiffChanges(t *testing.T) {
	a := makeHits(1, 2, 3, 4)
	b := makeHits(1, 2, 3, 4)
	b[1].Tags = "x"
	b[2].Tags = "y"
	r := &recorder{list: append([]*Hit(nil), a...)}
	CalculateDiff[*Hit](a, b, idCallback{}).DispatchUpdatesTo(r)
	assert.Equal(t, []update{{"change", 1, 2}}, r.updates)
}

func TestDiffReconstructs(t *testing.T) {
	pool := makeHits(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	cases := [][2][]int{
		{{0, 1, 2, 3}, {3, 2, 1, 0}},
		{{0, 1, 2}, {5, 6, 7}},
		{{0, 1, 2, 3, 4}, {0, 5, 2, 6, 4, 7}},
		{{1, 3, 5, 7, 9}, {0, 1, 2, 3, 4, 5}},
		{{0, 0, 1}, {1, 0, 0, 0}},
	}
	pick := func(idx []int) []*Hit {
		out := make([]*Hit, len(idx))
		for i, n := range idx {
			out[i] = pool[n]
		}
		return out
	}
	for _, c := range cases {
		a, b := pick(c[0]), pick(c[1])
		r := dispatch(a, b)
		// Fill inserted slots and compare with the target.
		assert.Len(t, r.list, len(b), "case %v", c)
		for i := range r.list {
			if r.list[i] == nil {
				r.list[i] = b[i]
			}
		}
		assert.Equal(t, b, r.list, "case %v", c)
	}
}
