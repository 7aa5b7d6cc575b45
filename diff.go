package main

import (
	"context"

	"github.com/pkg/diff/myers"
)

// ItemCallback decides how two list entries relate. AreContentsTheSame is
// only consulted for pairs already judged to be the same item.
type ItemCallback[T any] interface {
	AreItemsTheSame(oldItem, newItem T) bool
	AreContentsTheSame(oldItem, newItem T) bool
}

// ListUpdateCallback receives range updates. Positions refer to the list as
// it stands after all previously dispatched updates.
type ListUpdateCallback interface {
	OnInserted(position, count int)
	OnRemoved(position, count int)
	OnChanged(position, count int)
}

type editKind int

const (
	editEqual editKind = iota
	editDelete
	editInsert
)

type edit struct {
	kind    editKind
	oldPos  int
	newPos  int
	changed bool
}

// DiffResult is an edit script from one list snapshot to the next.
type DiffResult struct {
	edits []edit
}

// CalculateDiff computes the shortest edit script from oldList to newList,
// matching entries with cb.AreItemsTheSame.
func CalculateDiff[T any](oldList, newList []T, cb ItemCallback[T]) DiffResult {
	script := myers.Diff(context.Background(), listPair[T]{oldList, newList, cb})

	var edits []edit
	for _, r := range script.Ranges {
		lenA, lenB := r.HighA-r.LowA, r.HighB-r.LowB
		if lenA == lenB && lenA > 0 && sameRun(oldList[r.LowA:r.HighA], newList[r.LowB:r.HighB], cb) {
			for i := 0; i < lenA; i++ {
				x, y := r.LowA+i, r.LowB+i
				edits = append(edits, edit{
					kind:    editEqual,
					oldPos:  x,
					newPos:  y,
					changed: !cb.AreContentsTheSame(oldList[x], newList[y]),
				})
			}
			continue
		}
		for x := r.LowA; x < r.HighA; x++ {
			edits = append(edits, edit{kind: editDelete, oldPos: x, newPos: r.LowB})
		}
		for y := r.LowB; y < r.HighB; y++ {
			edits = append(edits, edit{kind: editInsert, oldPos: r.HighA, newPos: y})
		}
	}
	return DiffResult{edits: edits}
}

// listPair exposes two lists to myers.Diff by index.
type listPair[T any] struct {
	a, b []T
	cb   ItemCallback[T]
}

func (p listPair[T]) LenA() int             { return len(p.a) }
func (p listPair[T]) LenB() int             { return len(p.b) }
func (p listPair[T]) Equal(ai, bi int) bool { return p.cb.AreItemsTheSame(p.a[ai], p.b[bi]) }

// sameRun reports whether two equal length runs match item for item; any
// other range is a replacement.
func sameRun[T any](a, b []T, cb ItemCallback[T]) bool {
	for i := range a {
		if !cb.AreItemsTheSame(a[i], b[i]) {
			return false
		}
	}
	return true
}

// DispatchUpdatesTo replays the script as coalesced range updates.
func (r DiffResult) DispatchUpdatesTo(cb ListUpdateCallback) {
	pos := 0
	var pending editKind
	start, count := 0, 0
	flush := func() {
		if count == 0 {
			return
		}
		switch pending {
		case editDelete:
			cb.OnRemoved(start, count)
		case editInsert:
			cb.OnInserted(start, count)
		case editEqual:
			cb.OnChanged(start, count)
		}
		count = 0
	}
	add := func(kind editKind, at int) {
		if count > 0 && kind == pending {
			switch kind {
			case editDelete:
				if at == start {
					count++
					return
				}
			default:
				if at == start+count {
					count++
					return
				}
			}
		}
		flush()
		pending, start, count = kind, at, 1
	}

	for _, e := range r.edits {
		switch e.kind {
		case editEqual:
			if e.changed {
				add(editEqual, pos)
			} else {
				flush()
			}
			pos++
		case editDelete:
			add(editDelete, pos)
		case editInsert:
			add(editInsert, pos)
			pos++
		}
	}
	flush()
}
