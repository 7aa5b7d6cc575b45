package main

// GridView hosts adapter cells for a window of positions. Cells that leave
// the window are kept in a pool and rebound when positions come into view.
//
// Range updates from the adapter only move or invalidate attached cells;
// binding happens on the next Layout so that every update in a dispatch is
// applied before positions are read back from the adapter.
type GridView struct {
	adapter  *GridAdapter
	first    int
	span     int
	attached map[int]*HitCell
	dirty    map[int]bool
	pool     []*HitCell

	created int
	binds   int
}

func NewGridView(adapter *GridAdapter) *GridView {
	g := &GridView{
		adapter:  adapter,
		attached: map[int]*HitCell{},
		dirty:    map[int]bool{},
	}
	adapter.RegisterObserver(g)
	return g
}

// SetWindow makes [first, first+span) the visible positions and lays out.
func (g *GridView) SetWindow(first, span int) {
	if first < 0 {
		first = 0
	}
	if span < 0 {
		span = 0
	}
	g.first, g.span = first, span
	g.Layout()
}

func (g *GridView) Window() (int, int) {
	return g.first, g.span
}

// Layout recycles cells outside the window, then binds new and invalidated
// positions inside it.
func (g *GridView) Layout() {
	end := min(g.first+g.span, g.adapter.ItemCount())
	for pos, cell := range g.attached {
		if pos < g.first || pos >= end {
			delete(g.attached, pos)
			g.pool = append(g.pool, cell)
		}
	}
	for pos := g.first; pos < end; pos++ {
		cell, ok := g.attached[pos]
		if !ok {
			cell = g.obtain(pos)
			g.attached[pos] = cell
		} else if !g.dirty[pos] {
			continue
		}
		g.adapter.BindCell(cell, pos)
		g.binds++
	}
	clear(g.dirty)
}

func (g *GridView) obtain(pos int) *HitCell {
	if n := len(g.pool); n > 0 {
		cell := g.pool[n-1]
		g.pool = g.pool[:n-1]
		return cell
	}
	g.created++
	return g.adapter.CreateCell(pos)
}

// Cell returns the attached cell at position, if any.
func (g *GridView) Cell(position int) *HitCell {
	return g.attached[position]
}

// Click delivers a tap to the cell at position. It reports whether a cell
// was attached there.
func (g *GridView) Click(position int) bool {
	cell, ok := g.attached[position]
	if !ok {
		return false
	}
	cell.Click()
	return true
}

func (g *GridView) Binds() int   { return g.binds }
func (g *GridView) Created() int { return g.created }

func (g *GridView) OnInserted(position, count int) {
	g.shift(position, count)
}

func (g *GridView) OnRemoved(position, count int) {
	for pos := position; pos < position+count; pos++ {
		if cell, ok := g.attached[pos]; ok {
			delete(g.attached, pos)
			g.pool = append(g.pool, cell)
		}
		delete(g.dirty, pos)
	}
	g.shift(position+count, -count)
}

func (g *GridView) OnChanged(position, count int) {
	for pos := position; pos < position+count; pos++ {
		g.dirty[pos] = true
	}
}

// shift moves attached cells and dirty marks at or after from by delta.
func (g *GridView) shift(from, delta int) {
	attached := make(map[int]*HitCell, len(g.attached))
	for pos, cell := range g.attached {
		if pos >= from {
			pos += delta
		}
		attached[pos] = cell
	}
	g.attached = attached

	dirty := make(map[int]bool, len(g.dirty))
	for pos := range g.dirty {
		if pos >= from {
			pos += delta
		}
		dirty[pos] = true
	}
	g.dirty = dirty
}
