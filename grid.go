package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	cellWidth  = 24
	cellHeight = 4
)

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(cellWidth).
			Height(cellHeight)
	selectedCellStyle = cellStyle.BorderForeground(lipgloss.Color("205"))
	placeholderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	idStyle           = lipgloss.NewStyle().Bold(true)
)

// HitDiff treats two entries as the same item only when they are the same
// instance; equal ids mean the bound content is still current.
type HitDiff struct{}

func (HitDiff) AreItemsTheSame(oldItem, newItem *Hit) bool {
	return oldItem == newItem
}

func (HitDiff) AreContentsTheSame(oldItem, newItem *Hit) bool {
	if oldItem == nil || newItem == nil {
		return oldItem == newItem
	}
	return oldItem.Id == newItem.Id
}

// GridAdapter binds a list of hits to grid cells. Nil entries are pages that
// have not loaded yet. It must only be used from the UI loop.
type GridAdapter struct {
	items    []*Hit
	onSelect func(hit *Hit)
	observer ListUpdateCallback
}

func NewGridAdapter(onHitSelected func(hit *Hit)) *GridAdapter {
	return &GridAdapter{onSelect: onHitSelected}
}

func (a *GridAdapter) RegisterObserver(observer ListUpdateCallback) {
	a.observer = observer
}

func (a *GridAdapter) ItemCount() int {
	return len(a.items)
}

// Item returns nil for placeholders and out of range positions.
func (a *GridAdapter) Item(position int) *Hit {
	if position < 0 || position >= len(a.items) {
		return nil
	}
	return a.items[position]
}

// CreateCell returns a new unbound cell. The position is only a hint; the
// host may bind the cell anywhere.
func (a *GridAdapter) CreateCell(position int) *HitCell {
	return NewHitCell()
}

func (a *GridAdapter) BindCell(cell *HitCell, position int) {
	hit := a.Item(position)
	cell.SetOnClick(func() {
		if hit != nil && a.onSelect != nil {
			a.onSelect(hit)
		}
	})
	if hit != nil {
		cell.Bind(hit)
	} else {
		cell.Unbind()
	}
	// Apply now so the host measures the final content.
	cell.ExecutePendingBindings()
}

// SubmitList replaces the current list and notifies the observer of the
// minimal set of range updates.
func (a *GridAdapter) SubmitList(list []*Hit) {
	result := CalculateDiff[*Hit](a.items, list, HitDiff{})
	a.items = list
	if a.observer != nil {
		result.DispatchUpdatesTo(a.observer)
	}
}

// HitCell is one visual grid cell. Bind stages a hit; the cell content only
// changes on ExecutePendingBindings.
type HitCell struct {
	hit     *Hit
	pending *Hit
	dirty   bool
	lines   []string
	onClick func()
}

func NewHitCell() *HitCell {
	c := &HitCell{}
	c.lines = c.render()
	return c
}

func (c *HitCell) Bind(hit *Hit) {
	c.pending = hit
	c.dirty = true
}

func (c *HitCell) Unbind() {
	c.pending = nil
	c.dirty = true
}

func (c *HitCell) ExecutePendingBindings() {
	if !c.dirty {
		return
	}
	c.hit = c.pending
	c.dirty = false
	c.lines = c.render()
}

// Hit returns the hit the cell currently shows, or nil for a placeholder.
func (c *HitCell) Hit() *Hit {
	return c.hit
}

func (c *HitCell) SetOnClick(fn func()) {
	c.onClick = fn
}

func (c *HitCell) Click() {
	if c.onClick != nil {
		c.onClick()
	}
}

func (c *HitCell) render() []string {
	if c.hit == nil {
		return []string{placeholderStyle.Render("loading…")}
	}
	h := c.hit
	lines := []string{
		idStyle.Render(fmt.Sprintf("#%d", h.Id)),
		truncate(h.Tags, cellWidth),
		truncate("by "+h.User, cellWidth),
	}
	if h.ImageWidth > 0 && h.ImageHeight > 0 {
		lines = append(lines, fmt.Sprintf("%dx%d", h.ImageWidth, h.ImageHeight))
	}
	return lines
}

func (c *HitCell) View(selected bool) string {
	style := cellStyle
	if selected {
		style = selectedCellStyle
	}
	return style.Render(strings.Join(c.lines, "\n"))
}

// Size is the measured outer size of the cell, borders included.
func (c *HitCell) Size() (int, int) {
	view := c.View(false)
	return lipgloss.Width(view), lipgloss.Height(view)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
