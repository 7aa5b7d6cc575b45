package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// headerLines is the number of terminal rows above the grid.
const headerLines = 1

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type pageLoadedMsg struct {
	page int
	resp *ImageResponse
	err  error
}

// Browser is the terminal gallery. Every field is owned by the Bubble Tea
// event loop; network loads run as commands and report back as messages.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc

	pager    *Pager
	adapter  *GridAdapter
	grid     *GridView
	onSelect func(hit *Hit)

	cellW, cellH  int
	width, height int
	cols, rows    int
	topRow        int
	cursor        int

	selected *Hit
	status   string
	err      error
}

func NewBrowser(ctx context.Context, pager *Pager, onHitSelected func(hit *Hit)) *Browser {
	ctx, cancel := context.WithCancel(ctx)
	b := &Browser{
		ctx:      ctx,
		cancel:   cancel,
		pager:    pager,
		onSelect: onHitSelected,
		cols:     1,
		rows:     1,
	}
	b.adapter = NewGridAdapter(b.selectHit)
	b.grid = NewGridView(b.adapter)
	b.cellW, b.cellH = NewHitCell().Size()
	return b
}

// Close cancels any load still in flight; its result is discarded.
func (b *Browser) Close() {
	b.cancel()
}

func (b *Browser) selectHit(hit *Hit) {
	b.selected = hit
	b.status = fmt.Sprintf("#%d %s", hit.Id, hit.LargeImageUrl)
	if b.onSelect != nil {
		b.onSelect(hit)
	}
}

func (b *Browser) Init() tea.Cmd {
	return b.loadNext()
}

func (b *Browser) loadNext() tea.Cmd {
	page, ok := b.pager.Begin()
	if !ok {
		return nil
	}
	ctx, pager := b.ctx, b.pager
	return func() tea.Msg {
		resp, err := pager.Fetch(ctx, page)
		return pageLoadedMsg{page: page, resp: resp, err: err}
	}
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.cols = max(1, msg.Width/b.cellW)
		b.rows = max(1, (msg.Height-headerLines-1)/b.cellH)
		b.scrollTo(b.cursor)
		return b, b.loadIfNeeded()

	case pageLoadedMsg:
		if b.ctx.Err() != nil {
			return b, nil
		}
		if msg.err != nil {
			b.pager.Fail(msg.page, msg.err)
			b.err = msg.err
			return b, nil
		}
		snapshot, ok := b.pager.Complete(msg.page, msg.resp)
		if !ok {
			return b, nil
		}
		b.err = nil
		b.adapter.SubmitList(snapshot)
		b.layout()
		return b, b.loadIfNeeded()

	case tea.KeyMsg:
		return b.handleKey(msg)

	case tea.MouseMsg:
		return b.handleMouse(msg)
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		b.cancel()
		return b, tea.Quit
	case "up", "k":
		b.moveCursor(-b.cols)
	case "down", "j":
		b.moveCursor(b.cols)
	case "left", "h":
		b.moveCursor(-1)
	case "right", "l":
		b.moveCursor(1)
	case "enter", " ":
		b.grid.Click(b.cursor)
		return b, nil
	case "r":
		if b.err == nil {
			return b, nil
		}
		b.err = nil
		return b, b.loadNext()
	default:
		return b, nil
	}
	return b, b.loadIfNeeded()
}

func (b *Browser) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return b, nil
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		pos := b.positionAt(msg.X, msg.Y)
		if pos < 0 {
			return b, nil
		}
		b.cursor = pos
		b.grid.Click(pos)
		return b, nil
	case tea.MouseButtonWheelUp:
		b.scroll(-1)
	case tea.MouseButtonWheelDown:
		b.scroll(1)
	default:
		return b, nil
	}
	return b, b.loadIfNeeded()
}

// loadIfNeeded starts the next page once the window reaches the last loaded
// row. After a failure it waits for an explicit retry.
func (b *Browser) loadIfNeeded() tea.Cmd {
	if b.err != nil || b.pager.Done() {
		return nil
	}
	if (b.topRow+b.rows)*b.cols < b.pager.Loaded() {
		return nil
	}
	return b.loadNext()
}

func (b *Browser) moveCursor(delta int) {
	n := b.adapter.ItemCount()
	if n == 0 {
		return
	}
	b.cursor = min(max(b.cursor+delta, 0), n-1)
	b.scrollTo(b.cursor)
}

func (b *Browser) scrollTo(pos int) {
	row := pos / b.cols
	switch {
	case row < b.topRow:
		b.topRow = row
	case row >= b.topRow+b.rows:
		b.topRow = row - b.rows + 1
	}
	b.layout()
}

func (b *Browser) scroll(rows int) {
	totalRows := (b.adapter.ItemCount() + b.cols - 1) / b.cols
	b.topRow = min(max(b.topRow+rows, 0), max(totalRows-b.rows, 0))
	n := b.adapter.ItemCount()
	if n == 0 {
		b.layout()
		return
	}
	first := min(b.topRow*b.cols, n-1)
	last := min((b.topRow+b.rows)*b.cols-1, n-1)
	b.cursor = min(max(b.cursor, first), last)
	b.layout()
}

func (b *Browser) layout() {
	b.grid.SetWindow(b.topRow*b.cols, b.rows*b.cols)
}

// positionAt maps terminal coordinates to a list position, or -1.
func (b *Browser) positionAt(x, y int) int {
	y -= headerLines
	if x < 0 || y < 0 {
		return -1
	}
	col, row := x/b.cellW, y/b.cellH
	if col >= b.cols || row >= b.rows {
		return -1
	}
	pos := (b.topRow+row)*b.cols + col
	if pos >= b.adapter.ItemCount() {
		return -1
	}
	return pos
}

func (b *Browser) View() string {
	if b.ctx.Err() != nil {
		return ""
	}
	header := fmt.Sprintf("Pixabay gallery  %d/%d", b.pager.Loaded(), b.pager.TotalHits())
	if b.pager.Loading() {
		header += "  loading…"
	}

	first, span := b.grid.Window()
	var rows []string
	for row := first; row < first+span; row += b.cols {
		var cells []string
		for pos := row; pos < row+b.cols; pos++ {
			cell := b.grid.Cell(pos)
			if cell == nil {
				break
			}
			cells = append(cells, cell.View(pos == b.cursor))
		}
		if len(cells) == 0 {
			break
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	footer := statusStyle.Render("arrows move · enter select · q quit")
	switch {
	case b.err != nil:
		footer = errorStyle.Render("load failed: " + b.err.Error() + " (r to retry)")
	case b.status != "":
		footer = statusStyle.Render(b.status)
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n")
	if len(rows) > 0 {
		sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
		sb.WriteString("\n")
	}
	sb.WriteString(footer)
	return sb.String()
}

// runBrowser blocks until the user quits.
func runBrowser(ctx context.Context, pager *Pager, onHitSelected func(hit *Hit)) error {
	b := NewBrowser(ctx, pager, onHitSelected)
	defer b.Close()
	program := tea.NewProgram(
		b,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := program.Run()
	return err
}
