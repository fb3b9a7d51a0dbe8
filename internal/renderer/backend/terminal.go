package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/richlight/internal/richtext/attributed"
	"github.com/dshills/richlight/internal/richtext/core"
)

// Terminal is a full-screen view of one attributed text with vertical
// scrolling.
type Terminal struct {
	mu       sync.Mutex
	screen   tcell.Screen
	text     *attributed.Text
	defaults core.Defaults
	status   string
	scroll   int
	rows     int
}

// NewTerminal creates a terminal on the controlling tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation
// screen in tests.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init initializes the screen.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Init()
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

// SetText replaces the displayed text and redraws.
func (t *Terminal) SetText(text *attributed.Text, defaults core.Defaults) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = text
	t.defaults = defaults
	t.drawLocked()
}

// SetStatus sets the bottom status line and redraws.
func (t *Terminal) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.drawLocked()
}

// Scroll moves the view by delta rows, clamped to the content.
func (t *Terminal) Scroll(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scroll += delta
	t.drawLocked()
}

// Redraw repaints everything, e.g. after a resize.
func (t *Terminal) Redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Sync()
	t.drawLocked()
}

// PollEvent waits for the next terminal event. It returns nil after
// Shutdown.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// PostEvent queues an event, waking PollEvent.
func (t *Terminal) PostEvent(ev tcell.Event) error {
	return t.screen.PostEvent(ev)
}

func (t *Terminal) drawLocked() {
	t.screen.Clear()
	width, height := t.screen.Size()
	body := height
	if t.status != "" {
		body--
	}
	if body < 0 {
		body = 0
	}

	if t.text != nil {
		// Measure first so the scroll offset can be clamped.
		t.rows = Draw(discard{t.screen}, t.text, t.defaults, Area{Width: width, Height: 0})
		maxScroll := t.rows - body
		if maxScroll < 0 {
			maxScroll = 0
		}
		if t.scroll > maxScroll {
			t.scroll = maxScroll
		}
		if t.scroll < 0 {
			t.scroll = 0
		}
		if body > 0 {
			Draw(t.screen, t.text, t.defaults, Area{Width: width, Height: body, Scroll: t.scroll})
		}
	}

	if t.status != "" && height > 0 {
		style := tcell.StyleDefault.Reverse(true)
		col := 0
		for _, r := range t.status {
			if col >= width {
				break
			}
			t.screen.SetContent(col, height-1, r, nil, style)
			col++
		}
		for ; col < width; col++ {
			t.screen.SetContent(col, height-1, ' ', nil, style)
		}
	}
	t.screen.Show()
}

// discard measures a layout without painting it.
type discard struct {
	tcell.Screen
}

func (discard) SetContent(int, int, rune, []rune, tcell.Style) {}
