package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
	"github.com/matzehuels/flexpos/pkg/render"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

// Terminal cell size in viewport pixels. A cell is about twice as tall as
// it is wide.
const (
	cellWidth  = 10.0
	cellHeight = 20.0

	// chromeLines is the number of terminal lines used by the header,
	// status and help lines.
	chromeLines = 4
)

var (
	flagOnStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	flagOffStyle = lipgloss.NewStyle().Foreground(colorDim)
	helpStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlayModel - interactive positioning playground
// =============================================================================

// PlayModel is the bubbletea model behind 'flexpos play'. The terminal is
// the viewport: resizing the terminal resizes the host, which notifies the
// positioner like a browser window resize would.
type PlayModel struct {
	name   string
	host   *scenario.StaticHost
	pos    *overlay.Positioner
	styles render.Styles

	cols, rows int

	last   overlay.Placement
	placed bool
	change *overlay.PositionChange
	status string
}

// NewPlayModel attaches a positioner to a host built from sc.
func NewPlayModel(sc *scenario.Scenario, opts ...overlay.Option) (*PlayModel, error) {
	host := scenario.HostFor(sc)
	opts = append([]overlay.Option{overlay.WithConfig(sc.Config)}, opts...)
	pos, err := overlay.New(host, sc.Positions, opts...)
	if err != nil {
		return nil, err
	}

	m := &PlayModel{
		name:   sc.Name,
		host:   host,
		pos:    pos,
		styles: render.DefaultStyles(),
		cols:   int(sc.Viewport.Width / cellWidth),
		rows:   int(sc.Viewport.Height / cellHeight),
	}
	pos.OnPositionChange(func(c overlay.PositionChange) { m.change = &c })
	m.apply()
	return m, nil
}

func (m *PlayModel) Init() tea.Cmd {
	return nil
}

func (m *PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveOrigin(0, -cellHeight)
		case "down", "j":
			m.moveOrigin(0, cellHeight)
		case "left", "h":
			m.moveOrigin(-cellWidth, 0)
		case "right", "l":
			m.moveOrigin(cellWidth, 0)
		case "+", "=":
			m.resizeOverlay(cellWidth, cellHeight)
		case "-", "_":
			m.resizeOverlay(-cellWidth, -cellHeight)
		case "p":
			m.toggle("push", overlay.WithPush(!m.pos.Config().Push))
		case "f":
			m.toggle("flexible", overlay.WithFlexibleDimensions(!m.pos.Config().FlexibleDimensions))
		case "L":
			m.toggle("lock", overlay.WithLockedPosition(!m.pos.Config().PositionLocked))
		case "g":
			m.toggle("grow", overlay.WithGrowAfterOpen(!m.pos.Config().GrowAfterOpen))
		case "r":
			m.host.Viewport.RTL = !m.host.Viewport.RTL
			m.status = "rtl " + onOff(m.host.Viewport.RTL)
			m.apply()
		case "x":
			m.host.Hidden = !m.host.Hidden
			m.status = "origin hidden " + onOff(m.host.Hidden)
			m.apply()
		case " ", "enter":
			m.status = "apply"
			m.apply()
		}
	case tea.WindowSizeMsg:
		m.resizeViewport(msg.Width, msg.Height-chromeLines)
	}
	return m, nil
}

// apply runs a full recompute.
func (m *PlayModel) apply() {
	m.record(m.pos.Apply())
}

func (m *PlayModel) record(pl overlay.Placement, ok bool) {
	m.placed = ok
	if ok {
		m.last = pl
	}
}

func (m *PlayModel) moveOrigin(dx, dy float64) {
	o := m.host.Origin.Translate(geom.Point{X: dx, Y: dy})
	vp := m.host.ViewportRect(0)
	if o.Left < vp.Left || o.Right > vp.Right || o.Top < vp.Top || o.Bottom > vp.Bottom {
		return
	}
	m.host.Origin = o
	m.status = ""
	m.apply()
}

// resizeOverlay changes the overlay's content size and re-applies the last
// position, the way content changes are handled in an open overlay.
func (m *PlayModel) resizeOverlay(dw, dh float64) {
	w, h := m.host.Overlay.Width+dw, m.host.Overlay.Height+dh
	if w < cellWidth || h < cellHeight {
		return
	}
	m.host.Overlay = geom.Size{Width: w, Height: h}
	m.status = fmt.Sprintf("overlay %gx%g", w, h)
	m.record(m.pos.ReapplyLastPosition())
}

func (m *PlayModel) toggle(name string, opt overlay.Option) {
	if err := m.pos.Reconfigure(opt); err != nil {
		m.status = err.Error()
		return
	}
	m.status = name + " toggled"
	m.apply()
}

// resizeViewport maps a terminal of cols×rows cells onto the host's
// viewport. The host notifies the positioner, which recomputes.
func (m *PlayModel) resizeViewport(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	m.cols, m.rows = cols, rows
	w, h := float64(cols)*cellWidth, float64(rows)*cellHeight
	o := m.host.Origin
	m.host.Origin = o.MoveTo(geom.Point{
		X: max(0, min(o.Left, w-o.Width)),
		Y: max(0, min(o.Top, h-o.Height)),
	})
	m.host.Resize(w, h)
	m.record(m.pos.LastPlacement())
	m.status = fmt.Sprintf("viewport %gx%g", w, h)
}

func (m *PlayModel) View() string {
	var b strings.Builder

	title := "flexpos play"
	if m.name != "" {
		title += " · " + m.name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	var pl overlay.Placement
	if m.placed {
		pl = m.last
	}
	scene := render.NewScene(m.host.Geometry(m.pos.Config().ViewportMargin), pl)
	b.WriteString(scene.Draw(m.cols, m.rows).Render(m.styles))
	b.WriteString("\n")

	b.WriteString(StyleValue.Render(render.Describe(pl)))
	if m.change != nil {
		v := m.change.ScrollableView
		if v.IsOriginClipped || v.IsOverlayClipped {
			b.WriteString(StyleWarning.Render(" clipped"))
		}
	}
	if m.status != "" {
		b.WriteString(StyleDim.Render("  " + m.status))
	}
	b.WriteString("\n")

	cfg := m.pos.Config()
	flags := []string{
		flag("push", cfg.Push),
		flag("flexible", cfg.FlexibleDimensions),
		flag("lock", cfg.PositionLocked),
		flag("grow", cfg.GrowAfterOpen),
		flag("rtl", m.host.Viewport.RTL),
	}
	b.WriteString(strings.Join(flags, " "))
	b.WriteString(helpStyle.Render("   arrows move  +/- size  p f L g r toggle  x hide  q quit"))
	return b.String()
}

func flag(name string, on bool) string {
	if on {
		return flagOnStyle.Render("[" + name + "]")
	}
	return flagOffStyle.Render("[" + name + "]")
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
