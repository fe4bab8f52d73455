// Package tui is a terminal catalog browser driven by a catalog.Session.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/catalog"
	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/share"
)

// Config configures the browser.
type Config struct {
	// PublicURL is the storefront page that share links point to.
	PublicURL string
	Brand     string
	Phone     string
	Clipboard share.Clipboard
	Logger    *zap.Logger
}

type changedMsg struct{}

type copiedMsg struct {
	link string
	ok   bool
}

// Model is the bubbletea model of the catalog browser.
type Model struct {
	ctx     context.Context
	session *catalog.Session
	cfg     Config
	lg      *zap.Logger

	search    textinput.Model
	searching bool
	spinner   spinner.Model
	cursor    int
	width     int
	height    int
	status    string
}

// New creates a browser over a started session.
func New(ctx context.Context, session *catalog.Session, cfg Config) Model {
	if cfg.Brand == "" {
		cfg.Brand = share.DefaultBrand
	}
	lg := cfg.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Search jewellery..."
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	return Model{
		ctx:     ctx,
		session: session,
		cfg:     cfg,
		lg:      lg,
		search:  ti,
		spinner: sp,
	}
}

// Init starts the spinner and the change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

// listen waits for the next session change.
func (m Model) listen() tea.Cmd {
	ctx, ch := m.ctx, m.session.Changes()
	return func() tea.Msg {
		select {
		case <-ch:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(20, min(60, msg.Width-20))
		return m, nil

	case changedMsg:
		m.clampCursor()
		return m, m.listen()

	case copiedMsg:
		if msg.ok {
			m.status = "Link copied: " + msg.link
		} else {
			m.status = "Copy failed. Link: " + msg.link
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	m.status = ""

	if m.searching {
		return m.handleSearchInput(msg)
	}
	// The open detail view holds the scroll lock; the grid underneath
	// does not react to keys until it is closed.
	if m.session.Scroll.Held() {
		return m.handleDetailKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != prev {
		m.cursor = 0
		m.session.Catalog.Type(v)
	}
	return m, cmd
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.session.Catalog

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.cursor = 0
			ctl.Type("")
		}
	case "left", "h":
		m.move(-1)
	case "right", "l":
		m.move(1)
	case "up", "k":
		m.move(-m.columns())
	case "down", "j":
		m.move(m.columns())
	case "enter":
		items := ctl.State().Items()
		if m.cursor < len(items) {
			m.session.OpenProduct(items[m.cursor])
		}
	case "n", "pgdown":
		m.cursor = 0
		ctl.NextPage()
	case "p", "pgup":
		m.cursor = 0
		ctl.PrevPage()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.cursor = 0
		ctl.SetPage(int(msg.Runes[0] - '0'))
	case "c":
		m.cycleFilter(func(f *product.Filter, v *product.Vocabulary) {
			f.Category = next(categoryOptions(v), f.Category)
		})
	case "m":
		m.cycleFilter(func(f *product.Filter, v *product.Vocabulary) {
			f.MetalType = next(metalOptions(v), f.MetalType)
		})
	case "g":
		f := ctl.State().Filter
		f.Gender = next(genderOptions(), f.Gender)
		m.cursor = 0
		ctl.SetFilter(f)
	case "x":
		m.cursor = 0
		ctl.SetFilter(product.Filter{})
	case "r":
		if m.session.Vocabulary().Err != nil {
			m.session.ReloadVocabulary()
		}
		ctl.Refresh()
	case "w":
		m.status = "WhatsApp: " + share.ContactURL(m.cfg.Phone, "")
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	detail := m.session.Detail

	switch msg.String() {
	case "esc", "q", "backspace":
		detail.Close()
	case "right", "l":
		detail.NextImage()
	case "left", "h":
		detail.PrevImage()
	case "r":
		detail.Retry(m.ctx)
	case "y":
		return m, m.copyLink(m.productLink(detail.State().Code))
	case "s":
		st := detail.State()
		link := m.productLink(st.Code)
		m.status = "WhatsApp: " + share.WhatsAppURL(st.Product, link, m.cfg.Brand)
	}
	return m, nil
}

func (m Model) productLink(code string) string {
	return share.ProductLink(m.cfg.PublicURL, code)
}

func (m Model) copyLink(link string) tea.Cmd {
	ctx, clip, lg := m.ctx, m.cfg.Clipboard, m.lg
	return func() tea.Msg {
		return copiedMsg{link: link, ok: share.CopyLink(ctx, clip, link, lg)}
	}
}

func (m *Model) cycleFilter(fn func(*product.Filter, *product.Vocabulary)) {
	vs := m.session.Vocabulary()
	if vs.Vocabulary == nil {
		if vs.Err != nil {
			m.status = "Filters unavailable, press r to retry"
		}
		return
	}
	ctl := m.session.Catalog
	f := ctl.State().Filter
	fn(&f, vs.Vocabulary)
	m.cursor = 0
	ctl.SetFilter(f)
}

func (m *Model) move(delta int) {
	n := len(m.session.Catalog.State().Items())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
}

func (m *Model) clampCursor() {
	n := len(m.session.Catalog.State().Items())
	m.cursor = min(m.cursor, max(n-1, 0))
}

// next returns the option after current, wrapping to the first.
func next(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func categoryOptions(v *product.Vocabulary) []string {
	opts := []string{""}
	for _, c := range v.Categories {
		opts = append(opts, c.Code)
	}
	return opts
}

func metalOptions(v *product.Vocabulary) []string {
	opts := []string{""}
	for _, mt := range v.MetalTypes {
		opts = append(opts, mt.Code)
	}
	return opts
}

// genderOptions uses "" for "All" so that clearing the gender restores the
// unfiltered query.
func genderOptions() []string {
	opts := []string{""}
	for _, g := range product.Genders {
		if g != product.GenderAll {
			opts = append(opts, g)
		}
	}
	return opts
}
