package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xenking/alankar-storefront/internal/catalog"
	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/web"
)

const (
	cardWidth      = 30
	defaultColumns = 2
	gridHelp       = "←/→/↑/↓ move · enter open · / search · c category · m metal · g gender · x clear · n/p page · r retry · w contact · q quit"
	detailHelp     = "←/→ image · y copy link · s share · r retry · esc close"
)

// View renders the browser.
func (m Model) View() string {
	st := m.session.Catalog.State()
	detail := m.session.Detail.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.cfg.Brand))
	b.WriteString("  ")
	b.WriteString(m.searchLine(st))
	b.WriteString("\n")
	b.WriteString(m.filterLine(st.Filter))
	b.WriteString("\n\n")

	if detail.Open {
		b.WriteString(m.detailView(detail))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(detailHelp))
	} else {
		b.WriteString(m.gridView(st))
		b.WriteString("\n")
		b.WriteString(pageLine(st))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(gridHelp))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) searchLine(st catalog.State) string {
	if m.searching {
		return m.search.View()
	}
	if st.RawSearch == "" {
		return mutedStyle.Render("press / to search")
	}
	line := "search: " + filterValueStyle.Render(st.RawSearch)
	if m.session.Catalog.SearchPending() {
		line += " " + m.spinner.View()
	}
	return line
}

func (m Model) filterLine(f product.Filter) string {
	vs := m.session.Vocabulary()

	category, metal := "All", "All"
	if f.Category != "" {
		category = f.Category
	}
	if f.MetalType != "" {
		metal = f.MetalType
	}
	if v := vs.Vocabulary; v != nil {
		for _, c := range v.Categories {
			if c.Code == f.Category {
				category = c.DisplayName
			}
		}
		for _, mt := range v.MetalTypes {
			if mt.Code == f.MetalType {
				metal = mt.DisplayName
			}
		}
	}
	gender := f.GenderParam()
	if gender == "" {
		gender = product.GenderAll
	}

	parts := []string{
		filterLabelStyle.Render("category ") + filterValueStyle.Render(category),
		filterLabelStyle.Render("metal ") + filterValueStyle.Render(metal),
		filterLabelStyle.Render("gender ") + filterValueStyle.Render(gender),
	}
	line := strings.Join(parts, "  ")
	switch {
	case vs.Loading:
		line += "  " + m.spinner.View()
	case vs.Err != nil:
		line += "  " + errorStyle.Render("filters unavailable")
	}
	return line
}

func (m Model) gridView(st catalog.State) string {
	switch {
	case st.Result == nil && st.Err != nil:
		return errorStyle.Render("Could not load products: "+st.Err.Error()) + "\n" +
			mutedStyle.Render("Press r to retry.")
	case st.Result == nil:
		return m.spinner.View() + " Loading products..."
	case st.NoMatches():
		return mutedStyle.Render("No products found. Try another search or clear the filters (x).")
	}

	items := st.Items()
	cols := m.columns()
	var rows []string
	for start := 0; start < len(items); start += cols {
		end := min(start+cols, len(items))
		cards := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cards = append(cards, renderCard(items[i], i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	switch {
	case st.Err != nil:
		grid += "\n" + errorStyle.Render("Refresh failed: "+st.Err.Error()+" (r to retry)")
	case st.Loading:
		grid += "\n" + m.spinner.View() + " Updating..."
	}
	return grid
}

func (m Model) columns() int {
	if m.width <= 0 {
		return defaultColumns
	}
	return max(1, m.width/(cardWidth+2))
}

func renderCard(p product.Product, selected bool) string {
	name := p.Name
	if selected {
		name = selectedStyle.Render("› " + name)
	}
	lines := []string{
		name,
		mutedStyle.Render(p.Code + " · " + p.Category.DisplayName),
		web.FormatINR(p.Price),
	}
	if badges := p.Badges(); len(badges) > 0 {
		rendered := make([]string, len(badges))
		for i, badge := range badges {
			rendered[i] = badgeStyle.Render(badge)
		}
		lines = append(lines, strings.Join(rendered, " "))
	}

	border := lipgloss.NormalBorder()
	color := colorMuted
	if selected {
		border = lipgloss.ThickBorder()
		color = colorGold
	}
	return lipgloss.NewStyle().
		Width(cardWidth).
		Border(border).
		BorderForeground(color).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func pageLine(st catalog.State) string {
	if st.Result == nil || st.Total() == 0 {
		return ""
	}
	w := st.Window

	parts := make([]string, 0, len(w.Pages)+2)
	if w.HasPrev {
		parts = append(parts, "‹ prev")
	}
	for _, p := range w.Pages {
		label := strconv.Itoa(p)
		if p == w.Page {
			label = currentPageStyle.Render("[" + label + "]")
		}
		parts = append(parts, label)
	}
	if w.HasNext {
		parts = append(parts, "next ›")
	}
	return strings.Join(parts, " ") + mutedStyle.Render(
		fmt.Sprintf("   Page %d of %d · %d products", w.Page, w.TotalPages, st.Total()),
	)
}

func (m Model) detailView(st catalog.DetailState) string {
	p := st.Product

	lines := []string{
		titleStyle.Render(p.Name),
		mutedStyle.Render(p.Code),
		"",
		web.FormatINR(p.Price),
	}
	var meta []string
	for _, v := range []string{p.Category.DisplayName, p.MetalType.DisplayName, p.Gender, p.Weight} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, " · "))
	}
	if len(p.Sizes) > 0 {
		lines = append(lines, "Sizes: "+strings.Join(p.Sizes, ", "))
	}
	if url := st.ImageURL(); url != "" {
		label := "Image"
		if st.CanNavigateImages() {
			label = fmt.Sprintf("Image %d/%d", st.Image+1, len(p.Images))
		}
		lines = append(lines, "", mutedStyle.Render(label+": ")+url)
	}

	switch {
	case st.Loading:
		lines = append(lines, "", m.spinner.View()+" Loading details...")
	case st.Err != nil:
		lines = append(lines, "", errorStyle.Render("Could not load details: "+st.Err.Error()+" (r to retry)"))
	case p.Description != "":
		width := 72
		if m.width > 0 {
			width = max(30, min(width, m.width-8))
		}
		lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(p.Description))
	}

	lines = append(lines, "", mutedStyle.Render("Link: ")+m.productLink(st.Code))
	return modalStyle.Render(strings.Join(lines, "\n"))
}
