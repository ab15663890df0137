package terminal

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bryanwahyu/fraudscope/internal/application/render"
)

// Renderer writes view models as styled text.
type Renderer struct {
	w io.Writer
	s Styles
}

// New returns a renderer writing to w.
func New(w io.Writer, s Styles) *Renderer {
	return &Renderer{w: w, s: s}
}

// clean drops escape sequences and control characters from backend text so
// it cannot drive the terminal. Everything printable passes through as is.
func (r *Renderer) clean(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(c rune) rune {
		if c != '\n' && c != '\t' && unicode.IsControl(c) {
			return -1
		}
		return c
	}, s)
}

// Page writes every section. The raw JSON block is included when withRaw is
// set.
func (r *Renderer) Page(p render.PageView, withRaw bool) error {
	var sb strings.Builder
	r.customer(&sb, p.Customer)
	r.transactions(&sb, p.Transactions)
	r.features(&sb, p.Features)
	r.findings(&sb, p.Findings)
	r.draft(&sb, p.Draft)
	r.routing(&sb, p.Routing)
	if withRaw {
		r.raw(&sb, p.Raw)
	}
	_, err := io.WriteString(r.w, sb.String())
	return err
}

// RawJSON writes only the pretty-printed original object.
func (r *Renderer) RawJSON(v render.RawView) error {
	_, err := fmt.Fprintln(r.w, v.JSON)
	return err
}

// Customers writes one customer name per line.
func (r *Renderer) Customers(names []string) error {
	var sb strings.Builder
	if len(names) == 0 {
		sb.WriteString(r.s.Muted.Render("고객이 없습니다."))
		sb.WriteString("\n")
	}
	for _, n := range names {
		sb.WriteString(r.clean(n))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(r.w, sb.String())
	return err
}

// Error writes the banner shown for a failed request.
func (r *Renderer) Error(err error) error {
	_, werr := fmt.Fprintln(r.w, r.s.Error.Render("오류: "+err.Error()))
	return werr
}

func (r *Renderer) title(sb *strings.Builder, t string) {
	sb.WriteString(r.s.Title.Render("■ " + t))
	sb.WriteString("\n")
}

func (r *Renderer) empty(sb *strings.Builder, msg string) {
	sb.WriteString(r.s.Muted.Render(msg))
	sb.WriteString("\n\n")
}

func (r *Renderer) rows(sb *strings.Builder, rows []render.Row) {
	width := 0
	for _, row := range rows {
		if w := lipgloss.Width(row.Label); w > width {
			width = w
		}
	}
	for _, row := range rows {
		label := r.s.Label.Width(width + 2).Render(row.Label)
		sb.WriteString(label)
		sb.WriteString(r.s.Value.Render(r.clean(row.Value)))
		sb.WriteString("\n")
	}
}

func (r *Renderer) table(sb *strings.Builder, t render.Table) {
	cells := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = make([]string, len(row))
		for j, c := range row {
			cells[i][j] = r.clean(c)
		}
	}
	sb.WriteString(renderTable(r.s, t.Headers, cells))
}

func (r *Renderer) customer(sb *strings.Builder, v render.CustomerView) {
	r.title(sb, v.Title)
	if v.IsEmpty() {
		r.empty(sb, v.Empty)
		return
	}
	r.rows(sb, v.Rows)
	sb.WriteString("\n")
}

func (r *Renderer) transactions(sb *strings.Builder, v render.TransactionView) {
	r.title(sb, v.Title)
	if v.IsEmpty() {
		r.empty(sb, v.Empty)
		return
	}
	r.table(sb, v.Table)
	sb.WriteString("\n")
}

func (r *Renderer) features(sb *strings.Builder, v render.FeatureView) {
	r.title(sb, v.Title)
	if v.IsEmpty() {
		r.empty(sb, v.Empty)
		return
	}
	r.rows(sb, v.Rows)
	if v.Beneficiaries != nil {
		sb.WriteString("\n")
		sb.WriteString(r.s.Sub.Render(render.TitleBeneficiaries))
		sb.WriteString("\n")
		r.table(sb, *v.Beneficiaries)
	}
	sb.WriteString("\n")
}

func (r *Renderer) findings(sb *strings.Builder, v render.FindingsView) {
	r.title(sb, v.Title)
	if v.IsEmpty() {
		r.empty(sb, v.Empty)
		return
	}
	if v.EvidenceEmpty != "" {
		sb.WriteString(r.s.Muted.Render(v.EvidenceEmpty))
		sb.WriteString("\n")
	}
	for _, ev := range v.Evidence {
		var card strings.Builder
		card.WriteString(r.s.Header.Render(r.clean(ev.Detector)))
		if ev.Badge != "" {
			card.WriteString(" ")
			card.WriteString(r.s.Badge.Render(ev.Badge))
		}
		card.WriteString("\n")
		card.WriteString(r.clean(ev.Summary))
		if ev.Window != "" {
			card.WriteString("\n")
			card.WriteString(r.s.Muted.Render(r.clean(ev.Window)))
		}
		if ev.Metrics != "" {
			card.WriteString("\n")
			card.WriteString(ev.Metrics)
		}
		sb.WriteString(r.s.Block.Render(card.String()))
		sb.WriteString("\n")
	}
	if v.HasScores {
		sb.WriteString(r.s.Sub.Render(render.TitleScores))
		sb.WriteString("\n")
		r.rows(sb, v.Scores)
	}
	sb.WriteString("\n")
}

func (r *Renderer) draft(sb *strings.Builder, v render.DraftView) {
	r.title(sb, v.Title)
	if v.IsEmpty() {
		r.empty(sb, v.Empty)
		return
	}
	r.rows(sb, []render.Row{v.RiskScore})
	if v.HasLaws {
		sb.WriteString(r.s.Label.Render(render.LabelLaws))
		sb.WriteString("\n")
		for _, law := range v.Laws {
			sb.WriteString("  • ")
			sb.WriteString(r.clean(law))
			sb.WriteString("\n")
		}
	}
	switch {
	case len(v.Sentences) > 0:
		sb.WriteString(r.s.Label.Render(render.LabelSentences))
		sb.WriteString("\n")
		for _, s := range v.Sentences {
			sb.WriteString(r.s.Block.Render(r.clean(s)))
			sb.WriteString("\n")
		}
	case v.Text != "":
		sb.WriteString(r.s.Label.Render(render.LabelText))
		sb.WriteString("\n")
		sb.WriteString(r.s.Block.Render(r.clean(v.Text)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func (r *Renderer) routing(sb *strings.Builder, v render.RoutingView) {
	r.title(sb, v.Title)
	if v.Route == nil {
		r.empty(sb, v.Empty)
		return
	}
	r.rows(sb, []render.Row{*v.Route})
	sb.WriteString("\n")
}

func (r *Renderer) raw(sb *strings.Builder, v render.RawView) {
	r.title(sb, v.Title)
	sb.WriteString(v.JSON)
	sb.WriteString("\n")
}
