// Package render projects a normalized analysis result into view models.
// Every function here is pure: no I/O, no mutation of the result.
package render

import (
	"fmt"

	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
	"github.com/bryanwahyu/fraudscope/internal/jsonx"
)

// Options carries the display choices that vary per deployment.
type Options struct {
	ScorePrecision analysis.ScorePrecision
}

// DefaultOptions formats the risk score with three decimals.
func DefaultOptions() Options {
	return Options{ScorePrecision: analysis.FixedScore(3)}
}

// Page renders every section of res.
func Page(res *analysis.Result, opts Options) PageView {
	if res == nil {
		res = &analysis.Result{}
	}
	return PageView{
		Customer:     Customer(res.Customer),
		Transactions: Transactions(res.Transactions),
		Features:     Features(res.Features),
		Findings:     Findings(res.Findings),
		Draft:        Draft(res.Draft, opts),
		Routing:      Routing(res.Draft),
		Raw:          Raw(res.Raw),
	}
}

// Customer renders the raw customer record as key/value rows.
func Customer(s analysis.Section[*jsonx.Object]) CustomerView {
	v := CustomerView{Section: Section{Title: TitleCustomer}}
	rec, ok := s.Get()
	if !ok {
		v.Empty = EmptyCustomer
		return v
	}
	v.Rows = make([]Row, 0, rec.Len())
	for _, k := range rec.Keys() {
		val, _ := rec.Get(k)
		v.Rows = append(v.Rows, Row{Label: k, Value: analysis.Stringify(val)})
	}
	return v
}

// Transactions renders the ledger with the fixed column set.
func Transactions(s analysis.Section[[]analysis.Transaction]) TransactionView {
	v := TransactionView{Section: Section{Title: TitleTransactions}}
	txs, ok := s.Get()
	if !ok {
		v.Empty = EmptyTransactions
		return v
	}

	headers := make([]string, len(analysis.LedgerColumns))
	copy(headers, analysis.LedgerColumns)
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			analysis.Stringify(tx.AccountNo),
			analysis.Stringify(tx.Timestamp),
			analysis.Stringify(tx.Direction),
			analysis.FormatGroupedNumber(tx.Amount),
			analysis.Stringify(tx.Code),
			analysis.MaskAccountLike(tx.CounterpartyBank),
			analysis.MaskAccountLike(tx.CounterpartyAccount),
			analysis.Stringify(tx.CounterpartyName),
			analysis.Stringify(tx.Memo),
		})
	}
	v.Table = Table{Headers: headers, Rows: rows}
	return v
}

// Features renders the feature summary rows and the beneficiary table.
func Features(s analysis.Section[analysis.FeatureSummary]) FeatureView {
	v := FeatureView{Section: Section{Title: TitleFeatures}}
	f, ok := s.Get()
	if !ok {
		v.Empty = EmptyFeatures
		return v
	}

	str := analysis.Stringify
	v.Rows = []Row{
		{"총입금", analysis.FormatGroupedNumber(f.SumIn)},
		{"총출금", analysis.FormatGroupedNumber(f.SumOut)},
		{"패스스루비율", str(f.PassThroughRatio)},
		{"기간", fmt.Sprintf("%s ~ %s", str(f.StartTS), str(f.EndTS))},
		{"거래건수(PAY)", str(f.PayCount)},
		{"PAY 최소/중앙값/최대", fmt.Sprintf("%s / %s / %s", str(f.PayMin), str(f.PayMedian), str(f.PayMax))},
		{"야간거래건수", str(f.NightPayCount)},
		{"개설→첫거래(시간)", analysis.FormatDurationHours(f.FirstTxDeltaHours)},
		{"개설→폐쇄(시간)", analysis.FormatDurationHours(f.OpenToCloseHours)},
		{"KPay 메모 존재", str(f.HasMemo)},
	}
	if top, ok := f.TopBeneficiary.Get(); ok {
		v.Rows = append(v.Rows, Row{"최다 수취인", top})
	}

	if list, ok := f.Beneficiaries.Get(); ok {
		t := &Table{Headers: []string{"수취인", "금액"}, Rows: make([][]string, 0, len(list))}
		for _, b := range list {
			t.Rows = append(t.Rows, []string{b.Name, beneficiaryAmount(b.Amount)})
		}
		v.Beneficiaries = t
	}
	return v
}

// beneficiaryAmount groups anything that coerces to a number and keeps the
// original string form otherwise.
func beneficiaryAmount(v any) string {
	if n, ok := analysis.CoerceNumber(v); ok {
		return analysis.FormatGroupedNumber(n)
	}
	return analysis.Stringify(v)
}

// Findings renders evidence cards and scores.
func Findings(s analysis.Section[analysis.Findings]) FindingsView {
	v := FindingsView{Section: Section{Title: TitleFindings}}
	f, ok := s.Get()
	if !ok {
		v.Empty = EmptyFindings
		return v
	}

	if len(f.Evidences) == 0 {
		v.EvidenceEmpty = EmptyEvidence
	}
	v.Evidence = make([]EvidenceCard, 0, len(f.Evidences))
	for _, ev := range f.Evidences {
		card := EvidenceCard{Detector: ev.Detector, Summary: ev.Summary}
		if sev, ok := ev.Severity.Get(); ok {
			card.Badge = "severity " + analysis.Stringify(sev)
		}
		if w, ok := ev.Window.Get(); ok {
			card.Window = fmt.Sprintf("%s ~ %s", analysis.Stringify(w.Start), analysis.Stringify(w.End))
		}
		if m, ok := ev.Metrics.Get(); ok {
			card.Metrics = indent(m)
		}
		v.Evidence = append(v.Evidence, card)
	}

	if scores, ok := f.Scores.Get(); ok {
		v.HasScores = true
		v.Scores = make([]Row, 0, scores.Len())
		for _, k := range scores.Keys() {
			val, _ := scores.Get(k)
			v.Scores = append(v.Scores, Row{Label: k, Value: analysis.Stringify(val)})
		}
	}
	return v
}

// Draft renders the report draft with the configured score precision.
func Draft(s analysis.Section[analysis.Draft], opts Options) DraftView {
	v := DraftView{Section: Section{Title: TitleDraft}}
	d, ok := s.Get()
	if !ok {
		v.Empty = EmptyDraft
		return v
	}

	v.RiskScore = Row{Label: LabelRiskScore, Value: analysis.ToFixedScore(d.RiskScore, opts.ScorePrecision)}
	if laws, ok := d.Laws.Get(); ok {
		v.HasLaws = true
		v.Laws = laws
	}

	switch body := d.Body.(type) {
	case analysis.Sentences:
		v.Sentences = []string(body)
	case analysis.Text:
		v.Text = string(body)
	case nil:
	}
	return v
}

// Routing renders the route label carried by the draft.
func Routing(s analysis.Section[analysis.Draft]) RoutingView {
	v := RoutingView{Section: Section{Title: TitleRouting}}
	d, ok := s.Get()
	if !ok {
		v.Empty = EmptyRouting
		return v
	}
	route, ok := d.Route.Get()
	if !ok {
		v.Empty = EmptyRouting
		return v
	}
	v.Route = &Row{Label: LabelRoute, Value: route}
	return v
}

// Raw pretty-prints the original object regardless of what normalization
// kept.
func Raw(raw any) RawView {
	return RawView{Title: TitleRaw, JSON: indent(raw), CopyLabel: LabelCopy}
}

func indent(v any) string {
	s, err := jsonx.Indent(v)
	if err != nil {
		return analysis.Stringify(v)
	}
	return s
}
