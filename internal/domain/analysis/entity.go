package analysis

import "github.com/bryanwahyu/fraudscope/internal/jsonx"

// Section is an optional part of an analysis result: either Present with a
// value or Absent. The normalizer produces it once; renderers only call Get.
type Section[T any] struct {
	value   T
	present bool
}

// Present wraps a validated value.
func Present[T any](v T) Section[T] {
	return Section[T]{value: v, present: true}
}

// Absent is the explicit "not there" marker.
func Absent[T any]() Section[T] {
	return Section[T]{}
}

// Get returns the value and whether the section is present.
func (s Section[T]) Get() (T, bool) {
	return s.value, s.present
}

// IsPresent reports whether the section carries a value.
func (s Section[T]) IsPresent() bool {
	return s.present
}

// Ledger column keys, in display order.
const (
	ColAccountNo           = "계좌번호"
	ColTimestamp           = "거래일시"
	ColDirection           = "입출금여부"
	ColAmount              = "금액"
	ColCode                = "적요코드"
	ColCounterpartyBank    = "상대은행"
	ColCounterpartyAccount = "상대계좌"
	ColCounterpartyName    = "상대계좌명"
	ColMemo                = "통장표시내용"
)

// LedgerColumns is the fixed transaction column set.
var LedgerColumns = []string{
	ColAccountNo,
	ColTimestamp,
	ColDirection,
	ColAmount,
	ColCode,
	ColCounterpartyBank,
	ColCounterpartyAccount,
	ColCounterpartyName,
	ColMemo,
}

// Transaction is one ledger row. Values keep their JSON types (string,
// json.Number, bool, nil); a missing key is nil.
type Transaction struct {
	AccountNo           any
	Timestamp           any
	Direction           any
	Amount              any
	Code                any
	CounterpartyBank    any
	CounterpartyAccount any
	CounterpartyName    any
	Memo                any
}

// Beneficiary is a counterparty aggregated with the amount it received.
type Beneficiary struct {
	Name   string
	Amount any
}

// FeatureSummary holds the derived behavioral features of a customer.
type FeatureSummary struct {
	SumIn             any
	SumOut            any
	PassThroughRatio  any
	StartTS           any
	EndTS             any
	PayCount          any
	PayMin            any
	PayMedian         any
	PayMax            any
	NightPayCount     any
	FirstTxDeltaHours any
	OpenToCloseHours  any
	HasMemo           any

	TopBeneficiary Section[string]
	Beneficiaries  Section[[]Beneficiary]
}

// Window is the time range an evidence item covers.
type Window struct {
	Start any
	End   any
}

// Evidence is one detector finding.
type Evidence struct {
	Detector string
	Summary  string
	// Severity is present only when the backend sent a JSON number.
	Severity Section[float64]
	Window   Section[Window]
	Metrics  Section[*jsonx.Object]
}

// Findings is the evidence collection plus optional scores.
type Findings struct {
	Evidences []Evidence
	Scores    Section[*jsonx.Object]
}

// DraftBody is the resolved summary of a report draft: Sentences, Text, or nil.
type DraftBody interface {
	draftBody()
}

// Sentences is an ordered list of summary sentences.
type Sentences []string

// Text is a single draft text blob.
type Text string

func (Sentences) draftBody() {}
func (Text) draftBody()      {}

// Draft is the generated report draft.
type Draft struct {
	RiskScore any
	Laws      Section[[]string]
	Body      DraftBody
	Route     Section[string]
}

// Result is a normalized analysis result. Raw keeps the unvalidated value
// for the raw-JSON fallback.
type Result struct {
	Raw any

	Customer     Section[*jsonx.Object]
	Transactions Section[[]Transaction]
	Features     Section[FeatureSummary]
	Findings     Section[Findings]
	Draft        Section[Draft]
}
