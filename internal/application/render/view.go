package render

// Section titles and empty states as shown to the operator.
const (
	TitleCustomer      = "고객 정보"
	TitleTransactions  = "거래 내역"
	TitleFeatures      = "특성 요약"
	TitleBeneficiaries = "수취인별 금액"
	TitleFindings      = "탐지 결과"
	TitleScores        = "스코어"
	TitleDraft         = "보고서 초안"
	TitleRouting       = "라우팅 정보"
	TitleRaw           = "원본 JSON 보기"

	EmptyCustomer     = "고객 정보가 없습니다."
	EmptyTransactions = "거래 내역이 없습니다."
	EmptyFeatures     = "특성 요약 정보가 없습니다."
	EmptyFindings     = "탐지 결과가 없습니다."
	EmptyEvidence     = "탐지 증거가 없습니다."
	EmptyDraft        = "보고서 초안이 없습니다."
	EmptyRouting      = "라우팅 정보가 없습니다."

	LabelLaws      = "관련 법조항"
	LabelSentences = "요약 문장"
	LabelText      = "요약"
	LabelRiskScore = "Risk Score"
	LabelRoute     = "Route"
	LabelCopy      = "복사"
)

// Row is one label/value pair of a key/value panel.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is a header row plus body rows of equal width.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Section is embedded by every section view. Empty is set when the section
// renders its empty state instead of content.
type Section struct {
	Title string `json:"title"`
	Empty string `json:"empty,omitempty"`
}

// IsEmpty reports whether the section shows its empty state.
func (s Section) IsEmpty() bool { return s.Empty != "" }

type CustomerView struct {
	Section
	Rows []Row `json:"rows"`
}

type TransactionView struct {
	Section
	Table Table `json:"table"`
}

type FeatureView struct {
	Section
	Rows []Row `json:"rows"`
	// Beneficiaries is nil when the backend sent no beneficiary mapping.
	Beneficiaries *Table `json:"beneficiaries,omitempty"`
}

// EvidenceCard is one detector finding. Badge is empty when the severity was
// not a number.
type EvidenceCard struct {
	Detector string `json:"detector"`
	Summary  string `json:"summary"`
	Badge    string `json:"badge,omitempty"`
	Window   string `json:"window,omitempty"`
	Metrics  string `json:"metrics,omitempty"`
}

type FindingsView struct {
	Section
	Evidence      []EvidenceCard `json:"evidence"`
	EvidenceEmpty string         `json:"evidence_empty,omitempty"`
	Scores        []Row          `json:"scores,omitempty"`
	HasScores     bool           `json:"has_scores"`
}

type DraftView struct {
	Section
	RiskScore Row      `json:"risk_score"`
	HasLaws   bool     `json:"has_laws"`
	Laws      []string `json:"laws,omitempty"`
	Sentences []string `json:"sentences,omitempty"`
	Text      string   `json:"text,omitempty"`
}

type RoutingView struct {
	Section
	Route *Row `json:"route,omitempty"`
}

// RawView is the last-resort debugging panel.
type RawView struct {
	Title     string `json:"title"`
	JSON      string `json:"json"`
	CopyLabel string `json:"copy_label"`
}

// PageView is every section of a result in display order.
type PageView struct {
	Customer     CustomerView    `json:"customer"`
	Transactions TransactionView `json:"transactions"`
	Features     FeatureView     `json:"features"`
	Findings     FindingsView    `json:"findings"`
	Draft        DraftView       `json:"draft"`
	Routing      RoutingView     `json:"routing"`
	Raw          RawView         `json:"raw"`
}
