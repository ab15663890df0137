package analysis

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bryanwahyu/fraudscope/internal/jsonx"
)

// Field names as the backend sends them. Older backends used the aliases.
var (
	keysCustomer   = []string{"customer_raw", "customer"}
	keysTx         = []string{"tx_raw", "transactions"}
	keysFeatures   = []string{"features"}
	keysFindings   = []string{"findings"}
	keysDraft      = []string{"draft"}
	keysEvidences  = []string{"evidences", "evidence"}
	keysHasMemo    = []string{"has_kppay_memo", "has_kpay_memo"}
	keysTopBenef   = []string{"top_beneficiary_masked", "top_beneficiary"}
	keysDraftText  = []string{"draft_text", "text"}
	keysWrapResult = "result"
)

// Decode parses a run response body and normalizes it. Only malformed JSON is
// an error; missing or mistyped sections become Absent.
func Decode(r io.Reader) (*Result, error) {
	raw, err := jsonx.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}
	return Normalize(raw), nil
}

// Normalize coerces an arbitrary decoded JSON value into a Result. It never
// fails. A truthy "result" key is unwrapped first.
func Normalize(raw any) *Result {
	raw = Unwrap(raw)
	res := &Result{Raw: raw}

	obj, ok := raw.(*jsonx.Object)
	if !ok {
		return res
	}

	if v, ok := lookup(obj, keysCustomer); ok {
		if o, ok := v.(*jsonx.Object); ok {
			res.Customer = Present(o)
		}
	}
	if v, ok := lookup(obj, keysTx); ok {
		if arr, ok := v.([]any); ok && len(arr) > 0 {
			res.Transactions = Present(normalizeLedger(arr))
		}
	}
	if v, ok := lookup(obj, keysFeatures); ok {
		if o, ok := v.(*jsonx.Object); ok {
			res.Features = Present(normalizeFeatures(o))
		}
	}
	if v, ok := lookup(obj, keysFindings); ok {
		if o, ok := v.(*jsonx.Object); ok {
			res.Findings = Present(normalizeFindings(o))
		}
	}
	if v, ok := lookup(obj, keysDraft); ok {
		if o, ok := v.(*jsonx.Object); ok {
			res.Draft = Present(normalizeDraft(o))
		}
	}
	return res
}

// Unwrap prefers the value under "result" when the response wraps it.
func Unwrap(raw any) any {
	obj, ok := raw.(*jsonx.Object)
	if !ok {
		return raw
	}
	if inner, ok := obj.Get(keysWrapResult); ok && truthy(inner) {
		return inner
	}
	return raw
}

func normalizeLedger(arr []any) []Transaction {
	out := make([]Transaction, 0, len(arr))
	for _, item := range arr {
		row, _ := item.(*jsonx.Object)
		out = append(out, Transaction{
			AccountNo:           field(row, ColAccountNo),
			Timestamp:           field(row, ColTimestamp),
			Direction:           field(row, ColDirection),
			Amount:              field(row, ColAmount),
			Code:                field(row, ColCode),
			CounterpartyBank:    field(row, ColCounterpartyBank),
			CounterpartyAccount: field(row, ColCounterpartyAccount),
			CounterpartyName:    field(row, ColCounterpartyName),
			Memo:                field(row, ColMemo),
		})
	}
	return out
}

func normalizeFeatures(o *jsonx.Object) FeatureSummary {
	f := FeatureSummary{
		SumIn:             field(o, "sum_in"),
		SumOut:            field(o, "sum_out"),
		PassThroughRatio:  field(o, "pass_through_ratio"),
		StartTS:           field(o, "start_ts"),
		EndTS:             field(o, "end_ts"),
		PayCount:          field(o, "pay_count"),
		PayMin:            field(o, "pay_min"),
		PayMedian:         field(o, "pay_median"),
		PayMax:            field(o, "pay_max"),
		NightPayCount:     field(o, "night_pay_count"),
		FirstTxDeltaHours: field(o, "first_tx_delta_hours"),
		OpenToCloseHours:  field(o, "open_to_close_hours"),
	}
	f.HasMemo, _ = lookup(o, keysHasMemo)

	if v, ok := lookup(o, keysTopBenef); ok {
		if s := Stringify(v); truthy(v) && s != "" {
			f.TopBeneficiary = Present(s)
		}
	}
	if v, ok := o.Get("beneficiaries"); ok {
		if m, ok := v.(*jsonx.Object); ok {
			list := make([]Beneficiary, 0, m.Len())
			for _, name := range m.Keys() {
				amount, _ := m.Get(name)
				list = append(list, Beneficiary{Name: name, Amount: amount})
			}
			f.Beneficiaries = Present(list)
		}
	}
	return f
}

func normalizeFindings(o *jsonx.Object) Findings {
	var f Findings
	if v, ok := lookup(o, keysEvidences); ok {
		if arr, ok := v.([]any); ok {
			f.Evidences = make([]Evidence, 0, len(arr))
			for _, item := range arr {
				f.Evidences = append(f.Evidences, normalizeEvidence(item))
			}
		}
	}
	if v, ok := o.Get("scores"); ok {
		if m, ok := v.(*jsonx.Object); ok {
			f.Scores = Present(m)
		}
	}
	return f
}

func normalizeEvidence(item any) Evidence {
	o, _ := item.(*jsonx.Object)
	ev := Evidence{
		Detector: Stringify(field(o, "detector")),
		Summary:  Stringify(field(o, "summary")),
	}
	// a string severity is dropped rather than shown
	if n, ok := field(o, "severity").(json.Number); ok {
		if sev, ok := ParseNumber(n); ok {
			ev.Severity = Present(sev)
		}
	}
	if w, ok := field(o, "window").(*jsonx.Object); ok {
		ev.Window = Present(Window{Start: field(w, "start"), End: field(w, "end")})
	}
	if m, ok := field(o, "metrics").(*jsonx.Object); ok {
		ev.Metrics = Present(m)
	}
	return ev
}

func normalizeDraft(o *jsonx.Object) Draft {
	d := Draft{RiskScore: field(o, "risk_score")}

	if arr, ok := field(o, "laws").([]any); ok {
		laws := make([]string, 0, len(arr))
		for _, l := range arr {
			laws = append(laws, Stringify(l))
		}
		d.Laws = Present(laws)
	}

	// non-empty sentences win over draft_text
	if arr, ok := field(o, "sentences").([]any); ok && len(arr) > 0 {
		s := make(Sentences, 0, len(arr))
		for _, item := range arr {
			s = append(s, Stringify(item))
		}
		d.Body = s
	} else if v, ok := lookup(o, keysDraftText); ok && truthy(v) {
		d.Body = Text(Stringify(v))
	}

	if v := field(o, "route"); truthy(v) {
		d.Route = Present(Stringify(v))
	}
	return d
}

// field returns the value at key, or nil when o is nil or lacks the key.
func field(o *jsonx.Object, key string) any {
	v, _ := o.Get(key)
	return v
}

// lookup returns the first key present among the aliases.
func lookup(o *jsonx.Object, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := o.Get(k); ok {
			return v, true
		}
	}
	return nil, false
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	}
	return true
}
