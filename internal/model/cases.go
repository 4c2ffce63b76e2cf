package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Disposition is the judicial outcome assigned to a case record.
type Disposition int

// Dispositions in classification precedence order.
const (
	DispositionUnknown Disposition = iota
	DispositionConvicted
	DispositionAcquitted
	DispositionPending
)

// String returns the display label for d.
func (d Disposition) String() string {
	switch d {
	case DispositionConvicted:
		return "Convicted"
	case DispositionAcquitted:
		return "Acquitted"
	case DispositionPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Disposition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Disposition) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "convicted":
		*d = DispositionConvicted
	case "acquitted":
		*d = DispositionAcquitted
	case "pending":
		*d = DispositionPending
	case "unknown", "":
		*d = DispositionUnknown
	default:
		return eris.Errorf("model: unknown disposition %q", string(b))
	}
	return nil
}

// CaseRecord is one classified row of a related-records block.
type CaseRecord struct {
	CaseID      string      `json:"caseId"`
	RawText     string      `json:"rawText"`
	TableIndex  int         `json:"tableIndex"`
	RowIndex    int         `json:"rowIndex"`
	Disposition Disposition `json:"disposition"`
}

// ConvictionSummary aggregates case records into a conviction status.
type ConvictionSummary struct {
	TotalCases         int          `json:"totalCases"`
	Convicted          int          `json:"convicted"`
	Pending            int          `json:"pending"`
	Acquitted          int          `json:"acquitted"`
	Unknown            int          `json:"unknown"`
	ConvictionBoxFound bool         `json:"convictionBoxFound"`
	ConvictionBoxEmpty bool         `json:"convictionBoxEmpty"`
	Status             string       `json:"status"`
	Cases              []CaseRecord `json:"cases,omitempty"`
}

// CaseBreakdown splits a declared case count by disposition.
type CaseBreakdown struct {
	Convicted int `json:"convicted"`
	Pending   int `json:"pending"`
	Acquitted int `json:"acquitted"`
	Unknown   int `json:"unknown"`
}

// CriminalSummary reconciles the declared case count with the classified
// breakdown from related records.
type CriminalSummary struct {
	DeclaredCases   int           `json:"total_cases_count"`
	Status          string        `json:"cases_with_conviction_status"`
	Breakdown       CaseBreakdown `json:"conviction_breakdown"`
	DetailedSummary string        `json:"detailed_summary"`
}
