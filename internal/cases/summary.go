package cases

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// Status strings shared by summaries.
const (
	StatusEmptyBox = "Zero Convictions (Empty conviction box)"
	StatusNoBox    = "Zero Convictions (No conviction box found)"
	StatusUnknown  = "Status Unknown"
)

// Status derives the headline status of s. A missing conviction box counts
// as evidence of zero convictions.
func Status(s model.ConvictionSummary) string {
	switch {
	case s.ConvictionBoxFound && s.ConvictionBoxEmpty:
		return StatusEmptyBox
	case !s.ConvictionBoxFound && s.Convicted == 0:
		return StatusNoBox
	case s.Convicted > 0:
		if s.Pending > 0 {
			return fmt.Sprintf("Some Convicted (%d convicted, %d pending)", s.Convicted, s.Pending)
		}
		return fmt.Sprintf("Convicted (%d cases)", s.Convicted)
	case s.Acquitted > 0:
		if s.Pending > 0 {
			return fmt.Sprintf("Some Acquitted (%d acquitted, %d pending)", s.Acquitted, s.Pending)
		}
		return fmt.Sprintf("Acquitted (%d cases)", s.Acquitted)
	case s.Pending > 0:
		return fmt.Sprintf("All Pending (%d cases)", s.Pending)
	default:
		return StatusUnknown
	}
}

var reFirstNumber = regexp.MustCompile(`\d+`)

// DeclaredCount returns the case count from the first field whose key
// mentions criminal cases and whose value holds a number.
func DeclaredCount(bag *model.FieldBag) int {
	for _, f := range bag.Fields() {
		key := strings.ToLower(f.Key)
		if !strings.Contains(key, "criminal") && !strings.Contains(key, "cases") {
			continue
		}
		if m := reFirstNumber.FindString(f.Value); m != "" {
			n, err := strconv.Atoi(m)
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// Summarize reconciles the declared case count in bag with the classified
// summary. available is false when no related-records block was read.
func Summarize(bag *model.FieldBag, s model.ConvictionSummary, available bool) model.CriminalSummary {
	declared := DeclaredCount(bag)
	out := model.CriminalSummary{DeclaredCases: declared}

	if !available {
		if declared > 0 {
			out.Status = fmt.Sprintf("%d cases (conviction status not available)", declared)
			out.DetailedSummary = fmt.Sprintf("Total Cases: %d | Conviction Status: Not Available", declared)
			out.Breakdown.Unknown = declared
		} else {
			out.Status = "No criminal cases"
			out.DetailedSummary = "No criminal cases found"
		}
		return out
	}

	out.Status = s.Status
	out.Breakdown = model.CaseBreakdown{
		Convicted: s.Convicted,
		Pending:   s.Pending,
		Acquitted: s.Acquitted,
		Unknown:   max(0, declared-s.Convicted-s.Pending-s.Acquitted),
	}

	if declared == 0 {
		out.DetailedSummary = "No criminal cases found"
		return out
	}
	parts := []string{fmt.Sprintf("Total Cases: %d", declared)}
	if strings.Contains(s.Status, "Zero Convictions") || s.Convicted == 0 {
		parts = append(parts, "Convictions: 0")
	} else {
		parts = append(parts, fmt.Sprintf("Convicted: %d", s.Convicted))
	}
	if s.Pending > 0 {
		parts = append(parts, fmt.Sprintf("Pending: %d", s.Pending))
	}
	if s.Acquitted > 0 {
		parts = append(parts, fmt.Sprintf("Acquitted: %d", s.Acquitted))
	}
	out.DetailedSummary = strings.Join(parts, " | ")
	return out
}
