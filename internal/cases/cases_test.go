package cases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drewraw/social-record-platform/internal/model"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	cl, err := NewClassifier(DefaultConfig())
	require.NoError(t, err)
	return cl
}

func rows(cells ...[]string) []Row {
	out := make([]Row, len(cells))
	for i, c := range cells {
		out[i] = Row{TableIndex: 0, RowIndex: i, Cells: c}
	}
	return out
}

func TestClassify_SomeConvicted(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"1", "FIR No. 12/2019 under IPC 420", "Pending before court"},
		[]string{"2", "Case No. 45/2020 under IPC 323", "Pending trial at sessions"},
		[]string{"3", "Case No. 7/2015 under IPC 302", "Convicted by trial court"},
	))

	assert.Equal(t, 1, s.Convicted)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 0, s.Acquitted)
	assert.Equal(t, 3, s.TotalCases)
	assert.True(t, s.ConvictionBoxFound)
	assert.False(t, s.ConvictionBoxEmpty)
	assert.Equal(t, "Some Convicted (1 convicted, 2 pending)", s.Status)

	require.Len(t, s.Cases, 3)
	assert.Equal(t, "3", s.Cases[2].CaseID)
	assert.Equal(t, model.DispositionConvicted, s.Cases[2].Disposition)
	assert.Equal(t, 2, s.Cases[2].RowIndex)
}

func TestClassify_NoBoxMeansZeroConvictions(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"FIR No. 12/2019 under IPC 420", "Pending before court"},
		[]string{"Complaint filed at Kalpetta station"},
	))

	assert.False(t, s.ConvictionBoxFound)
	assert.Equal(t, 0, s.Convicted)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Unknown)
	assert.Equal(t, StatusNoBox, s.Status)
}

func TestClassify_EmptyBoxIsDistinct(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"Conviction", "-", "nil"},
		[]string{"FIR No. 12/2019 under IPC 420"},
	))

	assert.True(t, s.ConvictionBoxFound)
	assert.True(t, s.ConvictionBoxEmpty)
	assert.Equal(t, 1, s.Unknown)
	assert.Equal(t, StatusEmptyBox, s.Status)
}

func TestClassify_PendingCaseLeavesBoxEmpty(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"Conviction", "-", "nil"},
		[]string{"FIR No. 12/2019 under IPC 420", "Pending before court"},
	))

	assert.True(t, s.ConvictionBoxFound)
	assert.True(t, s.ConvictionBoxEmpty)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, StatusEmptyBox, s.Status)
}

func TestClassify_DescriptiveEmptyBoxLabels(t *testing.T) {
	t.Parallel()

	labels := []string{"Cases where convicted", "Details of conviction", "Punishment imposed (if any)"}
	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			s := newClassifier(t).Classify(rows(
				[]string{label, "-", "nil"},
				[]string{"Case No. 45/2020 under IPC 323", "Pending trial at sessions"},
			))

			assert.True(t, s.ConvictionBoxFound)
			assert.True(t, s.ConvictionBoxEmpty)
			assert.Equal(t, 0, s.Convicted)
			assert.Equal(t, 1, s.TotalCases)
			assert.Equal(t, StatusEmptyBox, s.Status)
		})
	}
}

func TestClassify_DescriptiveBoxLabelWithData(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"Cases where convicted", "IPC 302, sessions court Wayanad, 2015"},
	))

	assert.True(t, s.ConvictionBoxFound)
	assert.False(t, s.ConvictionBoxEmpty)
	assert.Equal(t, 1, s.Convicted)
	assert.Equal(t, "Convicted (1 cases)", s.Status)
}

func TestClassify_EmptyBoxWithoutCases(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"Convicted", "-", "NIL"},
		[]string{"Sentence", "n/a"},
	))

	assert.True(t, s.ConvictionBoxFound)
	assert.True(t, s.ConvictionBoxEmpty)
	assert.Equal(t, 0, s.TotalCases)
	assert.Equal(t, StatusEmptyBox, s.Status)
	assert.NotEqual(t, StatusNoBox, s.Status)
}

func TestClassify_EmptyBlock(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(nil)
	assert.Equal(t, StatusNoBox, s.Status)
	assert.Equal(t, 0, s.TotalCases)
	assert.Empty(t, s.Cases)
}

func TestClassify_ShortCellsIgnored(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"Pending", "Acquitted"},
	))
	assert.Equal(t, 0, s.TotalCases)
}

func TestClassify_PrecedenceWithinRow(t *testing.T) {
	t.Parallel()

	s := newClassifier(t).Classify(rows(
		[]string{"Accused was acquitted in 2012", "Appeal pending in High Court"},
	))
	require.Len(t, s.Cases, 1)
	assert.Equal(t, model.DispositionAcquitted, s.Cases[0].Disposition)
	assert.Equal(t, "case_1", s.Cases[0].CaseID)
	assert.Equal(t, StatusNoBox, s.Status)
}

func TestClassify_CustomRules(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Rules = []Rule{{Disposition: model.DispositionPending, Terms: []string{"sub judice"}}}
	cl, err := NewClassifier(cfg)
	require.NoError(t, err)

	s := cl.Classify(rows(
		[]string{"Punishment", "Fine of Rs 500 paid"},
		[]string{"Matter is sub judice since 2020"},
	))
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, "All Pending (1 cases)", s.Status)
}

func TestNewClassifier_BadMarker(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.UnknownMarker = "(unclosed"
	_, err := NewClassifier(cfg)
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   model.ConvictionSummary
		want string
	}{
		{"empty box", model.ConvictionSummary{ConvictionBoxFound: true, ConvictionBoxEmpty: true, Pending: 2}, StatusEmptyBox},
		{"no box", model.ConvictionSummary{Pending: 2}, StatusNoBox},
		{"convicted", model.ConvictionSummary{ConvictionBoxFound: true, Convicted: 2}, "Convicted (2 cases)"},
		{"convicted no box", model.ConvictionSummary{Convicted: 1, Pending: 1}, "Some Convicted (1 convicted, 1 pending)"},
		{"acquitted", model.ConvictionSummary{ConvictionBoxFound: true, Acquitted: 1, Pending: 3}, "Some Acquitted (1 acquitted, 3 pending)"},
		{"pending", model.ConvictionSummary{ConvictionBoxFound: true, Pending: 3}, "All Pending (3 cases)"},
		{"unknown", model.ConvictionSummary{ConvictionBoxFound: true, Unknown: 1}, StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Status(tt.in))
		})
	}
}

func bagWith(fields ...model.Field) *model.FieldBag {
	bag := model.NewFieldBag()
	for _, f := range fields {
		bag.SetIfAbsent(f)
	}
	return bag
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	bag := bagWith(
		model.Field{Key: "Education", Value: "Graduate"},
		model.Field{Key: "Criminal Cases", Value: "Declared Cases: 3"},
	)
	s := model.ConvictionSummary{Convicted: 1, Pending: 2, ConvictionBoxFound: true, Status: "Some Convicted (1 convicted, 2 pending)"}

	got := Summarize(bag, s, true)
	assert.Equal(t, 3, got.DeclaredCases)
	assert.Equal(t, s.Status, got.Status)
	assert.Equal(t, model.CaseBreakdown{Convicted: 1, Pending: 2}, got.Breakdown)
	assert.Equal(t, "Total Cases: 3 | Convicted: 1 | Pending: 2", got.DetailedSummary)
}

func TestSummarize_ZeroConvictions(t *testing.T) {
	t.Parallel()

	bag := bagWith(model.Field{Key: "Criminal Cases", Value: "5"})
	s := model.ConvictionSummary{Pending: 2, Status: StatusNoBox}

	got := Summarize(bag, s, true)
	assert.Equal(t, 3, got.Breakdown.Unknown)
	assert.Equal(t, "Total Cases: 5 | Convictions: 0 | Pending: 2", got.DetailedSummary)
}

func TestSummarize_NotAvailable(t *testing.T) {
	t.Parallel()

	got := Summarize(bagWith(model.Field{Key: "Criminal Cases", Value: "2"}), model.ConvictionSummary{}, false)
	assert.Equal(t, "2 cases (conviction status not available)", got.Status)
	assert.Equal(t, "Total Cases: 2 | Conviction Status: Not Available", got.DetailedSummary)
	assert.Equal(t, 2, got.Breakdown.Unknown)

	got = Summarize(model.NewFieldBag(), model.ConvictionSummary{}, false)
	assert.Equal(t, "No criminal cases", got.Status)
	assert.Equal(t, "No criminal cases found", got.DetailedSummary)
}
