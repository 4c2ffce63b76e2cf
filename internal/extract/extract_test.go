package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drewraw/social-record-platform/internal/document"
	"github.com/Drewraw/social-record-platform/internal/model"
)

const pageURL = "https://myneta.info/LokSabha2024/candidate.php?candidate_id=7"

func parse(t *testing.T, body string) *document.Document {
	t.Helper()
	doc, err := document.ParseString(body, pageURL)
	require.NoError(t, err)
	return doc
}

func TestTableWalker_EmitsDistinctPairs(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body>
		<table>
			<tr><th>Education</th><td>Graduate</td></tr>
			<tr><td>Same</td><td>Same</td></tr>
			<tr><td>Lonely</td></tr>
			<tr><td></td><td>no key</td></tr>
		</table>
		<table><tr><td>Profession</td><td>Farmer</td></tr></table>
	</body></html>`)

	cands, err := (&TableWalker{}).Extract(doc)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, Candidate{Key: "Education", Value: "Graduate", TableIndex: 0, RowIndex: 0, SourceURL: pageURL}, cands[0])
	assert.Equal(t, Candidate{Key: "Profession", Value: "Farmer", TableIndex: 1, RowIndex: 0, SourceURL: pageURL}, cands[1])
}

func TestTableWalker_SkipsLinkTables(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<table>
		<tr><td>Lok Sabha 2019</td><td>Winner</td></tr>
		<tr><td colspan="2"><a href="compare_profile.php?id=1">Click here for more details</a></td></tr>
	</table>
	<table><tr><td>Education</td><td>Graduate</td></tr></table>`)

	cands, err := (&TableWalker{SkipMarker: "Click here"}).Extract(doc)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Education", cands[0].Key)
	assert.Equal(t, 1, cands[0].TableIndex)

	all, err := (&TableWalker{}).Extract(doc)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLegacyWalker_DropsHistoricalRows(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<table>
		<tr><td>Lok Sabha 2014</td><td>Contested</td></tr>
		<tr><td>Kerala 2016 Assembly</td><td>Lost</td></tr>
		<tr><td>Year 2014</td><td>kept, no house label</td></tr>
		<tr><td>Education</td><td>Graduate</td></tr>
	</table>`)

	cands, err := NewLegacyWalker(DefaultLegacyConfig()).Extract(doc)
	require.NoError(t, err)

	var keys []string
	for _, c := range cands {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"Year 2014", "Education"}, keys)
}

type stubStrategy struct {
	name  string
	cands []Candidate
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(*document.Document) ([]Candidate, error) {
	s.calls++
	return s.cands, s.err
}

func TestChain_FallsThroughOnEmptyAndError(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<p>x</p>`)
	empty := &stubStrategy{name: "empty"}
	failing := &stubStrategy{name: "failing", err: assert.AnError}
	good := &stubStrategy{name: "good", cands: []Candidate{{Key: "Education", Value: "Graduate"}}}
	never := &stubStrategy{name: "never", cands: []Candidate{{Key: "x", Value: "y"}}}

	name, cands, err := NewChain(empty, failing, good, never).ExtractWith(doc)
	require.NoError(t, err)
	assert.Equal(t, "good", name)
	assert.Len(t, cands, 1)
	assert.Equal(t, 0, never.calls)
}

func TestChain_AllFail(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<p>x</p>`)
	_, err := NewChain(&stubStrategy{name: "a", err: assert.AnError}).Extract(doc)
	require.Error(t, err)

	cands, err := NewChain(&stubStrategy{name: "b"}).Extract(doc)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestNoiseFilter_IsNoise(t *testing.T) {
	t.Parallel()

	f := NewNoiseFilter(DefaultNoiseConfig())
	tests := []struct {
		key, value string
		want       bool
	}{
		{"Education", "Graduate", false},
		{"Profession", "Social Worker", false},
		{"ab", "Graduate", true},
		{"Education", "BA", true},
		{"  Ed  ", "Graduate", true},
		{"12345", "Graduate", true},
		{"Spouse Income", "Rs 10,000", true},
		{"Total", "Not Applicable", true},
		{"Candidate Name", "Ramesh", true},
		{"FOLLOW US", "twitter", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.IsNoise(tt.key, tt.value), "%q=%q", tt.key, tt.value)
	}
}

func TestNoiseFilter_FloorHoldsForAnyLexicon(t *testing.T) {
	t.Parallel()

	f := NewNoiseFilter(NoiseConfig{MinLength: 3})
	assert.True(t, f.IsNoise("ab", "long enough value"))
	assert.True(t, f.IsNoise("long enough key", "x"))
	assert.False(t, f.IsNoise("123", "digits allowed"))
	assert.False(t, f.IsNoise("Spouse", "no lexicon configured"))
}

func TestNoiseFilter_OrderIndependent(t *testing.T) {
	t.Parallel()

	f := NewNoiseFilter(DefaultNoiseConfig())
	a := []Candidate{{Key: "Education", Value: "Graduate"}, {Key: "Self", Value: "Rs 5"}, {Key: "Profession", Value: "Farmer"}}
	b := []Candidate{a[2], a[1], a[0]}

	fa, fb := f.Filter(a), f.Filter(b)
	require.Len(t, fa, 2)
	assert.ElementsMatch(t, fa, fb)
	assert.Equal(t, "Education", fa[0].Key)
}

func TestParseTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  TitleParts
	}{
		{
			"RAMESH KUMAR(BJP): WAYANAD(KERALA)",
			TitleParts{Name: "RAMESH KUMAR", Party: "BJP", State: "KERALA"},
		},
		{
			"Priya Menon(Indian National Congress):Thrissur(KERALA) - Affidavit Information of Candidate Lok Sabha 2024",
			TitleParts{Name: "Priya Menon", Party: "Indian National Congress", State: "KERALA", Year: "2024"},
		},
		{
			"ANIL(IND)",
			TitleParts{Name: "ANIL", State: "IND"},
		},
		{
			"No parentheses here 2019",
			TitleParts{Year: "2019"},
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTitle(tt.title), tt.title)
	}
}

func TestDerivedResolver_Position(t *testing.T) {
	t.Parallel()

	r := NewDerivedResolver(DefaultDerivedConfig())

	label, ok := r.Position("https://myneta.info/LokSabha2024/candidate.php?candidate_id=1")
	assert.True(t, ok)
	assert.Equal(t, "Member of Parliament", label)

	label, ok = r.Position("https://myneta.info/KeralaAssembly2021/candidate.php?candidate_id=1")
	assert.True(t, ok)
	assert.Equal(t, "Member of Legislative Assembly", label)

	_, ok = r.Position("https://myneta.info/Kerala2021/candidate.php?candidate_id=1")
	assert.False(t, ok)
}

func TestDerivedResolver_NeverReplaces(t *testing.T) {
	t.Parallel()

	bag := model.NewFieldBag()
	bag.SetIfAbsent(model.Field{Key: "Party", Value: "Bharatiya Janata Party", SourceURL: pageURL, Tier: model.TierPrimary})

	written := NewDerivedResolver(DefaultDerivedConfig()).Resolve("RAMESH KUMAR(BJP): WAYANAD(KERALA)", pageURL, bag)

	assert.Equal(t, []string{"Name", "State", "Position"}, written)
	assert.Equal(t, "Bharatiya Janata Party", bag.Value("Party"))
	assert.Equal(t, "RAMESH KUMAR", bag.Value("Name"))
	assert.Equal(t, "KERALA", bag.Value("State"))
	assert.Equal(t, "Member of Parliament", bag.Value("Position"))

	f, ok := bag.Get("State")
	require.True(t, ok)
	assert.Equal(t, pageURL, f.SourceURL)
	assert.Equal(t, model.TierPrimary, f.Tier)
}

func TestPageHelpers(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><body>
		<img src="/images/logo.png">
		<img src="/images/small.jpg" width="20">
		<img src="images_candidate/mynetai_ews/7.jpg" width="120">
		<p>Number of Criminal Cases: 3</p>
		<a href="/pdfs/affidavit_7.pdf">Affidavit</a>
	</body></html>`)

	assert.Equal(t, "https://myneta.info/LokSabha2024/images_candidate/mynetai_ews/7.jpg", CandidateImage(doc))
	n, ok := DeclaredCaseCount(doc)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, "https://myneta.info/pdfs/affidavit_7.pdf", AffidavitLink(doc))
}

func TestDeclaredCaseCount_BoldFallback(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<div>Criminal cases declared <b>4</b></div>`)
	n, ok := DeclaredCaseCount(doc)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = DeclaredCaseCount(parse(t, `<p>nothing here</p>`))
	assert.False(t, ok)
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><head><title>RAMESH KUMAR(BJP): WAYANAD(KERALA) - Lok Sabha 2024</title></head><body>
		<table>
			<tr><td>Education</td><td>Graduate Professional</td></tr>
			<tr><td>Self</td><td>Rs 1,00,000</td></tr>
			<tr><td>Education</td><td>later duplicate</td></tr>
			<tr><td>Profession</td><td>Agriculture</td></tr>
		</table>
		<p>Number of Criminal Cases: 2</p>
	</body></html>`)

	res, err := New(DefaultConfig()).Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, "table", res.Strategy)
	assert.Equal(t, 4, res.Candidates)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "2024", res.ElectionYear)
	assert.Equal(t, 2, res.DeclaredCase)

	bag := res.Fields
	assert.Equal(t, "Graduate Professional", bag.Value("Education"))
	assert.Equal(t, "Agriculture", bag.Value("Profession"))
	assert.Equal(t, "2", bag.Value("Criminal Cases"))
	assert.Equal(t, "RAMESH KUMAR", bag.Value("Name"))
	assert.Equal(t, "BJP", bag.Value("Party"))
	assert.Equal(t, "KERALA", bag.Value("State"))
	assert.Equal(t, "Member of Parliament", bag.Value("Position"))
	assert.False(t, bag.Has("Self"))
	assert.Equal(t, bag.Len(), bag.CountTier(model.TierPrimary))
}

func TestExtractor_ZeroDeclaredCases(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><head><title>ANITA DEVI(INC): PATNA SAHIB(BIHAR) - Lok Sabha 2024</title></head><body>
		<p>Number of Criminal Cases: 0</p>
	</body></html>`)

	res, err := New(DefaultConfig()).Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DeclaredCase)
	require.True(t, res.Fields.Has("Criminal Cases"))
	assert.Equal(t, "0", res.Fields.Value("Criminal Cases"))
}

func TestExtractor_NoTables(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<html><head><title>nothing</title></head><body><p>hello</p></body></html>`)
	res, err := New(DefaultConfig()).Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "", res.Strategy)
	assert.Equal(t, []string{"Position"}, res.Fields.Keys())
}
