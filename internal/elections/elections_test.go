package elections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drewraw/social-record-platform/internal/cases"
	"github.com/Drewraw/social-record-platform/internal/document"
	"github.com/Drewraw/social-record-platform/internal/model"
)

const candidateURL = "https://www.myneta.info/Kerala2021/candidate.php?candidate_id=12"

func parse(t *testing.T, body string) *document.Document {
	t.Helper()
	doc, err := document.ParseString(body, candidateURL)
	require.NoError(t, err)
	return doc
}

const otherElectionsPage = `<html><body>
<div>
<table>
	<tr><td><b>Other Elections</b></td><td>Declared Assets</td><td>Declared Cases</td></tr>
	<tr><td>Lok Sabha 2019</td><td>Rs 1,20,00,000</td><td>2</td></tr>
	<tr><td>Kerala 2016</td><td>Rs 80,00,000</td><td>0</td></tr>
	<tr><td colspan="3"><a href="compare_profile.php?group_id=abc">Click here for more details</a></td></tr>
</table>
</div>
</body></html>`

func TestFind_OtherElections(t *testing.T) {
	t.Parallel()

	sec, ok := Find(parse(t, otherElectionsPage))
	require.True(t, ok)
	require.Len(t, sec.Elections, 2)
	assert.Equal(t, model.ElectionRecord{Election: "Lok Sabha 2019", DeclaredAssets: "Rs 1,20,00,000", DeclaredCases: "2"}, sec.Elections[0])
	assert.Equal(t, "https://www.myneta.info/compare_profile.php?group_id=abc", sec.DetailsURL)
	assert.True(t, Followable(sec.DetailsURL))
}

func TestFind_AlternateHeadingAndParentLink(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<div>
		<table>
			<tr><th><b>Election History</b></th></tr>
			<tr><td>Kerala 2011</td><td>Rs 10</td><td>1</td></tr>
		</table>
		<p><a href="./candidate.php?candidate_id=99">Click here</a></p>
	</div>`)

	sec, ok := Find(doc)
	require.True(t, ok)
	require.Len(t, sec.Elections, 1)
	assert.Equal(t, "https://www.myneta.info/Kerala2021/candidate.php?candidate_id=99", sec.DetailsURL)
}

func TestFind_NoSection(t *testing.T) {
	t.Parallel()

	_, ok := Find(parse(t, `<table><tr><td>Education</td><td>Graduate</td></tr></table>`))
	assert.False(t, ok)

	_, ok = Find(parse(t, `<p><b>Other Elections</b> none listed</p>`))
	assert.False(t, ok)
}

func TestResolveDetails(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<p></p>`)
	assert.Equal(t, "https://example.org/x", ResolveDetails(doc, "https://example.org/x"))
	assert.Equal(t, "https://www.myneta.info/compare_profile.php?id=1", ResolveDetails(doc, "../compare_profile.php?id=1"))
	assert.Equal(t, "https://www.myneta.info/Kerala2021/other.php", ResolveDetails(doc, "other.php"))
	assert.False(t, Followable("https://www.myneta.info/Kerala2021/other.php"))
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	in := []model.ElectionRecord{{Election: "a"}, {Election: "b"}}
	out := WithDetails(in, "https://x/compare_profile.php")
	assert.Equal(t, "https://x/compare_profile.php", out[1].DetailsURL)
	assert.Empty(t, in[0].DetailsURL)
}

func TestRelatedRows(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<table>
		<tr><th>Sno</th><th>Case</th></tr>
		<tr><td></td><td></td></tr>
		<tr><td>1</td><td>FIR No. 12/2019</td></tr>
	</table>
	<table><tr><td>Conviction</td><td>-</td></tr></table>`)

	got := RelatedRows(doc)
	assert.Equal(t, []cases.Row{
		{TableIndex: 0, RowIndex: 0, Cells: []string{"Sno", "Case"}},
		{TableIndex: 0, RowIndex: 2, Cells: []string{"1", "FIR No. 12/2019"}},
		{TableIndex: 1, RowIndex: 0, Cells: []string{"Conviction", "-"}},
	}, got)
}
