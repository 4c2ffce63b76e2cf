package document

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestParse_MalformedInput(t *testing.T) {
	t.Parallel()

	_, err := ParseString("   \n\t", "https://myneta.info/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))

	_, err = Parse(failingReader{}, "https://myneta.info/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))
}

func TestParse_NoMarkup(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		"Service temporarily unavailable",
		`{"error":"rate limited"}`,
		"<html><head></head><body>   </body></html>",
	} {
		_, err := ParseString(body, "https://myneta.info/x")
		require.Error(t, err, body)
		assert.ErrorIs(t, err, ErrMalformedInput, body)
	}

	doc, err := ParseString("<p>ok</p>", "https://myneta.info/x")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestDocument_TitleAndText(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(`<html><head><title>
		RAMESH KUMAR(BJP):   WAYANAD(KERALA)
	</title><script>var x = 1;</script></head><body><p>Hello <b>world</b></p></body></html>`, "https://myneta.info/LokSabha2024/candidate.php?candidate_id=7")
	require.NoError(t, err)

	assert.Equal(t, "RAMESH KUMAR(BJP): WAYANAD(KERALA)", doc.Title())
	assert.NotContains(t, doc.Text(), "var x")
	assert.Contains(t, doc.Text(), "Hello world")
	assert.Equal(t, "https://myneta.info/LokSabha2024/candidate.php?candidate_id=7", doc.URL())
}

func TestCellText_JoinsDescendants(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(`<table><tr><td>Graduate<br>Professional <span>  B.Tech </span></td></tr></table>`, "")
	require.NoError(t, err)
	assert.Equal(t, "Graduate Professional B.Tech", CellText(doc.Find("td")))
}

func TestRows_SkipsNestedTables(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(`<table id="outer">
		<tr><td>a</td><td><table><tr><td>inner</td></tr></table></td></tr>
		<tr><td>b</td></tr>
	</table>`, "")
	require.NoError(t, err)

	rows := Rows(doc.Find("#outer"))
	assert.Equal(t, 2, rows.Length())
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://www.myneta.info/Kerala2021/candidate.php?candidate_id=12", "https://www.myneta.info/Kerala2021/"},
		{"https://myneta.info/candidate.php?candidate_id=1", "https://myneta.info/"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseURL(tt.in), tt.in)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	base := "https://www.myneta.info/Kerala2021/"
	assert.Equal(t, "https://www.myneta.info/Kerala2021/candidate.php?id=2", Resolve(base, "./candidate.php?id=2"))
	assert.Equal(t, "https://www.myneta.info/images/p.jpg", Resolve(base, "/images/p.jpg"))
	assert.Equal(t, "https://cdn.example.org/p.jpg", Resolve(base, "//cdn.example.org/p.jpg"))
	assert.Equal(t, "http://other.org/a", Resolve(base, "http://other.org/a"))
	assert.Equal(t, "", Resolve(base, "  "))
}
