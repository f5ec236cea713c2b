package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CageChen/nbhub/internal/notebook"
)

func intPtr(n int) *int { return &n }

func parseHTML(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return doc
}

func TestRender_Cells(t *testing.T) {
	nb := &notebook.Notebook{
		Cells: []notebook.Cell{
			{CellType: notebook.CellMarkdown, Source: "# Analysis\n\nIntro **bold**."},
			{
				CellType:       notebook.CellCode,
				Source:         "def f(x):\n    return x * 2\n",
				ExecutionCount: intPtr(1),
				Outputs: []notebook.Output{
					{OutputType: notebook.OutputStream, Name: "stdout", Text: "done <ok>\n"},
					{
						OutputType:     notebook.OutputExecuteResult,
						ExecutionCount: intPtr(1),
						Data:           map[string]json.RawMessage{"text/plain": json.RawMessage(`"4"`)},
					},
				},
			},
			{CellType: notebook.CellRaw, Source: "<raw>"},
		},
	}

	res, err := NewRenderer("monokai").Render(nb)
	require.NoError(t, err)

	assert.Equal(t, "Analysis", res.Title)
	assert.Equal(t, "python", res.Language)
	assert.Equal(t, 3, res.Cells)
	require.Len(t, res.TOC, 1)
	assert.Equal(t, "analysis", res.TOC[0].Anchor)

	doc := parseHTML(t, res.HTML)
	assert.Equal(t, 3, doc.Find("div.cell").Length())
	assert.Equal(t, "Analysis", doc.Find("#cell-0 h1").Text())
	assert.Equal(t, "bold", doc.Find("#cell-0 strong").Text())

	code := doc.Find("#cell-1")
	assert.Equal(t, "In [1]:", code.Find(".prompt").First().Text())
	assert.Contains(t, code.Find("pre.chroma").Text(), "return x * 2")
	assert.NotZero(t, code.Find("pre.chroma span.k, pre.chroma span.kd").Length(), "expected keyword tokens")
	assert.Equal(t, "done <ok>\n", code.Find("pre.output-stdout").Text())
	assert.Equal(t, "4", code.Find("pre.output-text").Text())
	assert.Equal(t, "Out [1]:", code.Find(".prompt").Last().Text())

	assert.Equal(t, "<raw>", doc.Find("#cell-2 pre.raw").Text())
}

func TestRender_RichOutputs(t *testing.T) {
	nb := &notebook.Notebook{
		Cells: []notebook.Cell{{
			CellType: notebook.CellCode,
			Source:   "plot()",
			Outputs: []notebook.Output{
				{
					OutputType: notebook.OutputDisplayData,
					Data: map[string]json.RawMessage{
						"image/png":  json.RawMessage(`"iVBORw0K\nGgo="`),
						"text/plain": json.RawMessage(`"<Figure>"`),
					},
				},
				{
					OutputType: notebook.OutputDisplayData,
					Data:       map[string]json.RawMessage{"text/html": json.RawMessage(`["<table>", "<tr><td>1</td></tr>", "</table>"]`)},
				},
				{
					OutputType: notebook.OutputError,
					EName:      "ValueError",
					EValue:     "bad",
					Traceback:  []string{"\x1b[0;31mValueError\x1b[0m: bad"},
				},
			},
		}},
	}

	res, err := NewRenderer("").Render(nb)
	require.NoError(t, err)
	assert.Empty(t, res.Title)
	assert.Empty(t, res.TOC)

	doc := parseHTML(t, res.HTML)
	src, ok := doc.Find("img.output-image").Attr("src")
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", src)
	assert.Zero(t, doc.Find("pre.output-text").Length(), "image should win over text/plain")
	assert.Equal(t, 1, doc.Find(".output-html table td").Length())
	assert.Equal(t, "ValueError: bad", doc.Find("pre.output-error").Text())
}

func TestRender_LanguageFromMetadata(t *testing.T) {
	nb := &notebook.Notebook{
		Metadata: notebook.Metadata{LanguageInfo: &notebook.LanguageInfo{Name: "no-such-language"}},
		Cells:    []notebook.Cell{{CellType: notebook.CellCode, Source: "x <- 1"}},
	}

	res, err := NewRenderer("").Render(nb)
	require.NoError(t, err)
	assert.Equal(t, "no-such-language", res.Language)
	assert.Contains(t, parseHTML(t, res.HTML).Find("pre").Text(), "x <- 1")
	assert.Contains(t, res.HTML, "In [ ]:")
}

func TestRendererCSS(t *testing.T) {
	css, err := NewRenderer("monokai").CSS()
	require.NoError(t, err)
	assert.Contains(t, css, ".chroma")
}
