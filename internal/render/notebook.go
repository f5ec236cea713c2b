// Package render turns parsed notebooks into HTML: goldmark for markdown
// cells, chroma for code cells, and the common nbformat output types.
package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"

	"github.com/CageChen/nbhub/internal/notebook"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "monokai"

// ansiEscape matches terminal color codes found in error tracebacks.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")

// Result is a rendered notebook.
type Result struct {
	HTML     string    `json:"html"`
	TOC      []TOCItem `json:"toc"`
	Title    string    `json:"title"`
	Language string    `json:"language"`
	Cells    int       `json:"cells"`
}

// Renderer renders notebooks to HTML. It is safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewRenderer creates a renderer using the named chroma style.
// Unknown styles fall back to chroma's default.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{
		md:        newMarkdown(style),
		style:     styles.Get(style),
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
	}
}

// CSS returns the stylesheet for the highlighting classes emitted by Render.
func (r *Renderer) CSS() (string, error) {
	var buf bytes.Buffer
	if err := r.formatter.WriteCSS(&buf, r.style); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render converts nb into a single HTML fragment with one element per cell.
func (r *Renderer) Render(nb *notebook.Notebook) (*Result, error) {
	lang := nb.Metadata.Language()
	res := &Result{
		Language: lang,
		Cells:    len(nb.Cells),
		TOC:      []TOCItem{},
	}

	var buf bytes.Buffer
	buf.WriteString(`<div class="notebook">`)
	for i, cell := range nb.Cells {
		fmt.Fprintf(&buf, `<div class="cell cell-%s" id="cell-%d">`, html.EscapeString(cell.CellType), i)
		switch cell.CellType {
		case notebook.CellMarkdown:
			out, toc, err := r.markdownCell([]byte(cell.Source), i)
			if err != nil {
				return nil, fmt.Errorf("cell %d: %w", i, err)
			}
			buf.WriteString(out)
			res.TOC = append(res.TOC, toc...)
		case notebook.CellCode:
			r.writePrompt(&buf, "In", cell.ExecutionCount)
			if err := r.highlight(&buf, string(cell.Source), lang); err != nil {
				return nil, fmt.Errorf("cell %d: %w", i, err)
			}
			for _, out := range cell.Outputs {
				if err := r.writeOutput(&buf, out); err != nil {
					return nil, fmt.Errorf("cell %d: %w", i, err)
				}
			}
		default:
			fmt.Fprintf(&buf, `<pre class="raw">%s</pre>`, html.EscapeString(string(cell.Source)))
		}
		buf.WriteString(`</div>`)
	}
	buf.WriteString(`</div>`)

	res.HTML = buf.String()
	if len(res.TOC) > 0 {
		res.Title = res.TOC[0].Title
	}
	return res, nil
}

func (r *Renderer) writePrompt(buf *bytes.Buffer, label string, count *int) {
	n := " "
	if count != nil {
		n = fmt.Sprint(*count)
	}
	fmt.Fprintf(buf, `<div class="prompt">%s [%s]:</div>`, label, n)
}

func (r *Renderer) highlight(buf *bytes.Buffer, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	return r.formatter.Format(buf, r.style, it)
}

func (r *Renderer) writeOutput(buf *bytes.Buffer, out notebook.Output) error {
	switch out.OutputType {
	case notebook.OutputStream:
		name := out.Name
		if name == "" {
			name = "stdout"
		}
		fmt.Fprintf(buf, `<pre class="output output-stream output-%s">%s</pre>`,
			html.EscapeString(name), html.EscapeString(string(out.Text)))
	case notebook.OutputError:
		trace := ansiEscape.ReplaceAllString(strings.Join(out.Traceback, "\n"), "")
		if trace == "" {
			trace = out.EName + ": " + out.EValue
		}
		fmt.Fprintf(buf, `<pre class="output output-error">%s</pre>`, html.EscapeString(trace))
	case notebook.OutputExecuteResult, notebook.OutputDisplayData:
		if out.OutputType == notebook.OutputExecuteResult {
			r.writePrompt(buf, "Out", out.ExecutionCount)
		}
		return r.writeData(buf, out)
	}
	return nil
}

// writeData renders the richest representation of a data bundle.
func (r *Renderer) writeData(buf *bytes.Buffer, out notebook.Output) error {
	for _, mime := range []string{"image/png", "image/jpeg", "image/gif"} {
		if data, ok := out.MIME(mime); ok {
			data = strings.Join(strings.Fields(data), "")
			fmt.Fprintf(buf, `<img class="output output-image" src="data:%s;base64,%s"/>`, mime, data)
			return nil
		}
	}
	if svg, ok := out.MIME("image/svg+xml"); ok {
		fmt.Fprintf(buf, `<div class="output output-svg">%s</div>`, svg)
		return nil
	}
	if h, ok := out.MIME("text/html"); ok {
		fmt.Fprintf(buf, `<div class="output output-html">%s</div>`, h)
		return nil
	}
	if md, ok := out.MIME("text/markdown"); ok {
		var mbuf bytes.Buffer
		if err := r.md.Convert([]byte(md), &mbuf); err != nil {
			return err
		}
		fmt.Fprintf(buf, `<div class="output output-markdown">%s</div>`, mbuf.String())
		return nil
	}
	if js, ok := out.MIME("application/json"); ok {
		fmt.Fprintf(buf, `<pre class="output output-json">%s</pre>`, html.EscapeString(js))
		return nil
	}
	if plain, ok := out.MIME("text/plain"); ok {
		fmt.Fprintf(buf, `<pre class="output output-text">%s</pre>`, html.EscapeString(plain))
	}
	return nil
}
