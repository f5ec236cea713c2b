package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Notebook is the typed subset of the nbformat v4 document used for rendering.
type Notebook struct {
	Cells         []Cell   `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Metadata holds the notebook-level fields that determine the code language.
type Metadata struct {
	KernelSpec   *KernelSpec   `json:"kernelspec,omitempty"`
	LanguageInfo *LanguageInfo `json:"language_info,omitempty"`
}

// KernelSpec describes the kernel the notebook was saved with.
type KernelSpec struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
}

// LanguageInfo describes the kernel language.
type LanguageInfo struct {
	Name          string `json:"name"`
	FileExtension string `json:"file_extension"`
}

// Language returns the code cell language, defaulting to python.
func (m Metadata) Language() string {
	if m.LanguageInfo != nil && m.LanguageInfo.Name != "" {
		return m.LanguageInfo.Name
	}
	if m.KernelSpec != nil && m.KernelSpec.Language != "" {
		return m.KernelSpec.Language
	}
	return "python"
}

// Cell types.
const (
	CellCode     = "code"
	CellMarkdown = "markdown"
	CellRaw      = "raw"
)

// Cell is one notebook cell.
type Cell struct {
	CellType       string          `json:"cell_type"`
	Source         MultilineString `json:"source"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
	Outputs        []Output        `json:"outputs,omitempty"`
}

// Output types.
const (
	OutputStream        = "stream"
	OutputExecuteResult = "execute_result"
	OutputDisplayData   = "display_data"
	OutputError         = "error"
)

// Output is one entry of a code cell's outputs.
type Output struct {
	OutputType     string                     `json:"output_type"`
	Name           string                     `json:"name,omitempty"`
	Text           MultilineString            `json:"text,omitempty"`
	Data           map[string]json.RawMessage `json:"data,omitempty"`
	ExecutionCount *int                       `json:"execution_count,omitempty"`
	EName          string                     `json:"ename,omitempty"`
	EValue         string                     `json:"evalue,omitempty"`
	Traceback      []string                   `json:"traceback,omitempty"`
}

// MIME returns the data bundle entry for mime as text. JSON-valued entries
// such as application/json are returned re-encoded.
func (o Output) MIME(mime string) (string, bool) {
	raw, ok := o.Data[mime]
	if !ok {
		return "", false
	}
	var s MultilineString
	if err := json.Unmarshal(raw, &s); err == nil {
		return string(s), true
	}
	return string(raw), true
}

// MultilineString is nbformat's text field: a string or an array of lines.
type MultilineString string

// UnmarshalJSON accepts either representation and joins arrays without separators.
func (m *MultilineString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return err
		}
		*m = MultilineString(strings.Join(lines, ""))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = MultilineString(s)
	return nil
}

// Notebook resolves name and decodes it into the typed nbformat view.
func (s *Store) Notebook(name string) (*Notebook, Match, error) {
	data, m, err := s.read(name)
	if err != nil {
		return nil, m, err
	}
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, m, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return &nb, m, nil
}
