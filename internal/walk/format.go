package walk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidFormat is returned for an output format the renderer does not know.
var ErrInvalidFormat = errors.New("levelwalk: invalid output format")

// Format selects how records are rendered.
type Format string

// Output formats
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatTemplate Format = "template"
)

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatTemplate:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q (want text, json or template)", ErrInvalidFormat, s)
	}
}

// RenderOptions configures a Renderer.
type RenderOptions struct {
	Format   Format
	Template string // Used with FormatTemplate
	NFC      bool   // Normalize every path and name to Unicode NFC
}

// Renderer writes records to an output stream.
type Renderer struct {
	w    io.Writer
	opts RenderOptions
	enc  *json.Encoder
}

// jsonRecord is the line-delimited JSON shape of a Record.
type jsonRecord struct {
	Path    string   `json:"path"`
	Depth   int      `json:"depth"`
	Dirs    []string `json:"dirs"`
	Nondirs []string `json:"nondirs"`
}

// NewRenderer validates opts and returns a Renderer writing to w.
func NewRenderer(w io.Writer, opts RenderOptions) (*Renderer, error) {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.Format == FormatTemplate && opts.Template == "" {
		return nil, fmt.Errorf("%w: template format needs a template", ErrInvalidFormat)
	}

	r := &Renderer{w: w, opts: opts}
	if opts.Format == FormatJSON {
		r.enc = json.NewEncoder(w)
	}
	return r, nil
}

// Render writes one record.
func (r *Renderer) Render(rec Record) error {
	if r.opts.NFC {
		rec = normalizeRecord(rec)
	}

	switch r.opts.Format {
	case FormatJSON:
		return r.enc.Encode(jsonRecord{
			Path:    rec.Path,
			Depth:   rec.Depth,
			Dirs:    nonNil(rec.Dirs),
			Nondirs: nonNil(rec.Nondirs),
		})
	case FormatTemplate:
		_, err := fmt.Fprintln(r.w, FormatRecord(r.opts.Template, rec))
		return err
	default:
		return r.renderText(rec)
	}
}

func (r *Renderer) renderText(rec Record) error {
	var b strings.Builder
	b.WriteString(rec.Path)
	b.WriteByte('\n')
	for _, name := range rec.Dirs {
		b.WriteString("  d ")
		b.WriteString(name)
		b.WriteString(string(filepath.Separator))
		b.WriteByte('\n')
	}
	for _, name := range rec.Nondirs {
		b.WriteString("  f ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// FormatRecord replaces placeholders in a template with values from the record.
//
// Supported placeholders are {path}, {base}, {depth}, {dirs}, {nondirs},
// {ndirs} and {nnondirs}. Name lists are joined with commas. Quoted variants
// such as {"path"} produce Go-quoted strings.
func FormatRecord(template string, rec Record) string {
	dirs := strings.Join(rec.Dirs, ",")
	nondirs := strings.Join(rec.Nondirs, ",")
	base := filepath.Base(rec.Path)

	return strings.NewReplacer(
		`{"path"}`, strconv.Quote(rec.Path),
		`{"base"}`, strconv.Quote(base),
		`{"dirs"}`, strconv.Quote(dirs),
		`{"nondirs"}`, strconv.Quote(nondirs),
		"{path}", rec.Path,
		"{base}", base,
		"{depth}", strconv.Itoa(rec.Depth),
		"{dirs}", dirs,
		"{nondirs}", nondirs,
		"{ndirs}", strconv.Itoa(len(rec.Dirs)),
		"{nnondirs}", strconv.Itoa(len(rec.Nondirs)),
	).Replace(template)
}

func normalizeRecord(rec Record) Record {
	out := Record{
		Path:    norm.NFC.String(rec.Path),
		Depth:   rec.Depth,
		Dirs:    make([]string, len(rec.Dirs)),
		Nondirs: make([]string, len(rec.Nondirs)),
	}
	for i, name := range rec.Dirs {
		out.Dirs[i] = norm.NFC.String(name)
	}
	for i, name := range rec.Nondirs {
		out.Nondirs[i] = norm.NFC.String(name)
	}
	return out
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
