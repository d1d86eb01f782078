// Package render binds the day's memories, mood and storyline into the
// note body template.
package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"os"
	"strconv"

	"github.com/mrwolf/daybook/internal/mood"
	"github.com/mrwolf/daybook/internal/notes"
	"github.com/mrwolf/daybook/internal/storyline"
)

//go:embed templates/daily.html.tmpl
var defaultTemplate string

// ErrRender wraps template execution failures.
var ErrRender = errors.New("rendering document")

// Lookup resolves a two-level configuration key for the template.
type Lookup interface {
	Lookup(section, field string) string
}

// Context is the data bound into the template. Mood and Storyline may be nil.
type Context struct {
	Title     string
	Memories  []notes.Memory
	Mood      *mood.Summary
	Storyline *storyline.Storyline
}

// memory is a notes.Memory with its link trusted; html/template would
// otherwise blank the evernote: scheme.
type memory struct {
	Link  template.URL
	Title string
}

type view struct {
	Title     string
	Memories  []memory
	Mood      *mood.Summary
	Storyline *storyline.Storyline
}

// Renderer holds a parsed template.
type Renderer struct {
	tmpl *template.Template
}

// Load parses the template file at path, or the built-in template when path is empty.
func Load(path string, cfg Lookup) (*Renderer, error) {
	if path == "" {
		return New(defaultTemplate, cfg)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return New(string(src), cfg)
}

// New parses src with the mins, distance and config helpers installed.
func New(src string, cfg Lookup) (*Renderer, error) {
	tmpl, err := template.New("note").Funcs(funcs(cfg)).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template against ctx.
func (r *Renderer) Render(ctx Context) (string, error) {
	data := view{
		Title:     ctx.Title,
		Memories:  make([]memory, 0, len(ctx.Memories)),
		Mood:      ctx.Mood,
		Storyline: ctx.Storyline,
	}
	for _, m := range ctx.Memories {
		data.Memories = append(data.Memories, memory{Link: template.URL(m.Link), Title: m.Title})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

func funcs(cfg Lookup) template.FuncMap {
	return template.FuncMap{
		"mins": func(seconds any) (int, error) {
			v, err := toFloat(seconds)
			if err != nil {
				return 0, err
			}
			return Minutes(v), nil
		},
		"distance": func(metres any) (string, error) {
			v, err := toFloat(metres)
			if err != nil {
				return "", err
			}
			unit := ""
			if cfg != nil {
				unit = cfg.Lookup("units", "distance")
			}
			return Distance(v, unit), nil
		},
		"config": func(section, field string) string {
			if cfg == nil {
				return ""
			}
			return cfg.Lookup(section, field)
		},
	}
}

// Minutes converts seconds to whole minutes, rounded.
func Minutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}

// Distance formats metres in km, or miles when unit is "mi", to one decimal.
func Distance(metres float64, unit string) string {
	v := metres / 1000
	if unit == "mi" {
		v = metres / 1609.344
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
