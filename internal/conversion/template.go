package conversion

import (
	"fmt"
	"sort"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

// Template is an immutable conversion preset: which row windows to
// extract and which document shape to build. Templates are plain values;
// customizing one always goes through With, which copies, so concurrent
// requests never observe each other's row overrides.
type Template struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	IntradayStart int                 `json:"intraday_start"`
	IntradayEnd   int                 `json:"intraday_end"`
	LongTermStart int                 `json:"longterm_start"`
	LongTermEnd   int                 `json:"longterm_end"`
	OutputFormat  domain.OutputFormat `json:"output_format"`
}

// Overrides carries optional per-request adjustments to a template. Nil
// fields leave the template's value in place.
type Overrides struct {
	IntradayStart *int
	IntradayEnd   *int
	LongTermStart *int
	LongTermEnd   *int
	OutputFormat  *domain.OutputFormat
}

// With returns a new template with the non-nil overrides applied. The
// receiver is never modified.
func (t Template) With(o Overrides) Template {
	if o.IntradayStart != nil {
		t.IntradayStart = *o.IntradayStart
	}
	if o.IntradayEnd != nil {
		t.IntradayEnd = *o.IntradayEnd
	}
	if o.LongTermStart != nil {
		t.LongTermStart = *o.LongTermStart
	}
	if o.LongTermEnd != nil {
		t.LongTermEnd = *o.LongTermEnd
	}
	if o.OutputFormat != nil {
		t.OutputFormat = *o.OutputFormat
	}
	return t
}

// Registry holds the built-in conversion templates. It is populated once
// at construction and read-only afterwards.
type Registry struct {
	templates map[string]Template
}

// NewRegistry returns a registry seeded with the built-in presets. The
// row windows match the layout of the supported broker statement: the
// intraday section sits at row 42 and long-term holdings at rows 55-57.
func NewRegistry() *Registry {
	builtins := []Template{
		{
			Name:          "default",
			Description:   "Standard conversion for equity trades",
			IntradayStart: 42,
			IntradayEnd:   42,
			LongTermStart: 55,
			LongTermEnd:   57,
			OutputFormat:  domain.FormatStandard,
		},
		{
			Name:          "compact",
			Description:   "Compact output format",
			IntradayStart: 42,
			IntradayEnd:   42,
			LongTermStart: 55,
			LongTermEnd:   57,
			OutputFormat:  domain.FormatCompact,
		},
	}

	m := make(map[string]Template, len(builtins))
	for _, t := range builtins {
		m[t.Name] = t
	}
	return &Registry{templates: m}
}

// Get returns a copy of the named template.
func (r *Registry) Get(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("template %q: %w", name, apierrors.ErrUnknownTemplate)
	}
	return t, nil
}

// List returns all templates sorted by name.
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
