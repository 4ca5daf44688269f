package layout

import (
	"github.com/jsphweid/engraver/metrics"
	"github.com/jsphweid/engraver/util"
)

// Style holds page geometry and spacing. Lengths are in points.
type Style struct {
	Name string `yaml:"name"`

	PageWidth    float64 `yaml:"pageWidth"`
	PageHeight   float64 `yaml:"pageHeight"`
	MarginTop    float64 `yaml:"marginTop"`
	MarginBottom float64 `yaml:"marginBottom"`
	MarginLeft   float64 `yaml:"marginLeft"`
	MarginRight  float64 `yaml:"marginRight"`

	LineSpacing    float64 `yaml:"lineSpacing"`
	TabLineSpacing float64 `yaml:"tabLineSpacing"`
	StaffTop       float64 `yaml:"staffTop"`
	StaffBottom    float64 `yaml:"staffBottom"`
	SystemSpacing  float64 `yaml:"systemSpacing"`
	BandHeight     float64 `yaml:"bandHeight"`
	SpacingUnit    float64 `yaml:"spacingUnit"`

	// MaxTrailingStretch caps the stretch of the last system and of
	// systems ending on a forced break.
	MaxTrailingStretch float64 `yaml:"maxTrailingStretch"`
	BarsPerSystem      int     `yaml:"barsPerSystem"`
}

const (
	DefaultStyleName = "default"
	CompactStyleName = "compact"
)

// DefaultStyle is an A4 page.
func DefaultStyle() Style {
	return Style{
		Name:               DefaultStyleName,
		PageWidth:          595,
		PageHeight:         842,
		MarginTop:          48,
		MarginBottom:       48,
		MarginLeft:         36,
		MarginRight:        36,
		LineSpacing:        6,
		TabLineSpacing:     8,
		StaffTop:           16,
		StaffBottom:        16,
		SystemSpacing:      24,
		BandHeight:         14,
		SpacingUnit:        6,
		MaxTrailingStretch: 1.4,
		BarsPerSystem:      4,
	}
}

func CompactStyle() Style {
	s := DefaultStyle()
	s.Name = CompactStyleName
	s.MarginTop, s.MarginBottom = 24, 24
	s.MarginLeft, s.MarginRight = 24, 24
	s.LineSpacing = 5
	s.TabLineSpacing = 6
	s.StaffTop, s.StaffBottom = 10, 10
	s.SystemSpacing = 12
	s.BandHeight = 10
	s.SpacingUnit = 4.5
	return s
}

func (s Style) ContentWidth() float64  { return s.PageWidth - s.MarginLeft - s.MarginRight }
func (s Style) ContentHeight() float64 { return s.PageHeight - s.MarginTop - s.MarginBottom }

// MetricsParams sizes the bar metrics calculator for this style.
func (s Style) MetricsParams() metrics.Params {
	return metrics.DefaultParams(s.SpacingUnit)
}

// merge fills zero fields of s from base.
func (s Style) merge(base Style) Style {
	fill := func(v *float64, b float64) {
		if *v == 0 {
			*v = b
		}
	}
	fill(&s.PageWidth, base.PageWidth)
	fill(&s.PageHeight, base.PageHeight)
	fill(&s.MarginTop, base.MarginTop)
	fill(&s.MarginBottom, base.MarginBottom)
	fill(&s.MarginLeft, base.MarginLeft)
	fill(&s.MarginRight, base.MarginRight)
	fill(&s.LineSpacing, base.LineSpacing)
	fill(&s.TabLineSpacing, base.TabLineSpacing)
	fill(&s.StaffTop, base.StaffTop)
	fill(&s.StaffBottom, base.StaffBottom)
	fill(&s.SystemSpacing, base.SystemSpacing)
	fill(&s.BandHeight, base.BandHeight)
	fill(&s.SpacingUnit, base.SpacingUnit)
	fill(&s.MaxTrailingStretch, base.MaxTrailingStretch)
	if s.BarsPerSystem == 0 {
		s.BarsPerSystem = base.BarsPerSystem
	}
	return s
}

// Registry is the set of named styles available to a score.
type Registry struct {
	styles map[string]Style
}

func NewRegistry() *Registry {
	return &Registry{styles: map[string]Style{}}
}

// DefaultRegistry holds the default and compact styles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DefaultStyle())
	r.Register(CompactStyle())
	return r
}

// Register adds or replaces a style. Unset fields fall back to the
// style of the same name already registered, else to DefaultStyle.
func (r *Registry) Register(s Style) {
	base, ok := r.styles[s.Name]
	if !ok {
		base = DefaultStyle()
	}
	r.styles[s.Name] = s.merge(base)
}

func (r *Registry) Get(name string) (Style, bool) {
	s, ok := r.styles[name]
	return s, ok
}

// Resolve returns the named style, the default style when the name is
// unknown.
func (r *Registry) Resolve(name string) Style {
	if s, ok := r.styles[name]; ok {
		return s
	}
	if s, ok := r.styles[DefaultStyleName]; ok {
		return s
	}
	return DefaultStyle()
}

func (r *Registry) Names() []string {
	return util.GetSortedKeys(r.styles)
}
