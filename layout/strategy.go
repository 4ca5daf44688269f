package layout

import (
	"fmt"

	"github.com/jsphweid/engraver/util"
)

type StrategyKind uint8

const (
	KindFlexible StrategyKind = iota
	KindFixed
	KindManual
	KindHorizontal
)

var strategyNames = []string{"flexible", "fixed", "manual", "horizontal"}

func (k StrategyKind) String() string {
	if int(k) < len(strategyNames) {
		return strategyNames[k]
	}
	return "unknown"
}

// Strategy partitions bars into systems and systems into pages. The
// implementations are Flexible, Fixed, Manual and Horizontal.
type Strategy interface {
	Kind() StrategyKind
	CalculateSystems(s *Score) error
	DispatchSystems(s *Score) error
}

// DefaultBarsPerSystem is used by Fixed and Manual when no count is set.
const DefaultBarsPerSystem = 4

// ParseStrategy maps a strategy name to an implementation; the empty
// name is Flexible.
func ParseStrategy(name string, barsPerSystem int) (Strategy, error) {
	if barsPerSystem <= 0 {
		barsPerSystem = DefaultBarsPerSystem
	}
	switch name {
	case "", "flexible":
		return Flexible{}, nil
	case "fixed":
		return Fixed{BarsPerSystem: barsPerSystem}, nil
	case "manual":
		return Manual{BarsPerSystem: barsPerSystem}, nil
	case "horizontal":
		return Horizontal{}, nil
	}
	return nil, fmt.Errorf("unknown layout strategy %q", name)
}

// Flexible fills each system with as many bars as fit their ideal width
// and then stretches them to the content width.
type Flexible struct{}

func (Flexible) Kind() StrategyKind { return KindFlexible }

func (Flexible) CalculateSystems(s *Score) error {
	s.measure()
	limit := s.Style.ContentWidth()
	spans := s.spans(true)
	for i := 0; i < len(spans); {
		line := []span{spans[i]}
		width := s.Metrics[spans[i].first].Width(true)
		i++
		for i < len(spans) && !s.breaksAfter(line[len(line)-1].last) {
			w := s.Metrics[spans[i].first].Width(false)
			if width+w >= limit {
				break
			}
			width += w
			line = append(line, spans[i])
			i++
		}
		sys := s.newSystem(line)
		s.stretch(sys, limit, sys.ForcedBreak || i == len(spans))
	}
	return nil
}

func (Flexible) DispatchSystems(s *Score) error {
	s.paginate()
	return nil
}

// Fixed puts a constant number of bars on every system.
type Fixed struct {
	BarsPerSystem int
}

func (Fixed) Kind() StrategyKind { return KindFixed }

func (f Fixed) CalculateSystems(s *Score) error {
	return fixedSystems(s, f.BarsPerSystem, false)
}

func (Fixed) DispatchSystems(s *Score) error {
	s.paginate()
	return nil
}

// Manual is Fixed, except that a forced system break ends a system early.
type Manual struct {
	BarsPerSystem int
}

func (Manual) Kind() StrategyKind { return KindManual }

func (m Manual) CalculateSystems(s *Score) error {
	return fixedSystems(s, m.BarsPerSystem, true)
}

func (Manual) DispatchSystems(s *Score) error {
	s.paginate()
	return nil
}

func fixedSystems(s *Score, per int, honorBreaks bool) error {
	if per <= 0 {
		per = DefaultBarsPerSystem
	}
	s.measure()
	spans := s.spans(false)
	for i := 0; i < len(spans); {
		end := util.Min(i+per, len(spans))
		if honorBreaks {
			for j := i; j < end; j++ {
				if s.breaksAfter(spans[j].last) {
					end = j + 1
					break
				}
			}
		}
		sys := s.newSystem(spans[i:end])
		i = end
		s.stretch(sys, s.Style.ContentWidth(), i == len(spans) || (honorBreaks && sys.ForcedBreak))
	}
	return nil
}

// Horizontal lays out the whole song as one unstretched system on a page
// sized to fit it.
type Horizontal struct{}

func (Horizontal) Kind() StrategyKind { return KindHorizontal }

func (Horizontal) CalculateSystems(s *Score) error {
	s.measure()
	spans := s.spans(true)
	if len(spans) == 0 {
		return nil
	}
	sys := s.newSystem(spans)
	s.stretch(sys, 0, false)
	return nil
}

func (Horizontal) DispatchSystems(s *Score) error {
	if len(s.Systems) == 0 {
		return nil
	}
	sys := s.Systems[0]
	st := s.Style
	p := s.takePage(0)
	p.Width = sys.Width + st.MarginLeft + st.MarginRight
	p.Height = sys.Height + st.MarginTop + st.MarginBottom
	sys.Y, sys.Page = 0, 0
	p.Systems = append(p.Systems, sys)
	p.used = sys.Height
	s.Pages = []*Page{p}
	return nil
}
