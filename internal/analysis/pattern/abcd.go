package pattern

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Tracer88/Momentum/config"
	"github.com/Tracer88/Momentum/models"
)

// Direction of a harmonic pattern.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
)

// Strength labels for completed patterns.
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
)

// Ideal Fibonacci relationships for the AB:CD legs.
var idealABCDRatios = []float64{1.0, 0.618, 1.618}

// Pattern is a completed ABCD harmonic pattern.
type Pattern struct {
	Direction   Direction  `json:"direction"`
	A           SwingPoint `json:"a"`
	B           SwingPoint `json:"b"`
	C           SwingPoint `json:"c"`
	D           SwingPoint `json:"d"`
	ABCDRatio   float64    `json:"ab_cd_ratio"`
	BCCDRatio   float64    `json:"bc_cd_ratio"`
	Retracement float64    `json:"bc_retracement"`
	Confidence  float64    `json:"confidence"`
	Strength    string     `json:"strength"`
	Entry       float64    `json:"entry"`
	Target      float64    `json:"target"`
	Stop        float64    `json:"stop"`
}

// PotentialPattern is a forming pattern with three confirmed legs and a
// projected completion point.
type PotentialPattern struct {
	Direction       Direction  `json:"direction"`
	A               SwingPoint `json:"a"`
	B               SwingPoint `json:"b"`
	C               SwingPoint `json:"c"`
	ProjectedD      float64    `json:"projected_d"`
	CompletionRatio float64    `json:"completion_ratio"`
	Confidence      float64    `json:"confidence"`
}

// Signal types emitted from pattern state.
const (
	SignalEntry            = "entry"
	SignalAnticipatedEntry = "anticipated_entry"
	SignalTakeProfit       = "take_profit"
	SignalStopLoss         = "stop_loss"
)

// Signal is an actionable event derived from a pattern and the current price.
type Signal struct {
	Type      string    `json:"type"`
	Direction Direction `json:"direction"`
	Price     float64   `json:"price"`
	Target    float64   `json:"target,omitempty"`
	Stop      float64   `json:"stop,omitempty"`
}

// Active is the single pattern currently considered tradeable, either a
// completed one or a forming one near completion.
type Active struct {
	Complete  *Pattern          `json:"complete,omitempty"`
	Potential *PotentialPattern `json:"potential,omitempty"`
}

// Analysis is the full output of one pattern-matching pass.
type Analysis struct {
	Completed    []Pattern          `json:"completed"`
	Potential    []PotentialPattern `json:"potential"`
	Active       *Active            `json:"active,omitempty"`
	EntrySignals []Signal           `json:"entry_signals"`
	ExitSignals  []Signal           `json:"exit_signals"`
}

// BullishCount returns the number of completed bullish patterns.
func (a Analysis) BullishCount() int {
	n := 0
	for _, p := range a.Completed {
		if p.Direction == Bullish {
			n++
		}
	}
	return n
}

// ABCDPatternMatcher searches swing points for completed and forming ABCD
// harmonic patterns. The search is bounded: each leg looks at most
// lookahead swing points ahead, and a pattern may span at most maxLength
// bars, which keeps the combinatorial cost linear in practice.
type ABCDPatternMatcher struct {
	detector *SwingPointDetector

	minLength            int
	maxLength            int
	lookahead            int
	fibTolerance         float64
	retracementMin       float64
	retracementMax       float64
	potentialLookahead   int
	staleBars            int
	completionActionable float64
	maxPotential         int

	logger zerolog.Logger
}

// NewABCDPatternMatcher builds a matcher from config.
func NewABCDPatternMatcher(cfg *config.Config) *ABCDPatternMatcher {
	return &ABCDPatternMatcher{
		detector:             NewSwingPointDetector(cfg),
		minLength:            cfg.PatternMinLength,
		maxLength:            cfg.PatternMaxLength,
		lookahead:            cfg.PatternLookahead,
		fibTolerance:         cfg.FibTolerance,
		retracementMin:       cfg.RetracementMin,
		retracementMax:       cfg.RetracementMax,
		potentialLookahead:   cfg.PotentialLookahead,
		staleBars:            cfg.PotentialStaleBars,
		completionActionable: cfg.CompletionActionable,
		maxPotential:         cfg.MaxPotentialPatterns,
		logger:               log.With().Str("component", "abcd_matcher").Logger(),
	}
}

// Detect runs the full pattern pass over candles. With too few candles it
// returns an empty analysis rather than an error.
func (m *ABCDPatternMatcher) Detect(candles []models.Candle) Analysis {
	analysis := Analysis{
		Completed:    []Pattern{},
		Potential:    []PotentialPattern{},
		EntrySignals: []Signal{},
		ExitSignals:  []Signal{},
	}
	if len(candles) == 0 {
		return analysis
	}

	swings := m.detector.Detect(candles)
	currentPrice := candles[len(candles)-1].Close

	analysis.Completed = m.findCompleted(swings)
	analysis.Potential = m.findPotential(swings, len(candles), currentPrice)
	analysis.EntrySignals, analysis.ExitSignals = m.deriveSignals(analysis.Completed, analysis.Potential, currentPrice)
	analysis.Active = m.selectActive(analysis.Completed, analysis.Potential)

	m.logger.Debug().
		Int("swings", len(swings)).
		Int("completed", len(analysis.Completed)).
		Int("potential", len(analysis.Potential)).
		Msg("pattern detection complete")

	return analysis
}

// findCompleted enumerates valid A-B-C-D sequences and returns them with
// overlapping lower-confidence patterns removed.
func (m *ABCDPatternMatcher) findCompleted(swings []SwingPoint) []Pattern {
	var found []Pattern

	for i := 0; i < len(swings); i++ {
		for j := i + 1; j < len(swings) && j <= i+m.lookahead; j++ {
			for k := j + 1; k < len(swings) && k <= j+m.lookahead; k++ {
				for l := k + 1; l < len(swings) && l <= k+m.lookahead; l++ {
					a, b, c, d := swings[i], swings[j], swings[k], swings[l]

					span := d.Index - a.Index
					if span < m.minLength || span > m.maxLength {
						continue
					}

					direction, ok := classify(a, b, c, d)
					if !ok {
						continue
					}

					p, valid := m.buildPattern(direction, a, b, c, d)
					if valid {
						found = append(found, p)
					}
				}
			}
		}
	}

	sort.Slice(found, func(x, y int) bool {
		if found[x].Confidence != found[y].Confidence {
			return found[x].Confidence > found[y].Confidence
		}
		return found[x].D.Index > found[y].D.Index
	})

	return filterOverlaps(found)
}

// classify checks swing-type alternation; trough-peak-trough-peak forms a
// bullish pattern, the mirror a bearish one.
func classify(a, b, c, d SwingPoint) (Direction, bool) {
	if a.Type == SwingTrough && b.Type == SwingPeak && c.Type == SwingTrough && d.Type == SwingPeak {
		return Bullish, true
	}
	if a.Type == SwingPeak && b.Type == SwingTrough && c.Type == SwingPeak && d.Type == SwingTrough {
		return Bearish, true
	}
	return "", false
}

// buildPattern validates leg ratios and, when valid, fills in confidence,
// strength and trade levels.
func (m *ABCDPatternMatcher) buildPattern(direction Direction, a, b, c, d SwingPoint) (Pattern, bool) {
	ab := math.Abs(b.Price - a.Price)
	bc := math.Abs(c.Price - b.Price)
	cd := math.Abs(d.Price - c.Price)

	// Degenerate legs produce zero ratios, which never validate.
	abcd := 0.0
	if ab != 0 {
		abcd = cd / ab
	}
	bccd := 0.0
	if cd != 0 {
		bccd = bc / cd
	}
	retracement := 0.0
	if ab != 0 {
		retracement = bc / ab
	}

	if !m.nearIdealRatio(abcd) {
		return Pattern{}, false
	}
	if retracement < m.retracementMin || retracement > m.retracementMax {
		return Pattern{}, false
	}

	confidence := m.scoreConfidence(abcd, bccd, retracement)

	p := Pattern{
		Direction:   direction,
		A:           a,
		B:           b,
		C:           c,
		D:           d,
		ABCDRatio:   abcd,
		BCCDRatio:   bccd,
		Retracement: retracement,
		Confidence:  confidence,
		Entry:       d.Price,
	}

	if direction == Bullish {
		p.Target = d.Price + 0.618*cd
		p.Stop = c.Price * 0.98
	} else {
		p.Target = d.Price - 0.618*cd
		p.Stop = c.Price * 1.02
	}

	switch {
	case confidence >= 80 && math.Abs(abcd-1.0) <= m.fibTolerance:
		p.Strength = StrengthStrong
	case confidence >= 60:
		p.Strength = StrengthModerate
	default:
		p.Strength = StrengthWeak
	}

	return p, true
}

func (m *ABCDPatternMatcher) nearIdealRatio(ratio float64) bool {
	for _, ideal := range idealABCDRatios {
		if math.Abs(ratio-ideal) <= m.fibTolerance {
			return true
		}
	}
	return false
}

// scoreConfidence awards points per ratio quality tier, capped at 100.
func (m *ABCDPatternMatcher) scoreConfidence(abcd, bccd, retracement float64) float64 {
	score := 0.0

	switch {
	case math.Abs(abcd-1.0) <= 0.05:
		score += 40
	case math.Abs(abcd-1.0) <= 0.1:
		score += 30
	case math.Abs(abcd-0.618) <= m.fibTolerance || math.Abs(abcd-1.618) <= m.fibTolerance:
		score += 25
	}

	switch {
	case math.Abs(retracement-0.618) <= 0.05:
		score += 30
	case math.Abs(retracement-0.5) <= 0.05:
		score += 25
	case retracement >= m.retracementMin && retracement <= m.retracementMax:
		score += 20
	}

	switch {
	case math.Abs(bccd-0.618) <= 0.05:
		score += 30
	case math.Abs(bccd-0.5) <= 0.1:
		score += 20
	case bccd >= 0.3 && bccd <= 0.8:
		score += 15
	}

	return math.Min(score, 100)
}

// filterOverlaps keeps the highest-ranked pattern per bar interval; any
// later pattern whose [A, D] range intersects a kept one is dropped.
func filterOverlaps(patterns []Pattern) []Pattern {
	kept := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		overlaps := false
		for _, k := range kept {
			if p.A.Index <= k.D.Index && k.A.Index <= p.D.Index {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, p)
		}
	}
	return kept
}

// findPotential enumerates A-B-C legs that could complete into a pattern
// and scores how close the current price is to the projected D.
func (m *ABCDPatternMatcher) findPotential(swings []SwingPoint, totalBars int, currentPrice float64) []PotentialPattern {
	var found []PotentialPattern

	for i := 0; i < len(swings); i++ {
		for j := i + 1; j < len(swings) && j <= i+m.potentialLookahead; j++ {
			for k := j + 1; k < len(swings) && k <= j+m.potentialLookahead; k++ {
				a, b, c := swings[i], swings[j], swings[k]

				// A C too far in the past cannot complete anymore.
				if totalBars-c.Index > m.staleBars {
					continue
				}

				var direction Direction
				if a.Type == SwingTrough && b.Type == SwingPeak && c.Type == SwingTrough {
					direction = Bullish
				} else if a.Type == SwingPeak && b.Type == SwingTrough && c.Type == SwingPeak {
					direction = Bearish
				} else {
					continue
				}

				ab := math.Abs(b.Price - a.Price)
				if ab == 0 {
					continue
				}
				retracement := math.Abs(c.Price-b.Price) / ab
				if retracement < m.retracementMin || retracement > m.retracementMax {
					continue
				}

				projected := c.Price + ab
				if direction == Bearish {
					projected = c.Price - ab
				}

				completion := 1 - math.Abs(currentPrice-projected)/(0.2*ab)
				if completion < 0 {
					completion = 0
				}
				if completion < m.completionActionable {
					continue
				}

				confidence := 0.0
				switch {
				case math.Abs(retracement-0.618) <= 0.05:
					confidence = 50
				case math.Abs(retracement-0.5) <= 0.05:
					confidence = 40
				default:
					confidence = 30
				}
				confidence += completion * 50

				found = append(found, PotentialPattern{
					Direction:       direction,
					A:               a,
					B:               b,
					C:               c,
					ProjectedD:      projected,
					CompletionRatio: completion,
					Confidence:      math.Min(confidence, 100),
				})
			}
		}
	}

	sort.Slice(found, func(x, y int) bool {
		if found[x].CompletionRatio != found[y].CompletionRatio {
			return found[x].CompletionRatio > found[y].CompletionRatio
		}
		return found[x].C.Index > found[y].C.Index
	})

	if len(found) > m.maxPotential {
		found = found[:m.maxPotential]
	}
	return found
}

// deriveSignals turns pattern state plus the current price into entry and
// exit events.
func (m *ABCDPatternMatcher) deriveSignals(completed []Pattern, potential []PotentialPattern, price float64) (entries, exits []Signal) {
	entries = []Signal{}
	exits = []Signal{}

	for _, p := range completed {
		cd := math.Abs(p.D.Price - p.C.Price)
		if p.Confidence >= 60 && math.Abs(price-p.D.Price) <= 0.1*cd {
			entries = append(entries, Signal{
				Type:      SignalEntry,
				Direction: p.Direction,
				Price:     p.Entry,
				Target:    p.Target,
				Stop:      p.Stop,
			})
		}

		if p.Direction == Bullish {
			if price >= p.Target {
				exits = append(exits, Signal{Type: SignalTakeProfit, Direction: p.Direction, Price: p.Target})
			} else if price <= p.Stop {
				exits = append(exits, Signal{Type: SignalStopLoss, Direction: p.Direction, Price: p.Stop})
			}
		} else {
			if price <= p.Target {
				exits = append(exits, Signal{Type: SignalTakeProfit, Direction: p.Direction, Price: p.Target})
			} else if price >= p.Stop {
				exits = append(exits, Signal{Type: SignalStopLoss, Direction: p.Direction, Price: p.Stop})
			}
		}
	}

	for _, p := range potential {
		if p.CompletionRatio >= 0.8 {
			entries = append(entries, Signal{
				Type:      SignalAnticipatedEntry,
				Direction: p.Direction,
				Price:     p.ProjectedD,
			})
		}
	}

	return entries, exits
}

// selectActive picks the single pattern worth acting on: a confident
// completed pattern first, then a nearly complete forming one, then the
// best of whatever is left.
func (m *ABCDPatternMatcher) selectActive(completed []Pattern, potential []PotentialPattern) *Active {
	for idx := range completed {
		p := completed[idx]
		if p.Confidence >= 70 && (p.Strength == StrengthStrong || p.Strength == StrengthModerate) {
			return &Active{Complete: &p}
		}
	}
	for idx := range potential {
		p := potential[idx]
		if p.CompletionRatio >= 0.8 && p.Confidence >= 60 {
			return &Active{Potential: &p}
		}
	}
	if len(completed) > 0 {
		p := completed[0]
		return &Active{Complete: &p}
	}
	if len(potential) > 0 {
		p := potential[0]
		return &Active{Potential: &p}
	}
	return nil
}
