// Package model owns the loaded scoring artifacts and exposes a single
// degrade-safe scoring capability. The bundle is built once at startup and
// shared read-only across requests; it never mutates its artifacts.
package model

import (
	"errors"
	"log/slog"
	"path/filepath"

	"kycgate/pkg/platform/sentinel"
)

// Mode is the bundle's capability state, computed once at load time and
// fixed for the process lifetime.
type Mode int

const (
	ModeUnavailable Mode = iota
	ModeClassifierOnly
	ModePartial
	ModeFull
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModePartial:
		return "partial"
	case ModeClassifierOnly:
		return "classifier-only"
	default:
		return "unavailable"
	}
}

// strategy is one rung of the degradation ladder: which transforms to apply
// before classification.
type strategy struct {
	mode     Mode
	selector *Selector
	scaler   *Scaler
}

// Bundle holds the classifier plus optional transforms and the fallback
// dataset. All fields are immutable after Load.
type Bundle struct {
	classifier *Classifier
	active     strategy
	fallback   *Fallback
	rawWidth   int
	logger     *slog.Logger
}

// Load builds the bundle from a model directory. It never fails: every
// missing or unusable artifact logs and lowers the capability state, down
// to ModeUnavailable when no classifier can score at all. rawWidth is the
// width of the raw feature vector the extractor produces.
func Load(dir string, rawWidth int, fallbackPath string, logger *slog.Logger) *Bundle {
	b := &Bundle{rawWidth: rawWidth, logger: logger}

	classifier, err := loadArtifact[Classifier](filepath.Join(dir, ClassifierFile))
	if err != nil {
		logger.Warn("classifier unavailable", "error", err)
	}
	selector, err := loadArtifact[Selector](filepath.Join(dir, SelectorFile))
	if err != nil {
		logger.Warn("feature selector unavailable", "error", err)
	}
	scaler, err := loadArtifact[Scaler](filepath.Join(dir, ScalerFile))
	if err != nil {
		logger.Warn("scaler unavailable", "error", err)
	}

	fallback, err := LoadFallback(fallbackPath)
	if err != nil {
		logger.Warn("fallback dataset unavailable", "error", err)
	} else {
		logger.Info("fallback dataset loaded", "entries", fallback.Len())
	}
	b.fallback = fallback

	b.classifier = classifier
	b.active = b.selectStrategy(classifier, selector, scaler)
	logger.Info("model bundle loaded",
		"mode", b.active.mode.String(),
		"classifier", classifier != nil,
		"selector", selector != nil,
		"scaler", scaler != nil,
	)
	return b
}

// selectStrategy walks the ladder full → partial → classifier-only and
// picks the first rung whose transform chain dry-runs cleanly against the
// raw vector width. Evaluated exactly once; scoring never re-ranks.
func (b *Bundle) selectStrategy(classifier *Classifier, selector *Selector, scaler *Scaler) strategy {
	if classifier == nil {
		return strategy{mode: ModeUnavailable}
	}

	var candidates []strategy
	if selector != nil && scaler != nil {
		candidates = append(candidates, strategy{mode: ModeFull, selector: selector, scaler: scaler})
	}
	if selector != nil {
		candidates = append(candidates, strategy{mode: ModePartial, selector: selector})
	}
	if scaler != nil {
		candidates = append(candidates, strategy{mode: ModePartial, scaler: scaler})
	}
	candidates = append(candidates, strategy{mode: ModeClassifierOnly})

	probe := make([]float64, b.rawWidth)
	for _, cand := range candidates {
		if _, err := classify(classifier, cand, probe); err != nil {
			b.logger.Warn("scoring strategy rejected at load",
				"mode", cand.mode.String(),
				"error", err,
			)
			continue
		}
		return cand
	}
	return strategy{mode: ModeUnavailable}
}

// classify runs one transform chain plus the classifier.
func classify(c *Classifier, s strategy, vec []float64) (float64, error) {
	x := vec
	var err error
	if s.selector != nil {
		if x, err = s.selector.Apply(x); err != nil {
			return 0, err
		}
	}
	if s.scaler != nil {
		if x, err = s.scaler.Apply(x); err != nil {
			return 0, err
		}
	}
	return c.Proba(x)
}

// Mode reports the capability state fixed at load time.
func (b *Bundle) Mode() Mode { return b.active.mode }

// Loaded reports which artifacts are present, for health reporting.
func (b *Bundle) Loaded() (classifier, selector, scaler bool) {
	return b.classifier != nil, b.active.selector != nil, b.active.scaler != nil
}

// FallbackEntries reports the size of the prior-evaluations dataset.
func (b *Bundle) FallbackEntries() int { return b.fallback.Len() }

// Score returns the fraud probability in [0,1] for a feature vector.
// degraded is true when the configured strategy could not run and the call
// resolved through the fallback path. Scoring never returns an error and
// never panics past this layer.
func (b *Bundle) Score(vec []float64, documentNumber string) (prob float64, degraded bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("scoring panic absorbed", "panic", r)
			prob, degraded = b.fallbackScore(documentNumber), true
		}
	}()

	if b.active.mode == ModeUnavailable {
		return b.fallbackScore(documentNumber), true
	}

	p, err := classify(b.classifier, b.active, vec)
	if err != nil {
		b.logger.Warn("scoring failed, using fallback",
			"mode", b.active.mode.String(),
			"error", err,
		)
		return b.fallbackScore(documentNumber), true
	}
	return clampUnit(p), false
}

// fallbackScore consults prior evaluations, then the safe default.
func (b *Bundle) fallbackScore(documentNumber string) float64 {
	p, err := b.fallback.Lookup(documentNumber)
	if errors.Is(err, sentinel.ErrNotFound) {
		return DefaultProbability
	}
	return clampUnit(p)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// StageTrace is a per-stage scoring breakdown for the admin diagnostics
// endpoint.
type StageTrace struct {
	Mode          string    `json:"mode"`
	Raw           []float64 `json:"raw"`
	AfterSelector []float64 `json:"afterSelector,omitempty"`
	AfterScaler   []float64 `json:"afterScaler,omitempty"`
	Probability   float64   `json:"probability"`
	Degraded      bool      `json:"degraded"`
	Error         string    `json:"error,omitempty"`
}

// Trace scores a vector while recording each stage's output.
func (b *Bundle) Trace(vec []float64, documentNumber string) StageTrace {
	t := StageTrace{Mode: b.active.mode.String(), Raw: vec}
	if b.active.mode == ModeUnavailable {
		t.Probability = b.fallbackScore(documentNumber)
		t.Degraded = true
		return t
	}

	x := vec
	var err error
	if b.active.selector != nil {
		if x, err = b.active.selector.Apply(x); err == nil {
			t.AfterSelector = x
		}
	}
	if err == nil && b.active.scaler != nil {
		if x, err = b.active.scaler.Apply(x); err == nil {
			t.AfterScaler = x
		}
	}
	if err == nil {
		var p float64
		if p, err = b.classifier.Proba(x); err == nil {
			t.Probability = clampUnit(p)
			return t
		}
	}

	t.Error = err.Error()
	t.Probability = b.fallbackScore(documentNumber)
	t.Degraded = true
	return t
}
