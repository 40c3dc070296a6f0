package model

import (
	"fmt"
	"time"
)

// Technique labels produced by DeterminePotentialTechniques.
const (
	TechniqueLSB            = "LSB Steganography"
	TechniqueMetadata       = "Metadata Embedding"
	TechniqueFrequency      = "Frequency Domain Steganography (DCT)"
	TechniqueLSBReplacement = "LSB Replacement"
	TechniqueUnknown        = "Unknown Steganographic Technique"
)

// Narrative sentences for each likelihood band.
const (
	explanationNone     = "No significant indicators of steganography detected. The image appears normal."
	explanationMinor    = "Some minor irregularities detected, but they could be due to normal image processing."
	explanationPossible = "Several indicators suggest possible hidden data. The image shows patterns that may be consistent with steganographic techniques."
	explanationHigh     = "High likelihood of hidden data detected. Multiple indicators suggest steganographic content."
	explanationVeryHigh = "Very strong evidence of hidden data. The image exhibits clear signs of steganographic manipulation."
)

// DetectionResult aggregates the indicators computed for one image.
//
// A result is built by adding every indicator, then calling
// CalculateOverallLikelihood exactly once, then GenerateExplanation and
// DeterminePotentialTechniques. After CalculateOverallLikelihood the
// indicator set can no longer change.
type DetectionResult struct {
	// Likelihood is the weighted mean of the indicator values, in [0, 1].
	Likelihood float64 `json:"likelihood"`

	// Indicators holds the computed indicators in registration order.
	Indicators []Indicator `json:"indicators"`

	// Techniques lists inferred hiding techniques in rule order.
	Techniques []string `json:"techniques"`

	// Explanation is the narrative sentence for the likelihood band.
	Explanation string `json:"explanation"`

	// DetailedFindings has one line per indicator.
	DetailedFindings []string `json:"detailed_findings"`

	// Error is set when the image could not be analyzed.
	Error string `json:"error,omitempty"`

	// AnalyzedAt is when the analysis finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	finalized bool
}

// NewDetectionResult creates an empty result.
func NewDetectionResult() *DetectionResult {
	return &DetectionResult{
		Indicators:       make([]Indicator, 0, 7),
		Techniques:       make([]string, 0),
		DetailedFindings: make([]string, 0),
	}
}

// ErrorResult returns a finalized result that reports a failed analysis.
// The likelihood is zero and the explanation carries the failure reason.
func ErrorResult(err error) *DetectionResult {
	r := NewDetectionResult()
	r.Error = err.Error()
	r.Explanation = "Error analyzing image: " + err.Error()
	r.AnalyzedAt = time.Now()
	r.finalized = true
	return r
}

// AddIndicator registers an indicator. An indicator with the same name
// replaces the earlier one in place.
func (r *DetectionResult) AddIndicator(ind Indicator) error {
	if r.finalized {
		return ErrAlreadyFinalized
	}
	if ind.Name == "" {
		return ErrEmptyIndicatorName
	}
	if ind.Weight <= 0 {
		return fmt.Errorf("%w: %s has weight %v", ErrInvalidWeight, ind.Name, ind.Weight)
	}

	for i := range r.Indicators {
		if r.Indicators[i].Name == ind.Name {
			r.Indicators[i] = ind
			return nil
		}
	}
	r.Indicators = append(r.Indicators, ind)
	return nil
}

// Indicator looks up an indicator by name.
func (r *DetectionResult) Indicator(name string) (Indicator, bool) {
	for _, ind := range r.Indicators {
		if ind.Name == name {
			return ind, true
		}
	}
	return Indicator{}, false
}

// CalculateOverallLikelihood computes the weighted mean of the indicator
// values and freezes the indicator set. With no indicators the likelihood
// is zero. A second call returns ErrAlreadyFinalized.
func (r *DetectionResult) CalculateOverallLikelihood() (float64, error) {
	if r.finalized {
		return r.Likelihood, ErrAlreadyFinalized
	}
	r.finalized = true

	var weighted, total float64
	for _, ind := range r.Indicators {
		weighted += ind.Value * ind.Weight
		total += ind.Weight
	}
	if total > 0 {
		r.Likelihood = weighted / total
	}
	return r.Likelihood, nil
}

// Finalized reports whether the likelihood has been calculated.
func (r *DetectionResult) Finalized() bool {
	return r.finalized
}

// GenerateExplanation sets the band sentence and one detail line per
// indicator. The output depends only on the likelihood and the indicators,
// so repeated calls produce identical text.
func (r *DetectionResult) GenerateExplanation() string {
	if r.Error != "" {
		return r.Explanation
	}

	switch {
	case r.Likelihood < 0.1:
		r.Explanation = explanationNone
	case r.Likelihood < 0.3:
		r.Explanation = explanationMinor
	case r.Likelihood < 0.6:
		r.Explanation = explanationPossible
	case r.Likelihood < 0.8:
		r.Explanation = explanationHigh
	default:
		r.Explanation = explanationVeryHigh
	}

	details := make([]string, 0, len(r.Indicators))
	for _, ind := range r.Indicators {
		details = append(details, fmt.Sprintf("%s shows %s indication (%.1f%%)",
			ind.Name, ind.Strength(), ind.Value*100))
	}
	r.DetailedFindings = details

	return r.Explanation
}

// DeterminePotentialTechniques applies the technique rules in a fixed
// order and stores the labels that match.
func (r *DetectionResult) DeterminePotentialTechniques() []string {
	value := func(name string) float64 {
		ind, ok := r.Indicator(name)
		if !ok {
			return 0
		}
		return ind.Value
	}

	techniques := make([]string, 0)
	lsbFlagged := false

	if value(IndicatorLSB) > 0.6 {
		techniques = append(techniques, TechniqueLSB)
		lsbFlagged = true
	}
	if value(IndicatorMetadata) > 0.6 {
		techniques = append(techniques, TechniqueMetadata)
	}
	if value(IndicatorNoise) > 0.7 && value(IndicatorHistogram) > 0.5 {
		techniques = append(techniques, TechniqueFrequency)
	}
	if value(IndicatorSamplePair) > 0.7 && !lsbFlagged {
		techniques = append(techniques, TechniqueLSBReplacement)
	}
	if r.Likelihood > 0.7 && len(techniques) == 0 {
		techniques = append(techniques, TechniqueUnknown)
	}

	r.Techniques = techniques
	return techniques
}

// FormattedLikelihood returns the likelihood as a percentage, e.g. "42.0%".
func (r *DetectionResult) FormattedLikelihood() string {
	return fmt.Sprintf("%.1f%%", r.Likelihood*100)
}

// Band returns the traffic-light band of the likelihood.
func (r *DetectionResult) Band() Band {
	return BandOf(r.Likelihood)
}

// Failed reports whether the analysis ended in an error state.
func (r *DetectionResult) Failed() bool {
	return r.Error != ""
}

// TotalWeight returns the sum of indicator weights.
func (r *DetectionResult) TotalWeight() float64 {
	var total float64
	for _, ind := range r.Indicators {
		total += ind.Weight
	}
	return total
}
