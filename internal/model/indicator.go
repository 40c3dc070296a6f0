package model

// Indicator names. Technique rules and reports refer to indicators by these names.
const (
	IndicatorLSB        = "LSB Analysis"
	IndicatorHistogram  = "Histogram Analysis"
	IndicatorNoise      = "Noise Analysis"
	IndicatorChiSquare  = "Chi-Square Test"
	IndicatorMetadata   = "Metadata Analysis"
	IndicatorSamplePair = "Sample Pair Analysis"
	IndicatorRGB        = "RGB Correlation"
)

// Indicator is the outcome of one statistical test.
type Indicator struct {
	// Name identifies the test, e.g. "LSB Analysis".
	Name string `json:"name"`

	// Value is the scaled score in [0, 1]. Higher means more suspicious.
	Value float64 `json:"value"`

	// Raw is the score before logistic scaling.
	Raw float64 `json:"raw"`

	// Weight is the indicator's share in the weighted mean. Always positive.
	Weight float64 `json:"weight"`

	// Explanation describes what the test measures.
	Explanation string `json:"explanation,omitempty"`
}

// Strength classifies the indicator value.
func (i Indicator) Strength() Strength {
	return StrengthOf(i.Value)
}

// Contribution returns value times weight.
func (i Indicator) Contribution() float64 {
	return i.Value * i.Weight
}
