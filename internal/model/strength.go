package model

// Strength classifies how strongly a single indicator points at hidden data.
type Strength int

const (
	// StrengthWeak is used for indicator values up to 0.4.
	StrengthWeak Strength = iota

	// StrengthModerate is used for indicator values above 0.4 and up to 0.7.
	StrengthModerate

	// StrengthStrong is used for indicator values above 0.7.
	StrengthStrong
)

// StrengthOf classifies an indicator value.
func StrengthOf(value float64) Strength {
	switch {
	case value > 0.7:
		return StrengthStrong
	case value > 0.4:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// String returns the lower-case label used in detail lines.
func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthModerate:
		return "moderate"
	case StrengthStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// Band is the coarse traffic-light level of an overall likelihood.
type Band int

const (
	// BandLow covers likelihoods below 0.3.
	BandLow Band = iota

	// BandElevated covers likelihoods from 0.3 up to 0.7.
	BandElevated

	// BandHigh covers likelihoods of 0.7 and above.
	BandHigh
)

// BandOf returns the band of a likelihood.
func BandOf(likelihood float64) Band {
	switch {
	case likelihood < 0.3:
		return BandLow
	case likelihood < 0.7:
		return BandElevated
	default:
		return BandHigh
	}
}

// String returns the band label.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "LOW"
	case BandElevated:
		return "ELEVATED"
	case BandHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// ColorCode returns the hex colour conventionally used to render the band.
func (b Band) ColorCode() string {
	switch b {
	case BandLow:
		return "#00ff00"
	case BandElevated:
		return "#ffff00"
	default:
		return "#ff0000"
	}
}
