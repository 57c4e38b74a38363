package domain

// DefaultPreferenceScore stands in for the personalization signal until
// one is wired in upstream.
const DefaultPreferenceScore = 70.0

// Weights for the four fitness components.
type Weights struct {
	Distance   float64 `json:"distance"`
	Time       float64 `json:"time"`
	Variety    float64 `json:"variety"`
	Preference float64 `json:"preference"`
}

// DefaultWeights favours short routes, then total time.
func DefaultWeights() Weights {
	return Weights{
		Distance:   0.4,
		Time:       0.25,
		Variety:    0.2,
		Preference: 0.15,
	}
}

func (w Weights) Sum() float64 {
	return w.Distance + w.Time + w.Variety + w.Preference
}

// Validate rejects configurations that cannot be normalized.
func (w Weights) Validate() error {
	if w.Sum() <= 0 {
		return NewValidationError("weights must sum to a positive value, got %g", w.Sum())
	}
	return nil
}
