package domain

import "strings"

// TransportMode selects both the routing profile and the fallback speed.
type TransportMode string

const (
	ModeWalking TransportMode = "walking"
	ModeTransit TransportMode = "transit"
	ModeDriving TransportMode = "driving"
	ModeMixed   TransportMode = "mixed"
)

// ParseTransportMode validates a mode string.
func ParseTransportMode(s string) (TransportMode, error) {
	m := TransportMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", NewValidationError("invalid transport mode %q", s)
	}
	return m, nil
}

func (m TransportMode) Valid() bool {
	switch m {
	case ModeWalking, ModeTransit, ModeDriving, ModeMixed:
		return true
	}
	return false
}

func (m TransportMode) String() string { return string(m) }
