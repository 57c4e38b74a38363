package domain

// Travel between two consecutive places of a course.
// Derived from the distance matrix, never stored on its own.
type RouteSegment struct {
	DistanceMeters  int
	DurationMinutes int
	Mode            TransportMode
	Description     string
}

// Score breakdown of an ordering. Every score is within [0, 100].
type OptimizationMetrics struct {
	DistanceScore   float64
	TimeScore       float64
	VarietyScore    float64
	PreferenceScore float64
	OverallScore    float64
}

// Represents the chosen visiting order for one optimization call.
// Order holds indices into the input place slice and is always a
// permutation of it. It is not mutated after it is produced.
type OptimizationResult struct {
	Strategy             string
	Order                []int
	Places               []Place
	TotalDistanceMeters  float64
	TotalDurationMinutes int
	Metrics              OptimizationMetrics
}

// A single stop of a timed course.
type ItineraryEntry struct {
	Place        Place
	VisitOrder   int
	Arrival      Clock
	StayMinutes  int
	Departure    Clock
	TravelToNext *RouteSegment
}
