package dto

// OptimizeCourseRequest takes either stored place ids or inline places.
type OptimizeCourseRequest struct {
	PlaceIDs      []string       `json:"place_ids" validate:"required_without=Places,excluded_with=Places,omitempty,min=3,max=6,unique,dive,required"`
	Places        []PlaceInput   `json:"places" validate:"required_without=PlaceIDs,omitempty,min=3,max=6,dive"`
	TransportMode string         `json:"transport_mode" validate:"required,oneof=walking transit driving mixed"`
	StartTime     string         `json:"start_time" validate:"omitempty,datetime=15:04"`
	StartLocation *LocationInput `json:"start_location"`
	Weights       *WeightsInput  `json:"weights"`
	Strategy      string         `json:"strategy" validate:"omitempty,max=32"`
	Diversity     bool           `json:"diversity"`
}

type PlaceInput struct {
	ID          string  `json:"id" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=200"`
	Lat         float64 `json:"lat" validate:"latitude"`
	Lng         float64 `json:"lng" validate:"longitude"`
	Category    string  `json:"category"`
	StayMinutes int     `json:"stay_minutes" validate:"gte=0,lte=720"`
}

type LocationInput struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type WeightsInput struct {
	Distance   float64 `json:"distance" validate:"gte=0"`
	Time       float64 `json:"time" validate:"gte=0"`
	Variety    float64 `json:"variety" validate:"gte=0"`
	Preference float64 `json:"preference" validate:"gte=0"`
}

type MetricsResponse struct {
	DistanceScore   float64 `json:"distance_score"`
	TimeScore       float64 `json:"time_score"`
	VarietyScore    float64 `json:"variety_score"`
	PreferenceScore float64 `json:"preference_score"`
	OverallScore    float64 `json:"overall_score"`
}

type SegmentResponse struct {
	DistanceMeters  int    `json:"distance_meters"`
	DurationMinutes int    `json:"duration_minutes"`
	TransportMode   string `json:"transport_mode"`
	Description     string `json:"description"`
}

type ItineraryEntryResponse struct {
	VisitOrder   int              `json:"visit_order"`
	Place        PlaceResponse    `json:"place"`
	ArrivalTime  string           `json:"arrival_time"`
	StayMinutes  int              `json:"stay_minutes"`
	DepartTime   string           `json:"depart_time"`
	TravelToNext *SegmentResponse `json:"travel_to_next"`
}

type CourseResponse struct {
	Strategy             string                   `json:"strategy"`
	TransportMode        string                   `json:"transport_mode"`
	StartTime            string                   `json:"start_time"`
	EndTime              string                   `json:"end_time"`
	Order                []string                 `json:"order"`
	TotalDistanceMeters  int                      `json:"total_distance_meters"`
	TotalDurationMinutes int                      `json:"total_duration_minutes"`
	IsFallback           bool                     `json:"is_fallback"`
	Metrics              MetricsResponse          `json:"metrics"`
	Itinerary            []ItineraryEntryResponse `json:"itinerary"`
}
