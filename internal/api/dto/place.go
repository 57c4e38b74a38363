package dto

type PlaceResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Category    string  `json:"category"`
	StayMinutes int     `json:"stay_minutes"`
}

type ListPlacesResponse struct {
	Places []PlaceResponse `json:"places"`
}
