package services

import (
	"course-route-service/internal/domain"
	"course-route-service/internal/geo"
	"fmt"
	"math/rand/v2"
)

// Roughly one kilometer of latitude.
const kmLat = 0.008993

var origin = domain.Coordinates{Lat: 37.5665, Lon: 126.9780}

func place(id string, dLatKm, dLngKm float64, cat domain.Category, stay int) domain.Place {
	return domain.Place{
		ID:          id,
		Name:        "Place " + id,
		Lat:         origin.Lat + dLatKm*kmLat,
		Lng:         origin.Lon + dLngKm*kmLat,
		Category:    cat,
		StayMinutes: stay,
	}
}

// geoMatrix builds a matrix straight from great-circle estimates.
func geoMatrix(places []domain.Place, mode domain.TransportMode) *domain.DistanceMatrix {
	m := domain.NewDistanceMatrix(len(places), mode)
	for i, a := range places {
		m.PlaceIDs[i] = a.ID
		for j, b := range places {
			if i == j {
				continue
			}
			m.Distances[i][j], m.Durations[i][j] = geo.Estimate(a.Coords(), b.Coords(), mode)
		}
	}
	return m
}

func randomPlaces(rng *rand.Rand, n int) []domain.Place {
	cats := []domain.Category{domain.CategoryCafe, domain.CategoryRestaurant, domain.CategoryCulture, domain.CategoryBar}
	out := make([]domain.Place, n)
	for i := range out {
		out[i] = place(
			fmt.Sprintf("p%d", i),
			rng.Float64()*10-5,
			rng.Float64()*10-5,
			cats[rng.IntN(len(cats))],
			30+rng.IntN(90),
		)
	}
	return out
}

func isPermutation(order []int, n int) bool {
	return checkPermutation(order, n) == nil
}

// permutations enumerates every ordering of 0..n-1.
func permutations(n int) [][]int {
	var out [][]int
	var rec func(prefix []int, used []bool)
	rec = func(prefix []int, used []bool) {
		if len(prefix) == n {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			rec(append(prefix, i), used)
			used[i] = false
		}
	}
	rec(nil, make([]bool, n))
	return out
}
