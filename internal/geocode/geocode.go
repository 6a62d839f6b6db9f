// Package geocode implements a minimal reverse geocoder: given a GPS
// coordinate, it returns the nearest city in a small bundled gazetteer.
//
// No third-party Go library for reverse geocoding was found anywhere in
// the reference corpus (the distilled source used Rust's
// reverse_geocoder crate, which has no Go equivalent available here), so
// this mirrors that crate's general approach — a bundled dataset searched
// for the nearest point — implemented directly against the standard
// library.
package geocode

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

//go:embed cities.csv
var citiesCSV []byte

// City is one gazetteer entry.
type City struct {
	Name    string
	Admin1  string
	Admin2  string
	Country string
	Lat     float64
	Lon     float64
}

var (
	loadOnce sync.Once
	cities   []City
	loadErr  error
)

func load() {
	r := csv.NewReader(strings.NewReader(string(citiesCSV)))
	records, err := r.ReadAll()
	if err != nil {
		loadErr = fmt.Errorf("parse embedded gazetteer: %w", err)
		return
	}
	if len(records) < 2 {
		loadErr = fmt.Errorf("embedded gazetteer is empty")
		return
	}
	for _, row := range records[1:] { // skip header
		if len(row) != 6 {
			continue
		}
		lat, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			continue
		}
		cities = append(cities, City{
			Name:    row[0],
			Admin1:  row[1],
			Admin2:  row[2],
			Country: row[3],
			Lat:     lat,
			Lon:     lon,
		})
	}
}

// Nearest returns the gazetteer entry closest to (lat, lon) by great-circle
// distance.
func Nearest(lat, lon float64) (City, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return City{}, loadErr
	}
	if len(cities) == 0 {
		return City{}, fmt.Errorf("gazetteer has no entries")
	}
	best := cities[0]
	bestDist := haversine(lat, lon, best.Lat, best.Lon)
	for _, c := range cities[1:] {
		d := haversine(lat, lon, c.Lat, c.Lon)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best, nil
}

const earthRadiusKm = 6371.0

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180.0
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Format renders a city the way the exif extractor indexes it:
// "{name} {admin1} {admin2} {country}".
func (c City) Format() string {
	return fmt.Sprintf("%s %s %s %s", c.Name, c.Admin1, c.Admin2, c.Country)
}
