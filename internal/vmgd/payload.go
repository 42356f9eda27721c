package vmgd

import (
	"encoding/json"
	"fmt"
	"time"
)

// WeatherObject is one location's series from the forecast-map page. The
// page encodes it as a positional JSON array, one entry per location, with
// daily resolution for temperature/humidity and 6-hour resolution for
// condition and wind.
type WeatherObject struct {
	Location      string    `json:"location" validate:"required"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Dates         []string  `json:"dates" validate:"len=8,dive,required"`
	MinTemp       []int     `json:"minTemp" validate:"len=7"`
	MaxTemp       []int     `json:"maxTemp" validate:"len=7"`
	MinHumi       []int     `json:"minHumi" validate:"len=7"`
	MaxHumi       []int     `json:"maxHumi" validate:"len=7"`
	Condition     []int     `json:"weatherCondition" validate:"len=16"`
	WindDirection []float64 `json:"windDirection" validate:"len=16"`
	WindSpeed     []int     `json:"windSpeed" validate:"len=16"`
	DTFlag        int       `json:"dtFlag"`
	CurrentDate   string    `json:"currentDate"`
	DateHour      []string  `json:"dateHour" validate:"len=16"`

	// ResolvedDates is filled in by the aggregator once the relative date
	// fragments have been anchored to absolute UTC days.
	ResolvedDates []time.Time `json:"-" validate:"-"`
}

const weatherObjectFields = 14

// UnmarshalJSON decodes the positional array form used by the page.
func (w *WeatherObject) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("weather object is not an array: %w", err)
	}
	if len(fields) != weatherObjectFields {
		return fmt.Errorf("weather object has %d fields, want %d", len(fields), weatherObjectFields)
	}
	targets := []any{
		&w.Location, &w.Latitude, &w.Longitude,
		&w.Dates, &w.MinTemp, &w.MaxTemp, &w.MinHumi, &w.MaxHumi,
		&w.Condition, &w.WindDirection, &w.WindSpeed,
		&w.DTFlag, &w.CurrentDate, &w.DateHour,
	}
	for i, target := range targets {
		if err := json.Unmarshal(fields[i], target); err != nil {
			return fmt.Errorf("weather object field %d: %w", i, err)
		}
	}
	return nil
}

// DailyForecast is one "date : forecast" row from a location table on the
// seven-day public forecast page.
type DailyForecast struct {
	Location string `json:"location" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Summary  string `json:"summary"`
	MinTemp  int    `json:"minTemp" validate:"gte=0,lte=50"`
	MaxTemp  int    `json:"maxTemp" validate:"gte=0,lte=50"`
}

// WarningEntry is one (date, body) bulletin pair from a warnings table.
type WarningEntry struct {
	Date string `json:"date"`
	Body string `json:"body"`
}
