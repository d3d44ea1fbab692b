package entity

import (
	"time"
)

// Airport represents an airport reference attached to a flight record
type Airport struct {
	IATA     string `json:"iata"`
	ICAO     string `json:"icao"`
	Name     string `json:"name,omitempty"`
	Timezone string `json:"tz"`
}

// Airline represents an airline reference attached to a flight record
type Airline struct {
	Name string `json:"name"`
	ICAO string `json:"icao"`
}

// Aircraft represents an aircraft type reference attached to a flight record
type Aircraft struct {
	ICAO string `json:"icao"`
	Name string `json:"name,omitempty"`
}

// FlightRecord is a flight entry as returned by the Airtrail API.
// Optional fields are pointers so that an absent field can be told apart
// from an empty one.
type FlightRecord struct {
	ID           int64      `json:"id"`
	FlightNumber string     `json:"flightNumber"`
	Date         string     `json:"date"` // YYYY-MM-DD, local to origin
	From         *Airport   `json:"from"`
	To           *Airport   `json:"to"`
	Departure    *time.Time `json:"departure"` // UTC
	Arrival      *time.Time `json:"arrival"`   // UTC
	Airline      *Airline   `json:"airline"`
	Aircraft     *Aircraft  `json:"aircraft"`
	AircraftReg  *string    `json:"aircraftReg"`
	Note         *string    `json:"note"`

	// Present on the wire but not part of the save schema.
	Duration   int64 `json:"duration,omitempty"`
	FromID     int64 `json:"fromId,omitempty"`
	ToID       int64 `json:"toId,omitempty"`
	AirlineID  int64 `json:"airlineId,omitempty"`
	AircraftID int64 `json:"aircraftId,omitempty"`
}

// NoteText returns the note content or an empty string when absent.
func (f *FlightRecord) NoteText() string {
	if f.Note == nil {
		return ""
	}
	return *f.Note
}

// FlightUpdate is the payload submitted back to the Airtrail save
// endpoint. Relational fields are flattened to ICAO codes and legacy
// fields (duration, foreign-key ids) are excluded by construction.
type FlightUpdate struct {
	ID           int64  `json:"id"`
	FlightNumber string `json:"flightNumber,omitempty"`
	Date         string `json:"date"`
	From         string `json:"from"`
	To           string `json:"to"`
	Departure    string `json:"departure,omitempty"` // local time with offset
	Arrival      string `json:"arrival,omitempty"`   // local time with offset
	Airline      string `json:"airline,omitempty"`
	Aircraft     string `json:"aircraft,omitempty"`
	AircraftReg  string `json:"aircraftReg,omitempty"`
	Note         string `json:"note,omitempty"`
}
