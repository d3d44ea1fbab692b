package utils

// FlightFacts holds the facts extracted from one scraped flight-history
// row. Produced once per scrape attempt and consumed immediately; never
// persisted.
type FlightFacts struct {
	AircraftName    string
	AircraftICAO    string
	AircraftReg     string
	DepartureStatus string
	ArrivalStatus   string
	DetailsURL      string

	// Identity as rendered by the source page, used to guard against
	// codeshare/lookalike mismatches before merging.
	Airline      string
	FlightNumber string
}

// Constants
const (
	DATE_LAYOUT     = "2006-01-02"
	ROW_DATE_LAYOUT = "2. Jan 2006"
)
