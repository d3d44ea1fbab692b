package usecase

import (
	"strings"
	"time"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/pkg/utils"
)

// NormalizeFlightNumber strips all whitespace and upper-cases a flight
// number so "dl 3181" and "DL3181" compare equal.
func NormalizeFlightNumber(number string) string {
	return strings.ToUpper(strings.Join(strings.Fields(number), ""))
}

// MatchFlight selects the first record identifying the intended flight.
// The airport code is accepted as either IATA or ICAO, and the date is
// compared against the calendar date of the UTC departure instant in
// the origin airport's local timezone. Records without a departure
// instant, without a timezone name, or with an unloadable timezone are
// treated as non-matching, not as errors.
func MatchFlight(records []*entity.FlightRecord, flightNumber, date, airport string) (*entity.FlightRecord, error) {
	wantNumber := NormalizeFlightNumber(flightNumber)
	wantAirport := strings.ToUpper(strings.TrimSpace(airport))

	for _, record := range records {
		if record == nil {
			continue
		}
		if NormalizeFlightNumber(record.FlightNumber) != wantNumber {
			continue
		}

		localDate, ok := localDepartureDate(record)
		if !ok || localDate != date {
			continue
		}

		if !airportMatches(record.From, wantAirport) {
			continue
		}

		return record, nil
	}

	return nil, entity.ErrFlightNotFound
}

// localDepartureDate converts the record's UTC departure instant into
// the origin's local calendar date. A flight crossing midnight in UTC
// must still match on its local date.
func localDepartureDate(record *entity.FlightRecord) (string, bool) {
	if record.Departure == nil || record.From == nil || record.From.Timezone == "" {
		return "", false
	}

	location, err := time.LoadLocation(record.From.Timezone)
	if err != nil {
		return "", false
	}

	return record.Departure.In(location).Format(utils.DATE_LAYOUT), true
}

func airportMatches(airport *entity.Airport, want string) bool {
	if airport == nil || want == "" {
		return false
	}
	if airport.IATA != "" && strings.ToUpper(airport.IATA) == want {
		return true
	}
	if airport.ICAO != "" && strings.ToUpper(airport.ICAO) == want {
		return true
	}
	return false
}
