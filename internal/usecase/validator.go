package usecase

import (
	"strings"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/pkg/utils"
)

// ValidateIdentity checks that the scraped facts describe the same
// flight as the stored record before any merge happens. Flight numbers
// must agree exactly after normalization; airline names match by
// containment in either direction, since the source and the log often
// use different formal names for the same carrier ("Frontier" vs
// "Frontier Airlines"). Codeshare rows fail here and are never merged.
func ValidateIdentity(record *entity.FlightRecord, facts *utils.FlightFacts) error {
	recordAirline := ""
	if record.Airline != nil {
		recordAirline = strings.TrimSpace(record.Airline.Name)
	}
	scrapedAirline := strings.TrimSpace(facts.Airline)

	recordNumber := NormalizeFlightNumber(record.FlightNumber)
	scrapedNumber := NormalizeFlightNumber(facts.FlightNumber)

	numberOK := recordNumber != "" && recordNumber == scrapedNumber
	airlineOK := airlineNamesAgree(recordAirline, scrapedAirline)

	if !numberOK || !airlineOK {
		return &entity.MismatchError{
			RecordAirline:  recordAirline,
			RecordNumber:   record.FlightNumber,
			ScrapedAirline: scrapedAirline,
			ScrapedNumber:  facts.FlightNumber,
		}
	}

	return nil
}

func airlineNamesAgree(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
