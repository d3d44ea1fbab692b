package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Expected, non-fatal outcomes.
var (
	// ErrFlightNotFound means no stored record satisfied the search.
	ErrFlightNotFound = errors.New("flight not found")
	// ErrFactsNotFound means the scraped page had no row for the target
	// date. The page may simply not carry data for that day yet.
	ErrFactsNotFound = errors.New("no flight facts for target date")
)

// MissingDataError reports identity fields absent on the source record.
// It is a hard stop for that record only.
type MissingDataError struct {
	FlightID int64
	Fields   []string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("flight %d is missing required fields: %s", e.FlightID, strings.Join(e.Fields, ", "))
}

// MismatchError reports that the scraped identity does not agree with
// the stored record. Facts from a mismatched page are never merged.
type MismatchError struct {
	RecordAirline  string
	RecordNumber   string
	ScrapedAirline string
	ScrapedNumber  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("identity mismatch: record %q %q vs scraped %q %q",
		e.RecordAirline, e.RecordNumber, e.ScrapedAirline, e.ScrapedNumber)
}

// TransportError wraps a network, API or browser failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports an unparsable or unexpectedly shaped
// API payload.
type MalformedResponseError struct {
	Op     string
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Detail)
}
