package utils

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/pkg/logger"
)

// Selectors tracking the Flightera flight-history page layout. The
// markup is effectively the wire format here: each flight container
// carries a date label, linked-entity anchors (aircraft first,
// registration second), status badges (first one is the legend) and a
// details link whose path encodes airline and flight number.
const (
	containerSelector  = "div[class*=\"flight_row\"]"
	rowDateSelector    = "span[class*=\"flight_date\"]"
	entityLinkSelector = "a[class*=\"entity_link\"]"
	badgeSelector      = "span[class*=\"state_badge\"]"
	detailsSelector    = "a[class*=\"details_btn\"]"
)

// FlighteraParser extracts flight facts from rendered Flightera markup
type FlighteraParser struct {
	logger logger.Logger
}

// NewFlighteraParser creates a new parser
func NewFlighteraParser(logger logger.Logger) *FlighteraParser {
	return &FlighteraParser{
		logger: logger,
	}
}

// ExtractFacts scans the page's flight containers in document order and
// returns the facts of the first one whose date label matches targetDate
// at day granularity. Partial containers yield empty fields rather than
// an error; no matching container yields entity.ErrFactsNotFound.
func (p *FlighteraParser) ExtractFacts(html string, targetDate time.Time) (*FlightFacts, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &entity.MalformedResponseError{Op: "parse page", Detail: err.Error()}
	}

	var facts *FlightFacts

	doc.Find(containerSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		label := strings.TrimSpace(row.Find(rowDateSelector).First().Text())
		if label == "" {
			return true
		}

		rowDate, err := time.Parse(ROW_DATE_LAYOUT, label)
		if err != nil {
			p.logger.Warn("Skipping row with unparsable date label", "label", label, "error", err)
			return true
		}

		if !sameDay(rowDate, targetDate) {
			return true
		}

		facts = p.extractRow(row)
		return false
	})

	if facts == nil {
		return nil, entity.ErrFactsNotFound
	}

	p.logger.Info("Extracted flight facts",
		"date", targetDate.Format(DATE_LAYOUT),
		"aircraft", facts.AircraftICAO,
		"registration", facts.AircraftReg,
		"airline", facts.Airline,
		"flightNumber", facts.FlightNumber)

	return facts, nil
}

// extractRow pulls the fact fields out of one flight container.
func (p *FlighteraParser) extractRow(row *goquery.Selection) *FlightFacts {
	facts := &FlightFacts{}

	// First linked entity is the aircraft, second the registration.
	links := row.Find(entityLinkSelector)
	if links.Length() > 0 {
		name, icao := splitAircraftLabel(strings.TrimSpace(links.Eq(0).Text()))
		facts.AircraftName = name
		facts.AircraftICAO = icao
	}
	if links.Length() > 1 {
		facts.AircraftReg = strings.TrimSpace(links.Eq(1).Text())
	}

	// First badge is a legend header; the next two are departure and
	// arrival state.
	badges := row.Find(badgeSelector)
	if badges.Length() > 1 {
		facts.DepartureStatus = strings.TrimSpace(badges.Eq(1).Text())
	}
	if badges.Length() > 2 {
		facts.ArrivalStatus = strings.TrimSpace(badges.Eq(2).Text())
	}

	if href, ok := row.Find(detailsSelector).First().Attr("href"); ok {
		facts.DetailsURL = strings.TrimSpace(href)
		facts.Airline, facts.FlightNumber = parseDetailsPath(facts.DetailsURL)
	}

	return facts
}

// splitAircraftLabel separates a trailing parenthesized ICAO type code
// from an aircraft label like "Boeing 737-800 (B738)".
func splitAircraftLabel(label string) (name, icao string) {
	name = label
	open := strings.LastIndex(label, "(")
	if open < 0 || !strings.HasSuffix(label, ")") {
		return name, ""
	}

	code := strings.TrimSpace(label[open+1 : len(label)-1])
	if len(code) < 2 || len(code) > 4 {
		return name, ""
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return name, ""
		}
	}

	return strings.TrimSpace(label[:open]), code
}

// parseDetailsPath derives the source-reported airline name and flight
// number from a details URL like
// /en/flight/Frontier+Airlines/F93181/2024-03-15/KDEN. Flight number is
// the third-from-last path segment, airline the fourth-from-last with
// "+" placeholders replaced by spaces. Segment counts are not assumed.
func parseDetailsPath(href string) (airline, flightNumber string) {
	u, err := url.Parse(href)
	if err != nil {
		return "", ""
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 4 {
		return "", ""
	}

	flightNumber = segments[len(segments)-3]

	raw := segments[len(segments)-4]
	if cut := strings.Index(raw, "("); cut >= 0 {
		raw = raw[:cut]
	}
	airline = strings.TrimSpace(strings.ReplaceAll(raw, "+", " "))

	return airline, flightNumber
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
