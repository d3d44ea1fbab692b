package usecase

import (
	"strings"
	"time"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/pkg/utils"
)

// Annotation block markers. At most one block may exist in a note at
// any time; any prior generation is stripped before a new one is
// appended.
const (
	NoteSeparator    = "---"
	DeparturePrefix  = "Departure:"
	ArrivalPrefix    = "Arrival:"
	SourceLinkPrefix = "Flightera:"
)

// MergeFacts derives the save payload for a record from scraped facts.
// It is a pure transform: the original record is never mutated.
//
// Relational fields are flattened to their ICAO codes, the date and
// departure/arrival fields are rewritten in the origin/destination
// local time when the UTC instants and timezone names allow it, the
// aircraft and registration are filled only when currently empty, and
// the note's annotation block is rebuilt. Fields outside the save
// schema (duration, foreign-key ids) are dropped by construction.
//
// The reported changed flag is true only when the aircraft or
// registration was filled or the rebuilt note differs from the stored
// one, so re-running against an already-complete record yields false
// and the payload must not be submitted.
func MergeFacts(original *entity.FlightRecord, facts *utils.FlightFacts) (*entity.FlightUpdate, bool) {
	update := &entity.FlightUpdate{
		ID:           original.ID,
		FlightNumber: original.FlightNumber,
		Date:         original.Date,
	}

	if original.From != nil {
		update.From = original.From.ICAO
	}
	if original.To != nil {
		update.To = original.To.ICAO
	}
	if original.Airline != nil {
		update.Airline = original.Airline.ICAO
	}
	if original.Aircraft != nil {
		update.Aircraft = original.Aircraft.ICAO
	}
	if original.AircraftReg != nil {
		update.AircraftReg = *original.AircraftReg
	}

	if local, ok := toLocal(original.Departure, original.From); ok {
		update.Date = local.Format(utils.DATE_LAYOUT)
		update.Departure = local.Format(time.RFC3339)
	}
	if local, ok := toLocal(original.Arrival, original.To); ok {
		update.Arrival = local.Format(time.RFC3339)
	}

	changed := false

	if update.Aircraft == "" && facts.AircraftICAO != "" {
		update.Aircraft = facts.AircraftICAO
		changed = true
	}
	if update.AircraftReg == "" && facts.AircraftReg != "" {
		update.AircraftReg = facts.AircraftReg
		changed = true
	}

	update.Note = rebuildNote(original.NoteText(), facts)
	if update.Note != original.NoteText() {
		changed = true
	}

	return update, changed
}

// toLocal converts a UTC instant into the airport's local time.
func toLocal(instant *time.Time, airport *entity.Airport) (time.Time, bool) {
	if instant == nil || airport == nil || airport.Timezone == "" {
		return time.Time{}, false
	}
	location, err := time.LoadLocation(airport.Timezone)
	if err != nil {
		return time.Time{}, false
	}
	return instant.In(location), true
}

// rebuildNote strips any previous annotation block from the note and
// appends a freshly built one, keeping all other note content and its
// line order intact. The block is separated from pre-existing content
// by a separator line; when the note had nothing else, the block is
// the entire note.
func rebuildNote(existing string, facts *utils.FlightFacts) string {
	var kept []string
	if existing != "" {
		for _, line := range strings.Split(existing, "\n") {
			if isAnnotationLine(line) {
				continue
			}
			kept = append(kept, line)
		}
	}
	kept = trimEmptyEdges(kept)

	var block []string
	if facts.DepartureStatus != "" {
		block = append(block, DeparturePrefix+" "+facts.DepartureStatus)
	}
	if facts.ArrivalStatus != "" {
		block = append(block, ArrivalPrefix+" "+facts.ArrivalStatus)
	}
	if facts.DetailsURL != "" {
		block = append(block, SourceLinkPrefix+" "+facts.DetailsURL)
	}

	if len(block) == 0 {
		return strings.Join(kept, "\n")
	}
	if len(kept) == 0 {
		return strings.Join(block, "\n")
	}

	return strings.Join(kept, "\n") + "\n\n" + NoteSeparator + "\n" + strings.Join(block, "\n")
}

func isAnnotationLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == NoteSeparator ||
		strings.HasPrefix(trimmed, DeparturePrefix) ||
		strings.HasPrefix(trimmed, ArrivalPrefix) ||
		strings.HasPrefix(trimmed, SourceLinkPrefix)
}

func trimEmptyEdges(lines []string) []string {
	start := 0
	end := len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
