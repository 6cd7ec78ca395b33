// Package seed owns the fixture-literal format: a Go slice of string maps
// that the seed loader consumes and the export engine emits. Keeping the
// formatter and parser together is what guarantees exports round-trip.
package seed

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"platewatch/internal/constants"
	gormModels "platewatch/internal/models/gorm"

	"gorm.io/gorm"
)

// Entry keys, in serialization order. Notes slots in before image_filename
// when included, matching the CSV column order.
var entryKeys = []string{"state", "plate", "make", "model", "color", "location", "timestamp", "notes", "image_filename"}

func keysFor(includeNotes bool) []string {
	if includeNotes {
		return entryKeys
	}
	keys := make([]string, 0, len(entryKeys)-1)
	for _, k := range entryKeys {
		if k != "notes" {
			keys = append(keys, k)
		}
	}
	return keys
}

// EntryFromSighting flattens a record into seed-entry form. Nulls become
// empty strings.
func EntryFromSighting(s gormModels.Sighting) map[string]string {
	ts := ""
	if s.Timestamp != nil {
		ts = s.Timestamp.Format(constants.ExportTimeLayout)
	}
	return map[string]string{
		"state":          s.State,
		"plate":          s.LicensePlate,
		"make":           s.CarMake,
		"model":          s.CarModel,
		"color":          s.Color,
		"location":       deref(s.Location),
		"timestamp":      ts,
		"notes":          deref(s.Notes),
		"image_filename": deref(s.ImageFilename),
	}
}

// FormatLiteral renders sightings as a pasteable Go literal.
func FormatLiteral(sightings []gormModels.Sighting, includeNotes bool) []byte {
	keys := keysFor(includeNotes)

	var b bytes.Buffer
	b.WriteString("// Generated export from PlateWatch\n")
	b.WriteString("// Load with: go run ./cmd/seed -file <this file>\n")
	b.WriteString("\n")
	b.WriteString("var sightingSeedData = []map[string]string{\n")

	for _, s := range sightings {
		entry := EntryFromSighting(s)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, strconv.Quote(k)+": "+strconv.Quote(entry[k]))
		}
		b.WriteString("\t{" + strings.Join(parts, ", ") + "},\n")
	}

	b.WriteString("}\n")
	return b.Bytes()
}

var quotedString = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)

// Parse reads entries back out of the literal format. Lines that are not
// map entries (comments, the var declaration, braces) are skipped.
func Parse(data []byte) ([]map[string]string, error) {
	var entries []map[string]string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}

		quoted := quotedString.FindAllString(line, -1)
		if len(quoted) == 0 || len(quoted)%2 != 0 {
			return nil, fmt.Errorf("malformed seed entry on line %d", lineNo)
		}

		entry := make(map[string]string, len(quoted)/2)
		for i := 0; i < len(quoted); i += 2 {
			key, err := strconv.Unquote(quoted[i])
			if err != nil {
				return nil, fmt.Errorf("bad key on line %d: %w", lineNo, err)
			}
			val, err := strconv.Unquote(quoted[i+1])
			if err != nil {
				return nil, fmt.Errorf("bad value on line %d: %w", lineNo, err)
			}
			entry[key] = val
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Load replaces the sightings table with the given entries.
func Load(ctx context.Context, db *gorm.DB, entries []map[string]string) (int, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&gormModels.Sighting{}).Error; err != nil {
			return fmt.Errorf("failed to clear sightings: %w", err)
		}

		for i, entry := range entries {
			rec, err := sightingFromEntry(entry)
			if err != nil {
				return fmt.Errorf("seed entry %d: %w", i+1, err)
			}
			if err := tx.Create(rec).Error; err != nil {
				return fmt.Errorf("failed to insert seed entry %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func sightingFromEntry(entry map[string]string) (*gormModels.Sighting, error) {
	rec := &gormModels.Sighting{
		State:         strings.ToUpper(entry["state"]),
		LicensePlate:  strings.ToUpper(entry["plate"]),
		CarMake:       entry["make"],
		CarModel:      entry["model"],
		Color:         entry["color"],
		Location:      optional(entry["location"]),
		Notes:         optional(entry["notes"]),
		ImageFilename: optional(entry["image_filename"]),
	}

	if ts := entry["timestamp"]; ts != "" {
		parsed, err := time.Parse(constants.ExportTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", ts, err)
		}
		rec.Timestamp = &parsed
	}

	return rec, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
