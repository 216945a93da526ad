// Package nameday loads the name-day calendar and answers celebration queries over it.
package nameday

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/spark/pkg/datefacts"
)

// Catalog maps MM-DD keys to the names celebrated that day. It is read-only after Load.
type Catalog struct {
	byDay map[string][]string
}

// NewCatalog copies entries into a new Catalog.
func NewCatalog(entries map[string][]string) Catalog {
	byDay := make(map[string][]string, len(entries))
	for k, v := range entries {
		byDay[k] = append([]string(nil), v...)
	}
	return Catalog{byDay: byDay}
}

// Load reads a CSV whose first row is a header. A missing file yields an empty catalog.
//
// Keys are kept as written (after trimming); keys that are not a calendar MM-DD
// are logged but not rejected.
func Load(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("name-day source not found, using empty catalog")
			return Catalog{byDay: map[string][]string{}}, nil
		}
		return Catalog{}, fmt.Errorf("open name-day source: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return Catalog{}, fmt.Errorf("read name-day source %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("days", c.Len()).Msg("name-day catalog loaded")
	return c, nil
}

// Parse reads catalog rows from r. See Load for the format.
func Parse(r io.Reader) (Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	byDay := make(map[string][]string, 366)
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Catalog{}, err
		}
		if header {
			header = false
			continue
		}
		if len(record) == 0 {
			continue
		}

		key := strings.TrimSpace(record[0])
		if !datefacts.ValidMonthDay(key) {
			log.Warn().Str("key", key).Msg("name-day row has a malformed date key")
		}

		names := make([]string, 0, len(record)-1)
		for _, col := range record[1:] {
			if name := strings.TrimSpace(col); name != "" {
				names = append(names, name)
			}
		}
		byDay[key] = names
	}

	return Catalog{byDay: byDay}, nil
}

func (c Catalog) Len() int {
	return len(c.byDay)
}

// Names returns the names for monthDay, or an empty slice.
func (c Catalog) Names(monthDay string) []string {
	names, ok := c.byDay[monthDay]
	if !ok {
		return []string{}
	}
	return append([]string{}, names...)
}

// Entries returns a copy of the whole mapping.
func (c Catalog) Entries() map[string][]string {
	out := make(map[string][]string, len(c.byDay))
	for k, v := range c.byDay {
		out[k] = append([]string{}, v...)
	}
	return out
}

// Find returns the keys on which name is celebrated, ascending.
func (c Catalog) Find(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{}
	}

	days := []string{}
	for day, names := range c.byDay {
		for _, n := range names {
			if strings.EqualFold(n, name) {
				days = append(days, day)
				break
			}
		}
	}
	sort.Strings(days)
	return days
}
