package dataset

import (
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"battwatch/domain/artifact"
	"battwatch/domain/battery"
	"battwatch/internal/errors"
	"battwatch/internal/store"
)

// Loader reads the persisted battery dataset from the artifact store
// and maps it into domain observations. Loads are cached and
// invalidated by file modification time, so a re-upload is picked up
// on the next page render without a restart.
type Loader struct {
	store *store.ArtifactStore

	mu       sync.RWMutex
	cached   *battery.Dataset
	cachedAt time.Time
}

// NewLoader creates a dataset loader backed by the artifact store.
func NewLoader(s *store.ArtifactStore) *Loader {
	return &Loader{store: s}
}

// Load returns the current battery dataset. A missing dataset file
// yields a NOT_FOUND error; every page maps that to the upload prompt.
func (l *Loader) Load() (*battery.Dataset, error) {
	info, err := l.store.Stat(artifact.KindDataset)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	if l.cached != nil && info.ModTime().Equal(l.cachedAt) {
		cached := l.cached
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	f, err := l.store.Open(artifact.KindDataset)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ReadTable(f, artifact.KindDataset.Filename())
	if err != nil {
		return nil, errors.Wrap(err, "failed to read battery dataset")
	}

	ds := FromTable(table)
	log.Printf("[Loader] Loaded battery dataset: %d rows, %d columns, %d batteries",
		len(ds.Observations), len(ds.Headers), len(ds.BatteryIDs()))

	l.mu.Lock()
	l.cached = ds
	l.cachedAt = info.ModTime()
	l.mu.Unlock()

	return ds, nil
}

// Invalidate drops the cached dataset. Called after a dataset upload.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}

// FromTable maps raw tabular data to the battery domain model.
// Unknown columns survive in Dataset.Columns; malformed numeric cells
// become NaN rather than dropping the row.
func FromTable(t *Table) *battery.Dataset {
	index := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		index[h] = i
	}
	_, hasFailure := index[battery.ColFailure]

	ds := &battery.Dataset{
		Headers:      t.Headers,
		Observations: make([]battery.Observation, 0, len(t.Rows)),
		Columns:      make(map[string][]float64, len(t.Headers)),
	}
	for _, h := range t.Headers {
		ds.Columns[h] = make([]float64, 0, len(t.Rows))
	}

	for _, row := range t.Rows {
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		obs := battery.Observation{
			BatteryID:          cell(battery.ColBatteryID),
			Cycle:              parseInt(cell(battery.ColCycle)),
			Voltage:            parseFloat(cell(battery.ColVoltage)),
			Current:            parseFloat(cell(battery.ColCurrent)),
			Temperature:        parseFloat(cell(battery.ColTemperature)),
			Capacity:           parseFloat(cell(battery.ColCapacity)),
			Time:               parseFloat(cell(battery.ColTime)),
			InternalResistance: parseFloat(cell(battery.ColInternalResistance)),
			SOC:                parseFloat(cell(battery.ColSOC)),
			SOH:                parseFloat(cell(battery.ColSOH)),
			HasFailure:         hasFailure,
		}
		if hasFailure {
			obs.Failure = parseLabel(cell(battery.ColFailure))
		}
		ds.Observations = append(ds.Observations, obs)

		for _, h := range t.Headers {
			ds.Columns[h] = append(ds.Columns[h], parseFloat(cell(h)))
		}
	}

	return ds
}

func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		// Tolerate cycle numbers written as floats ("12.0").
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return v
}

func parseLabel(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f >= 0.5
	}
	return false
}
