package steam

import (
	"encoding/json"
	"fmt"
	"os"
)

// Corrections remaps known-bad Steam app ids to the id the store actually
// serves. An empty target marks an id as dead with no replacement.
type Corrections map[string]string

func DefaultCorrections() Corrections {
	return Corrections{
		"2339980": "962130",  // Grounded
		"2332690": "962130",  // Grounded
		"1497980": "1245620", // Elden Ring
		"2715940": "3504780", // Wildgate
		"378570":  "",        // PEAK, delisted id
	}
}

// LoadCorrections merges a JSON object of id remaps from path over the
// defaults. An empty path returns the defaults unchanged.
func LoadCorrections(path string) (Corrections, error) {
	corrections := DefaultCorrections()
	if path == "" {
		return corrections, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections file: %w", err)
	}

	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse corrections file: %w", err)
	}
	for badID, target := range loaded {
		corrections[badID] = target
	}
	return corrections, nil
}
