package cellar

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/drambot/internal/core"
)

//go:embed data/whiskies.json
var coreDataset []byte

// loadCoreRecords parses the bundled reference partition. Every record
// must validate; a single bad record fails the whole load so a shipped
// dataset defect is caught at startup, not at query time.
func loadCoreRecords() ([]core.Record, error) {
	var records []core.Record
	if err := json.Unmarshal(coreDataset, &records); err != nil {
		return nil, fmt.Errorf("failed to parse core dataset: %w", err)
	}

	for i := range records {
		records[i].Provenance = core.ProvenanceCore
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("core dataset record %d (%q) invalid: %w", i, records[i].Name, err)
		}
	}
	return records, nil
}
