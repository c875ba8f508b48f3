package provenance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrMalformedManifest reports a manifest that is not a JSON array of objects.
var ErrMalformedManifest = errors.New("malformed provenance manifest")

// UnknownVersion marks datasets the manifest does not describe.
const UnknownVersion = "unknown"

// Record is one manifest entry, kept as the raw JSON object so every field
// survives stamping unchanged.
type Record struct {
	TrainingPath string
	Raw          json.RawMessage
}

// Name is the dataset folder the record describes: the last segment of
// its trainingPath.
func (r Record) Name() string {
	segments := strings.Split(r.TrainingPath, "/")
	return segments[len(segments)-1]
}

// Manifest is the ordered list of provenance records.
type Manifest struct {
	Records []Record
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read provenance manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest JSON. Records without a string trainingPath
// are kept out of lookups.
func ParseManifest(data []byte) (*Manifest, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	manifest := &Manifest{Records: make([]Record, 0, len(raws))}
	for i, raw := range raws {
		var fields struct {
			TrainingPath *string `json:"trainingPath"`
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedManifest, i, err)
		}
		if fields.TrainingPath == nil {
			continue
		}
		manifest.Records = append(manifest.Records, Record{TrainingPath: *fields.TrainingPath, Raw: raw})
	}
	return manifest, nil
}

// Lookup returns the first record whose trainingPath ends in name. Names are
// compared in Unicode NFC so decomposed filenames still match.
func (m *Manifest) Lookup(name string) (Record, bool) {
	if m == nil {
		return Record{}, false
	}
	want := norm.NFC.String(name)
	for _, record := range m.Records {
		if norm.NFC.String(record.Name()) == want {
			return record, true
		}
	}
	return Record{}, false
}
