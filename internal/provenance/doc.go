// Package provenance stamps docker build contexts with dataset origin records.
//
// The corpora root holds a manifest: a JSON array of records, each carrying a
// trainingPath whose final segment names a dataset folder. Stamping replaces
// the name-only datasets.json copied into a docker context with the matching
// manifest records, keeping each record verbatim. Names missing from the
// manifest become {"name": ..., "version": "unknown"} placeholders.
package provenance
