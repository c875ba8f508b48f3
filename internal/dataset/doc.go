// Package dataset resolves the training data a config points at.
//
// A config's datasets.json lists one or more dataset folders under the
// datasets root. A single entry is used in place; several entries are merged
// into a synthetic folder named after the target, split by split, with a
// blank line after every appended file so sentence boundaries survive the
// concatenation. Split files are located by suffix (train.tsv, dev.tsv,
// test.tsv) and any of them may be absent.
package dataset
