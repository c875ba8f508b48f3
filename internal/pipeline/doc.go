// Package pipeline drives training over a list of tagger/config targets.
//
// Targets are processed strictly one after another: resolve the dataset
// (merging when a config lists several), build the docker context, run the
// trainer, and record the run in the ledger. A run lock in the logs
// directory keeps two drivers from sharing the same working tree.
//
// Any error aborts the remaining targets. A trainer that exits non-zero is
// not an error; it is reported in the Summary and the batch continues.
package pipeline
