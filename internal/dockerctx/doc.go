// Package dockerctx materializes the docker build context for a trained
// tagger configuration.
//
// A context folder {docker}/{tagger}/{config} receives copies of the
// config's config.json and datasets.json, the provenance-stamped dataset
// records, and the tagger's prefab tree. Whether the prefab tree is copied is
// decided by the configured prefab policy and by whether the folder existed
// before the build started.
package dockerctx
