// Package layout maps tagger/config identifiers onto the working tree.
//
// A Target names one training configuration. Resolver derives every path the
// pipeline touches for it (config json, dataset list, docker context, logs)
// without reading the filesystem, and Discover enumerates the targets that
// exist two levels below a root such as the configs or docker tree.
package layout
