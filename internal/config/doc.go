// Package config loads, normalizes, and validates tagtrain configuration data.
//
// It supplies repository defaults that mirror the conventional working tree
// (configs/, corpora/datasets/, docker/, logs/, prefabs/, taggers/), expands
// user paths, reads TOML files, and honours environment fallbacks such as
// TAGTRAIN_VERSION. Every other package receives its directories and
// subprocess settings through the Config type so path derivation happens in
// exactly one place.
package config
