// Package entry adapts the generic trainer calling convention to the pie
// tagger.
//
// The trainer invoker calls a tagger's train.py with four positional paths.
// pie instead reads its settings from PIE_* environment variables, so the
// adapter renders the paths as explicit Settings, passes them in the child
// environment, and runs pie's own training script on the config file.
package entry
