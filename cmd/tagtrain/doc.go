// Package main hosts the tagtrain CLI entrypoint and command graph.
//
// The Cobra-based command tree runs training batches, prints docker build
// commands for trained contexts, wraps the pie trainer, and reports on the
// working tree and run history. It centralizes configuration resolution and
// logging setup so subcommands can focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
