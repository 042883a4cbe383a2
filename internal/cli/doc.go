// Package cli wires together the Cobra command tree for the prbot binary.
//
// It defines the root command and all subcommands (run, state, config,
// models, cache, version), reads configuration, builds the GitHub client,
// provider, state store and review orchestrator, and maps failures to exit
// codes.
package cli
