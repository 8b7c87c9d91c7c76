// Package cli assembles the devsnap command hierarchy: configuration loading,
// structured logging, and the capture, verify, restore, show, and providers
// subcommands.
package cli
