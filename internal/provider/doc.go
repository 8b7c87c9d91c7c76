// Package provider defines the capability contract implemented by every
// configuration domain devsnap can capture, verify, and restore, along with
// the fixed registry the command-line application selects providers from.
package provider
