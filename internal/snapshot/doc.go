// Package snapshot manages snapshot directories: metadata persistence, the
// per-provider result records, and the service that runs provider operations
// against a snapshot.
package snapshot
