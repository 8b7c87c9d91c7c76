package provider

import "context"

// RunContext carries the per-invocation options every provider operation receives.
type RunContext struct {
	// SnapshotDirectory is the snapshot directory written during capture and read during verify and restore.
	SnapshotDirectory string
	// SnapshotName identifies the snapshot within its parent output directory.
	SnapshotName string
	// ApplyChanges permits restore operations to mutate external state; preview is the default.
	ApplyChanges bool
	// Verbosity carries the requested diagnostic output level.
	Verbosity int
}

// Detail is one typed key/value entry in an operation result.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CaptureResult reports the outcome of capturing one provider's configuration.
type CaptureResult struct {
	OK      bool     `json:"ok"`
	Details []Detail `json:"details,omitempty"`
}

// VerifyResult reports the outcome of verifying one provider against its environment and snapshot.
type VerifyResult struct {
	OK      bool     `json:"ok"`
	Details []Detail `json:"details,omitempty"`
}

// RestoreResult reports the outcome of a restore preview or application.
type RestoreResult struct {
	OK bool `json:"ok"`
	// Planned lists the actions a preview would perform.
	Planned []string `json:"planned,omitempty"`
	// Applied lists the actions an apply-mode restore performed.
	Applied []string `json:"applied,omitempty"`
	Details []Detail `json:"details,omitempty"`
}

// WithDetail returns a copy of the result extended by one detail entry.
func (result CaptureResult) WithDetail(detailKey string, detailValue string) CaptureResult {
	result.Details = append(result.Details, Detail{Key: detailKey, Value: detailValue})
	return result
}

// DetailValue looks up the first detail entry matching the provided key.
func (result CaptureResult) DetailValue(detailKey string) (string, bool) {
	return lookupDetail(result.Details, detailKey)
}

// DetailValue looks up the first detail entry matching the provided key.
func (result VerifyResult) DetailValue(detailKey string) (string, bool) {
	return lookupDetail(result.Details, detailKey)
}

// DetailValue looks up the first detail entry matching the provided key.
func (result RestoreResult) DetailValue(detailKey string) (string, bool) {
	return lookupDetail(result.Details, detailKey)
}

func lookupDetail(details []Detail, detailKey string) (string, bool) {
	for _, detailEntry := range details {
		if detailEntry.Key == detailKey {
			return detailEntry.Value, true
		}
	}
	return "", false
}

// Provider is the capability interface implemented by each configuration domain.
//
// Capture, Verify, and Restore return an operation result even on failure; the
// error return is reserved for environment faults such as an unwritable
// snapshot directory.
type Provider interface {
	Name() string
	Capture(executionContext context.Context, runContext RunContext) (CaptureResult, error)
	Verify(executionContext context.Context, runContext RunContext) (VerifyResult, error)
	Restore(executionContext context.Context, runContext RunContext) (RestoreResult, error)
}
