package cli

// ProviderFailureExitCode distinguishes provider-reported failures from usage
// and environment errors.
const ProviderFailureExitCode = 2

// ExitCodeError carries a process exit code alongside the failure message.
type ExitCodeError struct {
	Code    int
	Message string
}

// Error describes the failure.
func (exitError *ExitCodeError) Error() string {
	return exitError.Message
}

// NewProviderFailureError reports that at least one provider finished unsuccessfully.
func NewProviderFailureError(failureMessage string) *ExitCodeError {
	return &ExitCodeError{Code: ProviderFailureExitCode, Message: failureMessage}
}
