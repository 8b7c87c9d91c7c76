package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/devsnap/internal/gitconfig"
	"github.com/temirov/devsnap/internal/provider"
)

const (
	resultFileNameConstant        = "result.json"
	resultFilePermissionsConstant = 0o644

	captureHeaderTemplateConstant      = "Capturing snapshot %s into %s\n"
	verifyHeaderTemplateConstant       = "Verifying snapshot at %s\n"
	restoreHeaderTemplateConstant      = "Restore preview for snapshot at %s\n"
	restoreApplyHeaderTemplateConstant = "Restoring snapshot at %s\n"
	providerStatusTemplateConstant     = "  %-10s %s\n"
	providerDetailTemplateConstant     = "    %s: %s\n"
	plannedActionTemplateConstant      = "    plan: %s\n"
	appliedActionTemplateConstant      = "    done: %s\n"
	statusOKConstant                   = "ok"
	statusFailedConstant               = "failed"
	artifactsPresentConstant           = "artifacts present"
	artifactsMissingConstant           = "artifacts missing"

	showNameTemplateConstant          = "Snapshot:  %s\n"
	showCreatedTemplateConstant       = "Created:   %s\n"
	showProvidersTemplateConstant     = "Providers: %s\n"
	showCandidatesHeaderConstant      = "\nGlobal promotion candidates:\n"
	showNoCandidatesConstant          = "\nNo global promotion candidates.\n"
	showCommandsHeaderConstant        = "\nPromotion commands:\n"
	showCommandTemplateConstant       = "  %s\n"
	candidateTableHeaderConstant      = "  KEY\tVALUE\tREPOS\n"
	candidateTableRowTemplateConstant = "  %s\t%s\t%d/%d\n"
	noProvidersSelectedConstant       = "no providers selected"
	providerListSeparatorConstant     = ", "

	snapshotDirectoryTemplateConstant = "create snapshot directory: %w"
	resultWriteTemplateConstant       = "write provider result: %w"

	runnerSnapshotFieldNameConstant = "snapshot"
	runnerProviderFieldNameConstant = "provider"
	runnerOutcomeFieldNameConstant  = "ok"
	captureLogMessageConstant       = "provider capture finished"
	verifyLogMessageConstant        = "provider verify finished"
	restoreLogMessageConstant       = "provider restore finished"
)

// Clock supplies the current time; tests substitute a fixed instant.
type Clock func() time.Time

// Runner executes provider operations against snapshot directories and reports
// results to the configured writer.
type Runner struct {
	registry *provider.Registry
	logger   *zap.Logger
	output   io.Writer
	clock    Clock
}

// NewRunner wires a runner from its collaborators. A nil clock defaults to the
// system clock.
func NewRunner(registry *provider.Registry, logger *zap.Logger, output io.Writer, clock Clock) *Runner {
	if clock == nil {
		clock = time.Now
	}
	return &Runner{registry: registry, logger: logger, output: output, clock: clock}
}

// CaptureOptions selects what a capture run records and where.
type CaptureOptions struct {
	OutputDirectory string
	SnapshotName    string
	IncludeNames    []string
	ExcludeNames    []string
	Format          string
	Verbose         bool
}

// CaptureSummary reports the aggregate outcome of a capture run.
type CaptureSummary struct {
	SnapshotName      string
	SnapshotDirectory string
	Results           map[string]provider.CaptureResult
	OK                bool
}

// VerifySummary reports the aggregate outcome of a verify run.
type VerifySummary struct {
	Results map[string]provider.VerifyResult
	OK      bool
}

// RestoreSummary reports the aggregate outcome of a restore run.
type RestoreSummary struct {
	Results map[string]provider.RestoreResult
	OK      bool
}

// Capture runs every selected provider's capture into a fresh snapshot
// directory and persists run metadata alongside the provider results.
func (runner *Runner) Capture(executionContext context.Context, captureOptions CaptureOptions) (CaptureSummary, error) {
	switch captureOptions.Format {
	case "", FormatJSON, FormatYAML:
	default:
		return CaptureSummary{}, fmt.Errorf(unsupportedFormatTemplateConstant, captureOptions.Format)
	}

	selectedProviders := runner.registry.Select(captureOptions.IncludeNames, captureOptions.ExcludeNames)
	if len(selectedProviders) == 0 {
		return CaptureSummary{}, errors.New(noProvidersSelectedConstant)
	}

	captureTime := runner.clock()
	snapshotName := captureOptions.SnapshotName
	if len(snapshotName) == 0 {
		snapshotName = DefaultSnapshotName(captureTime)
	}
	snapshotDirectory := filepath.Join(captureOptions.OutputDirectory, snapshotName)
	if directoryError := os.MkdirAll(snapshotDirectory, snapshotDirectoryPermissionsConstant); directoryError != nil {
		return CaptureSummary{}, fmt.Errorf(snapshotDirectoryTemplateConstant, directoryError)
	}

	fmt.Fprintf(runner.output, captureHeaderTemplateConstant, snapshotName, snapshotDirectory)
	runContext := provider.RunContext{
		SnapshotDirectory: snapshotDirectory,
		SnapshotName:      snapshotName,
		Verbosity:         verbosityLevel(captureOptions.Verbose),
	}

	captureSummary := CaptureSummary{
		SnapshotName:      snapshotName,
		SnapshotDirectory: snapshotDirectory,
		Results:           map[string]provider.CaptureResult{},
		OK:                true,
	}
	providerNames := make([]string, 0, len(selectedProviders))
	for _, selectedProvider := range selectedProviders {
		providerNames = append(providerNames, selectedProvider.Name())
		captureResult, captureError := selectedProvider.Capture(executionContext, runContext)
		if captureError != nil {
			return CaptureSummary{}, captureError
		}
		captureSummary.Results[selectedProvider.Name()] = captureResult
		captureSummary.OK = captureSummary.OK && captureResult.OK
		runner.logger.Info(captureLogMessageConstant,
			zap.String(runnerSnapshotFieldNameConstant, snapshotName),
			zap.String(runnerProviderFieldNameConstant, selectedProvider.Name()),
			zap.Bool(runnerOutcomeFieldNameConstant, captureResult.OK),
		)
		if resultError := runner.writeProviderResult(snapshotDirectory, selectedProvider.Name(), captureResult); resultError != nil {
			return CaptureSummary{}, resultError
		}
		runner.printCaptureResult(selectedProvider.Name(), captureResult, captureOptions.Verbose)
	}

	captureMetadata := NewMetadata(snapshotName, captureTime, Options{
		Include: captureOptions.IncludeNames,
		Exclude: captureOptions.ExcludeNames,
		Format:  metadataFormat(captureOptions.Format),
		Verbose: captureOptions.Verbose,
	}, providerNames)
	if metadataError := WriteMetadata(snapshotDirectory, captureMetadata, captureOptions.Format); metadataError != nil {
		return CaptureSummary{}, metadataError
	}
	return captureSummary, nil
}

// VerifyOptions selects what a verify run inspects.
type VerifyOptions struct {
	SnapshotDirectory string
	IncludeNames      []string
	ExcludeNames      []string
	Verbose           bool
}

// Verify runs every selected provider's verification against an existing
// snapshot directory.
func (runner *Runner) Verify(executionContext context.Context, verifyOptions VerifyOptions) (VerifySummary, error) {
	selectedProviders := runner.registry.Select(verifyOptions.IncludeNames, verifyOptions.ExcludeNames)
	if len(selectedProviders) == 0 {
		return VerifySummary{}, errors.New(noProvidersSelectedConstant)
	}

	fmt.Fprintf(runner.output, verifyHeaderTemplateConstant, verifyOptions.SnapshotDirectory)
	runContext := provider.RunContext{
		SnapshotDirectory: verifyOptions.SnapshotDirectory,
		Verbosity:         verbosityLevel(verifyOptions.Verbose),
	}
	verifySummary := VerifySummary{Results: map[string]provider.VerifyResult{}, OK: true}
	for _, selectedProvider := range selectedProviders {
		verifyResult, verifyError := selectedProvider.Verify(executionContext, runContext)
		if verifyError != nil {
			return VerifySummary{}, verifyError
		}
		verifySummary.Results[selectedProvider.Name()] = verifyResult
		verifySummary.OK = verifySummary.OK && verifyResult.OK
		runner.logger.Info(verifyLogMessageConstant,
			zap.String(runnerProviderFieldNameConstant, selectedProvider.Name()),
			zap.Bool(runnerOutcomeFieldNameConstant, verifyResult.OK),
		)
		fmt.Fprintf(runner.output, providerStatusTemplateConstant, selectedProvider.Name(), statusLabel(verifyResult.OK))
		if verifyOptions.Verbose {
			runner.printDetails(verifyResult.Details)
		}
	}
	return verifySummary, nil
}

// RestoreOptions selects what a restore run plans or applies.
type RestoreOptions struct {
	SnapshotDirectory string
	IncludeNames      []string
	ExcludeNames      []string
	ApplyChanges      bool
	Verbose           bool
}

// Restore runs every selected provider's restore. Without ApplyChanges the run
// only reports planned actions.
func (runner *Runner) Restore(executionContext context.Context, restoreOptions RestoreOptions) (RestoreSummary, error) {
	selectedProviders := runner.registry.Select(restoreOptions.IncludeNames, restoreOptions.ExcludeNames)
	if len(selectedProviders) == 0 {
		return RestoreSummary{}, errors.New(noProvidersSelectedConstant)
	}

	headerTemplate := restoreHeaderTemplateConstant
	if restoreOptions.ApplyChanges {
		headerTemplate = restoreApplyHeaderTemplateConstant
	}
	fmt.Fprintf(runner.output, headerTemplate, restoreOptions.SnapshotDirectory)
	runContext := provider.RunContext{
		SnapshotDirectory: restoreOptions.SnapshotDirectory,
		ApplyChanges:      restoreOptions.ApplyChanges,
		Verbosity:         verbosityLevel(restoreOptions.Verbose),
	}
	restoreSummary := RestoreSummary{Results: map[string]provider.RestoreResult{}, OK: true}
	for _, selectedProvider := range selectedProviders {
		restoreResult, restoreError := selectedProvider.Restore(executionContext, runContext)
		if restoreError != nil {
			return RestoreSummary{}, restoreError
		}
		restoreSummary.Results[selectedProvider.Name()] = restoreResult
		restoreSummary.OK = restoreSummary.OK && restoreResult.OK
		runner.logger.Info(restoreLogMessageConstant,
			zap.String(runnerProviderFieldNameConstant, selectedProvider.Name()),
			zap.Bool(runnerOutcomeFieldNameConstant, restoreResult.OK),
		)
		fmt.Fprintf(runner.output, providerStatusTemplateConstant, selectedProvider.Name(), statusLabel(restoreResult.OK))
		for _, plannedAction := range restoreResult.Planned {
			fmt.Fprintf(runner.output, plannedActionTemplateConstant, plannedAction)
		}
		for _, appliedAction := range restoreResult.Applied {
			fmt.Fprintf(runner.output, appliedActionTemplateConstant, appliedAction)
		}
		if restoreOptions.Verbose {
			runner.printDetails(restoreResult.Details)
		}
	}
	return restoreSummary, nil
}

// Show renders snapshot metadata and the captured git analysis, when present,
// to the runner's writer.
func (runner *Runner) Show(snapshotDirectory string) error {
	snapshotMetadata, metadataError := LoadMetadata(snapshotDirectory)
	if metadataError != nil {
		return metadataError
	}
	fmt.Fprintf(runner.output, showNameTemplateConstant, snapshotMetadata.SnapshotName)
	fmt.Fprintf(runner.output, showCreatedTemplateConstant, snapshotMetadata.CreatedAt)
	fmt.Fprintf(runner.output, showProvidersTemplateConstant, joinProviderNames(snapshotMetadata.Providers))
	for _, providerName := range snapshotMetadata.Providers {
		presenceLabel := artifactsMissingConstant
		if directoryInfo, statError := os.Stat(filepath.Join(snapshotDirectory, providerName)); statError == nil && directoryInfo.IsDir() {
			presenceLabel = artifactsPresentConstant
		}
		fmt.Fprintf(runner.output, providerStatusTemplateConstant, providerName, presenceLabel)
	}

	analysisDirectory := filepath.Join(snapshotDirectory, gitconfig.ProviderName)
	analysisResult, analysisError := gitconfig.LoadAnalysis(analysisDirectory)
	if analysisError != nil {
		if os.IsNotExist(analysisError) {
			return nil
		}
		return analysisError
	}
	sortedCandidates := analysisResult.SortedCandidates()
	if len(sortedCandidates) == 0 {
		fmt.Fprint(runner.output, showNoCandidatesConstant)
		return nil
	}
	fmt.Fprint(runner.output, showCandidatesHeaderConstant)
	candidateTable := tabwriter.NewWriter(runner.output, 0, 4, 2, ' ', 0)
	fmt.Fprint(candidateTable, candidateTableHeaderConstant)
	for _, promotionCandidate := range sortedCandidates {
		fmt.Fprintf(candidateTable, candidateTableRowTemplateConstant,
			promotionCandidate.Key,
			promotionCandidate.Value,
			promotionCandidate.RepositoryCount,
			promotionCandidate.TotalRepositories,
		)
	}
	if flushError := candidateTable.Flush(); flushError != nil {
		return flushError
	}
	fmt.Fprint(runner.output, showCommandsHeaderConstant)
	for _, promotionCommand := range analysisResult.PromotionCommands {
		fmt.Fprintf(runner.output, showCommandTemplateConstant, promotionCommand)
	}
	return nil
}

func (runner *Runner) writeProviderResult(snapshotDirectory string, providerName string, captureResult provider.CaptureResult) error {
	providerDirectory := filepath.Join(snapshotDirectory, providerName)
	if directoryError := os.MkdirAll(providerDirectory, snapshotDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(resultWriteTemplateConstant, directoryError)
	}
	encodedResult, encodeError := json.MarshalIndent(captureResult, "", "  ")
	if encodeError != nil {
		return fmt.Errorf(resultWriteTemplateConstant, encodeError)
	}
	encodedResult = append(encodedResult, '\n')
	resultPath := filepath.Join(providerDirectory, resultFileNameConstant)
	if writeError := os.WriteFile(resultPath, encodedResult, resultFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(resultWriteTemplateConstant, writeError)
	}
	return nil
}

func (runner *Runner) printCaptureResult(providerName string, captureResult provider.CaptureResult, verbose bool) {
	fmt.Fprintf(runner.output, providerStatusTemplateConstant, providerName, statusLabel(captureResult.OK))
	if verbose {
		runner.printDetails(captureResult.Details)
	}
}

func (runner *Runner) printDetails(resultDetails []provider.Detail) {
	for _, detailEntry := range resultDetails {
		fmt.Fprintf(runner.output, providerDetailTemplateConstant, detailEntry.Key, detailEntry.Value)
	}
}

func statusLabel(operationSucceeded bool) string {
	if operationSucceeded {
		return statusOKConstant
	}
	return statusFailedConstant
}

func verbosityLevel(verbose bool) int {
	if verbose {
		return 1
	}
	return 0
}

func metadataFormat(requestedFormat string) string {
	if len(requestedFormat) == 0 {
		return FormatJSON
	}
	return requestedFormat
}

func joinProviderNames(providerNames []string) string {
	return strings.Join(providerNames, providerListSeparatorConstant)
}
