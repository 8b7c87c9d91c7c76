package homebrew

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/devsnap/internal/execshell"
	"github.com/temirov/devsnap/internal/provider"
)

const (
	// ProviderName identifies the Homebrew provider inside snapshots and filters.
	ProviderName = "homebrew"

	brewVersionFlagConstant      = "--version"
	brewListSubcommandConstant   = "list"
	brewConfigSubcommandConstant = "config"
	brewBundleSubcommandConstant = "bundle"
	brewBundleDumpArgumentConst  = "dump"
	brewBundleFileFlagConstant   = "--file"
	brewBundleForceFlagConstant  = "--force"

	brewfileNameConstant            = "Brewfile"
	packagesArtifactFileNameConst   = "packages.txt"
	configArtifactFileNameConstant  = "config.txt"
	artifactDirectoryPermissions    = 0o755
	artifactFilePermissions         = 0o644
	artifactWriteErrorTemplateConst = "unable to write artifact %s: %w"

	detailKeyErrorConstant          = "error"
	detailKeyVersionConstant        = "version"
	detailKeyPackageCountConstant   = "package_count"
	detailKeyBrewPathConstant       = "brew_path"
	detailKeyPlannedConstant        = "planned"
	detailKeyAppliedConstant        = "applied"
	toolMissingDetailMessageConst   = "brew not found"
	brewfileMissingDetailMessage    = "Brewfile missing"
	plannedBundleCommandTemplate    = "brew bundle --file %s"
	logMessageCaptureCompletedConst = "homebrew inventory captured"
	logFieldPackageCountConstant    = "package_count"
)

// BrewExecutor abstracts Homebrew invocation for the provider.
type BrewExecutor interface {
	ExecuteBrew(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ResolveToolPath(toolName execshell.CommandName) (string, error)
}

// Provider captures, verifies, and restores Homebrew package state.
type Provider struct {
	brewExecutor BrewExecutor
	logger       *zap.Logger
}

// NewProvider constructs the Homebrew provider around the supplied executor.
func NewProvider(brewExecutor BrewExecutor, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{brewExecutor: brewExecutor, logger: logger}
}

// Name returns the provider identifier.
func (brewProvider *Provider) Name() string {
	return ProviderName
}

// Capture records the Homebrew version, installed package list, configuration,
// and a Brewfile dump into the snapshot directory.
func (brewProvider *Provider) Capture(executionContext context.Context, runContext provider.RunContext) (provider.CaptureResult, error) {
	if _, toolError := brewProvider.brewExecutor.ResolveToolPath(execshell.CommandBrew); toolError != nil {
		return provider.CaptureResult{OK: false}.WithDetail(detailKeyErrorConstant, toolMissingDetailMessageConst), nil
	}

	artifactDirectory := brewProvider.artifactDirectory(runContext)
	if directoryError := os.MkdirAll(artifactDirectory, artifactDirectoryPermissions); directoryError != nil {
		return provider.CaptureResult{OK: false}, directoryError
	}

	captureResult := provider.CaptureResult{OK: true}

	versionResult, versionError := brewProvider.brewExecutor.ExecuteBrew(executionContext, execshell.CommandDetails{Arguments: []string{brewVersionFlagConstant}})
	if versionError != nil {
		captureResult.OK = false
		return captureResult.WithDetail(detailKeyErrorConstant, versionError.Error()), nil
	}
	captureResult = captureResult.WithDetail(detailKeyVersionConstant, strings.TrimSpace(versionResult.StandardOutput))

	listResult, listError := brewProvider.brewExecutor.ExecuteBrew(executionContext, execshell.CommandDetails{Arguments: []string{brewListSubcommandConstant}})
	if listError != nil {
		captureResult.OK = false
		return captureResult.WithDetail(detailKeyErrorConstant, listError.Error()), nil
	}
	if writeError := writeArtifact(artifactDirectory, packagesArtifactFileNameConst, []byte(listResult.StandardOutput)); writeError != nil {
		return provider.CaptureResult{OK: false}, writeError
	}
	packageCount := countNonEmptyLines(listResult.StandardOutput)
	captureResult = captureResult.WithDetail(detailKeyPackageCountConstant, strconv.Itoa(packageCount))

	configResult, configError := brewProvider.brewExecutor.ExecuteBrew(executionContext, execshell.CommandDetails{Arguments: []string{brewConfigSubcommandConstant}})
	if configError != nil {
		captureResult.OK = false
		return captureResult.WithDetail(detailKeyErrorConstant, configError.Error()), nil
	}
	if writeError := writeArtifact(artifactDirectory, configArtifactFileNameConstant, []byte(configResult.StandardOutput)); writeError != nil {
		return provider.CaptureResult{OK: false}, writeError
	}

	brewfilePath := filepath.Join(artifactDirectory, brewfileNameConstant)
	bundleArguments := []string{brewBundleSubcommandConstant, brewBundleDumpArgumentConst, brewBundleFileFlagConstant, brewfilePath, brewBundleForceFlagConstant}
	if _, bundleError := brewProvider.brewExecutor.ExecuteBrew(executionContext, execshell.CommandDetails{Arguments: bundleArguments}); bundleError != nil {
		captureResult.OK = false
		return captureResult.WithDetail(detailKeyErrorConstant, bundleError.Error()), nil
	}

	brewProvider.logger.Info(logMessageCaptureCompletedConst, zap.Int(logFieldPackageCountConstant, packageCount))

	return captureResult, nil
}

// Verify checks the brew tool is present.
func (brewProvider *Provider) Verify(executionContext context.Context, runContext provider.RunContext) (provider.VerifyResult, error) {
	resolvedToolPath, toolError := brewProvider.brewExecutor.ResolveToolPath(execshell.CommandBrew)
	if toolError != nil {
		return provider.VerifyResult{OK: false, Details: []provider.Detail{{Key: detailKeyErrorConstant, Value: toolMissingDetailMessageConst}}}, nil
	}
	return provider.VerifyResult{OK: true, Details: []provider.Detail{{Key: detailKeyBrewPathConstant, Value: resolvedToolPath}}}, nil
}

// Restore previews or applies a `brew bundle` run against the captured Brewfile.
func (brewProvider *Provider) Restore(executionContext context.Context, runContext provider.RunContext) (provider.RestoreResult, error) {
	brewfilePath := filepath.Join(brewProvider.artifactDirectory(runContext), brewfileNameConstant)
	bundleCommand := fmt.Sprintf(plannedBundleCommandTemplate, brewfilePath)

	if !runContext.ApplyChanges {
		return provider.RestoreResult{
			OK:      true,
			Planned: []string{bundleCommand},
			Details: []provider.Detail{{Key: detailKeyPlannedConstant, Value: bundleCommand}},
		}, nil
	}

	if _, toolError := brewProvider.brewExecutor.ResolveToolPath(execshell.CommandBrew); toolError != nil {
		return provider.RestoreResult{OK: false, Details: []provider.Detail{{Key: detailKeyErrorConstant, Value: toolMissingDetailMessageConst}}}, nil
	}

	if _, statError := os.Stat(brewfilePath); statError != nil {
		return provider.RestoreResult{OK: false, Details: []provider.Detail{{Key: detailKeyErrorConstant, Value: brewfileMissingDetailMessage}}}, nil
	}

	bundleArguments := []string{brewBundleSubcommandConstant, brewBundleFileFlagConstant, brewfilePath}
	if _, bundleError := brewProvider.brewExecutor.ExecuteBrew(executionContext, execshell.CommandDetails{Arguments: bundleArguments}); bundleError != nil {
		return provider.RestoreResult{OK: false, Details: []provider.Detail{{Key: detailKeyErrorConstant, Value: bundleError.Error()}}}, nil
	}

	return provider.RestoreResult{
		OK:      true,
		Applied: []string{bundleCommand},
		Details: []provider.Detail{{Key: detailKeyAppliedConstant, Value: brewfilePath}},
	}, nil
}

func (brewProvider *Provider) artifactDirectory(runContext provider.RunContext) string {
	return filepath.Join(runContext.SnapshotDirectory, ProviderName)
}

func writeArtifact(artifactDirectory string, artifactFileName string, artifactContent []byte) error {
	artifactPath := filepath.Join(artifactDirectory, artifactFileName)
	if writeError := os.WriteFile(artifactPath, artifactContent, artifactFilePermissions); writeError != nil {
		return fmt.Errorf(artifactWriteErrorTemplateConst, artifactFileName, writeError)
	}
	return nil
}

func countNonEmptyLines(listingOutput string) int {
	lineCount := 0
	for _, listingLine := range strings.Split(listingOutput, "\n") {
		if len(strings.TrimSpace(listingLine)) > 0 {
			lineCount++
		}
	}
	return lineCount
}
