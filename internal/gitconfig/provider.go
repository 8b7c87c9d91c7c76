package gitconfig

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
	// ProviderName identifies the git provider inside snapshots and filters.
	ProviderName = "git"

	gitVersionFlagConstant     = "--version"
	gitConfigGlobalFlagNameGit = "--global"
	gitConfigSystemFlagNameGit = "--system"

	configScopeListNameConstant   = "list"
	configScopeGlobalNameConstant = "global"
	configScopeSystemNameConstant = "system"

	rawRepositoryConfigRelativePath = ".git/config"

	detailKeyErrorConstant             = "error"
	detailKeyVersionConstant           = "version"
	detailKeyVersionErrorConstant      = "version_error"
	detailKeyGitPathConstant           = "git_path"
	detailKeyReposFoundConstant        = "repos_found"
	detailKeyReposCapturedConstant     = "repos_captured"
	detailKeyGlobalCandidatesConstant  = "global_candidates"
	detailKeyRestoreNoteConstant       = "note"
	detailKeyAnalysisErrorConstant     = "analysis_error"
	scopeErrorDetailKeyTemplate        = "config_%s_error"
	repositoryErrorDetailKeyTemplate   = "repo_error:%s"
	rawConfigErrorDetailKeyTemplate    = "repo_config_copy_error:%s"
	toolMissingDetailMessageConstant   = "git not found"
	restoreManualNoteMessageConstant   = "git configuration restore is manual; review the captured configs and promotion commands"
	restoreNothingPlannedNoteConstant  = "no captured analysis found; nothing to plan"
	logMessageCaptureCompletedConstant = "git configuration captured"
	logFieldRepositoriesFoundConstant  = "repositories_found"
	logFieldCandidateCountConstant     = "candidate_count"
)

// configScope pairs a scope name with the git arguments listing it.
type configScope struct {
	scopeName    string
	gitArguments []string
}

var capturedConfigScopes = []configScope{
	{scopeName: configScopeListNameConstant, gitArguments: []string{gitConfigSubcommandConstant, gitConfigListFlagConstant}},
	{scopeName: configScopeGlobalNameConstant, gitArguments: []string{gitConfigSubcommandConstant, gitConfigGlobalFlagNameGit, gitConfigListFlagConstant}},
	{scopeName: configScopeSystemNameConstant, gitArguments: []string{gitConfigSubcommandConstant, gitConfigSystemFlagNameGit, gitConfigListFlagConstant}},
}

// Provider captures, verifies, and restores git configuration state.
type Provider struct {
	gitExecutor       GitExecutor
	repositoryLocator *RepositoryLocator
	extractor         *ConfigurationExtractor
	logger            *zap.Logger
	configuration     Configuration
	homeDirectory     string
}

// NewProvider constructs the git provider around the supplied executor and configuration.
func NewProvider(gitExecutor GitExecutor, configuration Configuration, homeDirectory string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		gitExecutor:       gitExecutor,
		repositoryLocator: NewRepositoryLocator(),
		extractor:         NewConfigurationExtractor(gitExecutor),
		logger:            logger,
		configuration:     configuration.Sanitize(),
		homeDirectory:     homeDirectory,
	}
}

// Name returns the provider identifier.
func (gitProvider *Provider) Name() string {
	return ProviderName
}

// Capture collects git configuration scopes, per-repository configuration, and
// the cross-repository promotion analysis into the snapshot directory.
//
// A missing git tool fails the capture; individual scope or repository
// failures are recorded as details and do not halt the run. Filesystem errors
// while writing artifacts propagate to the caller.
func (gitProvider *Provider) Capture(executionContext context.Context, runContext provider.RunContext) (provider.CaptureResult, error) {
	if _, toolError := gitProvider.gitExecutor.ResolveToolPath(execshell.CommandGit); toolError != nil {
		return provider.CaptureResult{OK: false}.WithDetail(detailKeyErrorConstant, toolMissingDetailMessageConstant), nil
	}

	captureResult := provider.CaptureResult{OK: true}

	artifactWriter := NewArtifactWriter(gitProvider.artifactDirectory(runContext), gitProvider.homeDirectory)
	if directoryError := artifactWriter.EnsureDirectory(); directoryError != nil {
		return provider.CaptureResult{OK: false}, directoryError
	}

	captureResult = gitProvider.captureVersion(executionContext, captureResult)

	scopesResult, scopesError := gitProvider.captureConfigurationScopes(executionContext, artifactWriter, captureResult)
	if scopesError != nil {
		return provider.CaptureResult{OK: false}, scopesError
	}
	captureResult = scopesResult

	repositoryPaths := gitProvider.repositoryLocator.LocateRepositories(gitProvider.configuration.Roots)
	captureResult = captureResult.WithDetail(detailKeyReposFoundConstant, strconv.Itoa(len(repositoryPaths)))

	repositoryConfigurations := make([]RepositoryConfiguration, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		repositoryConfiguration, extractionError := gitProvider.extractor.ExtractLocalConfiguration(executionContext, repositoryPath)
		if extractionError != nil {
			captureResult = captureResult.WithDetail(fmt.Sprintf(repositoryErrorDetailKeyTemplate, repositoryPath), extractionError.Error())
			continue
		}

		repositoryResult, repositoryError := gitProvider.persistRepositoryArtifacts(artifactWriter, repositoryConfiguration, captureResult)
		if repositoryError != nil {
			return provider.CaptureResult{OK: false}, repositoryError
		}
		captureResult = repositoryResult

		repositoryConfigurations = append(repositoryConfigurations, repositoryConfiguration)
	}
	captureResult = captureResult.WithDetail(detailKeyReposCapturedConstant, strconv.Itoa(len(repositoryConfigurations)))

	analysisResult := PlanPromotions(Aggregate(repositoryConfigurations))
	if len(repositoryPaths) > 0 {
		if analysisError := artifactWriter.WriteAnalysis(analysisResult); analysisError != nil {
			return provider.CaptureResult{OK: false}, analysisError
		}
	}
	captureResult = captureResult.WithDetail(detailKeyGlobalCandidatesConstant, strconv.Itoa(len(analysisResult.Candidates)))

	gitProvider.logger.Info(
		logMessageCaptureCompletedConstant,
		zap.Int(logFieldRepositoriesFoundConstant, len(repositoryPaths)),
		zap.Int(logFieldCandidateCountConstant, len(analysisResult.Candidates)),
	)

	return captureResult, nil
}

// Verify checks the git tool is present and, when a captured analysis exists, that it is readable.
func (gitProvider *Provider) Verify(executionContext context.Context, runContext provider.RunContext) (provider.VerifyResult, error) {
	resolvedToolPath, toolError := gitProvider.gitExecutor.ResolveToolPath(execshell.CommandGit)
	if toolError != nil {
		return provider.VerifyResult{OK: false, Details: []provider.Detail{{Key: detailKeyErrorConstant, Value: toolMissingDetailMessageConstant}}}, nil
	}

	verifyResult := provider.VerifyResult{OK: true, Details: []provider.Detail{{Key: detailKeyGitPathConstant, Value: resolvedToolPath}}}

	analysisDirectory := gitProvider.artifactDirectory(runContext)
	if _, statError := os.Stat(filepath.Join(analysisDirectory, analysisArtifactFileNameConstant)); statError == nil {
		if _, analysisError := LoadAnalysis(analysisDirectory); analysisError != nil {
			verifyResult.OK = false
			verifyResult.Details = append(verifyResult.Details, provider.Detail{Key: detailKeyAnalysisErrorConstant, Value: analysisError.Error()})
		}
	}

	return verifyResult, nil
}

// Restore reports the promotion commands captured for this snapshot. The git
// provider never mutates configuration, so apply mode still only reports.
func (gitProvider *Provider) Restore(executionContext context.Context, runContext provider.RunContext) (provider.RestoreResult, error) {
	restoreResult := provider.RestoreResult{
		OK:      true,
		Details: []provider.Detail{{Key: detailKeyRestoreNoteConstant, Value: restoreManualNoteMessageConstant}},
	}

	analysisResult, analysisError := LoadAnalysis(gitProvider.artifactDirectory(runContext))
	if analysisError != nil {
		restoreResult.Details = append(restoreResult.Details, provider.Detail{Key: detailKeyRestoreNoteConstant, Value: restoreNothingPlannedNoteConstant})
		return restoreResult, nil
	}

	restoreResult.Planned = append([]string{}, analysisResult.PromotionCommands...)
	return restoreResult, nil
}

func (gitProvider *Provider) artifactDirectory(runContext provider.RunContext) string {
	return filepath.Join(runContext.SnapshotDirectory, ProviderName)
}

func (gitProvider *Provider) captureVersion(executionContext context.Context, captureResult provider.CaptureResult) provider.CaptureResult {
	versionResult, versionError := gitProvider.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: []string{gitVersionFlagConstant}})
	if versionError != nil {
		captureResult.OK = false
		return captureResult.WithDetail(detailKeyVersionErrorConstant, versionError.Error())
	}
	return captureResult.WithDetail(detailKeyVersionConstant, strings.TrimSpace(versionResult.StandardOutput))
}

func (gitProvider *Provider) captureConfigurationScopes(executionContext context.Context, artifactWriter *ArtifactWriter, captureResult provider.CaptureResult) (provider.CaptureResult, error) {
	for _, capturedScope := range capturedConfigScopes {
		scopeResult, scopeError := gitProvider.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: capturedScope.gitArguments})
		if scopeError != nil {
			captureResult = captureResult.WithDetail(fmt.Sprintf(scopeErrorDetailKeyTemplate, capturedScope.scopeName), scopeError.Error())
			continue
		}
		if writeError := artifactWriter.WriteScopeDump(capturedScope.scopeName, scopeResult.StandardOutput); writeError != nil {
			return captureResult, writeError
		}
	}
	return captureResult, nil
}

func (gitProvider *Provider) persistRepositoryArtifacts(artifactWriter *ArtifactWriter, repositoryConfiguration RepositoryConfiguration, captureResult provider.CaptureResult) (provider.CaptureResult, error) {
	rawConfiguration, rawReadError := os.ReadFile(filepath.Join(repositoryConfiguration.Path, filepath.FromSlash(rawRepositoryConfigRelativePath)))
	if rawReadError != nil {
		captureResult = captureResult.WithDetail(fmt.Sprintf(rawConfigErrorDetailKeyTemplate, repositoryConfiguration.Path), rawReadError.Error())
	} else {
		if writeError := artifactWriter.WriteRepositoryRawConfiguration(repositoryConfiguration.Path, rawConfiguration); writeError != nil {
			return captureResult, writeError
		}
	}

	if writeError := artifactWriter.WriteRepositoryListing(repositoryConfiguration); writeError != nil {
		return captureResult, writeError
	}

	return captureResult, nil
}
