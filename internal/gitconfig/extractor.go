package gitconfig

import (
	"context"
	"strings"

	"github.com/temirov/devsnap/internal/execshell"
)

const (
	gitConfigSubcommandConstant   = "config"
	gitConfigLocalFlagConstant    = "--local"
	gitConfigListFlagConstant     = "--list"
	keyValueSeparatorConstant     = "="
	keyValueSplitSegmentsConstant = 2
)

// GitExecutor abstracts git invocation for the provider and extractor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ResolveToolPath(toolName execshell.CommandName) (string, error)
}

// RepositoryConfiguration is the immutable local configuration snapshot of one repository.
type RepositoryConfiguration struct {
	// Path is the repository's filesystem location.
	Path string
	// Values maps configuration keys to their values.
	Values map[string]string
	// KeyOrder preserves the order keys were listed by git, for deterministic aggregation.
	KeyOrder []string
}

// ConfigurationExtractor lists per-repository git configuration.
type ConfigurationExtractor struct {
	gitExecutor GitExecutor
}

// NewConfigurationExtractor constructs a ConfigurationExtractor around the provided executor.
func NewConfigurationExtractor(gitExecutor GitExecutor) *ConfigurationExtractor {
	return &ConfigurationExtractor{gitExecutor: gitExecutor}
}

// ExtractLocalConfiguration runs the repository-local configuration listing and parses it.
//
// A failed invocation yields an error and no configuration; the caller decides
// whether to continue with the remaining repositories.
func (extractor *ConfigurationExtractor) ExtractLocalConfiguration(executionContext context.Context, repositoryPath string) (RepositoryConfiguration, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, gitConfigLocalFlagConstant, gitConfigListFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := extractor.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryConfiguration{}, executionError
	}

	configurationValues, configurationKeyOrder := ParseConfigurationListing(executionResult.StandardOutput)
	return RepositoryConfiguration{
		Path:     repositoryPath,
		Values:   configurationValues,
		KeyOrder: configurationKeyOrder,
	}, nil
}

// ParseConfigurationListing parses line-oriented key=value output into a
// mapping plus the order keys first appeared. Lines without a separator are
// skipped; a repeated key keeps its last value and first position.
func ParseConfigurationListing(listingOutput string) (map[string]string, []string) {
	configurationValues := make(map[string]string)
	var configurationKeyOrder []string

	for _, listingLine := range strings.Split(listingOutput, "\n") {
		trimmedLine := strings.TrimRight(listingLine, "\r")
		if len(trimmedLine) == 0 {
			continue
		}

		separatedSegments := strings.SplitN(trimmedLine, keyValueSeparatorConstant, keyValueSplitSegmentsConstant)
		if len(separatedSegments) != keyValueSplitSegmentsConstant {
			continue
		}

		configurationKey := separatedSegments[0]
		if _, keyAlreadyObserved := configurationValues[configurationKey]; !keyAlreadyObserved {
			configurationKeyOrder = append(configurationKeyOrder, configurationKey)
		}
		configurationValues[configurationKey] = separatedSegments[1]
	}

	return configurationValues, configurationKeyOrder
}
