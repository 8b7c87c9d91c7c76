package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/devsnap/internal/provider"
)

const (
	testGitProviderNameConstant        = "git"
	testHomebrewProviderNameConstant   = "homebrew"
	testAllProvidersCaseNameConstant   = "all_providers"
	testIncludeFilterCaseNameConstant  = "include_filter"
	testExcludeFilterCaseNameConstant  = "exclude_filter"
	testExclusionWinsCaseNameConstant  = "exclusion_wins_over_inclusion"
	testUnknownIncludeCaseNameConstant = "unknown_include_selects_nothing"
)

type staticProvider struct {
	name string
}

func (stub staticProvider) Name() string {
	return stub.name
}

func (stub staticProvider) Capture(context.Context, provider.RunContext) (provider.CaptureResult, error) {
	return provider.CaptureResult{OK: true}, nil
}

func (stub staticProvider) Verify(context.Context, provider.RunContext) (provider.VerifyResult, error) {
	return provider.VerifyResult{OK: true}, nil
}

func (stub staticProvider) Restore(context.Context, provider.RunContext) (provider.RestoreResult, error) {
	return provider.RestoreResult{OK: true}, nil
}

func providerNames(providers []provider.Provider) []string {
	names := make([]string, 0, len(providers))
	for _, selectedProvider := range providers {
		names = append(names, selectedProvider.Name())
	}
	return names
}

func TestRegistrySelection(testInstance *testing.T) {
	registry := provider.NewRegistry(
		staticProvider{name: testGitProviderNameConstant},
		staticProvider{name: testHomebrewProviderNameConstant},
	)

	testCases := []struct {
		name          string
		includeNames  []string
		excludeNames  []string
		expectedNames []string
	}{
		{
			name:          testAllProvidersCaseNameConstant,
			expectedNames: []string{testGitProviderNameConstant, testHomebrewProviderNameConstant},
		},
		{
			name:          testIncludeFilterCaseNameConstant,
			includeNames:  []string{testGitProviderNameConstant},
			expectedNames: []string{testGitProviderNameConstant},
		},
		{
			name:          testExcludeFilterCaseNameConstant,
			excludeNames:  []string{testGitProviderNameConstant},
			expectedNames: []string{testHomebrewProviderNameConstant},
		},
		{
			name:          testExclusionWinsCaseNameConstant,
			includeNames:  []string{testGitProviderNameConstant},
			excludeNames:  []string{testGitProviderNameConstant},
			expectedNames: []string{},
		},
		{
			name:          testUnknownIncludeCaseNameConstant,
			includeNames:  []string{"cargo"},
			expectedNames: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			selectedProviders := registry.Select(testCase.includeNames, testCase.excludeNames)
			require.Equal(testInstance, testCase.expectedNames, providerNames(selectedProviders))
		})
	}
}

func TestRegistryDeduplicatesProviderNames(testInstance *testing.T) {
	registry := provider.NewRegistry(
		staticProvider{name: testGitProviderNameConstant},
		staticProvider{name: testGitProviderNameConstant},
	)

	require.Equal(testInstance, []string{testGitProviderNameConstant}, providerNames(registry.Providers()))
}

func TestResultDetailLookup(testInstance *testing.T) {
	captureResult := provider.CaptureResult{OK: true}.
		WithDetail("repos_found", "3").
		WithDetail("repos_captured", "2")

	foundValue, found := captureResult.DetailValue("repos_found")
	require.True(testInstance, found)
	require.Equal(testInstance, "3", foundValue)

	_, missing := captureResult.DetailValue("absent")
	require.False(testInstance, missing)
}
