package gitconfig_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/devsnap/internal/gitconfig"
)

const (
	testUnanimousCaseNameConstant        = "unanimous_key_promoted"
	testDivergentCaseNameConstant        = "divergent_key_rejected"
	testBelowThresholdCaseNameConstant   = "single_repository_rejected"
	testExcludedKeyCaseNameConstant      = "bookkeeping_key_rejected"
	testExcludedPrefixCaseNameConstant   = "remote_namespace_rejected"
	testPartialCoverageCaseNameConstant  = "partial_coverage_promoted"
	testQuoteEscapingValueConstant       = `say "hi"`
	testExpectedEscapedCommandConstant   = `git config --global alias.greet "say \"hi\""`
	testRepositoryFormatVersionConstant  = "core.repositoryformatversion"
	testRemoteOriginURLKeyConstant       = "remote.origin.url"
	testAliasGreetKeyConstant            = "alias.greet"
	testPullRebaseKeyConstant            = "pull.rebase"
	testPullRebaseValueConstant          = "true"
)

func TestPlanPromotionsSelection(testInstance *testing.T) {
	testCases := []struct {
		name               string
		configurations     []gitconfig.RepositoryConfiguration
		expectedCandidates map[string]gitconfig.PromotionCandidate
	}{
		{
			name: testUnanimousCaseNameConstant,
			configurations: []gitconfig.RepositoryConfiguration{
				repositoryConfiguration(testFirstRepositoryPath, [][2]string{{testCoreEditorKeyConstant, testSharedEditorValue}}),
				repositoryConfiguration(testSecondRepositoryPath, [][2]string{{testCoreEditorKeyConstant, testSharedEditorValue}}),
			},
			expectedCandidates: map[string]gitconfig.PromotionCandidate{
				testCoreEditorKeyConstant: {Key: testCoreEditorKeyConstant, Value: testSharedEditorValue, RepositoryCount: 2, TotalRepositories: 2},
			},
		},
		{
			name: testDivergentCaseNameConstant,
			configurations: []gitconfig.RepositoryConfiguration{
				repositoryConfiguration(testFirstRepositoryPath, [][2]string{{testUserEmailKeyConstant, testSharedEmailValue}}),
				repositoryConfiguration(testSecondRepositoryPath, [][2]string{{testUserEmailKeyConstant, testSharedEmailValue}}),
				repositoryConfiguration(testThirdRepositoryPath, [][2]string{{testUserEmailKeyConstant, testDivergentEmailValue}}),
			},
			expectedCandidates: map[string]gitconfig.PromotionCandidate{},
		},
		{
			name: testBelowThresholdCaseNameConstant,
			configurations: []gitconfig.RepositoryConfiguration{
				repositoryConfiguration(testFirstRepositoryPath, [][2]string{{testCoreEditorKeyConstant, testSharedEditorValue}}),
			},
			expectedCandidates: map[string]gitconfig.PromotionCandidate{},
		},
		{
			name: testExcludedKeyCaseNameConstant,
			configurations: []gitconfig.RepositoryConfiguration{
				repositoryConfiguration(testFirstRepositoryPath, [][2]string{{testRepositoryFormatVersionConstant, "0"}}),
				repositoryConfiguration(testSecondRepositoryPath, [][2]string{{testRepositoryFormatVersionConstant, "0"}}),
			},
			expectedCandidates: map[string]gitconfig.PromotionCandidate{},
		},
		{
			name: testExcludedPrefixCaseNameConstant,
			configurations: []gitconfig.RepositoryConfiguration{
				repositoryConfiguration(testFirstRepositoryPath, [][2]string{{testRemoteOriginURLKeyConstant, "git@github.com:a/a.git"}}),
				repositoryConfiguration(testSecondRepositoryPath, [][2]string{{testRemoteOriginURLKeyConstant, "git@github.com:a/a.git"}}),
			},
			expectedCandidates: map[string]gitconfig.PromotionCandidate{},
		},
		{
			name: testPartialCoverageCaseNameConstant,
			configurations: []gitconfig.RepositoryConfiguration{
				repositoryConfiguration(testFirstRepositoryPath, [][2]string{{testCoreEditorKeyConstant, testSharedEditorValue}}),
				repositoryConfiguration(testSecondRepositoryPath, [][2]string{{testCoreEditorKeyConstant, testSharedEditorValue}}),
				repositoryConfiguration(testThirdRepositoryPath, nil),
			},
			expectedCandidates: map[string]gitconfig.PromotionCandidate{
				testCoreEditorKeyConstant: {Key: testCoreEditorKeyConstant, Value: testSharedEditorValue, RepositoryCount: 2, TotalRepositories: 3},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			analysisResult := gitconfig.PlanPromotions(gitconfig.Aggregate(testCase.configurations))
			require.Equal(testInstance, testCase.expectedCandidates, analysisResult.Candidates)
			require.Len(testInstance, analysisResult.PromotionCommands, len(testCase.expectedCandidates))
		})
	}
}

func TestSynthesizedCommandsEscapeEmbeddedQuotes(testInstance *testing.T) {
	analysisResult := gitconfig.PlanPromotions(gitconfig.Aggregate([]gitconfig.RepositoryConfiguration{
		repositoryConfiguration(testFirstRepositoryPath, [][2]string{{testAliasGreetKeyConstant, testQuoteEscapingValueConstant}}),
		repositoryConfiguration(testSecondRepositoryPath, [][2]string{{testAliasGreetKeyConstant, testQuoteEscapingValueConstant}}),
	}))

	require.Equal(testInstance, []string{testExpectedEscapedCommandConstant}, analysisResult.PromotionCommands)
}

func TestPromotionCommandsPreserveFirstSeenOrder(testInstance *testing.T) {
	analysisResult := gitconfig.PlanPromotions(gitconfig.Aggregate([]gitconfig.RepositoryConfiguration{
		repositoryConfiguration(testFirstRepositoryPath, [][2]string{
			{testPullRebaseKeyConstant, testPullRebaseValueConstant},
			{testCoreEditorKeyConstant, testSharedEditorValue},
		}),
		repositoryConfiguration(testSecondRepositoryPath, [][2]string{
			{testCoreEditorKeyConstant, testSharedEditorValue},
			{testPullRebaseKeyConstant, testPullRebaseValueConstant},
		}),
		repositoryConfiguration(testThirdRepositoryPath, [][2]string{
			{testCoreEditorKeyConstant, testSharedEditorValue},
		}),
	}))

	require.Equal(testInstance, []string{
		gitconfig.SynthesizePromotionCommand(testPullRebaseKeyConstant, testPullRebaseValueConstant),
		gitconfig.SynthesizePromotionCommand(testCoreEditorKeyConstant, testSharedEditorValue),
	}, analysisResult.PromotionCommands)
}

func TestSortedCandidatesOrderByDescendingRepositoryCount(testInstance *testing.T) {
	analysisResult := gitconfig.PlanPromotions(gitconfig.Aggregate([]gitconfig.RepositoryConfiguration{
		repositoryConfiguration(testFirstRepositoryPath, [][2]string{
			{testPullRebaseKeyConstant, testPullRebaseValueConstant},
			{testCoreEditorKeyConstant, testSharedEditorValue},
		}),
		repositoryConfiguration(testSecondRepositoryPath, [][2]string{
			{testPullRebaseKeyConstant, testPullRebaseValueConstant},
			{testCoreEditorKeyConstant, testSharedEditorValue},
		}),
		repositoryConfiguration(testThirdRepositoryPath, [][2]string{
			{testCoreEditorKeyConstant, testSharedEditorValue},
		}),
	}))

	sortedCandidates := analysisResult.SortedCandidates()
	require.Len(testInstance, sortedCandidates, 2)
	require.Equal(testInstance, testCoreEditorKeyConstant, sortedCandidates[0].Key)
	require.Equal(testInstance, 3, sortedCandidates[0].RepositoryCount)
	require.Equal(testInstance, testPullRebaseKeyConstant, sortedCandidates[1].Key)
	require.Equal(testInstance, 2, sortedCandidates[1].RepositoryCount)
}
