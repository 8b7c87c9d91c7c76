package gitconfig

import (
	"fmt"
	"sort"
	"strings"
)

const (
	promotionRepositoryThresholdConstant = 2
	promotionCommandTemplateConstant     = `git config --global %s "%s"`
	escapedDoubleQuoteConstant           = `\"`
	doubleQuoteConstant                  = `"`
)

// excludedPromotionKeys lists internal bookkeeping keys git writes into every
// repository; they are never meaningful globally.
var excludedPromotionKeys = map[string]struct{}{
	"core.repositoryformatversion": {},
	"core.filemode":                {},
	"core.bare":                    {},
	"core.logallrefupdates":        {},
	"core.ignorecase":              {},
	"core.precomposeunicode":       {},
}

// excludedPromotionPrefixes lists namespaces that are inherently
// per-repository and must never be promoted, even when unanimous.
var excludedPromotionPrefixes = []string{
	"remote.",
	"branch.",
	"submodule.",
}

// PromotionCandidate is a configuration key unanimously set to one value
// across at least the threshold number of repositories.
type PromotionCandidate struct {
	Key               string `json:"-"`
	Value             string `json:"value"`
	RepositoryCount   int    `json:"repo_count"`
	TotalRepositories int    `json:"total_repos"`
}

// AnalysisResult is the persisted outcome of cross-repository configuration analysis.
type AnalysisResult struct {
	TotalRepositories int                           `json:"total_repos"`
	Candidates        map[string]PromotionCandidate `json:"global_candidates"`
	PromotionCommands []string                      `json:"promotion_commands"`

	// candidateOrder preserves first-observed key order for command synthesis
	// and stable display tie-breaks.
	candidateOrder []string
}

// PlanPromotions selects promotion candidates from the aggregation and
// synthesizes the commands that would apply them globally.
func PlanPromotions(aggregation Aggregation) AnalysisResult {
	analysisResult := AnalysisResult{
		TotalRepositories: aggregation.TotalRepositories,
		Candidates:        make(map[string]PromotionCandidate),
	}

	for _, configurationKey := range aggregation.KeyOrder {
		if isExcludedFromPromotion(configurationKey) {
			continue
		}

		keyTally := aggregation.Tallies[configurationKey]
		if len(keyTally.ValueCounts) != 1 {
			continue
		}

		var unanimousValue string
		var repositoryCount int
		for tallyValue, tallyCount := range keyTally.ValueCounts {
			unanimousValue = tallyValue
			repositoryCount = tallyCount
		}

		if repositoryCount < promotionRepositoryThresholdConstant {
			continue
		}

		analysisResult.Candidates[configurationKey] = PromotionCandidate{
			Key:               configurationKey,
			Value:             unanimousValue,
			RepositoryCount:   repositoryCount,
			TotalRepositories: aggregation.TotalRepositories,
		}
		analysisResult.candidateOrder = append(analysisResult.candidateOrder, configurationKey)
		analysisResult.PromotionCommands = append(analysisResult.PromotionCommands, SynthesizePromotionCommand(configurationKey, unanimousValue))
	}

	return analysisResult
}

// SynthesizePromotionCommand renders a copy-safe command applying the key globally.
func SynthesizePromotionCommand(configurationKey string, configurationValue string) string {
	escapedValue := strings.ReplaceAll(configurationValue, doubleQuoteConstant, escapedDoubleQuoteConstant)
	return fmt.Sprintf(promotionCommandTemplateConstant, configurationKey, escapedValue)
}

// SortedCandidates returns the candidates ordered by descending repository
// count, breaking ties by first-observed key order. Display ordering only;
// the candidate mapping itself stays unordered.
func (analysisResult AnalysisResult) SortedCandidates() []PromotionCandidate {
	orderedCandidates := make([]PromotionCandidate, 0, len(analysisResult.candidateOrder))
	for _, configurationKey := range analysisResult.candidateOrder {
		orderedCandidates = append(orderedCandidates, analysisResult.Candidates[configurationKey])
	}

	sort.SliceStable(orderedCandidates, func(firstIndex int, secondIndex int) bool {
		return orderedCandidates[firstIndex].RepositoryCount > orderedCandidates[secondIndex].RepositoryCount
	})

	return orderedCandidates
}

// CandidateKeys returns candidate keys in first-observed order.
func (analysisResult AnalysisResult) CandidateKeys() []string {
	return append([]string{}, analysisResult.candidateOrder...)
}

func isExcludedFromPromotion(configurationKey string) bool {
	if _, excludedKey := excludedPromotionKeys[configurationKey]; excludedKey {
		return true
	}
	for _, excludedPrefix := range excludedPromotionPrefixes {
		if strings.HasPrefix(configurationKey, excludedPrefix) {
			return true
		}
	}
	return false
}
