package gitconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	homeDirectoryTokenConstant        = "HOME"
	analysisArtifactFileNameConstant  = "analysis.json"
	scopeArtifactFileNameTemplate     = "config_%s.txt"
	rawConfigArtifactSuffixConstant   = ".gitconfig"
	listingArtifactSuffixConstant     = ".listing.txt"
	repositoryArtifactPrefixConstant  = "repo_"
	artifactDirectoryPermissions      = 0o755
	artifactFilePermissions           = 0o644
	percentEncodingTemplateConstant   = "%%%02X"
	analysisMarshalIndentConstant     = "  "
	artifactWriteErrorTemplateMessage = "unable to write artifact %s: %w"
)

// ArtifactWriter persists provider artifacts beneath one directory.
//
// All filesystem side effects of the provider flow through this type; the
// aggregation and planning code stays pure.
type ArtifactWriter struct {
	artifactDirectory string
	homeDirectory     string
}

// NewArtifactWriter constructs a writer rooted at the provider's artifact directory.
func NewArtifactWriter(artifactDirectory string, homeDirectory string) *ArtifactWriter {
	return &ArtifactWriter{artifactDirectory: artifactDirectory, homeDirectory: homeDirectory}
}

// EnsureDirectory creates the artifact directory when absent.
func (writer *ArtifactWriter) EnsureDirectory() error {
	return os.MkdirAll(writer.artifactDirectory, artifactDirectoryPermissions)
}

// WriteScopeDump persists one configuration scope listing.
func (writer *ArtifactWriter) WriteScopeDump(scopeName string, scopeContent string) error {
	artifactFileName := fmt.Sprintf(scopeArtifactFileNameTemplate, scopeName)
	return writer.writeArtifact(artifactFileName, []byte(scopeContent))
}

// WriteRepositoryRawConfiguration persists a copy of one repository's raw configuration file.
func (writer *ArtifactWriter) WriteRepositoryRawConfiguration(repositoryPath string, rawConfiguration []byte) error {
	artifactFileName := repositoryArtifactPrefixConstant + writer.SanitizeRepositoryPath(repositoryPath) + rawConfigArtifactSuffixConstant
	return writer.writeArtifact(artifactFileName, rawConfiguration)
}

// WriteRepositoryListing persists one repository's parsed configuration listing.
func (writer *ArtifactWriter) WriteRepositoryListing(repositoryConfiguration RepositoryConfiguration) error {
	var listingBuilder strings.Builder
	for _, configurationKey := range repositoryConfiguration.KeyOrder {
		listingBuilder.WriteString(configurationKey)
		listingBuilder.WriteString(keyValueSeparatorConstant)
		listingBuilder.WriteString(repositoryConfiguration.Values[configurationKey])
		listingBuilder.WriteString("\n")
	}

	artifactFileName := repositoryArtifactPrefixConstant + writer.SanitizeRepositoryPath(repositoryConfiguration.Path) + listingArtifactSuffixConstant
	return writer.writeArtifact(artifactFileName, []byte(listingBuilder.String()))
}

// WriteAnalysis persists the cross-repository analysis artifact.
func (writer *ArtifactWriter) WriteAnalysis(analysisResult AnalysisResult) error {
	analysisContent, marshalError := json.MarshalIndent(analysisResult, "", analysisMarshalIndentConstant)
	if marshalError != nil {
		return marshalError
	}
	return writer.writeArtifact(analysisArtifactFileNameConstant, analysisContent)
}

// SanitizeRepositoryPath produces a collision-free artifact name component for
// a repository path: the home directory prefix collapses to a fixed token and
// every byte outside [A-Za-z0-9._-] is percent-encoded. Distinct paths always
// map to distinct names.
func (writer *ArtifactWriter) SanitizeRepositoryPath(repositoryPath string) string {
	tokenizedPath := repositoryPath
	if len(writer.homeDirectory) > 0 && strings.HasPrefix(repositoryPath, writer.homeDirectory) {
		tokenizedPath = homeDirectoryTokenConstant + strings.TrimPrefix(repositoryPath, writer.homeDirectory)
	}

	var encodedBuilder strings.Builder
	for byteIndex := 0; byteIndex < len(tokenizedPath); byteIndex++ {
		pathByte := tokenizedPath[byteIndex]
		if isUnreservedArtifactByte(pathByte) {
			encodedBuilder.WriteByte(pathByte)
			continue
		}
		encodedBuilder.WriteString(fmt.Sprintf(percentEncodingTemplateConstant, pathByte))
	}
	return encodedBuilder.String()
}

func (writer *ArtifactWriter) writeArtifact(artifactFileName string, artifactContent []byte) error {
	artifactPath := filepath.Join(writer.artifactDirectory, artifactFileName)
	if writeError := os.WriteFile(artifactPath, artifactContent, artifactFilePermissions); writeError != nil {
		return fmt.Errorf(artifactWriteErrorTemplateMessage, artifactFileName, writeError)
	}
	return nil
}

func isUnreservedArtifactByte(pathByte byte) bool {
	switch {
	case pathByte >= 'a' && pathByte <= 'z':
		return true
	case pathByte >= 'A' && pathByte <= 'Z':
		return true
	case pathByte >= '0' && pathByte <= '9':
		return true
	case pathByte == '.' || pathByte == '_' || pathByte == '-':
		return true
	default:
		return false
	}
}

// LoadAnalysis reads a previously captured analysis artifact from the provider directory.
func LoadAnalysis(artifactDirectory string) (AnalysisResult, error) {
	analysisContent, readError := os.ReadFile(filepath.Join(artifactDirectory, analysisArtifactFileNameConstant))
	if readError != nil {
		return AnalysisResult{}, readError
	}

	var analysisResult AnalysisResult
	if unmarshalError := json.Unmarshal(analysisContent, &analysisResult); unmarshalError != nil {
		return AnalysisResult{}, unmarshalError
	}

	// The on-disk form carries no observation order; restore keys and a
	// deterministic candidate order for display.
	for candidateKey, loadedCandidate := range analysisResult.Candidates {
		loadedCandidate.Key = candidateKey
		analysisResult.Candidates[candidateKey] = loadedCandidate
		analysisResult.candidateOrder = append(analysisResult.candidateOrder, candidateKey)
	}
	sort.Strings(analysisResult.candidateOrder)

	return analysisResult, nil
}
