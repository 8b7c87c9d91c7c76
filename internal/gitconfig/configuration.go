package gitconfig

import (
	"strings"

	pathutils "github.com/temirov/devsnap/internal/utils/path"
)

var configurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// defaultRepositoryRoots lists the source-tree roots scanned when no roots are configured.
var defaultRepositoryRoots = []string{
	"~/src",
	"~/code",
	"~/projects",
	"~/work",
}

// Configuration aggregates settings for the git provider.
type Configuration struct {
	// Roots lists the base directories scanned one level deep for repositories.
	Roots []string `mapstructure:"roots"`
}

// DefaultConfiguration supplies baseline values for the git provider configuration.
func DefaultConfiguration() Configuration {
	return Configuration{Roots: append([]string{}, defaultRepositoryRoots...)}
}

// Sanitize trims configured roots, expands home shortcuts, and removes empty entries.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Roots = sanitizeRoots(configuration.Roots)
	return sanitized
}

func sanitizeRoots(candidateRoots []string) []string {
	sanitizedRoots := make([]string, 0, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		trimmedRoot := strings.TrimSpace(candidateRoot)
		if len(trimmedRoot) == 0 {
			continue
		}
		sanitizedRoots = append(sanitizedRoots, configurationHomeDirectoryExpander.Expand(trimmedRoot))
	}
	if len(sanitizedRoots) == 0 {
		return nil
	}
	return sanitizedRoots
}
