package gitconfig

import (
	"os"
	"path/filepath"
)

const gitMetadataEntryNameConstant = ".git"

// RepositoryLocator finds git repositories directly beneath configured base directories.
//
// The scan is intentionally one level deep: nested repositories are out of
// scope, which keeps discovery bounded to a single directory listing per root.
type RepositoryLocator struct{}

// NewRepositoryLocator constructs a RepositoryLocator.
func NewRepositoryLocator() *RepositoryLocator {
	return &RepositoryLocator{}
}

// LocateRepositories returns the direct children of the base directories that
// contain a git metadata entry. Missing base directories are skipped, and a
// repository reachable through multiple roots is reported once.
func (locator *RepositoryLocator) LocateRepositories(baseDirectories []string) []string {
	seenRepositories := make(map[string]struct{})
	var repositoryPaths []string

	for _, baseDirectory := range baseDirectories {
		directoryEntries, readError := os.ReadDir(baseDirectory)
		if readError != nil {
			continue
		}

		for _, directoryEntry := range directoryEntries {
			if !directoryEntry.IsDir() {
				continue
			}

			candidatePath := filepath.Join(baseDirectory, directoryEntry.Name())
			if !hasGitMetadata(candidatePath) {
				continue
			}

			resolvedPath := resolveRepositoryPath(candidatePath)
			if _, alreadySeen := seenRepositories[resolvedPath]; alreadySeen {
				continue
			}
			seenRepositories[resolvedPath] = struct{}{}
			repositoryPaths = append(repositoryPaths, candidatePath)
		}
	}

	return repositoryPaths
}

// hasGitMetadata accepts both metadata directories and the file markers used by worktrees.
func hasGitMetadata(repositoryPath string) bool {
	_, statError := os.Stat(filepath.Join(repositoryPath, gitMetadataEntryNameConstant))
	return statError == nil
}

func resolveRepositoryPath(candidatePath string) string {
	absolutePath, absoluteError := filepath.Abs(candidatePath)
	if absoluteError != nil {
		return filepath.Clean(candidatePath)
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return absolutePath
	}
	return resolvedPath
}
