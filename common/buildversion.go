package common

import (
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// CommitHash returns the short HEAD hash of the git checkout containing the
// working directory or the executable, or fallback when neither is a repo.
func CommitHash(fallback string) string {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, cwd)
	}
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Dir(exePath))
	}
	for _, path := range candidates {
		if hash := headHash(path); hash != "" {
			if len(hash) >= 8 {
				return hash[:8]
			}
			return hash
		}
	}
	return fallback
}

func headHash(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
