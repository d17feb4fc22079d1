// Package gitsync refreshes the vault by pulling its git remote. The bot
// calls Pull before every scan; failures are reported, never fatal.
package gitsync

import (
	"context"
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
	log "github.com/sirupsen/logrus"
)

// Pull fast-forwards the repository at path from origin. Already-up-to-date
// is success. Any other failure is returned so the caller can report a
// partial result, but the scan proceeds on the working tree as it is.
func Pull(ctx context.Context, path string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("vault worktree: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		log.Errorf("git pull: %v", err)
		return fmt.Errorf("pull vault: %w", err)
	}
	return nil
}
