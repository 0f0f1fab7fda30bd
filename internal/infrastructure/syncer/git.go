// Package syncer persists changed files to durable storage.
package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"NewsDesk/internal/ports"
)

// ErrNotRepository is returned when the site root is not a git work tree.
var ErrNotRepository = errors.New("not a git repository")

type runner func(ctx context.Context, dir string, env []string, args ...string) ([]byte, error)

// GitOptions configures a Git syncer.
type GitOptions struct {
	// Dir is the work tree root; paths passed to Commit must live below it.
	// Relative paths, Dir included, are taken from the working directory.
	Dir        string
	SSHCommand string
	// Pull runs "git pull --no-rebase" before staging.
	Pull   bool
	NoPush bool
	Logger *slog.Logger
}

// Git commits and pushes changed paths with the git CLI.
type Git struct {
	dir        string
	sshCommand string
	pull       bool
	push       bool
	run        runner
	logger     *slog.Logger
}

var _ ports.Syncer = (*Git)(nil)

// NewGit builds a git syncer over the work tree at opts.Dir.
func NewGit(opts GitOptions) *Git {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	dir := opts.Dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Git{
		dir:        dir,
		sshCommand: opts.SSHCommand,
		pull:       opts.Pull,
		push:       !opts.NoPush,
		run:        execGit,
		logger:     opts.Logger,
	}
}

// Commit stages paths (deleted ones included), commits them with message and
// pushes. Nothing staged means nothing to do.
func (g *Git) Commit(ctx context.Context, paths []string, message string) error {
	if _, err := g.git(ctx, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("%w: %s", ErrNotRepository, g.dir)
	}

	if g.pull {
		if _, err := g.git(ctx, "pull", "--no-rebase"); err != nil {
			return fmt.Errorf("git pull: %w", err)
		}
	}

	present, missing, err := g.split(paths)
	if err != nil {
		return err
	}
	if len(present) > 0 {
		if _, err := g.git(ctx, append([]string{"add", "--"}, present...)...); err != nil {
			return fmt.Errorf("git add: %w", err)
		}
	}
	if len(missing) > 0 {
		args := append([]string{"rm", "--cached", "-r", "-q", "--ignore-unmatch", "--"}, missing...)
		if _, err := g.git(ctx, args...); err != nil {
			return fmt.Errorf("git rm: %w", err)
		}
	}

	staged, err := g.git(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return fmt.Errorf("git diff: %w", err)
	}
	if len(bytes.TrimSpace(staged)) == 0 {
		g.logger.Info("no changes to commit", "message", message)
		return nil
	}

	if _, err := g.git(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	if !g.push {
		return nil
	}
	if _, err := g.git(ctx, "push"); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

// split makes paths relative to the work tree and sorts them into files that
// exist and files that were removed.
func (g *Git) split(paths []string) ([]string, []string, error) {
	var present, missing []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("path %s: %w", p, err)
		}
		rel, err := filepath.Rel(g.dir, abs)
		if err != nil {
			return nil, nil, fmt.Errorf("path %s: %w", p, err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, nil, fmt.Errorf("path %s is outside %s", p, g.dir)
		}
		if _, statErr := os.Stat(abs); statErr != nil {
			missing = append(missing, rel)
			continue
		}
		present = append(present, rel)
	}
	return present, missing, nil
}

func (g *Git) git(ctx context.Context, args ...string) ([]byte, error) {
	var env []string
	if g.sshCommand != "" {
		env = append(env, "GIT_SSH_COMMAND="+g.sshCommand)
	}
	return g.run(ctx, g.dir, env, args...)
}

func execGit(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
