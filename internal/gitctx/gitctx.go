package gitctx

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/glintbot/glint/internal/diff"
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// Meta collects repository metadata from git.
func Meta() (RepoMeta, error) {
	root, err := gitOutput("", "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput("", "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput("", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Unstaged returns the working-tree changes versus the index.
func Unstaged(root string) ([]diff.FileDiff, error) {
	return diffFiles(root, "diff")
}

// Staged returns the index changes versus HEAD.
func Staged(root string) ([]diff.FileDiff, error) {
	return diffFiles(root, "diff", "--cached")
}

// Range returns the changes across a revision range. A two-dot range is
// widened to three dots so the comparison runs from the merge base, matching
// what a pull request would show.
func Range(root, revRange string) ([]diff.FileDiff, error) {
	if strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		revRange = strings.Replace(revRange, "..", "...", 1)
	}
	return diffFiles(root, "diff", revRange)
}

func diffFiles(root string, args ...string) ([]diff.FileDiff, error) {
	out, err := gitOutput(root, args...)
	if err != nil {
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}
	files, err := diff.ParseUnified(out)
	if err != nil {
		return nil, fmt.Errorf("parsing git diff output: %w", err)
	}
	return files, nil
}

// CommitFiles stages the given paths and commits them, returning the new
// commit SHA. Used to land applied auto-fixes as one commit.
func CommitFiles(root string, paths []string, message string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("nothing to commit")
	}
	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := gitOutput(root, addArgs...); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}
	if _, err := gitOutput(root, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}
	sha, err := gitOutput(root, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	return strings.TrimSpace(sha), nil
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
