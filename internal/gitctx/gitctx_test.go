package gitctx

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initRepo creates a throwaway git repository with one committed file.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	root := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-q", "-m", "initial")
	return root
}

func TestUnstaged(t *testing.T) {
	root := initRepo(t)

	files, err := Unstaged(root)
	if err != nil {
		t.Fatalf("Unstaged: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("clean tree should have no changes, got %+v", files)
	}

	content := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err = Unstaged(root)
	if err != nil {
		t.Fatalf("Unstaged after edit: %v", err)
	}
	if len(files) != 1 || files[0].Path != "main.go" {
		t.Fatalf("expected main.go changed, got %+v", files)
	}
	if len(files[0].Hunks) == 0 {
		t.Error("changed file should carry hunk ranges")
	}
}

func TestStaged(t *testing.T) {
	root := initRepo(t)
	if err := os.WriteFile(filepath.Join(root, "new.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("git", "add", "new.go")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}

	files, err := Staged(root)
	if err != nil {
		t.Fatalf("Staged: %v", err)
	}
	if len(files) != 1 || files[0].Path != "new.go" {
		t.Fatalf("expected new.go staged, got %+v", files)
	}
}

func TestCommitFiles(t *testing.T) {
	root := initRepo(t)
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() { _ = 1 }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sha, err := CommitFiles(root, []string{"main.go"}, "apply review fixes")
	if err != nil {
		t.Fatalf("CommitFiles: %v", err)
	}
	if len(sha) != 40 {
		t.Errorf("expected a full commit SHA, got %q", sha)
	}

	files, err := Unstaged(root)
	if err != nil {
		t.Fatalf("Unstaged: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("tree should be clean after commit, got %+v", files)
	}
}

func TestCommitFilesEmpty(t *testing.T) {
	if _, err := CommitFiles(t.TempDir(), nil, "m"); err == nil {
		t.Error("empty path list should error")
	}
}
