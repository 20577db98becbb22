package platform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/glintbot/glint/internal/diff"
	"github.com/glintbot/glint/internal/logging"
	"github.com/glintbot/glint/internal/output"
	"github.com/glintbot/glint/internal/review"
)

const defaultAPIURL = "https://api.github.com"

// Client talks to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient builds a client from GITHUB_TOKEN and the optional
// GITHUB_API_URL override for GitHub Enterprise.
func NewClient() (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}
	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// PullRequest holds the subset of PR metadata a review run needs.
type PullRequest struct {
	Number  int
	HeadSHA string
	Labels  []string
}

type prResponse struct {
	Number int `json:"number"`
	Head   struct {
		SHA string `json:"sha"`
	} `json:"head"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

// GetPullRequest fetches PR metadata including its labels and head commit.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	var pr prResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, number)
	if err := c.getJSON(ctx, url, &pr); err != nil {
		return nil, fmt.Errorf("fetching PR #%d: %w", number, err)
	}
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.Name)
	}
	return &PullRequest{Number: pr.Number, HeadSHA: pr.Head.SHA, Labels: labels}, nil
}

type prFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch"`
}

// ListChangedFiles fetches the changed files of a PR with their hunk ranges
// parsed out of the per-file patch. Files GitHub returns without a patch
// (binary, too large) come back with no hunks.
func (c *Client) ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]diff.FileDiff, error) {
	var all []diff.FileDiff
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=100&page=%d",
			c.apiURL, owner, repo, number, page)
		var files []prFile
		if err := c.getJSON(ctx, url, &files); err != nil {
			return nil, fmt.Errorf("fetching PR #%d files: %w", number, err)
		}
		for _, f := range files {
			all = append(all, diff.FileDiff{
				Path:      f.Filename,
				Status:    f.Status,
				Additions: f.Additions,
				Deletions: f.Deletions,
				Hunks:     diff.Hunks(f.Patch),
			})
		}
		if len(files) < 100 {
			break
		}
	}
	return all, nil
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// GetFileContent fetches a file's content at ref via the contents API.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.apiURL, owner, repo, path, ref)
	var cr contentResponse
	if err := c.getJSON(ctx, url, &cr); err != nil {
		return "", fmt.Errorf("fetching %s@%s: %w", path, ref, err)
	}
	if cr.Encoding != "base64" {
		return cr.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return string(decoded), nil
}

type reviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

type reviewRequest struct {
	CommitID string          `json:"commit_id,omitempty"`
	Body     string          `json:"body"`
	Event    string          `json:"event"`
	Comments []reviewComment `json:"comments"`
}

// PostReview posts the run result as one PR review: a summary body plus an
// inline comment anchored at each finding's end line. A 403 (typically a
// fork PR with a read-only token) logs and returns nil so the run can still
// print the report.
func (c *Client) PostReview(ctx context.Context, owner, repo string, number int, res *review.Result) error {
	comments := make([]reviewComment, 0, len(res.Findings))
	for _, f := range res.Findings {
		comments = append(comments, reviewComment{
			Path: f.Path,
			Line: f.EndLine,
			Body: output.CommentBody(f),
		})
	}

	var body bytes.Buffer
	if err := (&output.MarkdownWriter{}).Write(&body, res); err != nil {
		return err
	}

	payload, err := json.Marshal(reviewRequest{
		Body:     body.String(),
		Event:    "COMMENT",
		Comments: comments,
	})
	if err != nil {
		return fmt.Errorf("marshaling review: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.apiURL, owner, repo, number)
	status, respBody, err := c.post(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("posting review: %w", err)
	}
	if status == http.StatusForbidden {
		logging.L().Warnw("cannot post review, token lacks write access", "repo", owner+"/"+repo, "pr", number)
		return nil
	}
	if status == http.StatusUnprocessableEntity {
		// Usually a comment anchored outside the diff. Retry with the
		// summary only rather than losing the whole review.
		logging.L().Warnw("inline comments rejected, posting summary only", "detail", string(respBody))
		payload, _ = json.Marshal(reviewRequest{Body: body.String(), Event: "COMMENT"})
		status, respBody, err = c.post(ctx, url, payload)
		if err != nil {
			return fmt.Errorf("posting summary review: %w", err)
		}
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", status, string(respBody))
	}
	return nil
}

// AddLabel attaches a label to the PR, creating it on the repo if needed.
// Label failures are never fatal to a review run.
func (c *Client) AddLabel(ctx context.Context, owner, repo string, number int, label string) error {
	payload, err := json.Marshal(map[string][]string{"labels": {label}})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/labels", c.apiURL, owner, repo, number)
	status, body, err := c.post(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("adding label: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", status, string(body))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("calling GitHub: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("not found: %s", url)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("authentication failed (status %d): %s", resp.StatusCode, string(body))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("calling GitHub: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the git remote origin URL.
func DetectRepo() (owner, repo string, err error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts owner/repo from an https or ssh git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")
	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
