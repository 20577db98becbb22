// Package platform is the GitHub REST client for pull-request review runs:
// PR metadata and labels, changed files with hunk ranges, file content at
// the head ref, and posting the finished review back as inline comments.
//
// Credentials come from GITHUB_TOKEN; GITHUB_API_URL overrides the endpoint
// for GitHub Enterprise.
package platform
