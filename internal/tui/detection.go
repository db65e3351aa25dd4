package tui

import (
	"os"

	"golang.org/x/term"
)

// ciEnvs are environment variables set by common CI systems.
var ciEnvs = []string{
	"CI",                     // Generic CI indicator
	"CONTINUOUS_INTEGRATION", // Generic CI indicator
	"GITHUB_ACTIONS",         // GitHub Actions
	"GITLAB_CI",              // GitLab CI
	"CIRCLECI",               // CircleCI
	"TRAVIS",                 // Travis CI
	"JENKINS_HOME",           // Jenkins
	"BUILDKITE",              // Buildkite
	"BITBUCKET_BUILD_NUMBER", // Bitbucket Pipelines
	"DRONE",                  // Drone CI
	"TF_BUILD",               // Azure Pipelines
}

// IsCI reports whether a CI environment variable is set.
func IsCI() bool {
	for _, env := range ciEnvs {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return false
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}

// CanPrompt reports whether an interactive prompt can run. The prompt reads
// stdin and draws on stderr so that stdout stays free for the selected path.
func CanPrompt() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stderr) && !IsCI()
}

// CanAnimate reports whether progress animation may be drawn on stdout.
func CanAnimate() bool {
	return IsTerminal(os.Stdout) && !IsCI()
}
