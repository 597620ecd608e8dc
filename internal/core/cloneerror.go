package core

import (
	"fmt"
	"strings"
)

// CloneErrorKind classifies why a git clone failed. Pensieve clones over SSH
// only, so the taxonomy centers on key, host, and reachability problems.
type CloneErrorKind int

const (
	// CloneErrUnknown is an unclassified clone failure.
	CloneErrUnknown CloneErrorKind = iota
	// CloneErrSSHKey means the SSH key was rejected, missing, or unreadable.
	CloneErrSSHKey
	// CloneErrHostKey means SSH host key verification failed.
	CloneErrHostKey
	// CloneErrRepoNotFound means the repository does not exist at the clone
	// URL, or the key has no access to it.
	CloneErrRepoNotFound
	// CloneErrNetwork means the host could not be reached (DNS, connectivity).
	CloneErrNetwork
	// CloneErrTimeout means the clone ran out of time.
	CloneErrTimeout
)

// String returns a human-readable label for the error kind.
func (k CloneErrorKind) String() string {
	switch k {
	case CloneErrSSHKey:
		return "SSH Key Error"
	case CloneErrHostKey:
		return "SSH Host Key Error"
	case CloneErrRepoNotFound:
		return "Repository Not Found"
	case CloneErrNetwork:
		return "Network Error"
	case CloneErrTimeout:
		return "Timeout"
	default:
		return "Unknown Error"
	}
}

// CloneError is a structured error returned when git clone fails. It wraps
// the raw git output with classification and actionable hints.
type CloneError struct {
	Kind      CloneErrorKind
	URL       string   // the clone URL that was attempted
	Command   string   // the full git command that was run (for display)
	RawOutput string   // raw stderr/stdout from git
	Hints     []string // actionable suggestions for the user
}

// Error implements the error interface.
func (e *CloneError) Error() string {
	return fmt.Sprintf("git clone failed (%s): %s", e.Kind, e.firstLine())
}

// firstLine returns the first non-empty line of raw output for a concise
// error message.
func (e *CloneError) firstLine() string {
	for _, line := range strings.Split(e.RawOutput, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "Cloning into") {
			return line
		}
	}
	if e.RawOutput != "" {
		return strings.TrimSpace(e.RawOutput)
	}
	return "clone failed"
}

// IsCloneError checks whether an error is a *CloneError and returns it.
func IsCloneError(err error) (*CloneError, bool) {
	for err != nil {
		if ce, ok := err.(*CloneError); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}

// ClassifyCloneError examines git clone output and returns a structured
// CloneError.
func ClassifyCloneError(cloneURL, command, rawOutput string) *CloneError {
	kind := classifyOutput(rawOutput)
	return &CloneError{
		Kind:      kind,
		URL:       cloneURL,
		Command:   command,
		RawOutput: strings.TrimSpace(rawOutput),
		Hints:     hintsForError(kind),
	}
}

// classifyOutput pattern-matches git stderr to determine the error kind.
func classifyOutput(output string) CloneErrorKind {
	lower := strings.ToLower(output)

	// Our own timeout marker (checked first since it's set by us, not git).
	if strings.Contains(lower, "command timed out") {
		return CloneErrTimeout
	}

	// SSH key and authentication errors.
	if strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "no such identity") ||
		strings.Contains(lower, "load key") ||
		strings.Contains(lower, "authentication failed") {
		return CloneErrSSHKey
	}

	// SSH host key verification.
	if strings.Contains(lower, "host key verification failed") ||
		strings.Contains(lower, "known_hosts") {
		return CloneErrHostKey
	}

	// Network errors.
	if strings.Contains(lower, "could not resolve host") ||
		strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection timed out") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "no route to host") ||
		strings.Contains(lower, "name or service not known") {
		return CloneErrNetwork
	}

	// Repository not found. GitHub answers this for private repositories
	// the key cannot see, too; agent stores answer it for wrong paths.
	if strings.Contains(lower, "repository not found") ||
		strings.Contains(lower, "does not appear to be a git repository") ||
		strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "not found") {
		return CloneErrRepoNotFound
	}

	return CloneErrUnknown
}

// hintsForError returns actionable suggestions based on the error kind.
func hintsForError(kind CloneErrorKind) []string {
	switch kind {
	case CloneErrSSHKey:
		return []string{
			"Ensure your SSH key is loaded: `ssh-add -l`",
			"If no keys are listed, add one: `ssh-add ~/.ssh/id_ed25519`",
			"Check `~/.ssh/config` for the correct Host alias if using multiple accounts",
		}

	case CloneErrHostKey:
		return []string{
			"The SSH host key is not trusted. Run: `ssh-keyscan <host> >> ~/.ssh/known_hosts`",
			"Or connect once manually with ssh and accept the host key",
		}

	case CloneErrRepoNotFound:
		return []string{
			"Check the repository name with `pensieve list`",
			"Ensure your key has access to this repository (it may be private)",
		}

	case CloneErrNetwork:
		return []string{
			"Check your internet connection",
			"Verify the store's host and port are correct in the dotfile",
		}

	case CloneErrTimeout:
		return []string{
			"The clone operation timed out",
			"This may indicate a network issue or a very large repository",
		}

	default:
		return []string{
			"Check the error message above for details",
			"Try cloning manually with `git clone <url>` to diagnose the issue",
		}
	}
}
