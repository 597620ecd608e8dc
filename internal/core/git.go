package core

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// cloneTimeout bounds a single git clone.
const cloneTimeout = 60 * time.Second

// CloneRepository runs "git clone <source> <name>" inside dir, so the clone
// lands at dir/name. Failures come back as a classified *CloneError.
func CloneRepository(source, dir, name string) error {
	if dirExists(filepath.Join(dir, name)) {
		return fmt.Errorf("destination %q already exists", name)
	}

	cmd := exec.Command("git", "clone", source, name)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := runWithTimeout(cmd, cloneTimeout)
	if err != nil {
		if output == "" {
			output = err.Error()
		}
		return ClassifyCloneError(source, "git clone "+source+" "+name, output)
	}
	return nil
}

// runWithTimeout runs a command with a timeout.
func runWithTimeout(cmd *exec.Cmd, timeout time.Duration) (string, error) {
	done := make(chan struct{})
	var output []byte
	var cmdErr error

	go func() {
		output, cmdErr = cmd.CombinedOutput()
		close(done)
	}()

	select {
	case <-done:
		return string(output), cmdErr
	case <-time.After(timeout):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return "", fmt.Errorf("command timed out after %s", timeout)
	}
}

// dirExists returns true if the path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
