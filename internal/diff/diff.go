// Package diff renders the before/after of a rewrite as a unified
// diff, shelling out to the system diff tool.
package diff

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// Unified diffs the current and rewritten contents of one file. It
// returns nil when the contents are equal. The machine-generated
// header lines are replaced with ones naming the file.
func Unified(path string, current, fixed []byte) ([]byte, error) {
	f1, err := writeTempFile(current)
	if err != nil {
		return nil, err
	}
	defer os.Remove(f1)

	f2, err := writeTempFile(fixed)
	if err != nil {
		return nil, err
	}
	defer os.Remove(f2)

	// diff exits 1 when the files differ; only a silent failure is an
	// error.
	data, err := exec.Command("diff", "-u", f1, f2).CombinedOutput()
	if err != nil && len(data) == 0 {
		return nil, fmt.Errorf("diff %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return replaceHeader(data, path), nil
}

// replaceHeader swaps the two temp-file header lines for ones naming
// the real file. Output that does not look like a unified diff is
// passed through untouched.
func replaceHeader(data []byte, path string) []byte {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return data
	}
	j := bytes.IndexByte(data[i+1:], '\n')
	if j < 0 {
		return data
	}
	body := i + 1 + j + 1
	if body >= len(data) || data[body] != '@' {
		return data
	}

	header := fmt.Sprintf("--- %s\n+++ %s (fixed)\n", path, path)
	return append([]byte(header), data[body:]...)
}

func writeTempFile(data []byte) (string, error) {
	file, err := os.CreateTemp("", "mvvmshift-diff")
	if err != nil {
		return "", err
	}
	_, err = file.Write(data)
	if err1 := file.Close(); err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return file.Name(), nil
}
