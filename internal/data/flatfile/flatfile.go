// Package flatfile provides the file-backed implementations of the domain
// repositories. Every store is a whitespace- or pipe-delimited text file;
// tables and queues are read and rewritten as whole documents, while the
// transaction log is append-only. Each store is a single writer guarded by
// its own mutex.
package flatfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// readLines returns the lines of the file at path. A missing file reads as
// an empty store, the same as a fresh first run.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// writeSnapshot replaces the file at path with exactly the given lines. The
// content lands in a temporary file first and is renamed over the old one,
// so readers never observe a half-written table.
func writeSnapshot(path string, lines []string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := backupFile(path); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// backupFile keeps one generation of the file at path as path.bak before it
// is replaced. A missing file means a first write and needs no backup.
func backupFile(path string) error {
	prev, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("backup %s: %w", path, err)
	}
	if err := os.WriteFile(path+".bak", prev, 0o644); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	return nil
}

// appendLine adds one line to the end of the file at path, creating it if
// needed. The write is durable before the call returns.
func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	return nil
}
