package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner lists .eml files in an input directory
type Scanner struct {
	rootPath string
}

// NewScanner creates a new scanner for the given input directory
func NewScanner(rootPath string) *Scanner {
	return &Scanner{
		rootPath: rootPath,
	}
}

// GetRootPath returns the input directory
func (s *Scanner) GetRootPath() string {
	return s.rootPath
}

// Scan lists the .eml files directly inside the input directory
// (case-insensitive extension) and returns their names in sorted
// order, so a batch processes files deterministically.
func (s *Scanner) Scan() ([]string, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var emlFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".eml") {
			emlFiles = append(emlFiles, entry.Name())
		}
	}

	sort.Strings(emlFiles)
	return emlFiles, nil
}

// CountEMLFiles counts the .eml files without returning their names
func (s *Scanner) CountEMLFiles() (int, error) {
	files, err := s.Scan()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}
