// Package catalog reads the pre-classified sample library index and picks
// candidate samples per drum category for prompt building.
package catalog

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Entry is one row of the library index. Entries are immutable and loaded
// once at startup.
type Entry struct {
	Filename string
	Category string
	Pack     string
}

type Catalog struct {
	entries []Entry
}

// Load reads a comma-separated index file with a header row naming at least
// the filename and category columns. The analyzer that produces the file
// emits extra feature columns; those are ignored. Fields containing a
// literal comma are not supported. Rows missing a filename or category are
// discarded.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("catalog %s: empty file", path)
	}

	cols := make(map[string]int)
	for i, name := range strings.Split(lines[0], ",") {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"filename", "category"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("catalog %s: missing %q column", path, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var c Catalog
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := strings.Split(line, ",")
		entry := Entry{
			Filename: field(row, "filename"),
			Category: field(row, "category"),
			Pack:     field(row, "pack"),
		}
		if entry.Filename == "" || entry.Category == "" {
			continue
		}
		c.entries = append(c.entries, entry)
	}
	return &c, nil
}

func (c *Catalog) Len() int { return len(c.entries) }

// Sample returns up to n filenames whose category contains the given
// substring, case-insensitively, picked in random order.
func (c *Catalog) Sample(category string, n int) []string {
	category = strings.ToLower(category)
	var matches []string
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Category), category) {
			matches = append(matches, e.Filename)
		}
	}
	rand.Shuffle(len(matches), func(i, j int) {
		matches[i], matches[j] = matches[j], matches[i]
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}
