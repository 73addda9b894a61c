package utils

import (
	"bufio"
	"io"
	"strings"
)

// maxLineBytes bounds a single line; items are far smaller than this.
const maxLineBytes = 1 << 20

// ReadItems reads one item per line from r. Only the line ending (\n or \r\n) is
// stripped; empty lines and lines starting with '#' are skipped. Other whitespace
// is part of the item.
func ReadItems(r io.Reader) ([]string, error) {
	var items []string
	err := EachItem(r, func(item string) error {
		items = append(items, item)
		return nil
	})
	return items, err
}

// EachItem streams the items of r to fn using the same rules as ReadItems.
func EachItem(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
