package service

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadWatchlist reads ticker symbols from a plain text file, one per line.
// Blank lines and #-comments (whole-line or trailing) are skipped, symbols
// are upper-cased, and duplicates keep their first position.
func LoadWatchlist(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open watchlist %s: %w", path, err)
	}
	defer file.Close()

	var symbols []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		symbol := strings.ToUpper(strings.TrimSpace(line))
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read watchlist %s: %w", path, err)
	}

	return symbols, nil
}
