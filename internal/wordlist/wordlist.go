// Package wordlist loads word pairs from plain text files.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// separators are tried in order; the first one present splits the line.
var separators = []string{"\t", " = ", "=", ";"}

// LoadPairs reads one "source<TAB>target" pair per line from path.
// "source = target" and "source;target" are accepted too. Blank lines and
// lines starting with # are skipped.
func LoadPairs(path string) ([]model.NewWordInput, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return ReadPairs(file)
}

// ReadPairs parses pairs from r. See LoadPairs for the format.
func ReadPairs(r io.Reader) ([]model.NewWordInput, error) {
	var pairs []model.NewWordInput
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pair, ok := ParseLine(line)
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"source<TAB>target\", got %q", lineNo, line)
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return pairs, nil
}

// ParseLine splits a line into a source term and its translation.
func ParseLine(line string) (model.NewWordInput, bool) {
	for _, sep := range separators {
		source, target, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		source = strings.TrimSpace(source)
		target = strings.TrimSpace(target)
		if source == "" || target == "" {
			return model.NewWordInput{}, false
		}
		return model.NewWordInput{Source: source, Target: target}, true
	}
	return model.NewWordInput{}, false
}
