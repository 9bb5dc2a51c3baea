// Package corpus ships the embedded word list that backs lexical challenges.
//
// The list is loaded once at package init and never mutated, so a single
// [List] value can be shared across engines and goroutines.
package corpus

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"strings"

	"github.com/hearsum/goCaptcha/internal"
)

//go:embed words_pt.txt
var wordsPT []byte

// ErrEmptyCorpus is returned when a corpus has no usable entries.
var ErrEmptyCorpus = errors.New("corpus has no entries")

// List is an immutable collection of candidate challenge words.
type List struct {
	words []string
}

// NewList builds a [List] from the given words. Blank entries are dropped.
func NewList(words []string) (*List, error) {
	clean := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		clean = append(clean, w)
	}
	if len(clean) == 0 {
		return nil, ErrEmptyCorpus
	}
	return &List{words: clean}, nil
}

// Portuguese returns the embedded Portuguese word list.
func Portuguese() *List {
	list, err := parse(wordsPT)
	if err != nil {
		// The embedded list is validated by tests; an empty embed is a
		// build defect, not a runtime condition.
		panic("corpus: embedded word list is empty")
	}
	return list
}

// Sample returns a uniformly random word from the list.
func (l *List) Sample() (string, error) {
	if l == nil || len(l.words) == 0 {
		return "", ErrEmptyCorpus
	}
	idx, err := internal.RandomIndex(len(l.words))
	if err != nil {
		return "", err
	}
	return l.words[idx], nil
}

// Len reports how many words the list holds.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

func parse(raw []byte) (*List, error) {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	var words []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewList(words)
}
