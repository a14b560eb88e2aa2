// Package parser extracts the title/tag header from the leading lines of
// note files.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// MaxHeaderLines bounds how many leading lines of a file can contribute to
// its header. Anything past this prefix is body text and never read.
const MaxHeaderLines = 5

// maxLineBytes caps a single header line; longer lines fail the read.
const maxLineBytes = 1 << 20

// wordClass matches one tag character: ASCII letters, digits, and
// punctuation except the bracket delimiters. Whitespace separates words.
const wordClass = `[0-9A-Za-z!@#$%^&*()=_+{}\\|:;'",./<>?-]`

// tagListRe must consume the entire line: optional whitespace, "[",
// zero or more words, "]", optional whitespace. Leftover content after
// the closing bracket disqualifies the line.
var tagListRe = regexp.MustCompile(`^\s*\[\s*(` + wordClass + `+(?:\s+` + wordClass + `+)*)?\s*\]\s*$`)

// LineKind discriminates the two classifications a header line can take.
type LineKind int

const (
	// LineTitle is free text contributing to the note title.
	LineTitle LineKind = iota
	// LineTagList is a bracketed, whitespace-separated tag list.
	LineTagList
)

// ClassifiedLine is the outcome of classifying one line of text.
type ClassifiedLine struct {
	Kind  LineKind
	Title string   // set for LineTitle; whitespace-trimmed, may be ""
	Words []string // set for LineTagList; may be empty for "[]"
}

// ClassifyLine classifies a single line, trying the tag-list grammar first
// and falling back to a title line. Classification is total: every line
// yields exactly one result.
func ClassifyLine(line string) ClassifiedLine {
	if m := tagListRe.FindStringSubmatch(line); m != nil {
		return ClassifiedLine{Kind: LineTagList, Words: strings.Fields(m[1])}
	}
	return ClassifiedLine{Kind: LineTitle, Title: strings.TrimSpace(line)}
}

// Header is the extracted header of a note file.
type Header struct {
	Path  string   `json:"path"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// HasAll reports whether every tag in required appears in the header's tag
// set. An empty required set always matches. Callers are expected to pass
// lowercase tags; header tags are already lowercase.
func (h Header) HasAll(required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(h.Tags))
	for _, t := range h.Tags {
		set[t] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

// ParseHeader reads at most MaxHeaderLines lines from r and folds them into
// a header. Title lines accumulate in order; the first tag-list line
// contributes its words (lowercased, deduplicated) and ends the header, so
// nothing past it is read. Tags come back sorted.
func ParseHeader(r io.Reader) (Header, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var titleLines []string
	var tags []string
	seen := make(map[string]struct{})

	for n := 0; n < MaxHeaderLines && sc.Scan(); n++ {
		cl := ClassifyLine(sc.Text())
		if cl.Kind == LineTitle {
			titleLines = append(titleLines, cl.Title)
			continue
		}
		for _, w := range cl.Words {
			w = strings.ToLower(w)
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			tags = append(tags, w)
		}
		// A tag list terminates the header block.
		break
	}
	if err := sc.Err(); err != nil {
		return Header{}, err
	}

	sort.Strings(tags)
	return Header{
		Title: strings.TrimSpace(strings.Join(titleLines, " ")),
		Tags:  tags,
	}, nil
}

// ExtractFile opens the note at path and extracts its header, closing the
// file on every exit path. Failures of any kind surface as a *ReadError
// carrying the path.
func ExtractFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	h, err := ParseHeader(f)
	if err != nil {
		return Header{}, &ReadError{Path: path, Err: err}
	}
	h.Path = path
	return h, nil
}

// ReadError reports a note file that could not be opened or read. Its
// message is rendered verbatim as the per-file error line of scan reports,
// which is why it does not follow the lowercase error convention.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Failed to read file: %s", e.Path)
}

func (e *ReadError) Unwrap() error { return e.Err }
