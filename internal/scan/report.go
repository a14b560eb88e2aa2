package scan

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// scheme defines the report colors: cyan for paths, green for tags, red
// for per-file errors.
type scheme struct {
	path  *color.Color
	title *color.Color
	tags  *color.Color
	fail  *color.Color
}

func newScheme() *scheme {
	return &scheme{
		path:  color.New(color.FgCyan, color.Bold),
		title: color.New(color.FgWhite),
		tags:  color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
	}
}

// Reporter renders scan entries to a writer. Color is enabled only when
// the writer is a terminal and color has not been disabled globally.
type Reporter struct {
	w      io.Writer
	scheme *scheme // nil disables color
}

// NewReporter builds a Reporter for w, auto-detecting terminal output.
func NewReporter(w io.Writer) *Reporter {
	r := &Reporter{w: w}
	if !color.NoColor && isTerminal(w) {
		r.scheme = newScheme()
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report writes one block per qualifying entry and one error line per
// failed extraction, in entry order. Non-qualifying successes emit
// nothing. Entries are independent: an error line never suppresses later
// blocks.
func (r *Reporter) Report(entries []Entry) error {
	for _, e := range entries {
		var err error
		switch {
		case e.Err != nil:
			err = r.printError(e.Err)
		case e.Qualified:
			err = r.printEntry(e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// printEntry emits the three-line block for a qualifying note:
//
//	@ path/to/file.note
//	  > Title
//	[ tag1 tag2 ]
func (r *Reporter) printEntry(e Entry) error {
	path, title, tags := e.Path, e.Header.Title, renderTags(e.Header.Tags)
	if r.scheme != nil {
		path = r.scheme.path.Sprint(path)
		title = r.scheme.title.Sprint(title)
		tags = r.scheme.tags.Sprint(tags)
	}
	_, err := fmt.Fprintf(r.w, "@ %s\n  > %s\n%s\n", path, title, tags)
	return err
}

func (r *Reporter) printError(failure error) error {
	msg := fmt.Sprintf("Error: %s", failure)
	if r.scheme != nil {
		msg = r.scheme.fail.Sprint(msg)
	}
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

// renderTags renders a tag set as "[ tag1 tag2 ]", or "[ ]" when empty.
func renderTags(tags []string) string {
	parts := make([]string, 0, len(tags)+2)
	parts = append(parts, "[")
	parts = append(parts, tags...)
	parts = append(parts, "]")
	return strings.Join(parts, " ")
}
