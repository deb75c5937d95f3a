package monitor

import (
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
)

// State is the change-detection state owned by the poll loop. The zero value is
// "unset", so the first title offered to a Writer is always written.
type State struct {
	last string
	set  bool
}

// LastWritten returns the most recently written title and whether any write has happened
func (s State) LastWritten() (string, bool) {
	return s.last, s.set
}

// Changed reports whether title differs from the last written value
func (s State) Changed(title string) bool {
	return !s.set || s.last != title
}

func (s *State) record(title string) {
	s.last = title
	s.set = true
}

// OutputFileMode is applied when the output file is first created so other
// programs can read it; later replaces keep whatever mode the file has.
const OutputFileMode os.FileMode = 0644

// Writer mirrors titles into a single output file
type Writer struct {
	path      string
	writeFile func(path, content string) error
}

// NewWriter creates a writer that atomically replaces path on every change
func NewWriter(path string) *Writer {
	return &Writer{
		path:      path,
		writeFile: replaceFile,
	}
}

func replaceFile(path, content string) error {
	_, statErr := os.Stat(path)
	created := os.IsNotExist(statErr)

	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return err
	}

	if created {
		// the temp file behind the replace is created 0600
		if err := os.Chmod(path, OutputFileMode); err != nil {
			return errors.Wrapf(err, "failed to set mode of %s", path)
		}
	}
	return nil
}

// Path returns the output file path
func (w *Writer) Path() string {
	return w.path
}

// WriteIfChanged replaces the output file with exactly title's bytes when title differs
// from state's last written value. state is only updated after a successful write.
func (w *Writer) WriteIfChanged(state *State, title string) (bool, error) {
	if !state.Changed(title) {
		return false, nil
	}

	if err := w.writeFile(w.path, title); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", w.path)
	}

	state.record(title)
	return true, nil
}
