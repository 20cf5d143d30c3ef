//go:build !systemd_nojournal

package journal

import (
	"bytes"
	"runtime"
	"strconv"
)

// Writer submits every call to Write as one journal entry.
// It is suitable as the output of a [log.Logger].
type Writer struct {
	k native

	// Priority of submitted entries.
	Priority Priority
	// Fields are additional fields submitted with every entry.
	Fields []string
	// Caller is the number of stack frames above Write to record
	// CODE_FILE, CODE_LINE and CODE_FUNC from, or zero to omit them.
	// For a [log.Logger] calling Printf, this is 3.
	Caller int
}

// NewWriter returns a [Writer] submitting entries with priority p and extra fields.
func NewWriter(p Priority, fields ...string) *Writer {
	return &Writer{k: direct{}, Priority: p, Fields: fields}
}

// Write submits p with trailing newlines removed as the MESSAGE field.
func (w *Writer) Write(p []byte) (int, error) {
	fields := make([]string, 0, 5+len(w.Fields))
	fields = append(fields,
		w.Priority.Field(),
		"MESSAGE="+string(bytes.TrimRight(p, "\n")))
	if w.Caller > 0 {
		if pc, file, line, ok := runtime.Caller(w.Caller); ok {
			fields = append(fields,
				"CODE_FILE="+file,
				"CODE_LINE="+strconv.Itoa(line))
			if f := runtime.FuncForPC(pc); f != nil {
				fields = append(fields, "CODE_FUNC="+f.Name())
			}
		}
	}
	fields = append(fields, w.Fields...)

	k := w.k
	if k == nil {
		k = direct{}
	}
	if err := send(k, fields); err != nil {
		return 0, err
	}
	return len(p), nil
}
