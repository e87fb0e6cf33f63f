package logging

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SourceField is the entry field holding "file.go:line" of the caller.
const SourceField = "x_file_source"

// SourceFormatter adds the caller file and line to every entry and hands it
// to Underlying.
type SourceFormatter struct {
	Underlying logrus.Formatter
	// AddSpace separates entries with an empty line.
	AddSpace bool
}

func (f *SourceFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		data := make(logrus.Fields, len(entry.Data)+1)
		for k, v := range entry.Data {
			data[k] = v
		}
		data[SourceField] = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
		// entries derived with WithField share Data, don't write into it
		e := *entry
		e.Data = data
		entry = &e
	}

	out, err := f.Underlying.Format(entry)
	if err != nil {
		return nil, err
	}
	if f.AddSpace {
		out = append(out, '\n')
	}
	return out, nil
}
