// Package format renders analysis results as JSON, YAML, CBOR or
// tab-separated lines.
package format

import (
	"encoding"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/dhamidi/docsig/analysis"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(results []analysis.Result) error
}

var ErrUnknownFormat = errors.New("unknown output format")

// Names lists the accepted format names.
var Names = []string{"line", "json", "yaml", "cbor"}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// New returns the encoder called name writing to w. color is only used by
// the line format.
func New(name string, w io.Writer, color string) (Encoder, error) {
	switch name {
	case "line", "":
		return NewLineEncoder(w, UseColor(w, color)), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	case "cbor":
		return NewCBOREncoder(w), nil
	}
	return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, name, Names)
}

// UseColor reports whether output to w should be styled under mode.
func UseColor(w io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
