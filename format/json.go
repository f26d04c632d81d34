package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/docsig/analysis"
)

type JSONEncoder struct {
	w       io.Writer
	results []analysis.Result
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(results []analysis.Result) error {
	e.results = results
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	text, err := json.MarshalIndent(NewDocument(e.results), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}
