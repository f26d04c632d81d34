package format

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/docsig/analysis"
)

type YAMLEncoder struct {
	w       io.Writer
	results []analysis.Result
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(results []analysis.Result) error {
	e.results = results
	return write(e.w, e)
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	return yaml.Marshal(NewDocument(e.results))
}
