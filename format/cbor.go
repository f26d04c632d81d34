package format

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/dhamidi/docsig/analysis"
)

// canonical mode keeps the encoding of a result set deterministic.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("format: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type CBOREncoder struct {
	w       io.Writer
	results []analysis.Result
}

func NewCBOREncoder(w io.Writer) *CBOREncoder {
	return &CBOREncoder{w: w}
}

func (e *CBOREncoder) Encode(results []analysis.Result) error {
	e.results = results
	return write(e.w, e)
}

func (e *CBOREncoder) MarshalText() ([]byte, error) {
	return cborEncMode.Marshal(NewDocument(e.results))
}
