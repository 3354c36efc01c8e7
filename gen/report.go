package gen

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Report lists, per generated type, which fields its Trace method visits
// and which were left out. Build tooling reads it to audit ignores.
type Report struct {
	Package string       `cbor:"1,keyasint"`
	Types   []TypeReport `cbor:"2,keyasint"`
}

// TypeReport is the entry for one type.
type TypeReport struct {
	Name          string   `cbor:"1,keyasint"`
	SumType       string   `cbor:"2,keyasint,omitempty"`
	Ignored       bool     `cbor:"3,keyasint,omitempty"`
	Traced        []string `cbor:"4,keyasint,omitempty"`
	IgnoredFields []string `cbor:"5,keyasint,omitempty"`
}

var reportEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("gen: failed to create CBOR enc mode: %v", err))
	}
	reportEncMode = em
}

// MarshalReport serializes a Report to CBOR bytes.
func MarshalReport(r *Report) ([]byte, error) {
	return reportEncMode.Marshal(r)
}

// UnmarshalReport deserializes a Report from CBOR bytes.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("gen: unmarshal report: %w", err)
	}
	return &r, nil
}

// WriteReport writes r to path.
func WriteReport(path string, r *Report) error {
	data, err := MarshalReport(r)
	if err != nil {
		return fmt.Errorf("gen: marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Type returns the entry for name, or nil.
func (r *Report) Type(name string) *TypeReport {
	for i := range r.Types {
		if r.Types[i].Name == name {
			return &r.Types[i]
		}
	}
	return nil
}
