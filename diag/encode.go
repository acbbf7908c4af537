package diag

import (
	"encoding/json"
	"io"
	"math"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Record is the serialized form of a diagnostic, used for machine-readable
// output.
type Record struct {
	Severity  string       `json:"severity" msgpack:"severity"`
	Code      string       `json:"code" msgpack:"code"`
	Message   string       `json:"message" msgpack:"message"`
	File      string       `json:"file,omitempty" msgpack:"file,omitempty"`
	Line      uint32       `json:"line,omitempty" msgpack:"line,omitempty"`
	Column    uint32       `json:"column,omitempty" msgpack:"column,omitempty"`
	EndLine   uint32       `json:"end_line,omitempty" msgpack:"end_line,omitempty"`
	EndColumn uint32       `json:"end_column,omitempty" msgpack:"end_column,omitempty"`
	Notes     []NoteRecord `json:"notes,omitempty" msgpack:"notes,omitempty"`
}

// NoteRecord is the serialized form of a Note.
type NoteRecord struct {
	Message string `json:"message" msgpack:"message"`
	File    string `json:"file,omitempty" msgpack:"file,omitempty"`
	Line    uint32 `json:"line,omitempty" msgpack:"line,omitempty"`
	Column  uint32 `json:"column,omitempty" msgpack:"column,omitempty"`
}

func toU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		if n < 0 {
			return 0
		}
		return math.MaxUint32
	}
	return v
}

// Records converts diagnostics to their serialized form.
func Records(items []Diagnostic) []Record {
	recs := make([]Record, len(items))
	for i, d := range items {
		r := Record{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
		}
		if d.Primary.IsValid() {
			r.File = d.Primary.Start.Filename
			r.Line = toU32(d.Primary.Start.Line)
			r.Column = toU32(d.Primary.Start.Column)
			r.EndLine = toU32(d.Primary.End.Line)
			r.EndColumn = toU32(d.Primary.End.Column)
		}
		for _, n := range d.Notes {
			nr := NoteRecord{Message: n.Msg}
			if n.Span.IsValid() {
				nr.File = n.Span.Start.Filename
				nr.Line = toU32(n.Span.Start.Line)
				nr.Column = toU32(n.Span.Start.Column)
			}
			r.Notes = append(r.Notes, nr)
		}
		recs[i] = r
	}
	return recs
}

// WriteJSON writes diagnostics as an indented JSON array.
func WriteJSON(w io.Writer, items []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Records(items))
}

// WriteMsgpack writes diagnostics as a msgpack-encoded array of records.
func WriteMsgpack(w io.Writer, items []Diagnostic) error {
	return msgpack.NewEncoder(w).Encode(Records(items))
}
