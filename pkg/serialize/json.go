package serialize

import (
	"bytes"
	"io"

	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

type jsonFormat struct{}

func (jsonFormat) Leaf(w io.Writer, leaf Leaf) error {
	return writeJSONLeaf(w, leaf)
}

func (jsonFormat) BeginMember(w io.Writer, name string) error {
	return writeString(w, `"`+name+`":`)
}

func (jsonFormat) EndMember(w io.Writer, _ string, last bool) error {
	if last {
		return nil
	}
	return writeString(w, ",")
}

func (jsonFormat) BeginStruct(w io.Writer, _ string) error {
	return writeString(w, "{")
}

func (jsonFormat) EndStruct(w io.Writer, _ string) error {
	return writeString(w, "}")
}

// writeJSONLeaf quotes strings and escapes embedded double quotes. No other
// character is escaped.
func writeJSONLeaf(w io.Writer, leaf Leaf) error {
	if leaf.Repr != reflection.ReprString {
		return writeLeaf(w, leaf)
	}

	if err := writeString(w, `"`); err != nil {
		return err
	}
	s := leaf.Str
	for {
		i := bytes.IndexByte(s, '"')
		if i < 0 {
			break
		}
		if _, err := w.Write(s[:i]); err != nil {
			return err
		}
		if err := writeString(w, `\"`); err != nil {
			return err
		}
		s = s[i+1:]
	}
	if _, err := w.Write(s); err != nil {
		return err
	}
	return writeString(w, `"`)
}
