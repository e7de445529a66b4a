package serialize

import "io"

type cFormat struct{}

// Leaves share the JSON encoding, so strings carry JSON escapes rather than C
// ones.
func (cFormat) Leaf(w io.Writer, leaf Leaf) error {
	return writeJSONLeaf(w, leaf)
}

func (cFormat) BeginMember(w io.Writer, name string) error {
	return writeString(w, "."+name+" = ")
}

func (cFormat) EndMember(w io.Writer, _ string, _ bool) error {
	return writeString(w, ",\n")
}

func (cFormat) BeginStruct(w io.Writer, _ string) error {
	return writeString(w, "{\n")
}

func (cFormat) EndStruct(w io.Writer, _ string) error {
	return writeString(w, "}")
}
