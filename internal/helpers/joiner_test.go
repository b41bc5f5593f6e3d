package helpers

import (
	"testing"

	"github.com/concatjs/concatjs/internal/test"
)

func TestJoiner(t *testing.T) {
	j := Joiner{}
	test.AssertEqual(t, string(j.Done()), "")
	test.AssertEqual(t, j.Length(), 0)

	j.AddString("// a.js\n")
	j.AddBytes([]byte("var a;"))
	j.AddString("")
	test.AssertEqual(t, j.LastByte(), byte(';'))
	j.EnsureNewlineAtEnd()
	j.EnsureNewlineAtEnd()
	j.AddBytes([]byte("b();\n"))
	test.AssertEqual(t, j.Length(), 20)
	test.AssertEqual(t, string(j.Done()), "// a.js\nvar a;\nb();\n")
}

func TestJoinerSingleSlice(t *testing.T) {
	data := []byte("var a;\n")
	j := Joiner{}
	j.AddBytes(data)
	result := j.Done()
	test.AssertEqual(t, string(result), "var a;\n")
	if &result[0] != &data[0] {
		t.Fatal("Expected the slice to be returned without copying")
	}
}
