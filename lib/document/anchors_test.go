package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadAnchors(t *testing.T) {
	assert := assert.New(t)
	input := `<?xml version="1.0"?>
<anchors>
  <anchor name="bob" offset="0x000010"/>
  <anchor name="tom" offset="32"/>
</anchors>`

	anchors, err := ReadAnchors(strings.NewReader(input))
	if !assert.Nil(err) {
		return
	}
	assert.Equal([]Anchor{{Name: "bob", Offset: 16}, {Name: "tom", Offset: 32}}, anchors)
}

func TestReadAnchorsErrors(t *testing.T) {
	cases := []string{
		`<anchors><anchor offset="1"/></anchors>`,
		`<anchors><anchor name="a" offset="zz"/></anchors>`,
		`<anchors><anchor name="" offset="0x10"/></anchors>`,
	}
	for _, c := range cases {
		_, err := ReadAnchors(strings.NewReader(c))
		assert.NotNil(t, err, "Expected error for input '%s'", c)
	}
}

func TestWriteReadAnchors(t *testing.T) {
	assert := assert.New(t)
	anchors := []Anchor{{Name: "a", Offset: 0}, {Name: "b", Offset: 0x1234}}

	var buf bytes.Buffer
	if !assert.Nil(WriteAnchors(&buf, anchors)) {
		return
	}
	assert.Contains(buf.String(), `offset="0x001234"`)

	read, err := ReadAnchors(&buf)
	assert.Nil(err)
	assert.Equal(anchors, read)
}

func TestAnchorsPath(t *testing.T) {
	assert.Equal(t, "rom.gba.anchors.xml", AnchorsPath("rom.gba"))
	assert.Equal(t, "rom.gba.anchors.xml", AnchorsPath("rom.gba.gz"))
}
