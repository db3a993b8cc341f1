package spi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDescriptor(t *testing.T) {
	in := `
# full-line comment
json = example.com/codec.JSONCodec
gob  =  example.com/codec.GobCodec   # fallback

example.com/codec.TextCodec
empty =    # nothing after the comment
`
	entries, err := ParseDescriptor(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Entry{
		{Name: "json", TypeRef: "example.com/codec.JSONCodec"},
		{Name: "gob", TypeRef: "example.com/codec.GobCodec"},
		{Name: "example.com/codec.TextCodec", TypeRef: "example.com/codec.TextCodec"},
	}
	assert.Equal(t, want, entries)
}

func TestParseDescriptorLongLine(t *testing.T) {
	// Longer than bufio.Scanner's default 64 KiB token limit.
	ref := "example.com/codec." + strings.Repeat("X", 80*1024)
	entries, err := ParseDescriptor(strings.NewReader("big = " + ref + "\nsmall = example.com/codec.Small"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Entry{
		{Name: "big", TypeRef: ref},
		{Name: "small", TypeRef: "example.com/codec.Small"},
	}
	assert.Equal(t, want, entries)
}

func TestParseDescriptorEmpty(t *testing.T) {
	entries, err := ParseDescriptor(strings.NewReader("   \n# only comments\n"))
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
