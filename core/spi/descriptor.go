package spi

import (
	"bufio"
	"io"
	"strings"
)

// Entry is one binding read from a descriptor resource.
type Entry struct {
	// Name is the service name, or the type reference itself for lines
	// without an explicit "name =" part.
	Name string
	// TypeRef is the qualified implementation type name.
	TypeRef string
}

// ParseDescriptor reads a descriptor resource: UTF-8 text, one binding per
// line with the syntax "name = typeReference", an optional trailing
// "# comment" and blank lines ignored. A line without "=" binds the type
// reference under its own name. Lines can be arbitrarily long.
func ParseDescriptor(r io.Reader) ([]Entry, error) {
	var entries []Entry
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if e, ok := parseLine(line); ok {
			entries = append(entries, e)
		}
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
	}
}

func parseLine(line string) (Entry, bool) {
	if ci := strings.IndexByte(line, '#'); ci >= 0 {
		line = line[:ci]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{}, false
	}
	name := line
	if i := strings.IndexByte(line, '='); i > 0 {
		name = strings.TrimSpace(line[:i])
		line = strings.TrimSpace(line[i+1:])
	}
	if line == "" {
		return Entry{}, false
	}
	return Entry{Name: name, TypeRef: line}, true
}
