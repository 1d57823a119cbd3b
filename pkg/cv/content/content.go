// Package content loads the long-form markdown content attached to CV nodes.
//
// Content lives in a single markdown file split into sections by H1 headers:
// each `# node-id` line starts a section whose body runs until the next H1.
// The parsed result is a ContentMap from node id to markdown body, consumed
// by the graph assembler and the document renderer.
package content

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Map holds markdown content keyed by node id.
type Map map[string]string

// Get returns the content for a node id and whether it exists.
func (m Map) Get(nodeID string) (string, bool) {
	s, ok := m[nodeID]
	return s, ok
}

// Parse splits H1-delimited markdown into a content map.
//
// The first line of each section is the node id; the remainder (trimmed) is
// the body. Sections with an empty id or empty body are skipped.
func Parse(markdown string) Map {
	m := Map{}

	for _, section := range splitSections(markdown) {
		if strings.TrimSpace(section) == "" {
			continue
		}
		nodeID, body, _ := strings.Cut(section, "\n")
		nodeID = strings.TrimSpace(nodeID)
		body = strings.TrimSpace(body)
		if nodeID != "" && body != "" {
			m[nodeID] = body
		}
	}

	return m
}

// splitSections splits on H1 header lines, dropping the "# " prefix.
// Only headers at the start of a line count; "##" subheaders stay in bodies.
func splitSections(markdown string) []string {
	var sections []string
	var current strings.Builder
	started := false

	for _, line := range strings.SplitAfter(markdown, "\n") {
		if id, ok := strings.CutPrefix(line, "# "); ok && !strings.HasPrefix(id, "#") {
			if started {
				sections = append(sections, current.String())
				current.Reset()
			}
			started = true
			current.WriteString(id)
			continue
		}
		if started {
			current.WriteString(line)
		}
	}
	if started {
		sections = append(sections, current.String())
	}
	return sections
}

// ReadFile loads and parses a content markdown file.
func ReadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Read parses content markdown from an io.Reader.
func Read(r io.Reader) (Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(string(data)), nil
}

// Format renders a content map back into the H1-delimited file format.
// Sections are emitted in the order of ids; callers sort ids when a stable
// file is required.
func Format(ids []string, m Map) string {
	var b strings.Builder
	for _, id := range ids {
		body, ok := m[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "# %s\n\n%s\n\n", id, body)
	}
	return b.String()
}
