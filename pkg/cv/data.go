package cv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// =============================================================================
// Data - CV Collection
// =============================================================================

// Data is the complete CV: the flat node collection plus optional persisted
// positions. It is the canonical serialization format used by the API, the
// store, and all render surfaces.
type Data struct {
	Nodes     []Node     `json:"nodes" bson:"nodes"`
	Positions []Position `json:"positions,omitempty" bson:"positions,omitempty"`
}

// Visible returns the nodes visible at the given edit level: draft nodes are
// included only when editMode is true. Order is preserved.
func (d Data) Visible(editMode bool) []Node {
	out := make([]Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.IsDraft && !editMode {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Profile returns the profile root node, or nil if the collection has none.
func (d Data) Profile() *Node {
	for i := range d.Nodes {
		if d.Nodes[i].Type == TypeProfile {
			return &d.Nodes[i]
		}
	}
	return nil
}

// PositionMap returns the persisted positions keyed by node id.
func (d Data) PositionMap() map[string]Position {
	m := make(map[string]Position, len(d.Positions))
	for _, p := range d.Positions {
		m[p.NodeID] = p
	}
	return m
}

// =============================================================================
// Tree Queries
// =============================================================================

// FindNode returns the node with the given id, or nil if absent.
func FindNode(nodes []Node, id string) *Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

// ChildrenMap groups nodes by their parent id. Root nodes are grouped under
// the empty string. Children keep collection order, so output derived from
// the map is deterministic as long as callers iterate the slices.
func ChildrenMap(nodes []Node) map[string][]Node {
	m := make(map[string][]Node)
	for _, n := range nodes {
		m[n.ParentID] = append(m[n.ParentID], n)
	}
	return m
}

// AncestorIDs collects the parent chain of a node, nearest parent first.
// The walk is bounded by the node count so a malformed collection with an
// accidental parent cycle terminates instead of looping forever.
func AncestorIDs(nodeID string, nodes []Node) []string {
	var ancestors []string
	currentID := nodeID
	for range nodes {
		node := FindNode(nodes, currentID)
		if node == nil || node.ParentID == "" {
			break
		}
		ancestors = append(ancestors, node.ParentID)
		currentID = node.ParentID
	}
	return ancestors
}

// ParentChain returns the nodes from the root down to the given node,
// for breadcrumb navigation. Unknown ids yield an empty chain.
func ParentChain(nodeID string, nodes []Node) []Node {
	var chain []Node
	currentID := nodeID
	for range len(nodes) + 1 {
		node := FindNode(nodes, currentID)
		if node == nil {
			break
		}
		chain = append(chain, *node)
		if node.ParentID == "" {
			break
		}
		currentID = node.ParentID
	}
	slices.Reverse(chain)
	return chain
}

// SectionIcon resolves the section icon for a node by walking up to its
// category ancestor. Returns "" when the node has no category ancestor or
// the category references an unknown section.
func SectionIcon(node Node, nodes []Node) string {
	current := &node
	for range len(nodes) + 1 {
		if current == nil {
			return ""
		}
		if current.Type == TypeCategory {
			if s, ok := current.Section(); ok {
				return s.Icon
			}
			return ""
		}
		current = FindNode(nodes, current.ParentID)
	}
	return ""
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the tree invariants: exactly one profile root, unique ids,
// no dangling parent references, no parent cycles, known node types.
// It returns the first violation found.
func (d Data) Validate() error {
	byID := make(map[string]*Node, len(d.Nodes))
	profiles := 0

	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("node %d: empty id", i)
		}
		if !n.Type.Valid() {
			return fmt.Errorf("node %s: unknown type %q", n.ID, n.Type)
		}
		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}
		byID[n.ID] = n

		if n.Type == TypeProfile {
			profiles++
			if n.ParentID != "" {
				return fmt.Errorf("profile node %s must not have a parent", n.ID)
			}
		} else if n.ParentID == "" {
			return fmt.Errorf("node %s: only the profile may be a root", n.ID)
		}
	}

	if profiles != 1 {
		return fmt.Errorf("expected exactly one profile node, found %d", profiles)
	}

	for _, n := range d.Nodes {
		if n.ParentID == "" {
			continue
		}
		if _, ok := byID[n.ParentID]; !ok {
			return fmt.Errorf("node %s: dangling parent reference %s", n.ID, n.ParentID)
		}
		// Bounded walk to the root detects parent cycles.
		current := n.ParentID
		for range d.Nodes {
			parent := byID[current]
			if parent == nil || parent.ParentID == "" {
				current = ""
				break
			}
			current = parent.ParentID
		}
		if current != "" {
			return fmt.Errorf("node %s: parent chain does not reach the root", n.ID)
		}
	}

	return nil
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal converts the CV data to pretty-printed JSON bytes.
func Marshal(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes JSON bytes into CV data.
func Unmarshal(data []byte) (Data, error) {
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return Data{}, fmt.Errorf("unmarshal cv data: %w", err)
	}
	return d, nil
}

// WriteFile writes CV data to a JSON file with 0644 permissions.
func WriteFile(d Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(d, f)
}

// ReadFile reads a JSON file and returns the decoded CV data.
func ReadFile(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Write encodes CV data as JSON to an io.Writer.
func Write(d Data, w io.Writer) error {
	return writeTo(d, w)
}

// Read decodes CV data from an io.Reader.
func Read(r io.Reader) (Data, error) {
	return readFrom(r)
}

func writeTo(d Data, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (Data, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Data{}, fmt.Errorf("decode: %w", err)
	}
	return d, nil
}
