package cv

import (
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		wantErr bool
	}{
		{
			name:  "ValidTree",
			nodes: fixtureNodes(),
		},
		{
			name:    "Empty",
			nodes:   nil,
			wantErr: true, // no profile
		},
		{
			name: "TwoProfiles",
			nodes: []Node{
				{ID: "p1", Type: TypeProfile, Label: "One"},
				{ID: "p2", Type: TypeProfile, Label: "Two"},
			},
			wantErr: true,
		},
		{
			name: "DanglingParent",
			nodes: []Node{
				{ID: "profile", Type: TypeProfile, Label: "P"},
				{ID: "work", Type: TypeCategory, ParentID: "nope", Label: "W"},
			},
			wantErr: true,
		},
		{
			name: "DuplicateID",
			nodes: []Node{
				{ID: "profile", Type: TypeProfile, Label: "P"},
				{ID: "work", Type: TypeCategory, ParentID: "profile", Label: "W"},
				{ID: "work", Type: TypeCategory, ParentID: "profile", Label: "W2"},
			},
			wantErr: true,
		},
		{
			name: "UnknownType",
			nodes: []Node{
				{ID: "profile", Type: TypeProfile, Label: "P"},
				{ID: "x", Type: NodeType("banner"), ParentID: "profile", Label: "X"},
			},
			wantErr: true,
		},
		{
			name: "ParentCycle",
			nodes: []Node{
				{ID: "profile", Type: TypeProfile, Label: "P"},
				{ID: "a", Type: TypeCategory, ParentID: "b", Label: "A"},
				{ID: "b", Type: TypeCategory, ParentID: "a", Label: "B"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Data{Nodes: tt.nodes}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVisibleFiltersDrafts(t *testing.T) {
	d := Data{Nodes: append(fixtureNodes(), Node{
		ID: "draft-1", Type: TypeItem, ParentID: "work", Label: "Draft Job", IsDraft: true,
	})}

	published := d.Visible(false)
	for _, n := range published {
		if n.IsDraft {
			t.Errorf("published view contains draft node %s", n.ID)
		}
	}
	if len(published) != len(d.Nodes)-1 {
		t.Errorf("published count = %d, want %d", len(published), len(d.Nodes)-1)
	}

	editing := d.Visible(true)
	if len(editing) != len(d.Nodes) {
		t.Errorf("edit view count = %d, want %d", len(editing), len(d.Nodes))
	}
}

func TestAncestorIDs(t *testing.T) {
	nodes := fixtureNodes()

	tests := []struct {
		nodeID string
		want   []string
	}{
		{nodeID: "profile", want: nil},
		{nodeID: "work", want: []string{"profile"}},
		{nodeID: "skill-1", want: []string{"job-1", "work", "profile"}},
		{nodeID: "missing", want: nil},
	}

	for _, tt := range tests {
		got := AncestorIDs(tt.nodeID, nodes)
		if len(got) != len(tt.want) {
			t.Errorf("AncestorIDs(%s) = %v, want %v", tt.nodeID, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("AncestorIDs(%s) = %v, want %v", tt.nodeID, got, tt.want)
				break
			}
		}
	}
}

func TestAncestorIDsTerminatesOnCycle(t *testing.T) {
	cyclic := []Node{
		{ID: "a", Type: TypeCategory, ParentID: "b", Label: "A"},
		{ID: "b", Type: TypeCategory, ParentID: "a", Label: "B"},
	}
	got := AncestorIDs("a", cyclic)
	if len(got) > len(cyclic) {
		t.Errorf("ancestor walk not bounded: %v", got)
	}
}

func TestParentChain(t *testing.T) {
	nodes := fixtureNodes()
	chain := ParentChain("skill-1", nodes)

	wantIDs := []string{"profile", "work", "job-1", "skill-1"}
	if len(chain) != len(wantIDs) {
		t.Fatalf("chain length = %d, want %d", len(chain), len(wantIDs))
	}
	for i, id := range wantIDs {
		if chain[i].ID != id {
			t.Errorf("chain[%d] = %s, want %s", i, chain[i].ID, id)
		}
	}
}

func TestSectionIcon(t *testing.T) {
	nodes := fixtureNodes()

	work, _ := SectionByID(SectionWork)
	if got := SectionIcon(nodes[3], nodes); got != work.Icon {
		t.Errorf("SectionIcon(job-1) = %q, want %q", got, work.Icon)
	}
	if got := SectionIcon(nodes[0], nodes); got != "" {
		t.Errorf("SectionIcon(profile) = %q, want empty", got)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	d := Data{
		Nodes: fixtureNodes(),
		Positions: []Position{
			{NodeID: "profile", X: 400, Y: 300},
			{NodeID: "work", X: 120.5, Y: -40},
		},
	}

	path := filepath.Join(t.TempDir(), "cv.json")
	if err := WriteFile(d, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got.Nodes) != len(d.Nodes) || len(got.Positions) != len(d.Positions) {
		t.Fatalf("round trip: %d nodes %d positions, want %d and %d",
			len(got.Nodes), len(got.Positions), len(d.Nodes), len(d.Positions))
	}
	if got.Nodes[3].Company != "Acme Corp" {
		t.Errorf("item attributes lost in round trip: %+v", got.Nodes[3])
	}
	if got.Positions[1].X != 120.5 {
		t.Errorf("position lost in round trip: %+v", got.Positions[1])
	}
}
