package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/fschmidt/virtualcv/pkg/cache"
	"github.com/fschmidt/virtualcv/pkg/cv"
)

func testData() cv.Data {
	return cv.Data{Nodes: []cv.Node{
		{ID: "profile", Type: cv.TypeProfile, Label: "Jane Doe", Name: "Jane Doe", Title: "Engineer"},
		{ID: "work", Type: cv.TypeCategory, ParentID: "profile", Label: "Work", SectionID: cv.SectionWork},
		{ID: "job-1", Type: cv.TypeItem, ParentID: "work", Label: "Backend Engineer", Company: "Acme"},
		{ID: "job-2", Type: cv.TypeItem, ParentID: "work", Label: "Secret", IsDraft: true},
	}}
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestExecute(t *testing.T) {
	r := testRunner(t)
	opts := Options{
		Source:  StaticSource{Data: testData()},
		Formats: []string{FormatJSON, FormatDOT, FormatMarkdown},
	}

	result, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Drafts are filtered, so only three nodes and two edges survive.
	if len(result.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(result.Nodes))
	}
	if len(result.Edges) != 2 {
		t.Errorf("edges = %d, want 2", len(result.Edges))
	}
	if result.DataHash == "" {
		t.Error("data hash not computed")
	}

	for _, f := range opts.Formats {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("artifact %s empty", f)
		}
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "digraph CV") {
		t.Error("dot artifact malformed")
	}
	if !strings.Contains(string(result.Artifacts[FormatMarkdown]), "# Jane Doe") {
		t.Error("markdown artifact malformed")
	}
}

func TestExecuteCachesLayoutAndArtifacts(t *testing.T) {
	r := testRunner(t)
	opts := Options{
		Source:  StaticSource{Data: testData()},
		Formats: []string{FormatJSON},
	}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
	if string(first.Artifacts[FormatJSON]) != string(second.Artifacts[FormatJSON]) {
		t.Error("cached artifact differs from rendered one")
	}
}

func TestExecuteEditModeChangesView(t *testing.T) {
	r := testRunner(t)
	base := Options{Source: StaticSource{Data: testData()}, Formats: []string{FormatJSON}}

	published, err := r.Execute(context.Background(), base)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	edit := base
	edit.EditMode = true
	editor, err := r.Execute(context.Background(), edit)
	if err != nil {
		t.Fatalf("Execute (edit): %v", err)
	}

	if len(editor.Nodes) != len(published.Nodes)+1 {
		t.Errorf("edit nodes = %d, published = %d", len(editor.Nodes), len(published.Nodes))
	}
}

func TestExecuteRejectsInvalidOptions(t *testing.T) {
	r := testRunner(t)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{}); err == nil {
		t.Error("missing source should fail")
	}
	if _, err := r.Execute(ctx, Options{
		Source:  StaticSource{Data: testData()},
		Formats: []string{"gif"},
	}); err == nil {
		t.Error("invalid format should fail")
	}
}

func TestLoadValidatesData(t *testing.T) {
	r := testRunner(t)

	// Two profile roots violate the tree invariants.
	bad := cv.Data{Nodes: []cv.Node{
		{ID: "a", Type: cv.TypeProfile, Label: "A"},
		{ID: "b", Type: cv.TypeProfile, Label: "B"},
	}}
	if _, err := r.Load(context.Background(), Options{Source: StaticSource{Data: bad}}); err == nil {
		t.Error("invalid data should fail validation")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.json")
	if err := cv.WriteFile(testData(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := FileSource{Path: path}.GetData(context.Background(), false)
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if len(data.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(data.Nodes))
	}
}

func TestManualLayoutUsesPersistedPositions(t *testing.T) {
	r := testRunner(t)
	data := testData()
	data.Positions = []cv.Position{{NodeID: "work", X: 123, Y: 456}}

	positions, err := r.ComputeLayout(context.Background(), data, Options{
		Source:       StaticSource{Data: data},
		ManualLayout: true,
	})
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if len(positions) != 1 || positions[0].X != 123 {
		t.Errorf("positions = %+v", positions)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatMarkdown} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%s) = %v", f, err)
		}
	}
	if err := ValidateFormat("gif"); err == nil {
		t.Error("gif should be invalid")
	}
}
