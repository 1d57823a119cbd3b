package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/httputil"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return &Client{
		http:    srv.Client(),
		cache:   cache.Namespace("cvapi:"),
		baseURL: srv.URL,
		token:   "test-token",
	}, srv
}

func TestNewRejectsBadURL(t *testing.T) {
	tests := []string{"", "localhost:8080", "ftp://cv.example.com"}
	for _, raw := range tests {
		if _, err := New(raw, "", time.Hour); err == nil {
			t.Errorf("New(%q) should error", raw)
		}
	}
	if _, err := New("http://localhost:8080", "", time.Hour); err != nil {
		t.Errorf("New(http): %v", err)
	}
}

func TestGetDataCaches(t *testing.T) {
	ctx := context.Background()
	hits := 0

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cv" {
			http.NotFound(w, r)
			return
		}
		hits++
		json.NewEncoder(w).Encode(DataDTO{Nodes: []NodeDTO{
			{ID: "profile", Type: "PROFILE", Label: "Jane"},
		}})
	}))

	data, err := c.GetData(ctx, false)
	if err != nil {
		t.Fatalf("GetData: %v", err)
	}
	if len(data.Nodes) != 1 || data.Nodes[0].Type != cv.TypeProfile {
		t.Errorf("data = %+v", data)
	}

	// Second call is served from cache.
	if _, err := c.GetData(ctx, false); err != nil {
		t.Fatalf("GetData (cached): %v", err)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}

	// refresh bypasses the cache.
	if _, err := c.GetData(ctx, true); err != nil {
		t.Fatalf("GetData (refresh): %v", err)
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}
}

func TestGetNode(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cv/nodes/job-1":
			json.NewEncoder(w).Encode(NodeDTO{
				ID: "job-1", Type: "ITEM", ParentID: "work", Label: "Engineer",
				Attributes: map[string]any{"company": "Acme"},
			})
		default:
			http.NotFound(w, r)
		}
	}))

	node, err := c.GetNode(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if node.Company != "Acme" {
		t.Errorf("node = %+v", node)
	}

	_, err = c.GetNode(ctx, "missing")
	if err != ErrNotFound {
		t.Errorf("GetNode(missing) = %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cv/search" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("q"); got != "go lang" {
			t.Errorf("q = %q", got)
		}
		json.NewEncoder(w).Encode([]NodeDTO{{ID: "go", Type: "SKILL", Label: "Go"}})
	}))

	nodes, err := c.Search(ctx, "go lang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "go" {
		t.Errorf("results = %+v", nodes)
	}
}

func TestCreateNodeRoutesByType(t *testing.T) {
	ctx := context.Background()
	var gotPath string

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("auth header = %q", auth)
		}
		var dto NodeDTO
		json.NewDecoder(r.Body).Decode(&dto)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dto)
	}))

	tests := []struct {
		node cv.Node
		path string
	}{
		{cv.Node{ID: "p", Type: cv.TypeProfile, Label: "P", Name: "P"}, "/cv/nodes/profile"},
		{cv.Node{ID: "c", Type: cv.TypeCategory, Label: "C", SectionID: cv.SectionWork}, "/cv/nodes/category"},
		{cv.Node{ID: "i", Type: cv.TypeItem, Label: "I"}, "/cv/nodes/item"},
		{cv.Node{ID: "sg", Type: cv.TypeSkillGroup, Label: "SG"}, "/cv/nodes/skill-group"},
		{cv.Node{ID: "s", Type: cv.TypeSkill, Label: "S"}, "/cv/nodes/skill"},
	}

	for _, tt := range tests {
		created, err := c.CreateNode(ctx, tt.node)
		if err != nil {
			t.Fatalf("CreateNode(%s): %v", tt.node.Type, err)
		}
		if gotPath != tt.path {
			t.Errorf("path = %q, want %q", gotPath, tt.path)
		}
		if created.ID != tt.node.ID {
			t.Errorf("created = %+v", created)
		}
	}

	// Unknown type fails before hitting the network.
	if _, err := c.CreateNode(ctx, cv.Node{Type: cv.NodeType("banner")}); err == nil {
		t.Error("unknown type should fail")
	}
}

func TestUpdateNode(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/cv/nodes/job-1" {
			http.NotFound(w, r)
			return
		}
		var cmd UpdateCommand
		json.NewDecoder(r.Body).Decode(&cmd)
		if cmd.ID != "job-1" {
			t.Errorf("body id = %q", cmd.ID)
		}
		json.NewEncoder(w).Encode(NodeDTO{ID: "job-1", Type: "ITEM", Label: cmd.Label})
	}))

	node, err := c.UpdateNode(ctx, UpdateCommand{ID: "job-1", Label: "Staff Engineer"})
	if err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if node.Label != "Staff Engineer" {
		t.Errorf("node = %+v", node)
	}
}

func TestDeleteNodeUnauthorized(t *testing.T) {
	ctx := context.Background()

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	if err := c.DeleteNode(ctx, "job-1"); err != ErrUnauthorized {
		t.Errorf("DeleteNode = %v, want ErrUnauthorized", err)
	}
}

func TestSavePositions(t *testing.T) {
	ctx := context.Background()
	saved := map[string][2]float64{}

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd UpdateCommand
		json.NewDecoder(r.Body).Decode(&cmd)
		if cmd.PositionX == nil || cmd.PositionY == nil {
			t.Errorf("positions missing in %+v", cmd)
		} else {
			saved[cmd.ID] = [2]float64{*cmd.PositionX, *cmd.PositionY}
		}
		json.NewEncoder(w).Encode(NodeDTO{ID: cmd.ID, Type: "ITEM"})
	}))

	err := c.SavePositions(ctx, []cv.Position{
		{NodeID: "work", X: 200, Y: -100},
		{NodeID: "job-1", X: 400, Y: -80},
	})
	if err != nil {
		t.Fatalf("SavePositions: %v", err)
	}
	if len(saved) != 2 || saved["work"] != [2]float64{200, -100} {
		t.Errorf("saved = %v", saved)
	}
}
