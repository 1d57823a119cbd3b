package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/fschmidt/virtualcv/pkg/client"
	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/session"
	"github.com/fschmidt/virtualcv/pkg/store"
)

func seedData() cv.Data {
	return cv.Data{
		Nodes: []cv.Node{
			{ID: "profile", Type: cv.TypeProfile, Label: "Jane Doe", Name: "Jane Doe", Title: "Engineer"},
			{ID: "work", Type: cv.TypeCategory, ParentID: "profile", Label: "Work Experience", SectionID: cv.SectionWork},
			{ID: "job-1", Type: cv.TypeItem, ParentID: "work", Label: "Backend Engineer", Company: "Acme Corp", Technologies: []string{"Go", "MongoDB"}},
			{ID: "job-2", Type: cv.TypeItem, ParentID: "work", Label: "Side Project", IsDraft: true},
		},
		Positions: []cv.Position{{NodeID: "work", X: 200, Y: -100}},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	logger := log.New(io.Discard)
	srv := New(Options{
		Store:     store.NewMemoryStoreFromData(seedData()),
		Sessions:  session.NewMemoryStore(),
		Whitelist: session.NewWhitelist([]string{"jane@example.com"}),
		Logger:    logger,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func loginState(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/state", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status = %d", resp.StatusCode)
	}
	return decode[stateResponse](t, resp).State
}

func login(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	state := loginState(t, ts)
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{"email": email, "state": state})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	return decode[loginResponse](t, resp).Token
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, ts.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	ts, _ := newTestServer(t)

	token := login(t, ts, "Jane@Example.com")
	if token == "" {
		t.Fatal("empty token")
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	user := decode[session.User](t, resp)
	if user.Email != "Jane@Example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	ts, _ := newTestServer(t)
	state := loginState(t, ts)
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{"email": "mallory@example.com", "state": state})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestLoginRequiresState(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{"email": "jane@example.com"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("missing state status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{"email": "jane@example.com", "state": "forged"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("forged state status = %d, want 403", resp.StatusCode)
	}
}

func TestLoginStateSingleUse(t *testing.T) {
	ts, _ := newTestServer(t)
	state := loginState(t, ts)
	body := map[string]string{"email": "jane@example.com", "state": state}

	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first login status = %d", resp.StatusCode)
	}

	// The state token is consumed; replaying it must fail.
	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", body)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("replayed state status = %d, want 403", resp.StatusCode)
	}
}

func TestLogout(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/logout", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/auth/me", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", resp.StatusCode)
	}
}

func TestGetDataFiltersDraftsForAnonymous(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/cv", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data := decode[client.DataDTO](t, resp)
	if len(data.Nodes) != 3 {
		t.Fatalf("anonymous nodes = %d, want 3", len(data.Nodes))
	}
	for _, n := range data.Nodes {
		if n.ID == "job-2" {
			t.Error("draft leaked to anonymous read")
		}
		if n.ID == "work" {
			if n.PositionX == nil || *n.PositionX != 200 {
				t.Errorf("position missing on %+v", n)
			}
		}
	}

	token := login(t, ts, "jane@example.com")
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv", token, nil)
	data = decode[client.DataDTO](t, resp)
	if len(data.Nodes) != 4 {
		t.Errorf("editor nodes = %d, want 4", len(data.Nodes))
	}
}

func TestGetNode(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/job-1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	dto := decode[client.NodeDTO](t, resp)
	if dto.ID != "job-1" || dto.Type != "ITEM" {
		t.Errorf("dto = %+v", dto)
	}
	if dto.Attributes["company"] != "Acme Corp" {
		t.Errorf("attributes = %v", dto.Attributes)
	}

	// Draft nodes are invisible without a session.
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/job-2", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("draft status = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", resp.StatusCode)
	}
}

func TestGetChildren(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/work/children", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	dtos := decode[[]client.NodeDTO](t, resp)
	if len(dtos) != 1 || dtos[0].ID != "job-1" {
		t.Errorf("anonymous children = %+v", dtos)
	}

	token := login(t, ts, "jane@example.com")
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/work/children", token, nil)
	dtos = decode[[]client.NodeDTO](t, resp)
	if len(dtos) != 2 {
		t.Errorf("editor children = %+v", dtos)
	}
}

func TestSearch(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/cv/search?q=acme", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	dtos := decode[[]client.NodeDTO](t, resp)
	if len(dtos) != 1 || dtos[0].ID != "job-1" {
		t.Errorf("results = %+v", dtos)
	}
}

func TestCreateNodeRequiresSession(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/cv/nodes/item", "", client.NodeDTO{
		ParentID: "work", Label: "New Role",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateNode(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	x, y := 420.0, -80.0
	resp := doJSON(t, http.MethodPost, ts.URL+"/cv/nodes/item", token, client.NodeDTO{
		ParentID: "work", Label: "Platform Engineer",
		Attributes: map[string]any{"company": "Initech", "isDraft": true},
		PositionX:  &x, PositionY: &y,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	created := decode[client.NodeDTO](t, resp)
	if created.ID == "" || created.Type != "ITEM" {
		t.Fatalf("created = %+v", created)
	}

	// The new draft is hidden from anonymous reads but visible to the editor.
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/"+created.ID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("anonymous status = %d, want 404", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("editor status = %d", resp.StatusCode)
	}

	// The position landed in the graph payload.
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv", token, nil)
	data := decode[client.DataDTO](t, resp)
	var found bool
	for _, n := range data.Nodes {
		if n.ID == created.ID && n.PositionX != nil && *n.PositionX == 420 {
			found = true
		}
	}
	if !found {
		t.Error("created node position not persisted")
	}
}

func TestCreateNodeValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	tests := []struct {
		name string
		dto  client.NodeDTO
		want int
	}{
		{"empty label", client.NodeDTO{ParentID: "work"}, http.StatusBadRequest},
		{"bad id", client.NodeDTO{ID: "../etc", ParentID: "work", Label: "X"}, http.StatusBadRequest},
		{"non-slug id", client.NodeDTO{ID: "Camel_Case", ParentID: "work", Label: "X"}, http.StatusBadRequest},
		{"missing parent", client.NodeDTO{ParentID: "ghost", Label: "X"}, http.StatusBadRequest},
		{"duplicate id", client.NodeDTO{ID: "job-1", ParentID: "work", Label: "X"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/cv/nodes/item", token, tt.dto)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestUpdateNode(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	resp := doJSON(t, http.MethodPut, ts.URL+"/cv/nodes/job-1", token, client.UpdateCommand{
		ID: "job-1", Label: "Staff Engineer",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	updated := decode[client.NodeDTO](t, resp)
	if updated.Label != "Staff Engineer" {
		t.Errorf("label = %q", updated.Label)
	}
	// Untouched attributes survive a label-only update.
	if updated.Attributes["company"] != "Acme Corp" {
		t.Errorf("attributes = %v", updated.Attributes)
	}
}

func TestUpdateNodeReparents(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/cv/nodes/category", token, client.NodeDTO{
		ID: "projects", ParentID: "profile", Label: "Projects",
		Attributes: map[string]any{"sectionId": "work"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/cv/nodes/job-1", token, client.UpdateCommand{
		ID: "job-1", ParentID: "projects",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reparent status = %d", resp.StatusCode)
	}
	updated := decode[client.NodeDTO](t, resp)
	if updated.ParentID != "projects" {
		t.Errorf("parentId = %q, want projects", updated.ParentID)
	}
	// Untouched fields survive the move.
	if updated.Label != "Backend Engineer" {
		t.Errorf("label = %q", updated.Label)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/projects/children", token, nil)
	children := decode[[]client.NodeDTO](t, resp)
	if len(children) != 1 || children[0].ID != "job-1" {
		t.Errorf("children after move = %+v", children)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/work/children", token, nil)
	children = decode[[]client.NodeDTO](t, resp)
	for _, c := range children {
		if c.ID == "job-1" {
			t.Error("old parent still lists the moved node")
		}
	}
}

func TestUpdateNodeReparentValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	tests := []struct {
		name string
		id   string
		cmd  client.UpdateCommand
	}{
		{"missing parent", "job-1", client.UpdateCommand{ID: "job-1", ParentID: "ghost"}},
		{"own subtree", "work", client.UpdateCommand{ID: "work", ParentID: "job-1"}},
		{"self parent", "job-1", client.UpdateCommand{ID: "job-1", ParentID: "job-1"}},
		{"profile parent", "profile", client.UpdateCommand{ID: "profile", ParentID: "work"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPut, ts.URL+"/cv/nodes/"+tt.id, token, tt.cmd)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestUpdateNodeIDMismatch(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	resp := doJSON(t, http.MethodPut, ts.URL+"/cv/nodes/job-1", token, client.UpdateCommand{
		ID: "job-2", Label: "X",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateNodePublishesDraft(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	resp := doJSON(t, http.MethodPut, ts.URL+"/cv/nodes/job-2", token, client.UpdateCommand{
		ID:         "job-2",
		Attributes: map[string]any{"isDraft": false},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// Published node is now anonymously visible.
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/job-2", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("anonymous status = %d", resp.StatusCode)
	}
}

func TestDeleteNode(t *testing.T) {
	ts, _ := newTestServer(t)
	token := login(t, ts, "jane@example.com")

	resp := doJSON(t, http.MethodDelete, ts.URL+"/cv/nodes/work", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// Delete cascades to the subtree.
	resp = doJSON(t, http.MethodGet, ts.URL+"/cv/nodes/job-1", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("child after cascade = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/cv/nodes/work", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("double delete = %d, want 404", resp.StatusCode)
	}
}

func TestEditsRequireSession(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, ts.URL+"/cv/nodes/job-1", "", client.UpdateCommand{ID: "job-1", Label: "X"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("update status = %d, want 401", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, ts.URL+"/cv/nodes/job-1", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("delete status = %d, want 401", resp.StatusCode)
	}
}
