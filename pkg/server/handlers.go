package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fschmidt/virtualcv/pkg/client"
	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/errors"
	"github.com/fschmidt/virtualcv/pkg/session"
)

// =============================================================================
// JSON Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps store error codes to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch errors.GetCode(err) {
	case errors.ErrCodeNodeNotFound, errors.ErrCodeNotFound:
		writeError(w, http.StatusNotFound, errors.UserMessage(err))
	case errors.ErrCodeDuplicate:
		writeError(w, http.StatusConflict, errors.UserMessage(err))
	case errors.ErrCodeInvalidNode, errors.ErrCodeInvalidInput:
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// =============================================================================
// Auth Handlers
// =============================================================================

type loginRequest struct {
	Email string `json:"email"`
	State string `json:"state"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	User      *session.User `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

type stateResponse struct {
	State string `json:"state"`
}

// handleLoginState issues a single-use login state token. Login consumes it,
// so a replayed or forged login request cannot reuse one.
func (s *Server) handleLoginState(w http.ResponseWriter, r *http.Request) {
	state, err := s.states.Generate(r.Context(), session.DefaultStateTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue login state")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: state})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, err := s.states.Validate(r.Context(), req.State)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not validate login state")
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "invalid or expired login state")
		return
	}
	if err := errors.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
		return
	}
	if !s.whitelist.Allowed(req.Email) {
		writeError(w, http.StatusForbidden, "email not authorized to edit")
		return
	}

	sess, err := session.New(&session.User{Email: req.Email}, s.sessionTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "could not store session")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     sess.ID,
		User:      sess.User,
		ExpiresAt: sess.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.lookupSession(r); sess != nil {
		_ = s.sessions.Delete(r.Context(), sess.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sess.User)
}

// =============================================================================
// Query Handlers
// =============================================================================

// editorView reports whether the request carries an editor session, which
// unlocks draft visibility.
func editorView(r *http.Request) bool {
	return sessionFrom(r.Context()) != nil
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.Load(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	visible := data.Visible(editorView(r))
	positions := data.PositionMap()

	dtos := make([]client.NodeDTO, 0, len(visible))
	for _, node := range visible {
		dtos = append(dtos, s.toDTO(node, positions))
	}
	writeJSON(w, http.StatusOK, client.DataDTO{Nodes: dtos})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	node, err := s.store.GetNode(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if node.IsDraft && !editorView(r) {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	writeJSON(w, http.StatusOK, s.toDTO(node, nil))
}

func (s *Server) handleGetChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	children, err := s.store.Children(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	edit := editorView(r)
	dtos := make([]client.NodeDTO, 0, len(children))
	for _, node := range children {
		if node.IsDraft && !edit {
			continue
		}
		dtos = append(dtos, s.toDTO(node, nil))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	matches, err := s.store.Search(r.Context(), query)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	edit := editorView(r)
	dtos := make([]client.NodeDTO, 0, len(matches))
	for _, node := range matches {
		if node.IsDraft && !edit {
			continue
		}
		dtos = append(dtos, s.toDTO(node, nil))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// Command Handlers
// =============================================================================

// createHandler builds the handler for one type-specific create endpoint.
// The endpoint fixes the node type; a type in the body is ignored.
func (s *Server) createHandler(wireType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var dto client.NodeDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		dto.Type = wireType

		if err := errors.ValidateLabel(dto.Label); err != nil {
			writeError(w, http.StatusBadRequest, errors.UserMessage(err))
			return
		}
		// Client-supplied ids must be canonical slugs; generated ids
		// already are.
		if dto.ID != "" {
			if err := errors.ValidateNodeIDSlug(dto.ID); err != nil {
				writeError(w, http.StatusBadRequest, errors.UserMessage(err))
				return
			}
		}

		created, err := s.store.CreateNode(r.Context(), client.ToNode(dto))
		if err != nil {
			writeStoreError(w, err)
			return
		}

		if dto.PositionX != nil && dto.PositionY != nil {
			pos := cv.Position{NodeID: created.ID, X: *dto.PositionX, Y: *dto.PositionY}
			if err := s.store.SavePositions(r.Context(), []cv.Position{pos}); err != nil {
				writeStoreError(w, err)
				return
			}
		}

		w.Header().Set("Location", "/cv/nodes/"+created.ID)
		writeJSON(w, http.StatusCreated, s.toDTO(created, nil))
	}
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var cmd client.UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The body id must match the path variable.
	if cmd.ID != id {
		writeError(w, http.StatusBadRequest, "id mismatch between path and body")
		return
	}

	stored, err := s.store.GetNode(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if cmd.ParentID != "" && cmd.ParentID != stored.ParentID {
		if err := s.validateReparent(r.Context(), stored, cmd.ParentID); err != nil {
			writeStoreError(w, err)
			return
		}
	}

	src := s.updateSource(stored, cmd)
	updated, err := s.store.UpdateNode(r.Context(), src)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if cmd.PositionX != nil && cmd.PositionY != nil {
		pos := cv.Position{NodeID: id, X: *cmd.PositionX, Y: *cmd.PositionY}
		if err := s.store.SavePositions(r.Context(), []cv.Position{pos}); err != nil {
			writeStoreError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, s.toDTO(updated, nil))
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteNode(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DTO Mapping
// =============================================================================

// toDTO maps a node to its wire shape, attaching a persisted position when
// the caller supplies the position map.
func (s *Server) toDTO(node cv.Node, positions map[string]cv.Position) client.NodeDTO {
	dto := client.FromNode(node)
	if pos, ok := positions[node.ID]; ok {
		x, y := pos.X, pos.Y
		dto.PositionX = &x
		dto.PositionY = &y
	}
	return dto
}

// validateReparent checks that moving a node under parentID keeps the tree
// a tree: the parent must exist and must not sit inside the node's own
// subtree. Profiles are roots and never get a parent.
func (s *Server) validateReparent(ctx context.Context, node cv.Node, parentID string) error {
	if node.Type == cv.TypeProfile {
		return errors.New(errors.ErrCodeInvalidNode, "profile node cannot have a parent")
	}

	data, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]cv.Node, len(data.Nodes))
	for _, n := range data.Nodes {
		byID[n.ID] = n
	}
	if _, ok := byID[parentID]; !ok {
		return errors.New(errors.ErrCodeInvalidNode, "new parent %q does not exist", parentID)
	}

	// Walk up from the new parent; reaching the node means it would become
	// its own ancestor. The step bound guards against corrupt parent chains.
	for cur, steps := parentID, 0; cur != "" && steps <= len(data.Nodes); steps++ {
		if cur == node.ID {
			return errors.New(errors.ErrCodeInvalidNode, "cannot move %q into its own subtree", node.ID)
		}
		cur = byID[cur].ParentID
	}
	return nil
}

// updateSource converts an update command into the sparse merge node the
// store expects. Attribute-derived fields only apply when the command
// carries attributes, so an update touching just the label cannot clobber
// them with mapping fallbacks.
func (s *Server) updateSource(stored cv.Node, cmd client.UpdateCommand) cv.Node {
	src := cv.Node{
		ID:          cmd.ID,
		ParentID:    cmd.ParentID,
		Label:       cmd.Label,
		Description: cmd.Description,
		IsDraft:     stored.IsDraft,
	}

	if cmd.Attributes == nil {
		return src
	}

	tmp := client.ToNode(client.NodeDTO{
		ID:         cmd.ID,
		Type:       client.FromNode(stored).Type,
		Attributes: cmd.Attributes,
	})
	// Suppress the category sectionId-from-id fallback unless the command
	// explicitly sets it.
	if _, ok := cmd.Attributes["sectionId"]; !ok {
		tmp.SectionID = ""
	}
	if v, ok := cmd.Attributes["isDraft"].(bool); ok {
		src.IsDraft = v
	}

	src.Name = tmp.Name
	src.Title = tmp.Title
	src.Subtitle = tmp.Subtitle
	src.Experience = tmp.Experience
	src.Email = tmp.Email
	src.Location = tmp.Location
	src.PhotoURL = tmp.PhotoURL
	src.SectionID = tmp.SectionID
	src.Company = tmp.Company
	src.DateRange = tmp.DateRange
	src.Highlights = tmp.Highlights
	src.Technologies = tmp.Technologies
	src.Proficiency = tmp.Proficiency
	src.YearsOfExperience = tmp.YearsOfExperience
	src.Tags = tmp.Tags

	return src
}
