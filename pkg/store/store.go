// Package store provides persistence for CV nodes and positions.
//
// The Store interface abstracts over backends: an in-memory implementation
// for tests and standalone mode, and a MongoDB implementation for hosted
// deployments.
//
// Deletes are soft: removed nodes are flagged and excluded from reads, so
// an accidental delete in the editor can be recovered from the database.
// Updates merge field-by-field, matching the editor's behavior of sending
// only the attributes the user touched.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/errors"
)

// Store is the persistence interface for CV data.
type Store interface {
	// Load returns all live nodes and their persisted positions.
	Load(ctx context.Context) (cv.Data, error)

	// GetNode returns one live node by id.
	// Returns an ErrCodeNodeNotFound error if the node is missing or deleted.
	GetNode(ctx context.Context, id string) (cv.Node, error)

	// Children returns the live children of the given node, in insertion order.
	Children(ctx context.Context, parentID string) ([]cv.Node, error)

	// Search returns live nodes whose label, description, company, or tags
	// contain the query, case-insensitively. An empty query matches nothing.
	Search(ctx context.Context, query string) ([]cv.Node, error)

	// CreateNode stores a new node. An empty id is replaced with a fresh
	// UUID. Creating an id that already exists (even soft-deleted) fails
	// with ErrCodeDuplicate.
	CreateNode(ctx context.Context, node cv.Node) (cv.Node, error)

	// UpdateNode merges the given node into the stored one: set fields
	// overwrite, zero fields are kept. The id must reference a live node.
	UpdateNode(ctx context.Context, node cv.Node) (cv.Node, error)

	// DeleteNode soft-deletes a node and its entire subtree.
	DeleteNode(ctx context.Context, id string) error

	// SavePositions upserts positions by node id.
	SavePositions(ctx context.Context, positions []cv.Position) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// record wraps a node with storage metadata.
type record struct {
	Node      cv.Node    `bson:"node"`
	Deleted   bool       `bson:"deleted"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty"`
}

// mintID returns the node's id, or a fresh UUID if it has none.
func mintID(node cv.Node) string {
	if node.ID != "" {
		return node.ID
	}
	return uuid.NewString()
}

// mergeNode overlays src onto dst: set fields in src win, zero fields keep
// the stored value. Type, ID, and ParentID are identity fields and never
// change through an update. IsDraft always applies since false is a
// meaningful value (publishing a draft).
func mergeNode(dst *cv.Node, src cv.Node) {
	if src.ParentID != "" {
		dst.ParentID = src.ParentID
	}
	if src.Label != "" {
		dst.Label = src.Label
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Tags != nil {
		dst.Tags = src.Tags
	}
	dst.IsDraft = src.IsDraft

	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Subtitle != "" {
		dst.Subtitle = src.Subtitle
	}
	if src.Experience != "" {
		dst.Experience = src.Experience
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Location != "" {
		dst.Location = src.Location
	}
	if src.PhotoURL != "" {
		dst.PhotoURL = src.PhotoURL
	}

	if src.SectionID != "" {
		dst.SectionID = src.SectionID
	}
	if src.Company != "" {
		dst.Company = src.Company
	}
	if src.DateRange != "" {
		dst.DateRange = src.DateRange
	}
	if src.Highlights != nil {
		dst.Highlights = src.Highlights
	}
	if src.Technologies != nil {
		dst.Technologies = src.Technologies
	}

	if src.Proficiency != "" {
		dst.Proficiency = src.Proficiency
	}
	if src.YearsOfExperience != 0 {
		dst.YearsOfExperience = src.YearsOfExperience
	}
}

// matchesQuery reports whether a node matches a search query.
func matchesQuery(node cv.Node, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	fields := []string{node.Label, node.Description, node.Company}
	fields = append(fields, node.Tags...)
	fields = append(fields, node.Technologies...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// notFound builds the standard missing-node error.
func notFound(id string) error {
	return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
}
