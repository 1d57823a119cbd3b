// Package cv defines the CV node model: a flat, serializable collection of
// typed nodes linked by parent references.
//
// The model is a closed tagged union over five node types (profile, category,
// item, skill-group, skill). Behavior never varies by type, only data shape,
// so nodes are a single struct with a Type discriminator and optional
// type-specific fields. Parent/child/ancestor relationships are resolved by
// id lookup at query time; the collection stays trivially serializable.
//
// The package also implements the visual state classifier: given a selection,
// every node is classified as detailed, quickview, or dormant. States are
// ephemeral and recomputed on every selection change.
package cv

import "slices"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeType discriminates the five node kinds in the CV tree.
type NodeType string

// Node types, ordered root to leaf.
const (
	TypeProfile    NodeType = "profile"
	TypeCategory   NodeType = "category"
	TypeItem       NodeType = "item"
	TypeSkillGroup NodeType = "skill-group"
	TypeSkill      NodeType = "skill"
)

// Valid reports whether t is one of the five known node types.
func (t NodeType) Valid() bool {
	switch t {
	case TypeProfile, TypeCategory, TypeItem, TypeSkillGroup, TypeSkill:
		return true
	}
	return false
}

// Label returns a human-readable name for the node type.
func (t NodeType) Label() string {
	switch t {
	case TypeProfile:
		return "Profile"
	case TypeCategory:
		return "Category"
	case TypeItem:
		return "Item"
	case TypeSkillGroup:
		return "Skill Group"
	case TypeSkill:
		return "Skill"
	}
	return string(t)
}

// Proficiency is the self-assessed level attached to skills and skill groups.
type Proficiency string

// Proficiency levels, strongest first.
const (
	ProficiencyExpert       Proficiency = "expert"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyBeginner     Proficiency = "beginner"
)

// SectionID identifies one of the fixed top-level CV sections.
type SectionID string

// The four supported sections. Categories referencing any other id are not
// laid out; the layout template has exactly these slots.
const (
	SectionWork      SectionID = "work"
	SectionSkills    SectionID = "skills"
	SectionEducation SectionID = "education"
	SectionLanguages SectionID = "languages"
)

// =============================================================================
// Section - Fixed Section Registry
// =============================================================================

// Section describes a top-level CV section: its display label, icon, and the
// order it appears in document views.
type Section struct {
	ID    SectionID `json:"id" bson:"id"`
	Label string    `json:"label" bson:"label"`
	Icon  string    `json:"icon" bson:"icon"`
	Order int       `json:"order" bson:"order"`
}

// sections is the fixed registry; Sections returns a copy.
var sections = []Section{
	{ID: SectionWork, Label: "Work Experience", Icon: "💼", Order: 1},
	{ID: SectionSkills, Label: "Technical Skills", Icon: "🛠️", Order: 2},
	{ID: SectionEducation, Label: "Education", Icon: "🎓", Order: 3},
	{ID: SectionLanguages, Label: "Languages", Icon: "🌍", Order: 4},
}

// Sections returns the fixed section registry, sorted by document order.
func Sections() []Section {
	out := slices.Clone(sections)
	slices.SortFunc(out, func(a, b Section) int { return a.Order - b.Order })
	return out
}

// SectionByID looks up a section by id. The second return value is false for
// unknown ids.
func SectionByID(id SectionID) (Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// =============================================================================
// Node - Unified Node Type
// =============================================================================

// Node is the unified node type for all CV entities.
//
// ParentID is empty only for the single profile root. Label is the primary
// display text and may embed a line-break-separated secondary line. Fields
// beyond the common block apply only to particular node types and are zero
// otherwise.
type Node struct {
	ID          string   `json:"id" bson:"id"`
	Type        NodeType `json:"type" bson:"type"`
	ParentID    string   `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	Label       string   `json:"label" bson:"label"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`

	// Draft nodes are invisible outside edit mode.
	IsDraft bool `json:"isDraft,omitempty" bson:"is_draft,omitempty"`

	// Profile fields
	Name       string `json:"name,omitempty" bson:"name,omitempty"`
	Title      string `json:"title,omitempty" bson:"title,omitempty"`
	Subtitle   string `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Experience string `json:"experience,omitempty" bson:"experience,omitempty"`
	Email      string `json:"email,omitempty" bson:"email,omitempty"`
	Location   string `json:"location,omitempty" bson:"location,omitempty"`
	PhotoURL   string `json:"photoUrl,omitempty" bson:"photo_url,omitempty"`

	// Category fields
	SectionID SectionID `json:"sectionId,omitempty" bson:"section_id,omitempty"`

	// Item fields
	Company      string   `json:"company,omitempty" bson:"company,omitempty"`
	DateRange    string   `json:"dateRange,omitempty" bson:"date_range,omitempty"`
	Highlights   []string `json:"highlights,omitempty" bson:"highlights,omitempty"`
	Technologies []string `json:"technologies,omitempty" bson:"technologies,omitempty"`

	// Skill and skill-group fields
	Proficiency       Proficiency `json:"proficiencyLevel,omitempty" bson:"proficiency_level,omitempty"`
	YearsOfExperience int         `json:"yearsOfExperience,omitempty" bson:"years_of_experience,omitempty"`
}

// IsProfile returns true for the profile root node.
func (n *Node) IsProfile() bool { return n.Type == TypeProfile }

// IsCategory returns true for top-level category nodes.
func (n *Node) IsCategory() bool { return n.Type == TypeCategory }

// Section resolves the category's section registry entry.
// Returns false for non-category nodes and unknown section ids.
func (n *Node) Section() (Section, bool) {
	if n.Type != TypeCategory {
		return Section{}, false
	}
	return SectionByID(n.SectionID)
}

// =============================================================================
// Position - Persisted Coordinates
// =============================================================================

// Position caches last-known absolute coordinates for a node. Positions may
// originate from the layout engine or from a persisted backend value.
type Position struct {
	NodeID string  `json:"nodeId" bson:"node_id"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
}
