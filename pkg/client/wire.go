package client

import (
	"github.com/fschmidt/virtualcv/pkg/cv"
)

// =============================================================================
// Wire Types
// =============================================================================

// Wire node types as the API spells them.
const (
	wireProfile    = "PROFILE"
	wireCategory   = "CATEGORY"
	wireItem       = "ITEM"
	wireSkillGroup = "SKILL_GROUP"
	wireSkill      = "SKILL"
)

// NodeDTO is the API's node representation: a flat envelope with
// type-specific fields folded into an attributes map.
type NodeDTO struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	ParentID    string         `json:"parentId,omitempty"`
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	PositionX   *float64       `json:"positionX,omitempty"`
	PositionY   *float64       `json:"positionY,omitempty"`
}

// DataDTO is the GET /cv response envelope.
type DataDTO struct {
	Nodes []NodeDTO `json:"nodes"`
}

// UpdateCommand is the PUT /cv/nodes/{id} request body. The id must match
// the path; nil fields are left unchanged by the server.
type UpdateCommand struct {
	ID          string         `json:"id"`
	ParentID    string         `json:"parentId,omitempty"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	PositionX   *float64       `json:"positionX,omitempty"`
	PositionY   *float64       `json:"positionY,omitempty"`
}

// =============================================================================
// Type Mapping
// =============================================================================

var wireToType = map[string]cv.NodeType{
	wireProfile:    cv.TypeProfile,
	wireCategory:   cv.TypeCategory,
	wireItem:       cv.TypeItem,
	wireSkillGroup: cv.TypeSkillGroup,
	wireSkill:      cv.TypeSkill,
}

var typeToWire = map[cv.NodeType]string{
	cv.TypeProfile:    wireProfile,
	cv.TypeCategory:   wireCategory,
	cv.TypeItem:       wireItem,
	cv.TypeSkillGroup: wireSkillGroup,
	cv.TypeSkill:      wireSkill,
}

// attr extracts a typed attribute, returning the zero value when absent or
// of the wrong type.
func attr[T any](attributes map[string]any, key string) T {
	var zero T
	if attributes == nil {
		return zero
	}
	v, ok := attributes[key].(T)
	if !ok {
		return zero
	}
	return v
}

// attrStrings extracts a string slice attribute. JSON unmarshaling yields
// []any, so elements are converted one by one.
func attrStrings(attributes map[string]any, key string) []string {
	raw, ok := attributes[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// attrFloat extracts a numeric attribute as float64.
func attrFloat(attributes map[string]any, key string) float64 {
	switch v := attributes[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// ToNode maps a wire DTO to the domain node model.
//
// Fallbacks follow the editor's conventions: a profile without a name
// attribute uses its label, and a category without a sectionId uses its own
// id (the well-known categories are named after their sections).
func ToNode(dto NodeDTO) cv.Node {
	node := cv.Node{
		ID:          dto.ID,
		Type:        wireToType[dto.Type],
		ParentID:    dto.ParentID,
		Label:       dto.Label,
		Description: dto.Description,
		IsDraft:     attr[bool](dto.Attributes, "isDraft"),
		Tags:        attrStrings(dto.Attributes, "tags"),
	}

	switch node.Type {
	case cv.TypeProfile:
		node.Name = attr[string](dto.Attributes, "name")
		if node.Name == "" {
			node.Name = dto.Label
		}
		node.Title = attr[string](dto.Attributes, "title")
		node.Subtitle = attr[string](dto.Attributes, "subtitle")
		node.Experience = attr[string](dto.Attributes, "experience")
		node.Email = attr[string](dto.Attributes, "email")
		node.Location = attr[string](dto.Attributes, "location")
		node.PhotoURL = attr[string](dto.Attributes, "photoUrl")
	case cv.TypeCategory:
		node.SectionID = cv.SectionID(attr[string](dto.Attributes, "sectionId"))
		if node.SectionID == "" {
			node.SectionID = cv.SectionID(dto.ID)
		}
	case cv.TypeItem:
		node.Company = attr[string](dto.Attributes, "company")
		node.DateRange = attr[string](dto.Attributes, "dateRange")
		node.Location = attr[string](dto.Attributes, "location")
		node.Highlights = attrStrings(dto.Attributes, "highlights")
		node.Technologies = attrStrings(dto.Attributes, "technologies")
	case cv.TypeSkillGroup:
		node.Proficiency = cv.Proficiency(attr[string](dto.Attributes, "proficiencyLevel"))
	case cv.TypeSkill:
		node.Proficiency = cv.Proficiency(attr[string](dto.Attributes, "proficiencyLevel"))
		node.YearsOfExperience = int(attrFloat(dto.Attributes, "yearsOfExperience"))
	}

	return node
}

// FromNode maps a domain node to its wire DTO. Only set fields produce
// attributes, mirroring the server's sparse storage.
func FromNode(node cv.Node) NodeDTO {
	dto := NodeDTO{
		ID:          node.ID,
		Type:        typeToWire[node.Type],
		ParentID:    node.ParentID,
		Label:       node.Label,
		Description: node.Description,
	}

	attrs := make(map[string]any)
	put := func(key, value string) {
		if value != "" {
			attrs[key] = value
		}
	}

	switch node.Type {
	case cv.TypeProfile:
		put("name", node.Name)
		put("title", node.Title)
		put("subtitle", node.Subtitle)
		put("experience", node.Experience)
		put("email", node.Email)
		put("location", node.Location)
		put("photoUrl", node.PhotoURL)
	case cv.TypeCategory:
		put("sectionId", string(node.SectionID))
	case cv.TypeItem:
		put("company", node.Company)
		put("dateRange", node.DateRange)
		put("location", node.Location)
		if node.Highlights != nil {
			attrs["highlights"] = node.Highlights
		}
		if node.Technologies != nil {
			attrs["technologies"] = node.Technologies
		}
	case cv.TypeSkillGroup:
		put("proficiencyLevel", string(node.Proficiency))
	case cv.TypeSkill:
		put("proficiencyLevel", string(node.Proficiency))
		if node.YearsOfExperience != 0 {
			attrs["yearsOfExperience"] = node.YearsOfExperience
		}
	}

	if node.IsDraft {
		attrs["isDraft"] = true
	}
	if node.Tags != nil {
		attrs["tags"] = node.Tags
	}

	if len(attrs) > 0 {
		dto.Attributes = attrs
	}
	return dto
}

// ToData maps a GET /cv response to domain data. Nodes carrying positions
// contribute to the positions list, matching the editor's split of graph
// structure and persisted coordinates.
func ToData(dtos []NodeDTO) cv.Data {
	var data cv.Data
	for _, dto := range dtos {
		data.Nodes = append(data.Nodes, ToNode(dto))
		if dto.PositionX != nil && dto.PositionY != nil {
			data.Positions = append(data.Positions, cv.Position{
				NodeID: dto.ID,
				X:      *dto.PositionX,
				Y:      *dto.PositionY,
			})
		}
	}
	return data
}
