// Package document flattens the CV graph into a traditional top-to-bottom
// markdown résumé.
//
// The graph view is the primary surface; the document renderer exists for
// export and for text-only consumers. Sections appear in registry order,
// categories and their children in collection order, so output is
// deterministic for a given node set.
package document

import (
	"fmt"
	"strings"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/cv/content"
)

// Options configures document rendering.
type Options struct {
	// Content supplies long-form markdown per node id, appended after the
	// structured fields of each entry.
	Content content.Map

	// IncludeDrafts renders draft nodes with a marker instead of dropping
	// them. Off for published exports.
	IncludeDrafts bool
}

// Render produces the markdown document for the CV.
func Render(data cv.Data, opts Options) string {
	visible := data.Visible(opts.IncludeDrafts)
	children := cv.ChildrenMap(visible)

	var b strings.Builder

	if profile := findProfile(visible); profile != nil {
		writeHeader(&b, *profile)
	}

	for _, section := range cv.Sections() {
		categories := categoriesFor(visible, section.ID)
		if len(categories) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s %s\n\n", section.Icon, section.Label)
		for _, cat := range categories {
			for _, child := range children[cat.ID] {
				writeEntry(&b, child, children, opts)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func findProfile(nodes []cv.Node) *cv.Node {
	for i := range nodes {
		if nodes[i].Type == cv.TypeProfile {
			return &nodes[i]
		}
	}
	return nil
}

func categoriesFor(nodes []cv.Node, section cv.SectionID) []cv.Node {
	var out []cv.Node
	for _, n := range nodes {
		if n.Type == cv.TypeCategory && n.SectionID == section {
			out = append(out, n)
		}
	}
	return out
}

func writeHeader(b *strings.Builder, profile cv.Node) {
	name := profile.Name
	if name == "" {
		name = profile.Label
	}
	fmt.Fprintf(b, "# %s\n\n", name)

	if profile.Title != "" {
		fmt.Fprintf(b, "**%s**", profile.Title)
		if profile.Subtitle != "" {
			fmt.Fprintf(b, " · %s", profile.Subtitle)
		}
		b.WriteString("\n\n")
	}

	var contact []string
	if profile.Email != "" {
		contact = append(contact, profile.Email)
	}
	if profile.Location != "" {
		contact = append(contact, profile.Location)
	}
	if len(contact) > 0 {
		fmt.Fprintf(b, "%s\n\n", strings.Join(contact, " | "))
	}

	if profile.Description != "" {
		fmt.Fprintf(b, "%s\n\n", profile.Description)
	}
}

func writeEntry(b *strings.Builder, node cv.Node, children map[string][]cv.Node, opts Options) {
	switch node.Type {
	case cv.TypeItem:
		writeItem(b, node, opts)
	case cv.TypeSkillGroup:
		writeSkillGroup(b, node, children[node.ID])
	case cv.TypeSkill:
		// A skill directly under a category renders as a one-line group.
		fmt.Fprintf(b, "- %s\n\n", skillLine(node))
	}
}

func writeItem(b *strings.Builder, item cv.Node, opts Options) {
	heading := item.Label
	if item.Company != "" {
		heading += " — " + item.Company
	}
	fmt.Fprintf(b, "### %s%s\n\n", heading, draftMarker(item))

	if item.DateRange != "" {
		fmt.Fprintf(b, "*%s*\n\n", item.DateRange)
	}
	if item.Description != "" {
		fmt.Fprintf(b, "%s\n\n", item.Description)
	}
	for _, h := range item.Highlights {
		fmt.Fprintf(b, "- %s\n", h)
	}
	if len(item.Highlights) > 0 {
		b.WriteString("\n")
	}
	if len(item.Technologies) > 0 {
		fmt.Fprintf(b, "`%s`\n\n", strings.Join(item.Technologies, "` · `"))
	}

	if opts.Content != nil {
		if body, ok := opts.Content.Get(item.ID); ok {
			fmt.Fprintf(b, "%s\n\n", strings.TrimSpace(body))
		}
	}
}

func writeSkillGroup(b *strings.Builder, group cv.Node, skills []cv.Node) {
	fmt.Fprintf(b, "### %s%s\n\n", group.Label, draftMarker(group))
	for _, s := range skills {
		fmt.Fprintf(b, "- %s\n", skillLine(s))
	}
	if len(skills) > 0 {
		b.WriteString("\n")
	}
}

func skillLine(s cv.Node) string {
	line := "**" + s.Label + "**"
	var extras []string
	if s.Proficiency != "" {
		extras = append(extras, string(s.Proficiency))
	}
	if s.YearsOfExperience > 0 {
		extras = append(extras, fmt.Sprintf("%d yrs", s.YearsOfExperience))
	}
	if len(extras) > 0 {
		line += " (" + strings.Join(extras, ", ") + ")"
	}
	return line + draftMarker(s)
}

func draftMarker(n cv.Node) string {
	if n.IsDraft {
		return " _[draft]_"
	}
	return ""
}
