package document

import (
	"strings"
	"testing"

	"github.com/fschmidt/virtualcv/pkg/cv"
)

func sampleData() cv.Data {
	return cv.Data{Nodes: []cv.Node{
		{ID: "profile", Type: cv.TypeProfile, Label: "profile", Name: "Jane Doe",
			Title: "Software Engineer", Subtitle: "Backend & Infra",
			Email: "jane@example.com", Location: "Berlin"},
		{ID: "skills", Type: cv.TypeCategory, ParentID: "profile", Label: "Skills", SectionID: cv.SectionSkills},
		{ID: "work", Type: cv.TypeCategory, ParentID: "profile", Label: "Work", SectionID: cv.SectionWork},
		{ID: "job-1", Type: cv.TypeItem, ParentID: "work", Label: "Backend Engineer",
			Company: "Acme Corp", DateRange: "2020-2024",
			Highlights:   []string{"Shipped v2", "Led migration"},
			Technologies: []string{"Go", "MongoDB"}},
		{ID: "job-2", Type: cv.TypeItem, ParentID: "work", Label: "Secret Project", IsDraft: true},
		{ID: "backend", Type: cv.TypeSkillGroup, ParentID: "skills", Label: "Backend"},
		{ID: "go", Type: cv.TypeSkill, ParentID: "backend", Label: "Go",
			Proficiency: cv.ProficiencyExpert, YearsOfExperience: 8},
	}}
}

func TestRenderHeader(t *testing.T) {
	doc := Render(sampleData(), Options{})

	if !strings.HasPrefix(doc, "# Jane Doe\n") {
		t.Errorf("header:\n%s", doc)
	}
	if !strings.Contains(doc, "**Software Engineer** · Backend & Infra") {
		t.Error("title line missing")
	}
	if !strings.Contains(doc, "jane@example.com | Berlin") {
		t.Error("contact line missing")
	}
}

func TestRenderSectionOrder(t *testing.T) {
	doc := Render(sampleData(), Options{})

	// Work comes before skills regardless of collection order.
	work := strings.Index(doc, "Work Experience")
	skills := strings.Index(doc, "Technical Skills")
	if work < 0 || skills < 0 || work > skills {
		t.Errorf("section order wrong (work=%d skills=%d):\n%s", work, skills, doc)
	}
}

func TestRenderItem(t *testing.T) {
	doc := Render(sampleData(), Options{})

	if !strings.Contains(doc, "### Backend Engineer — Acme Corp") {
		t.Error("item heading missing")
	}
	if !strings.Contains(doc, "*2020-2024*") {
		t.Error("date range missing")
	}
	if !strings.Contains(doc, "- Shipped v2\n- Led migration") {
		t.Error("highlights missing")
	}
	if !strings.Contains(doc, "`Go` · `MongoDB`") {
		t.Error("technologies missing")
	}
}

func TestRenderSkills(t *testing.T) {
	doc := Render(sampleData(), Options{})

	if !strings.Contains(doc, "### Backend") {
		t.Error("skill group heading missing")
	}
	if !strings.Contains(doc, "- **Go** (expert, 8 yrs)") {
		t.Errorf("skill line missing:\n%s", doc)
	}
}

func TestRenderDraftHandling(t *testing.T) {
	published := Render(sampleData(), Options{})
	if strings.Contains(published, "Secret Project") {
		t.Error("draft leaked into published document")
	}

	editor := Render(sampleData(), Options{IncludeDrafts: true})
	if !strings.Contains(editor, "### Secret Project _[draft]_") {
		t.Errorf("draft marker missing:\n%s", editor)
	}
}

func TestRenderEmptySectionsSkipped(t *testing.T) {
	data := cv.Data{Nodes: []cv.Node{
		{ID: "profile", Type: cv.TypeProfile, Label: "Jane", Name: "Jane"},
		{ID: "edu", Type: cv.TypeCategory, ParentID: "profile", Label: "Education", SectionID: cv.SectionEducation},
	}}
	doc := Render(data, Options{})

	// A category with no children still renders its section heading; absent
	// sections do not.
	if !strings.Contains(doc, "Education") {
		t.Errorf("education heading missing:\n%s", doc)
	}
	if strings.Contains(doc, "Work Experience") {
		t.Error("empty work section rendered")
	}
}
