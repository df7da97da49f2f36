// Package document defines the resume aggregate: basics, sections, and
// metadata, including the page/column layout that controls visual placement.
// The document is a plain value; all lifecycle concerns (dirty tracking,
// persistence) live in the store.
package document

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Basics holds the scalar profile fields of a resume.
type Basics struct {
	Name     string `json:"name" yaml:"name"`
	Headline string `json:"headline" yaml:"headline"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	URL      string `json:"url" yaml:"url"`
	Picture  string `json:"picture" yaml:"picture"`
}

// Item is a single entry inside an item-bearing section. Every item carries a
// unique ID and its own visibility flag.
type Item struct {
	ID      string         `json:"id"`
	Visible bool           `json:"visible"`
	Data    map[string]any `json:"data,omitempty"`
}

// Section is a named, orderable collection of items with a visibility flag.
type Section struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Items   []Item `json:"items"`
}

// Summary is the special single-content section.
type Summary struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Content string `json:"content"`
}

// Sections groups the fixed set of named collections, the summary, and the
// open-ended map of custom sections keyed by custom id.
type Sections struct {
	Summary        Summary            `json:"summary"`
	Profiles       Section            `json:"profiles"`
	Experience     Section            `json:"experience"`
	Education      Section            `json:"education"`
	Projects       Section            `json:"projects"`
	Volunteer      Section            `json:"volunteer"`
	References     Section            `json:"references"`
	Skills         Section            `json:"skills"`
	Interests      Section            `json:"interests"`
	Certifications Section            `json:"certifications"`
	Awards         Section            `json:"awards"`
	Publications   Section            `json:"publications"`
	Languages      Section            `json:"languages"`
	Custom         map[string]Section `json:"custom,omitempty"`
}

// Column is an ordered list of section keys placed in one visual column.
type Column []SectionKey

// Page is an ordered list of columns.
type Page []Column

// Layout is the ordered list of pages controlling visual placement.
// A missing or empty layout means "default single-column arrangement".
type Layout []Page

// Theme holds the color scheme.
type Theme struct {
	Primary    string `json:"primary"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// ThemePatch carries a partial theme update; nil fields are left untouched.
type ThemePatch struct {
	Primary    *string `json:"primary,omitempty"`
	Background *string `json:"background,omitempty"`
	Text       *string `json:"text,omitempty"`
}

// Typography holds font settings.
type Typography struct {
	Font       string  `json:"font"`
	Size       float64 `json:"size"`
	LineHeight float64 `json:"lineHeight"`
}

// PageOptions holds page-level rendering configuration.
type PageOptions struct {
	Format          string `json:"format"`
	Margin          int    `json:"margin"`
	ShowPageNumbers bool   `json:"showPageNumbers"`
}

// Metadata holds everything about a resume that is not content: the chosen
// template, the layout, theme, typography, page configuration, and free-text
// notes.
type Metadata struct {
	Template   string      `json:"template"`
	Layout     Layout      `json:"layout"`
	Theme      Theme       `json:"theme"`
	Typography Typography  `json:"typography"`
	Page       PageOptions `json:"page"`
	Notes      string      `json:"notes"`
}

// Resume is the aggregate root.
type Resume struct {
	Basics   Basics   `json:"basics"`
	Sections Sections `json:"sections"`
	Metadata Metadata `json:"metadata"`
}

// ErrUnknownSection is returned when a section key does not resolve to an
// item-bearing section of this document.
var ErrUnknownSection = fmt.Errorf("unknown section")

// Lookup returns a copy of the item-bearing section for key. The summary
// pseudo-section has no items and is not addressable here.
func (s *Sections) Lookup(key SectionKey) (Section, bool) {
	ptr, ok := s.section(key)
	if !ok {
		return Section{}, false
	}
	return ptr.clone(), true
}

// Update applies fn to the section for key in place. Custom sections are
// written back to the map after fn returns.
func (s *Sections) Update(key SectionKey, fn func(*Section) error) error {
	if key.IsCustom() {
		sec, ok := s.Custom[key.CustomID()]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSection, key)
		}
		if err := fn(&sec); err != nil {
			return err
		}
		s.SetCustom(key.CustomID(), sec)
		return nil
	}
	ptr, ok := s.section(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, key)
	}
	return fn(ptr)
}

func (s *Sections) section(key SectionKey) (*Section, bool) {
	switch key {
	case KeyProfiles:
		return &s.Profiles, true
	case KeyExperience:
		return &s.Experience, true
	case KeyEducation:
		return &s.Education, true
	case KeyProjects:
		return &s.Projects, true
	case KeyVolunteer:
		return &s.Volunteer, true
	case KeyReferences:
		return &s.References, true
	case KeySkills:
		return &s.Skills, true
	case KeyInterests:
		return &s.Interests, true
	case KeyCertifications:
		return &s.Certifications, true
	case KeyAwards:
		return &s.Awards, true
	case KeyPublications:
		return &s.Publications, true
	case KeyLanguages:
		return &s.Languages, true
	}
	if key.IsCustom() {
		if sec, ok := s.Custom[key.CustomID()]; ok {
			// Map values are not addressable; callers must write back
			// through SetCustom (Update does).
			cp := sec
			return &cp, true
		}
	}
	return nil, false
}

// SetCustom stores a custom section under its id, creating the map on first
// use.
func (s *Sections) SetCustom(id string, sec Section) {
	if s.Custom == nil {
		s.Custom = make(map[string]Section)
	}
	s.Custom[id] = sec
}

// KnownSectionKeys returns every section key the document knows about: the
// fixed set in default order followed by custom keys in sorted order.
func (r *Resume) KnownSectionKeys() []SectionKey {
	keys := DefaultSectionOrder()
	custom := make([]string, 0, len(r.Sections.Custom))
	for id := range r.Sections.Custom {
		custom = append(custom, id)
	}
	sort.Strings(custom)
	for _, id := range custom {
		keys = append(keys, CustomKey(id))
	}
	return keys
}

// Clone returns a deep copy of the resume. The copy shares no mutable state
// with the original.
func (r *Resume) Clone() *Resume {
	cp := *r
	cp.Sections = r.Sections.clone()
	cp.Metadata.Layout = r.Metadata.Layout.Clone()
	return &cp
}

func (s Sections) clone() Sections {
	cp := s
	cp.Profiles = s.Profiles.clone()
	cp.Experience = s.Experience.clone()
	cp.Education = s.Education.clone()
	cp.Projects = s.Projects.clone()
	cp.Volunteer = s.Volunteer.clone()
	cp.References = s.References.clone()
	cp.Skills = s.Skills.clone()
	cp.Interests = s.Interests.clone()
	cp.Certifications = s.Certifications.clone()
	cp.Awards = s.Awards.clone()
	cp.Publications = s.Publications.clone()
	cp.Languages = s.Languages.clone()
	if s.Custom != nil {
		cp.Custom = make(map[string]Section, len(s.Custom))
		for id, sec := range s.Custom {
			cp.Custom[id] = sec.clone()
		}
	}
	return cp
}

func (s Section) clone() Section {
	cp := s
	if s.Items != nil {
		cp.Items = make([]Item, len(s.Items))
		for i, it := range s.Items {
			cp.Items[i] = it.clone()
		}
	}
	return cp
}

func (it Item) clone() Item {
	cp := it
	if it.Data != nil {
		cp.Data = make(map[string]any, len(it.Data))
		for k, v := range it.Data {
			cp.Data[k] = v
		}
	}
	return cp
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	cp := make(Layout, len(l))
	for i, page := range l {
		cp[i] = page.Clone()
	}
	return cp
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	if p == nil {
		return nil
	}
	cp := make(Page, len(p))
	for i, col := range p {
		cp[i] = append(Column(nil), col...)
	}
	return cp
}

// Parse deserializes and structurally validates a stored record. A record
// that decodes but lacks basics, sections, or metadata is corrupted, not
// absent; the caller must not treat it as a fresh document.
func Parse(data []byte) (*Resume, error) {
	var probe struct {
		Basics   *Basics   `json:"basics"`
		Sections *Sections `json:"sections"`
		Metadata *Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode resume: %w", err)
	}
	if probe.Basics == nil || probe.Sections == nil || probe.Metadata == nil {
		return nil, fmt.Errorf("resume record is structurally invalid: missing basics, sections, or metadata")
	}
	var r Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode resume: %w", err)
	}
	return &r, nil
}
