package document

import "strings"

// SectionKey identifies a section inside a resume. The fixed keys below form a
// closed set; custom sections use the "custom.<id>" form and enter the known
// set when the section is created.
type SectionKey string

const (
	KeySummary        SectionKey = "summary"
	KeyProfiles       SectionKey = "profiles"
	KeyExperience     SectionKey = "experience"
	KeyEducation      SectionKey = "education"
	KeyProjects       SectionKey = "projects"
	KeyVolunteer      SectionKey = "volunteer"
	KeyReferences     SectionKey = "references"
	KeySkills         SectionKey = "skills"
	KeyInterests      SectionKey = "interests"
	KeyCertifications SectionKey = "certifications"
	KeyAwards         SectionKey = "awards"
	KeyPublications   SectionKey = "publications"
	KeyLanguages      SectionKey = "languages"
)

const customPrefix = "custom."

// DefaultSectionOrder returns the fixed section keys in their default
// placement order. Custom keys always sort after the fixed set.
func DefaultSectionOrder() []SectionKey {
	return []SectionKey{
		KeySummary,
		KeyProfiles,
		KeyExperience,
		KeyEducation,
		KeyProjects,
		KeyVolunteer,
		KeyReferences,
		KeySkills,
		KeyInterests,
		KeyCertifications,
		KeyAwards,
		KeyPublications,
		KeyLanguages,
	}
}

// IsCustom reports whether the key names a custom section.
func (k SectionKey) IsCustom() bool {
	return strings.HasPrefix(string(k), customPrefix)
}

// CustomID returns the identifier part of a custom key, or "" for fixed keys.
func (k SectionKey) CustomID() string {
	if !k.IsCustom() {
		return ""
	}
	return strings.TrimPrefix(string(k), customPrefix)
}

// CustomKey builds the section key for a custom section id.
func CustomKey(id string) SectionKey {
	return SectionKey(customPrefix + id)
}

// IsFixed reports whether the key belongs to the closed set of built-in
// sections.
func (k SectionKey) IsFixed() bool {
	for _, fixed := range DefaultSectionOrder() {
		if k == fixed {
			return true
		}
	}
	return false
}
