package document

// Default values for a freshly created resume. These match what the editor
// shows before the user has typed anything.
const (
	DefaultTemplate = "onyx"
	DefaultFont     = "IBM Plex Sans"
)

// New returns an empty resume with every fixed section present and visible,
// a default theme, and a single-page single-column layout covering the fixed
// section set.
func New() *Resume {
	return &Resume{
		Sections: Sections{
			Summary:        Summary{Name: "Summary", Visible: true},
			Profiles:       Section{Name: "Profiles", Visible: true},
			Experience:     Section{Name: "Experience", Visible: true},
			Education:      Section{Name: "Education", Visible: true},
			Projects:       Section{Name: "Projects", Visible: true},
			Volunteer:      Section{Name: "Volunteering", Visible: true},
			References:     Section{Name: "References", Visible: true},
			Skills:         Section{Name: "Skills", Visible: true},
			Interests:      Section{Name: "Interests", Visible: true},
			Certifications: Section{Name: "Certifications", Visible: true},
			Awards:         Section{Name: "Awards", Visible: true},
			Publications:   Section{Name: "Publications", Visible: true},
			Languages:      Section{Name: "Languages", Visible: true},
		},
		Metadata: Metadata{
			Template: DefaultTemplate,
			Layout:   DefaultLayout(),
			Theme: Theme{
				Primary:    "#dc2626",
				Background: "#ffffff",
				Text:       "#000000",
			},
			Typography: Typography{
				Font:       DefaultFont,
				Size:       14,
				LineHeight: 1.5,
			},
			Page: PageOptions{
				Format:          "a4",
				Margin:          18,
				ShowPageNumbers: false,
			},
		},
	}
}

// DefaultLayout returns one page with one column holding the fixed section
// keys in default order.
func DefaultLayout() Layout {
	return Layout{Page{Column(DefaultSectionOrder())}}
}
