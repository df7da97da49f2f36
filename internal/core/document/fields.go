package document

import (
	"fmt"
	"strconv"
)

// BasicsField selects one scalar field of Basics for a targeted update.
type BasicsField string

const (
	BasicsName     BasicsField = "name"
	BasicsHeadline BasicsField = "headline"
	BasicsEmail    BasicsField = "email"
	BasicsPhone    BasicsField = "phone"
	BasicsLocation BasicsField = "location"
	BasicsURL      BasicsField = "url"
	BasicsPicture  BasicsField = "picture"
)

// Set writes value into the selected field.
func (f BasicsField) Set(b *Basics, value string) error {
	switch f {
	case BasicsName:
		b.Name = value
	case BasicsHeadline:
		b.Headline = value
	case BasicsEmail:
		b.Email = value
	case BasicsPhone:
		b.Phone = value
	case BasicsLocation:
		b.Location = value
	case BasicsURL:
		b.URL = value
	case BasicsPicture:
		b.Picture = value
	default:
		return fmt.Errorf("unknown basics field %q", string(f))
	}
	return nil
}

// MetadataField selects one scalar field of Metadata for a targeted update.
// Template, theme, and layout have dedicated operations on the store.
type MetadataField string

const (
	MetadataNotes       MetadataField = "notes"
	MetadataPageFormat  MetadataField = "page.format"
	MetadataPageMargin  MetadataField = "page.margin"
	MetadataPageNumbers MetadataField = "page.showPageNumbers"
	MetadataFont        MetadataField = "typography.font"
	MetadataFontSize    MetadataField = "typography.size"
	MetadataLineHeight  MetadataField = "typography.lineHeight"
)

// Set writes value into the selected field. Numeric and boolean fields parse
// the value and reject bad input before anything is written.
func (f MetadataField) Set(m *Metadata, value string) error {
	switch f {
	case MetadataNotes:
		m.Notes = value
	case MetadataPageFormat:
		m.Page.Format = value
	case MetadataPageMargin:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("metadata field %q wants an integer: %w", string(f), err)
		}
		m.Page.Margin = n
	case MetadataPageNumbers:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("metadata field %q wants a boolean: %w", string(f), err)
		}
		m.Page.ShowPageNumbers = b
	case MetadataFont:
		m.Typography.Font = value
	case MetadataFontSize:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("metadata field %q wants a number: %w", string(f), err)
		}
		m.Typography.Size = v
	case MetadataLineHeight:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("metadata field %q wants a number: %w", string(f), err)
		}
		m.Typography.LineHeight = v
	default:
		return fmt.Errorf("unknown metadata field %q", string(f))
	}
	return nil
}

// Apply merges the non-nil fields of the patch into the theme.
func (p ThemePatch) Apply(t *Theme) {
	if p.Primary != nil {
		t.Primary = *p.Primary
	}
	if p.Background != nil {
		t.Background = *p.Background
	}
	if p.Text != nil {
		t.Text = *p.Text
	}
}
