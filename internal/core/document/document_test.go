package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	doc := New()
	doc.Basics.Name = "Ada Lovelace"
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", parsed.Basics.Name)
	assert.Equal(t, DefaultTemplate, parsed.Metadata.Template)
}

func TestParseRejectsMissingAggregates(t *testing.T) {
	cases := map[string]string{
		"empty object":     `{}`,
		"missing metadata": `{"basics":{},"sections":{}}`,
		"missing sections": `{"basics":{},"metadata":{}}`,
		"null basics":      `{"basics":null,"sections":{},"metadata":{}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"basics":`))
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	doc := New()
	doc.Sections.Experience.Items = []Item{{ID: "a", Visible: true, Data: map[string]any{"company": "Initech"}}}
	doc.Sections.SetCustom("x1", Section{Name: "Extras", Visible: true})

	cp := doc.Clone()
	cp.Sections.Experience.Items[0].Data["company"] = "changed"
	cp.Metadata.Layout[0][0][0] = "changed"
	cp.Sections.SetCustom("x2", Section{Name: "More"})

	assert.Equal(t, "Initech", doc.Sections.Experience.Items[0].Data["company"])
	assert.Equal(t, KeySummary, doc.Metadata.Layout[0][0][0])
	assert.NotContains(t, doc.Sections.Custom, "x2")
}

func TestKnownSectionKeysIncludesCustomSorted(t *testing.T) {
	doc := New()
	doc.Sections.SetCustom("zeta", Section{Name: "Zeta"})
	doc.Sections.SetCustom("alpha", Section{Name: "Alpha"})

	keys := doc.KnownSectionKeys()
	fixed := DefaultSectionOrder()
	require.Len(t, keys, len(fixed)+2)
	assert.Equal(t, fixed, keys[:len(fixed)])
	assert.Equal(t, CustomKey("alpha"), keys[len(fixed)])
	assert.Equal(t, CustomKey("zeta"), keys[len(fixed)+1])
}

func TestSectionsUpdateWritesCustomBack(t *testing.T) {
	var s Sections
	s.SetCustom("c1", Section{Name: "Side Projects", Visible: true})

	err := s.Update(CustomKey("c1"), func(sec *Section) error {
		sec.Items = append(sec.Items, Item{ID: "i1", Visible: true})
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, s.Custom["c1"].Items, 1)
}

func TestSectionsUpdateUnknownKey(t *testing.T) {
	var s Sections
	err := s.Update("summary", func(*Section) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownSection)

	err = s.Update(CustomKey("ghost"), func(*Section) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestBasicsFieldSet(t *testing.T) {
	var b Basics
	require.NoError(t, BasicsName.Set(&b, "Ada"))
	require.NoError(t, BasicsEmail.Set(&b, "ada@example.com"))
	assert.Equal(t, "Ada", b.Name)
	assert.Equal(t, "ada@example.com", b.Email)

	assert.Error(t, BasicsField("nope").Set(&b, "x"))
}

func TestMetadataFieldSetCoversTypographyAndPage(t *testing.T) {
	var m Metadata
	require.NoError(t, MetadataNotes.Set(&m, "draft"))
	require.NoError(t, MetadataPageFormat.Set(&m, "letter"))
	require.NoError(t, MetadataPageMargin.Set(&m, "24"))
	require.NoError(t, MetadataPageNumbers.Set(&m, "true"))
	require.NoError(t, MetadataFont.Set(&m, "Lato"))
	require.NoError(t, MetadataFontSize.Set(&m, "12.5"))
	require.NoError(t, MetadataLineHeight.Set(&m, "1.4"))

	assert.Equal(t, "draft", m.Notes)
	assert.Equal(t, "letter", m.Page.Format)
	assert.Equal(t, 24, m.Page.Margin)
	assert.True(t, m.Page.ShowPageNumbers)
	assert.Equal(t, "Lato", m.Typography.Font)
	assert.Equal(t, 12.5, m.Typography.Size)
	assert.Equal(t, 1.4, m.Typography.LineHeight)
}

func TestMetadataFieldSetRejectsBadInput(t *testing.T) {
	m := Metadata{Page: PageOptions{Margin: 18}, Typography: Typography{Size: 14}}

	assert.Error(t, MetadataPageMargin.Set(&m, "wide"))
	assert.Error(t, MetadataPageNumbers.Set(&m, "maybe"))
	assert.Error(t, MetadataFontSize.Set(&m, "big"))
	assert.Error(t, MetadataLineHeight.Set(&m, ""))
	assert.Error(t, MetadataField("nope").Set(&m, "x"))

	// Rejected input writes nothing.
	assert.Equal(t, 18, m.Page.Margin)
	assert.Equal(t, float64(14), m.Typography.Size)
}

func TestThemePatchApply(t *testing.T) {
	th := Theme{Primary: "#111111", Background: "#ffffff", Text: "#000000"}
	primary := "#dc2626"
	ThemePatch{Primary: &primary}.Apply(&th)
	assert.Equal(t, "#dc2626", th.Primary)
	assert.Equal(t, "#ffffff", th.Background)
}

func TestLayoutSerializesAsNestedArrays(t *testing.T) {
	l := Layout{Page{Column{KeySummary, KeyExperience}, Column{KeySkills}}}
	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `[[["summary","experience"],["skills"]]]`, string(data))
}
