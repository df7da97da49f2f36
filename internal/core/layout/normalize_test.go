package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvforge/cvforge/internal/core/document"
)

func known(keys ...document.SectionKey) []document.SectionKey { return keys }

func col(keys ...document.SectionKey) document.Column { return keys }

func TestNormalizeEmptyInput(t *testing.T) {
	ks := known("summary", "experience", "skills")
	got := Normalize(nil, ks)
	require.Len(t, got, 1)
	assert.Equal(t, col("summary", "experience", "skills"), got[0])
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	ks := known("summary", "skills")
	got := Normalize([]document.Column{col("summary", "stale", "skills")}, ks)
	assert.Equal(t, []document.Column{col("summary", "skills")}, got)
}

func TestNormalizeCollapsesDuplicatesFirstSeenWins(t *testing.T) {
	ks := known("a", "b")
	got := Normalize([]document.Column{col("a", "a", "b")}, ks)
	assert.Equal(t, []document.Column{col("a", "b")}, got)

	// Across columns: the earlier column keeps the key.
	got = Normalize([]document.Column{col("a"), col("a", "b")}, ks)
	assert.Equal(t, []document.Column{col("a"), col("b")}, got)
}

func TestNormalizeAppendsMissingToLastColumn(t *testing.T) {
	ks := known("summary", "experience", "skills", "education")
	got := Normalize([]document.Column{col("summary", "experience"), col("skills")}, ks)
	require.Len(t, got, 2)
	assert.Equal(t, col("summary", "experience"), got[0])
	assert.Equal(t, col("skills", "education"), got[1])
}

func TestNormalizeIdempotent(t *testing.T) {
	ks := known("summary", "experience", "skills", "education")
	inputs := [][]document.Column{
		nil,
		{col()},
		{col("skills", "skills", "bogus"), col("summary")},
		{col("education"), col(), col("summary", "experience")},
	}
	for _, in := range inputs {
		once := Normalize(in, ks)
		twice := Normalize(once, ks)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeUnionEqualsKnownSet(t *testing.T) {
	ks := known("a", "b", "c", "d")
	got := Normalize([]document.Column{col("c", "z", "a"), col("a")}, ks)

	seen := map[document.SectionKey]int{}
	for _, c := range got {
		for _, k := range c {
			seen[k]++
		}
	}
	require.Len(t, seen, len(ks))
	for _, k := range ks {
		assert.Equal(t, 1, seen[k], "key %s", k)
	}
}

func TestNormalizeAlwaysYieldsAtLeastOneColumn(t *testing.T) {
	got := Normalize([]document.Column{}, known("a"))
	require.NotEmpty(t, got)
	assert.Equal(t, col("a"), got[0])
}
