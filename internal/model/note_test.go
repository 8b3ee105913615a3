package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteLocation(t *testing.T) {
	assert.Equal(t, LocationActive, Note{}.Location())
	assert.Equal(t, LocationArchived, Note{IsArchived: true}.Location())
	assert.Equal(t, LocationTrashed, Note{IsDeleted: true}.Location())

	both := Note{IsDeleted: true, IsArchived: true}
	assert.Equal(t, LocationTrashed, both.Location())
	assert.True(t, both.Conflicted())
}

func TestDedupTags(t *testing.T) {
	assert.Equal(t, []ID{"a", "b", "c"}, DedupTags([]ID{"a", "b", "a", "c", "b"}))
	assert.Nil(t, DedupTags(nil))
}

func TestPatchApplyDoesNotAlias(t *testing.T) {
	n := Note{ID: "1", Name: "old", Tags: []ID{"x"}, NotebookID: "nb"}
	p := PatchOf(n)
	p.Name = "new"
	p.Tags = append(p.Tags, "y")

	got := p.Apply(n)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, ID("nb"), got.NotebookID)
	assert.Equal(t, []ID{"x", "y"}, got.Tags)
	assert.Equal(t, []ID{"x"}, n.Tags)
}

func TestPriorityLabel(t *testing.T) {
	tests := map[int]string{
		0: "none",
		1: "none",
		2: "low",
		3: "medium",
		4: "high",
		9: "none",
	}
	for order, want := range tests {
		assert.Equal(t, want, PriorityLabel(order), "order %d", order)
	}
}
