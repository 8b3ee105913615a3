package model

import "slices"

// Location is the collection a note belongs to on the client.
type Location int

const (
	LocationActive Location = iota
	LocationArchived
	LocationTrashed
)

// String returns the lowercase location name.
func (l Location) String() string {
	switch l {
	case LocationArchived:
		return "archived"
	case LocationTrashed:
		return "trashed"
	default:
		return "active"
	}
}

// Note is a user-authored markdown document.
type Note struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Text       string `json:"text"`
	Color      string `json:"color"`
	Order      int    `json:"order"`
	IsDeleted  bool   `json:"is_deleted"`
	IsArchived bool   `json:"is_archived"`
	NotebookID ID     `json:"notebook_id"`
	Tags       []ID   `json:"tags"`
}

// NotePatch is the set of fields a note update sends to the server.
type NotePatch struct {
	Name  string `json:"name"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Order int    `json:"order"`
	Tags  []ID   `json:"tags"`
}

// PatchOf returns a patch carrying the note's editable fields.
func PatchOf(n Note) NotePatch {
	return NotePatch{
		Name:  n.Name,
		Text:  n.Text,
		Color: n.Color,
		Order: n.Order,
		Tags:  slices.Clone(n.Tags),
	}
}

// Apply returns a copy of n with the patch fields written over it.
func (p NotePatch) Apply(n Note) Note {
	n.Name = p.Name
	n.Text = p.Text
	n.Color = p.Color
	n.Order = p.Order
	n.Tags = slices.Clone(p.Tags)
	return n
}

// HasTag reports whether the note carries tagID.
func (n Note) HasTag(tagID ID) bool {
	return slices.Contains(n.Tags, tagID)
}

// Location places the note by its flags. A note flagged both deleted and
// archived is treated as trashed.
func (n Note) Location() Location {
	switch {
	case n.IsDeleted:
		return LocationTrashed
	case n.IsArchived:
		return LocationArchived
	default:
		return LocationActive
	}
}

// Conflicted reports whether both lifecycle flags are set at once.
func (n Note) Conflicted() bool {
	return n.IsDeleted && n.IsArchived
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	n.Tags = slices.Clone(n.Tags)
	return n
}

// DedupTags removes repeated tag ids, keeping the first occurrence.
func DedupTags(ids []ID) []ID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[ID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
