package mockapi

import "github.com/nhle/notekeeper/internal/model"

// Seed fills the backend with a small demo data set: two notebooks, three
// tags and notes in every collection.
func Seed(b *Backend) {
	work, _ := b.CreateNotebook("Work", "Meetings and plans")
	home, _ := b.CreateNotebook("Home", "")

	urgent, _ := b.CreateTag("urgent", "#FF6B6B")
	idea, _ := b.CreateTag("idea", "#FFD93D")
	_, _ = b.CreateTag("reading", "#5B9BD5")

	b.CreateNote(model.Note{
		Name:       "Weekly sync",
		Text:       "# Weekly sync\n\n- review **open** items\n- plan next sprint\n",
		Order:      model.PriorityHigh,
		NotebookID: work.ID,
		Tags:       []model.ID{urgent},
	})
	b.CreateNote(model.Note{
		Text:       "# Garden\n\nPlant tomatoes after the last frost.",
		Order:      model.PriorityLow,
		NotebookID: home.ID,
		Tags:       []model.ID{idea},
	})
	b.CreateNote(model.Note{Name: "Scratch", Text: "Quick thoughts go here."})

	old := b.CreateNote(model.Note{Name: "Q1 retro", Text: "Done and dusted.", NotebookID: work.ID})
	_, _ = b.UpdateNote(old.ID, func(n *model.Note) { n.IsArchived = true })

	junk := b.CreateNote(model.Note{Name: "Old list", Text: "- milk\n- eggs"})
	_, _ = b.UpdateNote(junk.ID, func(n *model.Note) { n.IsDeleted = true })
}
