package mockapi

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notekeeper/internal/model"
)

func registerNoteRoutes(group *gin.RouterGroup, h *handler) {
	group.GET("/notes", h.listNotes)
	group.POST("/notes", h.createNote)
	group.GET("/notes/trash", h.listTrash)
	group.GET("/notes/archive", h.listArchive)
	group.POST("/notes/tag", h.listNotesByTags)
	group.GET("/notes/group/:notebookId", h.listNotesByNotebook)

	group.GET("/notes/:id", h.getNote)
	group.PUT("/notes/:id", h.updateNote)
	group.DELETE("/notes/:id", h.deleteNote)

	group.DELETE("/notes/trash/:id", h.setFlag(func(n *model.Note) { n.IsDeleted = true }))
	group.GET("/notes/trash/:id", h.setFlag(func(n *model.Note) { n.IsDeleted = false }))
	group.DELETE("/notes/archive/:id", h.setFlag(func(n *model.Note) { n.IsArchived = true }))
	group.GET("/notes/archive/:id", h.setFlag(func(n *model.Note) { n.IsArchived = false }))

	group.PUT("/notes/notebook/:id", h.changeNotebook)
	group.PUT("/notes/tag/:id", h.addTag)
	group.PATCH("/notes/tag/:id", h.removeTag)
}

func (h *handler) listNotes(c *gin.Context) {
	respond(c, http.StatusOK, h.backend.ListNotes(Active))
}

func (h *handler) listTrash(c *gin.Context) {
	respond(c, http.StatusOK, h.backend.ListNotes(Trashed))
}

func (h *handler) listArchive(c *gin.Context) {
	respond(c, http.StatusOK, h.backend.ListNotes(Archived))
}

func (h *handler) listNotesByNotebook(c *gin.Context) {
	notebookID := model.ID(c.Param("notebookId"))
	respond(c, http.StatusOK, h.backend.ListNotes(func(n model.Note) bool {
		return n.NotebookID == notebookID && !n.IsDeleted
	}))
}

func (h *handler) listNotesByTags(c *gin.Context) {
	var body struct {
		Tags []model.ID `json:"tags"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	respond(c, http.StatusOK, h.backend.ListNotes(func(n model.Note) bool {
		if n.IsDeleted {
			return false
		}
		return slices.ContainsFunc(body.Tags, n.HasTag)
	}))
}

func (h *handler) getNote(c *gin.Context) {
	note, err := h.backend.GetNote(model.ID(c.Param("id")))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, note)
}

func (h *handler) createNote(c *gin.Context) {
	var note model.Note
	if err := c.ShouldBindJSON(&note); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if note.Order == 0 {
		note.Order = model.PriorityNone
	}
	// Creation always answers with the entity: the client needs the id.
	respond(c, http.StatusCreated, h.backend.CreateNote(note))
}

func (h *handler) updateNote(c *gin.Context) {
	var patch model.NotePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	patch.Tags = model.DedupTags(patch.Tags)
	if patch.Tags == nil {
		patch.Tags = []model.ID{}
	}

	note, err := h.backend.UpdateNote(model.ID(c.Param("id")), func(n *model.Note) {
		*n = patch.Apply(*n)
	})
	if err != nil {
		failErr(c, err)
		return
	}
	h.respondEntity(c, http.StatusOK, note)
}

func (h *handler) deleteNote(c *gin.Context) {
	if err := h.backend.DeleteNote(model.ID(c.Param("id"))); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *handler) setFlag(fn func(*model.Note)) gin.HandlerFunc {
	return func(c *gin.Context) {
		note, err := h.backend.UpdateNote(model.ID(c.Param("id")), fn)
		if err != nil {
			failErr(c, err)
			return
		}
		h.respondEntity(c, http.StatusOK, note)
	}
}

func (h *handler) changeNotebook(c *gin.Context) {
	var body struct {
		NotebookID model.ID `json:"notebook_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.backend.UpdateNote(model.ID(c.Param("id")), func(n *model.Note) {
		n.NotebookID = body.NotebookID
	})
	if err != nil {
		failErr(c, err)
		return
	}
	h.respondEntity(c, http.StatusOK, note)
}

type tagRequest struct {
	TagID model.ID `json:"tag_id"`
}

func (h *handler) addTag(c *gin.Context) {
	var body tagRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.TagID.IsZero() {
		fail(c, http.StatusBadRequest, "tag_id is required")
		return
	}

	note, err := h.backend.UpdateNote(model.ID(c.Param("id")), func(n *model.Note) {
		if !n.HasTag(body.TagID) {
			n.Tags = append(n.Tags, body.TagID)
		}
	})
	if err != nil {
		failErr(c, err)
		return
	}
	h.respondEntity(c, http.StatusOK, note)
}

func (h *handler) removeTag(c *gin.Context) {
	var body tagRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.TagID.IsZero() {
		fail(c, http.StatusBadRequest, "tag_id is required")
		return
	}

	note, err := h.backend.UpdateNote(model.ID(c.Param("id")), func(n *model.Note) {
		n.Tags = slices.DeleteFunc(n.Tags, func(id model.ID) bool { return id == body.TagID })
	})
	if err != nil {
		failErr(c, err)
		return
	}
	h.respondEntity(c, http.StatusOK, note)
}
