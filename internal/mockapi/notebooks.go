package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notekeeper/internal/model"
)

func registerNotebookRoutes(group *gin.RouterGroup, h *handler) {
	group.GET("/notebooks", h.listNotebooks)
	group.POST("/notebooks", h.createNotebook)
	group.GET("/notebooks/:id", h.getNotebook)
	group.PUT("/notebooks/:id", h.updateNotebook)
	group.DELETE("/notebooks/:id", h.deleteNotebook)
}

type notebookRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *handler) listNotebooks(c *gin.Context) {
	respond(c, http.StatusOK, h.backend.ListNotebooks())
}

func (h *handler) getNotebook(c *gin.Context) {
	nb, err := h.backend.GetNotebook(model.ID(c.Param("id")))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, nb)
}

func (h *handler) createNotebook(c *gin.Context) {
	var body notebookRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	nb, err := h.backend.CreateNotebook(body.Name, body.Description)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, nb)
}

func (h *handler) updateNotebook(c *gin.Context) {
	var body notebookRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	nb, err := h.backend.UpdateNotebook(model.ID(c.Param("id")), body.Name, body.Description)
	if err != nil {
		failErr(c, err)
		return
	}
	h.respondEntity(c, http.StatusOK, nb)
}

func (h *handler) deleteNotebook(c *gin.Context) {
	if err := h.backend.DeleteNotebook(model.ID(c.Param("id"))); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
