package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notekeeper/internal/model"
)

func registerTagRoutes(group *gin.RouterGroup, h *handler) {
	group.GET("/tags", h.listTags)
	group.POST("/tags", h.createTag)
	group.GET("/tags/:id", h.getTag)
	group.PUT("/tags/:id", h.updateTag)
	group.DELETE("/tags/:id", h.deleteTag)
}

type tagBody struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *handler) listTags(c *gin.Context) {
	respond(c, http.StatusOK, h.backend.ListTags())
}

func (h *handler) getTag(c *gin.Context) {
	tag, err := h.backend.GetTag(model.ID(c.Param("id")))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, tag)
}

// createTag answers with the new id only; clients fetch the tag after.
func (h *handler) createTag(c *gin.Context) {
	var body tagBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.backend.CreateTag(body.Name, body.Color)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, id)
}

func (h *handler) updateTag(c *gin.Context) {
	var body tagBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.backend.UpdateTag(model.ID(c.Param("id")), body.Name, body.Color); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *handler) deleteTag(c *gin.Context) {
	if err := h.backend.DeleteTag(model.ID(c.Param("id"))); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}
