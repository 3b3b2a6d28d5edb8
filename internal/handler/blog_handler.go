package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/model"
	"github.com/shopkit/shopadmin/internal/pkg/response"
	"github.com/shopkit/shopadmin/internal/service"
)

type BlogHandler struct {
	blogs   *service.BlogService
	store   filestore.Store
	baseURL string
}

func NewBlogHandler(blogs *service.BlogService, store filestore.Store, baseURL string) *BlogHandler {
	return &BlogHandler{blogs: blogs, store: store, baseURL: baseURL}
}

func (h *BlogHandler) List(c *gin.Context) {
	q, page, all := listParams(c)
	total, err := h.blogs.Count(c.Request.Context(), q.Search)
	if err != nil {
		handleError(c, err)
		return
	}
	items, err := h.blogs.List(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	data := make([]gin.H, 0, len(items))
	for _, b := range items {
		data = append(data, h.render(c, b, false))
	}
	response.SuccessList(c, "Blogs retrieved successfully", data, paginationFor(q, page, all, total))
}

func (h *BlogHandler) Show(c *gin.Context) {
	b, err := h.blogs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog retrieved successfully", h.render(c, b, true))
}

func (h *BlogHandler) Create(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		response.Fail(c, http.StatusBadRequest, "The title field is required.")
		return
	}
	in := service.BlogInput{
		Title:       title,
		Description: formString(c, "description"),
		Publisher:   formString(c, "publisher"),
		Date:        formString(c, "date"),
		Status:      formString(c, "status"),
	}
	if !validStatus(in.Status) {
		response.Fail(c, http.StatusBadRequest, "The selected status is invalid.")
		return
	}
	image, err := saveImage(c, h.store, "blogs")
	if err != nil {
		handleError(c, err)
		return
	}
	in.Image = image
	b, err := h.blogs.Create(c.Request.Context(), in)
	if err != nil {
		discardImage(c, h.store, image)
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Blog created successfully.", h.render(c, b, false))
}

func (h *BlogHandler) Update(c *gin.Context) {
	in := service.BlogUpdateInput{
		Title:       formString(c, "title"),
		Description: formString(c, "description"),
		Publisher:   formString(c, "publisher"),
		Date:        formString(c, "date"),
		Status:      formString(c, "status"),
	}
	if !validStatus(in.Status) {
		response.Fail(c, http.StatusBadRequest, "The selected status is invalid.")
		return
	}
	image, err := saveImage(c, h.store, "blogs")
	if err != nil {
		handleError(c, err)
		return
	}
	in.Image = image
	b, err := h.blogs.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		discardImage(c, h.store, image)
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog updated successfully.", h.render(c, b, false))
}

func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Blog deleted successfully.", nil)
}

func (h *BlogHandler) render(c *gin.Context, b *model.Blog, detail bool) gin.H {
	out := gin.H{
		"id":          b.ID,
		"title":       b.Title,
		"description": b.Description,
		"image":       assetURL(c, h.store, h.baseURL, b.Image),
		"publisher":   b.Publisher,
		"date":        b.Date,
		"status":      b.Status,
		"created_at":  b.Ctime,
		"updated_at":  b.Mtime,
	}
	if detail && b.Description != nil {
		out["description_html"] = h.blogs.RenderHTML(c.Request.Context(), *b.Description)
	}
	return out
}
