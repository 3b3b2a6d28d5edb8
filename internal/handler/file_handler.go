package handler

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/pkg/response"
)

// FileHandler serves stored images back to clients. It only makes sense for
// stores without a public URL of their own, s3-backed deployments should set
// public_url instead.
type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		response.Fail(c, http.StatusNotFound, "File not found.")
		return
	}
	f, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		response.Fail(c, http.StatusNotFound, "File not found.")
		return
	}
	defer f.Close()
	ctype := mime.TypeByExtension(path.Ext(key))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	c.Header("Content-Type", ctype)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}
