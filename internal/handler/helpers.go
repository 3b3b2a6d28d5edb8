package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
	"github.com/shopkit/shopadmin/internal/pkg/response"
)

const (
	defaultPerPage = 10
	maxImageBytes  = 2048 * 1024
)

// handleError converts a service error into the uniform JSON envelope. The
// client-facing message rides on the error itself; anything unclassified is a
// 500 with the raw detail for diagnostics.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	msg := appErr.MessageOf(err)
	status := http.StatusInternalServerError
	switch {
	case appErr.IsNotFound(err):
		status = http.StatusNotFound
		if msg == "" {
			msg = "Not found."
		}
	case errors.Is(err, appErr.ErrUnauthorized):
		status = http.StatusUnauthorized
		if msg == "" {
			msg = "Unauthenticated."
		}
	case errors.Is(err, appErr.ErrForbidden):
		status = http.StatusForbidden
		if msg == "" {
			msg = "Forbidden."
		}
	case errors.Is(err, appErr.ErrInvalid), appErr.IsConflict(err):
		// Duplicate email surfaces as a validation failure, matching the
		// register contract.
		status = http.StatusBadRequest
		if msg == "" {
			msg = "Invalid request."
		}
	}
	if status == http.StatusInternalServerError {
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		response.FailDetail(c, status, "Something went wrong.", err.Error())
		return
	}
	response.Fail(c, status, msg)
}

// listParams reads the shared list query surface. page "0" is the sentinel
// for "return everything in one page".
func listParams(c *gin.Context) (q model.ListQuery, page int, all bool) {
	q.Search = c.Query("search")
	q.Order = c.DefaultQuery("order", "desc")
	page = 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}
	if page <= 0 {
		all = true
		page = 1
		return q, page, all
	}
	perPage := defaultPerPage
	if v := c.Query("per_page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			perPage = parsed
		}
	}
	q.Limit = perPage
	q.Offset = (page - 1) * perPage
	return q, page, all
}

// paginationFor resolves the sentinel page against the total count.
func paginationFor(q model.ListQuery, page int, all bool, total int64) response.Pagination {
	limit := q.Limit
	if all {
		limit = int(total)
		page = 1
	}
	return response.NewPagination(limit, total, page)
}

// saveImage stores an optional uploaded image under prefix and returns its
// key. A request without an image yields (nil, nil).
func saveImage(c *gin.Context, store filestore.Store, prefix string) (*string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, appErr.WithMessage(appErr.ErrInvalid, "The image failed to upload.")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, appErr.WithMessage(appErr.ErrInvalid, "The image must be a file of type: jpg, jpeg, png.")
	}
	if file.Size > maxImageBytes {
		return nil, appErr.WithMessage(appErr.ErrInvalid, "The image may not be greater than 2048 kilobytes.")
	}
	opened, err := file.Open()
	if err != nil {
		return nil, appErr.WithMessage(appErr.ErrInvalid, "The image failed to upload.")
	}
	defer opened.Close()
	key := prefix + "/" + uuid.NewString() + ext
	if err := store.Save(c.Request.Context(), key, opened, file.Size); err != nil {
		return nil, err
	}
	return &key, nil
}

// discardImage removes an upload saved earlier in a request that ultimately
// failed, so the store does not accumulate unreferenced files.
func discardImage(c *gin.Context, store filestore.Store, key *string) {
	if key == nil {
		return
	}
	if err := store.Delete(c.Request.Context(), *key); err != nil {
		logutil.GetLogger(c.Request.Context()).Warn("remove unreferenced upload failed",
			zap.String("key", *key), zap.Error(err))
	}
}

// assetURL rewrites a stored key to an absolute URL for responses.
func assetURL(c *gin.Context, store filestore.Store, baseURL string, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	base := baseURL
	if base == "" {
		base = requestBaseURL(c)
	}
	u := store.URL(*key, base)
	return &u
}

func requestBaseURL(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		if c.Request.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}

func formString(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

func formFloat(c *gin.Context, key string) (*float64, bool) {
	v, ok := c.GetPostForm(key)
	if !ok || v == "" {
		return nil, true
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func formInt(c *gin.Context, key string) (*int, bool) {
	v, ok := c.GetPostForm(key)
	if !ok || v == "" {
		return nil, true
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func validStatus(v *string) bool {
	if v == nil || *v == "" {
		return true
	}
	switch *v {
	case model.StatusActive, model.StatusInactive, model.StatusPending:
		return true
	}
	return false
}
