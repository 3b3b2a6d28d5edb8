package handler_test

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopkit/shopadmin/internal/authz"
)

func postForm(t *testing.T, router http.Handler, path, token string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// postFormWithImage posts multipart form fields with a small png attached
// under the "image" field.
func postFormWithImage(t *testing.T, router http.Handler, path, token string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// storedFiles lists the regular files currently held by the local store.
func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestProductCreateRequiresAuth(t *testing.T) {
	env := setupRouter(t)

	resp := postForm(t, env.router, "/api/v1/product", "", map[string]string{"name": "Widget", "price": "9.99"})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "Unauthenticated.", decodeBody(t, resp)["message"])

	// Authenticated regular users lack the manage-products permission.
	resp = postForm(t, env.router, "/api/v1/product", userToken(t), map[string]string{"name": "Widget", "price": "9.99"})
	require.Equal(t, http.StatusForbidden, resp.Code)
	require.Equal(t, "You do not have permission to perform this action.", decodeBody(t, resp)["message"])

	// Cashiers manage payments, not products.
	resp = postForm(t, env.router, "/api/v1/product", staffToken(t, authz.RoleCashier), map[string]string{"name": "Widget", "price": "9.99"})
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestProductCRUD(t *testing.T) {
	env := setupRouter(t)
	token := staffToken(t, authz.RoleManager)

	resp := postForm(t, env.router, "/api/v1/product", token, map[string]string{
		"name":  "Widget",
		"price": "19.99",
		"brand": "Acme",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	body := decodeBody(t, resp)
	require.Equal(t, "Product created successfully.", body["message"])
	data := body["data"].(map[string]interface{})
	id := data["id"].(string)
	require.NotEmpty(t, id)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/product/"+id, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = postForm(t, env.router, "/api/v1/product-update/"+id, token, map[string]string{"name": "Widget v2"})
	require.Equal(t, http.StatusOK, resp.Code)
	body = decodeBody(t, resp)
	require.Equal(t, "Product updated successfully.", body["message"])
	require.Equal(t, "Widget v2", body["data"].(map[string]interface{})["name"])

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/product/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Product deleted successfully.", decodeBody(t, rec)["message"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/product/"+id, nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product not found.", decodeBody(t, rec)["message"])
}

func TestProductCreateValidation(t *testing.T) {
	env := setupRouter(t)
	token := staffToken(t, authz.RoleAdmin)

	resp := postForm(t, env.router, "/api/v1/product", token, map[string]string{"price": "9.99"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postForm(t, env.router, "/api/v1/product", token, map[string]string{"name": "Widget", "price": "not-a-number"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProductUpdateUnknownIDDiscardsUpload(t *testing.T) {
	env := setupRouter(t)
	token := staffToken(t, authz.RoleManager)

	resp := postFormWithImage(t, env.router, "/api/v1/product-update/no-such-id", token, map[string]string{
		"name": "Widget v2",
	})
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Product not found.", decodeBody(t, resp)["message"])
	// The upload saved for the request must not linger in the store.
	require.Empty(t, storedFiles(t, env.storeDir))
}

func TestProductListEnvelope(t *testing.T) {
	env := setupRouter(t)
	token := staffToken(t, authz.RoleManager)

	for _, name := range []string{"A", "B", "C"} {
		resp := postForm(t, env.router, "/api/v1/product", token, map[string]string{"name": name, "price": "1.00"})
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/product?per_page=2&page=1", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message    string                   `json:"message"`
		Data       []map[string]interface{} `json:"data"`
		Pagination struct {
			LimitPage    int  `json:"limit_page"`
			TotalCount   int  `json:"total_count"`
			TotalPage    int  `json:"total_page"`
			CurrentPage  int  `json:"current_page"`
			NextPage     *int `json:"next_page"`
			PreviousPage *int `json:"previous_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Products retrieved successfully", body.Message)
	require.Len(t, body.Data, 2)
	require.Equal(t, 3, body.Pagination.TotalCount)
	require.Equal(t, 2, body.Pagination.TotalPage)
	require.NotNil(t, body.Pagination.NextPage)
	require.Nil(t, body.Pagination.PreviousPage)

	// page=0 returns everything in a single page.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/product?page=0", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	require.Equal(t, 1, body.Pagination.TotalPage)
	require.Nil(t, body.Pagination.NextPage)
}
