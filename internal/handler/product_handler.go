package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/model"
	"github.com/shopkit/shopadmin/internal/pkg/response"
	"github.com/shopkit/shopadmin/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
	store    filestore.Store
	baseURL  string
}

func NewProductHandler(products *service.ProductService, store filestore.Store, baseURL string) *ProductHandler {
	return &ProductHandler{products: products, store: store, baseURL: baseURL}
}

func (h *ProductHandler) List(c *gin.Context) {
	q, page, all := listParams(c)
	total, err := h.products.Count(c.Request.Context(), q.Search)
	if err != nil {
		handleError(c, err)
		return
	}
	items, err := h.products.List(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	data := make([]gin.H, 0, len(items))
	for _, p := range items {
		data = append(data, h.render(c, p))
	}
	response.SuccessList(c, "Products retrieved successfully", data, paginationFor(q, page, all, total))
}

func (h *ProductHandler) Show(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Product retrieved successfully", h.render(c, p))
}

func (h *ProductHandler) Create(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		response.Fail(c, http.StatusBadRequest, "The name field is required.")
		return
	}
	in := service.ProductInput{Name: name}
	var ok bool
	if in.Price, ok = formFloat(c, "price"); !ok {
		response.Fail(c, http.StatusBadRequest, "The price must be a number.")
		return
	}
	if in.Price == nil {
		response.Fail(c, http.StatusBadRequest, "The price field is required.")
		return
	}
	if in.Rating, ok = formFloat(c, "rating"); !ok {
		response.Fail(c, http.StatusBadRequest, "The rating must be a number.")
		return
	}
	if in.CountInStock, ok = formInt(c, "count_in_stock"); !ok {
		response.Fail(c, http.StatusBadRequest, "The count in stock must be an integer.")
		return
	}
	if in.NumReviews, ok = formInt(c, "num_reviews"); !ok {
		response.Fail(c, http.StatusBadRequest, "The num reviews must be an integer.")
		return
	}
	in.Description = formString(c, "description")
	in.Category = formString(c, "category")
	in.Brand = formString(c, "brand")
	in.Status = formString(c, "status")
	if !validStatus(in.Status) {
		response.Fail(c, http.StatusBadRequest, "The selected status is invalid.")
		return
	}
	image, err := saveImage(c, h.store, "products")
	if err != nil {
		handleError(c, err)
		return
	}
	in.Image = image
	p, err := h.products.Create(c.Request.Context(), in)
	if err != nil {
		discardImage(c, h.store, image)
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Product created successfully.", h.render(c, p))
}

func (h *ProductHandler) Update(c *gin.Context) {
	in := service.ProductUpdateInput{}
	var ok bool
	if in.Price, ok = formFloat(c, "price"); !ok {
		response.Fail(c, http.StatusBadRequest, "The price must be a number.")
		return
	}
	if in.Rating, ok = formFloat(c, "rating"); !ok {
		response.Fail(c, http.StatusBadRequest, "The rating must be a number.")
		return
	}
	if in.CountInStock, ok = formInt(c, "count_in_stock"); !ok {
		response.Fail(c, http.StatusBadRequest, "The count in stock must be an integer.")
		return
	}
	if in.NumReviews, ok = formInt(c, "num_reviews"); !ok {
		response.Fail(c, http.StatusBadRequest, "The num reviews must be an integer.")
		return
	}
	in.Name = formString(c, "name")
	in.Description = formString(c, "description")
	in.Category = formString(c, "category")
	in.Brand = formString(c, "brand")
	in.Status = formString(c, "status")
	if !validStatus(in.Status) {
		response.Fail(c, http.StatusBadRequest, "The selected status is invalid.")
		return
	}
	image, err := saveImage(c, h.store, "products")
	if err != nil {
		handleError(c, err)
		return
	}
	in.Image = image
	p, err := h.products.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		discardImage(c, h.store, image)
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Product updated successfully.", h.render(c, p))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Product deleted successfully.", nil)
}

func (h *ProductHandler) render(c *gin.Context, p *model.Product) gin.H {
	return gin.H{
		"id":             p.ID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"image":          assetURL(c, h.store, h.baseURL, p.Image),
		"category":       p.Category,
		"brand":          p.Brand,
		"rating":         p.Rating,
		"count_in_stock": p.CountInStock,
		"num_reviews":    p.NumReviews,
		"status":         p.Status,
		"created_at":     p.Ctime,
		"updated_at":     p.Mtime,
	}
}
