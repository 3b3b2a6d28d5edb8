package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/model"
	"github.com/shopkit/shopadmin/internal/pkg/response"
	"github.com/shopkit/shopadmin/internal/service"
)

type StaffHandler struct {
	staff   *service.StaffService
	store   filestore.Store
	baseURL string
}

func NewStaffHandler(staff *service.StaffService, store filestore.Store, baseURL string) *StaffHandler {
	return &StaffHandler{staff: staff, store: store, baseURL: baseURL}
}

func (h *StaffHandler) Create(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	passwd := c.PostForm("password")
	confirm := c.PostForm("password_confirmation")
	role := c.PostForm("role")
	switch {
	case name == "":
		response.Fail(c, http.StatusBadRequest, "The name field is required.")
		return
	case email == "":
		response.Fail(c, http.StatusBadRequest, "The email field is required.")
		return
	case role == "":
		response.Fail(c, http.StatusBadRequest, "The role field is required.")
		return
	case len(passwd) < 8:
		response.Fail(c, http.StatusBadRequest, "The password must be at least 8 characters.")
		return
	case passwd != confirm:
		response.Fail(c, http.StatusBadRequest, "The password confirmation does not match.")
		return
	}
	status := formString(c, "status")
	if !validStatus(status) {
		response.Fail(c, http.StatusBadRequest, "The selected status is invalid.")
		return
	}
	image, err := saveImage(c, h.store, "admin")
	if err != nil {
		handleError(c, err)
		return
	}
	acc, err := h.staff.Create(c.Request.Context(), service.StaffInput{
		Name:     name,
		Email:    email,
		Password: passwd,
		Role:     role,
		Phone:    formString(c, "phone"),
		Address:  formString(c, "address"),
		Image:    image,
		Status:   status,
	})
	if err != nil {
		discardImage(c, h.store, image)
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Staff profile created successfully.", h.render(c, acc))
}

func (h *StaffHandler) List(c *gin.Context) {
	q, page, all := listParams(c)
	total, err := h.staff.Count(c.Request.Context(), q.Search)
	if err != nil {
		handleError(c, err)
		return
	}
	items, err := h.staff.List(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	data := make([]gin.H, 0, len(items))
	for _, acc := range items {
		data = append(data, h.render(c, acc))
	}
	response.SuccessList(c, "Staff profiles retrieved successfully", data, paginationFor(q, page, all, total))
}

func (h *StaffHandler) Show(c *gin.Context) {
	acc, err := h.staff.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Staff profile retrieved successfully", h.render(c, acc))
}

func (h *StaffHandler) Update(c *gin.Context) {
	in := service.StaffUpdateInput{
		Name:    formString(c, "name"),
		Role:    formString(c, "role"),
		Phone:   formString(c, "phone"),
		Address: formString(c, "address"),
		Status:  formString(c, "status"),
	}
	if !validStatus(in.Status) {
		response.Fail(c, http.StatusBadRequest, "The selected status is invalid.")
		return
	}
	if passwd := formString(c, "password"); passwd != nil {
		if len(*passwd) < 8 {
			response.Fail(c, http.StatusBadRequest, "The password must be at least 8 characters.")
			return
		}
		if confirm := c.PostForm("password_confirmation"); confirm != *passwd {
			response.Fail(c, http.StatusBadRequest, "The password confirmation does not match.")
			return
		}
		in.Password = passwd
	}
	image, err := saveImage(c, h.store, "admin")
	if err != nil {
		handleError(c, err)
		return
	}
	in.Image = image
	acc, err := h.staff.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		discardImage(c, h.store, image)
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Staff profile updated successfully.", h.render(c, acc))
}

func (h *StaffHandler) Delete(c *gin.Context) {
	if err := h.staff.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Staff profile deleted successfully.", nil)
}

func (h *StaffHandler) render(c *gin.Context, acc *model.Account) gin.H {
	return gin.H{
		"id":      acc.ID,
		"name":    acc.Name,
		"email":   acc.Email,
		"phone":   acc.Phone,
		"address": acc.Address,
		"role":    acc.Role,
		"status":  acc.Status,
		"image":   assetURL(c, h.store, h.baseURL, acc.Image),
	}
}
