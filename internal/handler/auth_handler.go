package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/pkg/response"
	"github.com/shopkit/shopadmin/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailDetail(c, http.StatusBadRequest, "The given data was invalid.", err.Error())
		return
	}
	acc, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated,
		"User registered successfully. Please check your email for the OTP to verify your account.",
		gin.H{"type": "user", "name": acc.Name, "email": acc.Email})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	OTP   string `json:"otp" binding:"required,len=4,numeric"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailDetail(c, http.StatusBadRequest, "The given data was invalid.", err.Error())
		return
	}
	code, _ := strconv.Atoi(req.OTP)
	already, err := h.auth.VerifyOTP(c.Request.Context(), req.Email, code)
	if err != nil {
		handleError(c, err)
		return
	}
	if already {
		response.Success(c, http.StatusOK, "Account already verified.", nil)
		return
	}
	response.Success(c, http.StatusOK, "OTP verified successfully", nil)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailDetail(c, http.StatusBadRequest, "The given data was invalid.", err.Error())
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged in",
		"data": gin.H{
			"type":  result.Type,
			"name":  result.Name,
			"email": result.Email,
		},
		"token": result.Token,
	})
}

type forgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailDetail(c, http.StatusBadRequest, "The given data was invalid.", err.Error())
		return
	}
	if err := h.auth.ForgetPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK,
		"Password reset OTP sent to your email. It is valid for 10 minutes.", nil)
}

type resetPasswordRequest struct {
	Email                string `json:"email" binding:"required,email,max=255"`
	OTP                  string `json:"otp" binding:"required,len=4,numeric"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailDetail(c, http.StatusBadRequest, "The given data was invalid.", err.Error())
		return
	}
	code, _ := strconv.Atoi(req.OTP)
	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, code, req.Password); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password reset successfully", nil)
}
