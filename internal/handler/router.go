package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/shopadmin/internal/authz"
	"github.com/shopkit/shopadmin/internal/middleware"
)

type RouterDeps struct {
	Auth          *AuthHandler
	Products      *ProductHandler
	Blogs         *BlogHandler
	Staff         *StaffHandler
	Files         *FileHandler
	JWTSecret     []byte
	RateLimitSpan time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	public := api.Group("")
	public.Use(middleware.RateLimit(deps.RateLimitSpan))
	public.POST("/register", deps.Auth.Register)
	public.POST("/verifyotp", deps.Auth.VerifyOTP)
	public.POST("/login", deps.Auth.Login)
	public.POST("/forgetpassword", deps.Auth.ForgetPassword)
	public.POST("/resetpassword", deps.Auth.ResetPassword)

	browse := api.Group("")
	browse.Use(middleware.OptionalAuth(deps.JWTSecret))
	browse.GET("/product", deps.Products.List)
	browse.GET("/product/:id", deps.Products.Show)
	browse.GET("/blogs", deps.Blogs.List)
	browse.GET("/blogs/:id", deps.Blogs.Show)

	staff := api.Group("")
	staff.Use(middleware.Auth(deps.JWTSecret))

	products := staff.Group("")
	products.Use(middleware.RequirePermission(authz.PermManageProducts))
	products.POST("/product", deps.Products.Create)
	products.POST("/product-update/:id", deps.Products.Update)
	products.DELETE("/product/:id", deps.Products.Delete)

	blogs := staff.Group("")
	blogs.Use(middleware.RequirePermission(authz.PermManageBlogs))
	blogs.POST("/blogs", deps.Blogs.Create)
	blogs.POST("/blogs-update/:id", deps.Blogs.Update)
	blogs.DELETE("/blogs/:id", deps.Blogs.Delete)

	manage := staff.Group("")
	manage.Use(middleware.RequirePermission(authz.PermManageUsers))
	manage.POST("/manageprofile", deps.Staff.Create)
	manage.GET("/manageprofile", deps.Staff.List)
	manage.GET("/manageprofile/:id", deps.Staff.Show)
	manage.POST("/manageprofile-update/:id", deps.Staff.Update)
	manage.DELETE("/manageprofile/:id", deps.Staff.Delete)

	api.GET("/files/*key", deps.Files.Serve)
}
