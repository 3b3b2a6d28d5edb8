package handler_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/shopkit/shopadmin/internal/config"
	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/handler"
	"github.com/shopkit/shopadmin/internal/middleware"
	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
	"github.com/shopkit/shopadmin/internal/pkg/jwt"
	"github.com/shopkit/shopadmin/internal/service"
)

var testJWTSecret = []byte("test-secret")

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[string]*model.Account)}
}

func (f *memAccounts) key(pool, email string) string { return pool + "|" + email }

func (f *memAccounts) Create(ctx context.Context, acc *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(acc.Pool, acc.Email)
	if _, ok := f.accounts[k]; ok {
		return appErr.ErrConflict
	}
	cp := *acc
	f.accounts[k] = &cp
	return nil
}

func (f *memAccounts) GetByEmail(ctx context.Context, pool, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[f.key(pool, email)]
	if !ok || acc.State == model.StateDeleted {
		return nil, appErr.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (f *memAccounts) GetByID(ctx context.Context, pool, id string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.Pool == pool && acc.ID == id && acc.State != model.StateDeleted {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (f *memAccounts) SetOTP(ctx context.Context, pool, email string, code int, expiresAt, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[f.key(pool, email)]
	if !ok {
		return appErr.ErrNotFound
	}
	acc.OtpCode = &code
	acc.OtpExpiresAt = &expiresAt
	acc.Mtime = mtime
	return nil
}

func (f *memAccounts) ConsumeOTP(ctx context.Context, pool, email string, code int, now, mtime int64, extra map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[f.key(pool, email)]
	if !ok || acc.OtpCode == nil || *acc.OtpCode != code {
		return false, nil
	}
	if acc.OtpExpiresAt == nil || *acc.OtpExpiresAt < now {
		return false, nil
	}
	acc.OtpCode = nil
	acc.OtpExpiresAt = nil
	acc.Mtime = mtime
	for col, v := range extra {
		switch col {
		case "is_otp_verified":
			acc.IsOtpVerified = v.(bool)
		case "status":
			acc.Status = v.(string)
		case "password_hash":
			acc.PasswordHash = v.(string)
		}
	}
	return true, nil
}

func (f *memAccounts) Update(ctx context.Context, pool, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.Pool == pool && acc.ID == id && acc.State != model.StateDeleted {
			for col, v := range fields {
				switch col {
				case "name":
					acc.Name = v.(string)
				case "status":
					acc.Status = v.(string)
				case "password_hash":
					acc.PasswordHash = v.(string)
				case "role":
					role := v.(string)
					acc.Role = &role
				case "mtime":
					acc.Mtime = v.(int64)
				}
			}
			return nil
		}
	}
	return appErr.ErrNotFound
}

func (f *memAccounts) SoftDelete(ctx context.Context, pool, id string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acc := range f.accounts {
		if acc.Pool == pool && acc.ID == id && acc.State != model.StateDeleted {
			acc.State = model.StateDeleted
			acc.Mtime = mtime
			return nil
		}
	}
	return appErr.ErrNotFound
}

func (f *memAccounts) List(ctx context.Context, pool string, q model.ListQuery) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Account
	for _, acc := range f.accounts {
		if acc.Pool != pool || acc.State == model.StateDeleted {
			continue
		}
		cp := *acc
		out = append(out, &cp)
	}
	return out, nil
}

func (f *memAccounts) Count(ctx context.Context, pool, search string) (int64, error) {
	items, _ := f.List(ctx, pool, model.ListQuery{})
	return int64(len(items)), nil
}

func (f *memAccounts) otpFor(pool, email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[f.key(pool, email)]
	if !ok || acc.OtpCode == nil {
		return 0
	}
	return *acc.OtpCode
}

type memProducts struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newMemProducts() *memProducts {
	return &memProducts{products: make(map[string]*model.Product)}
}

func (f *memProducts) Create(ctx context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *memProducts) GetByID(ctx context.Context, id string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.State == model.StateDeleted {
		return nil, appErr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *memProducts) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.State == model.StateDeleted {
		return appErr.ErrNotFound
	}
	for col, v := range fields {
		switch col {
		case "name":
			p.Name = v.(string)
		case "price":
			price := v.(float64)
			p.Price = &price
		case "image":
			img := v.(string)
			p.Image = &img
		case "status":
			p.Status = v.(string)
		case "mtime":
			p.Mtime = v.(int64)
		}
	}
	return nil
}

func (f *memProducts) SoftDelete(ctx context.Context, id string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.State == model.StateDeleted {
		return appErr.ErrNotFound
	}
	p.State = model.StateDeleted
	p.Mtime = mtime
	return nil
}

func (f *memProducts) List(ctx context.Context, q model.ListQuery) ([]*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Product
	for _, p := range f.products {
		if p.State == model.StateDeleted {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	if q.Limit > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		end := q.Offset + q.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[q.Offset:end]
	}
	return out, nil
}

func (f *memProducts) Count(ctx context.Context, search string) (int64, error) {
	items, _ := f.List(ctx, model.ListQuery{})
	return int64(len(items)), nil
}

type memBlogs struct {
	mu    sync.Mutex
	blogs map[string]*model.Blog
}

func newMemBlogs() *memBlogs {
	return &memBlogs{blogs: make(map[string]*model.Blog)}
}

func (f *memBlogs) Create(ctx context.Context, b *model.Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.blogs[b.ID] = &cp
	return nil
}

func (f *memBlogs) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok || b.State == model.StateDeleted {
		return nil, appErr.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *memBlogs) GetActiveByID(ctx context.Context, id string) (*model.Blog, error) {
	b, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != "active" {
		return nil, appErr.ErrNotFound
	}
	return b, nil
}

func (f *memBlogs) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok || b.State == model.StateDeleted {
		return appErr.ErrNotFound
	}
	for col, v := range fields {
		switch col {
		case "title":
			b.Title = v.(string)
		case "description":
			desc := v.(string)
			b.Description = &desc
		case "status":
			b.Status = v.(string)
		case "mtime":
			b.Mtime = v.(int64)
		}
	}
	return nil
}

func (f *memBlogs) SoftDelete(ctx context.Context, id string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok || b.State == model.StateDeleted {
		return appErr.ErrNotFound
	}
	b.State = model.StateDeleted
	b.Mtime = mtime
	return nil
}

func (f *memBlogs) List(ctx context.Context, q model.ListQuery) ([]*model.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Blog
	for _, b := range f.blogs {
		if b.State == model.StateDeleted || b.Status != "active" {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (f *memBlogs) Count(ctx context.Context, search string) (int64, error) {
	items, _ := f.List(ctx, model.ListQuery{})
	return int64(len(items)), nil
}

type noopSender struct{}

func (noopSender) Send(to, subject, htmlBody string) error { return nil }

type testEnv struct {
	router   http.Handler
	accounts *memAccounts
	products *memProducts
	blogs    *memBlogs
	storeDir string
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := newMemAccounts()
	products := newMemProducts()
	blogs := newMemBlogs()

	storeDir := t.TempDir()
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": storeDir},
	})
	require.NoError(t, err)

	authService := service.NewAuthService(accounts, noopSender{}, testJWTSecret, time.Hour)
	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Products:  handler.NewProductHandler(service.NewProductService(products, store), store, "http://api.test"),
		Blogs:     handler.NewBlogHandler(service.NewBlogService(blogs, store), store, "http://api.test"),
		Staff:     handler.NewStaffHandler(service.NewStaffService(accounts), store, "http://api.test"),
		Files:     handler.NewFileHandler(store),
		JWTSecret: testJWTSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(),
		),
	)
	require.NoError(t, err)

	return &testEnv{router: engine, accounts: accounts, products: products, blogs: blogs, storeDir: storeDir}
}

func staffToken(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.GenerateToken("staff-1", model.PoolAdmin, role, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.GenerateToken("user-1", model.PoolUser, "user", testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}
