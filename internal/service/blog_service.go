package service

import (
	"bytes"
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
)

var ErrBlogNotFound = appErr.WithMessage(appErr.ErrNotFound, "Blog not found or inactive.")

type BlogStore interface {
	Create(ctx context.Context, b *model.Blog) error
	GetActiveByID(ctx context.Context, id string) (*model.Blog, error)
	GetByID(ctx context.Context, id string) (*model.Blog, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id string, mtime int64) error
	List(ctx context.Context, q model.ListQuery) ([]*model.Blog, error)
	Count(ctx context.Context, search string) (int64, error)
}

type BlogService struct {
	blogs BlogStore
	store filestore.Store
	md    goldmark.Markdown
	now   func() time.Time
}

func NewBlogService(blogs BlogStore, store filestore.Store) *BlogService {
	return &BlogService{
		blogs: blogs,
		store: store,
		md:    goldmark.New(),
		now:   time.Now,
	}
}

type BlogInput struct {
	Title       string
	Description *string
	Image       *string
	Publisher   *string
	Date        *string
	Status      *string
}

func (s *BlogService) Create(ctx context.Context, in BlogInput) (*model.Blog, error) {
	now := s.now().Unix()
	status := "active"
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	b := &model.Blog{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Publisher:   in.Publisher,
		Date:        in.Date,
		Status:      status,
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.blogs.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get resolves an active blog for the public surface.
func (s *BlogService) Get(ctx context.Context, id string) (*model.Blog, error) {
	b, err := s.blogs.GetActiveByID(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return b, nil
}

// RenderHTML turns the stored markdown description into HTML for the detail
// response. Rendering failures fall back to the raw text.
func (s *BlogService) RenderHTML(ctx context.Context, description string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(description), &buf); err != nil {
		logutil.GetLogger(ctx).Warn("render blog markdown failed", zap.Error(err))
		return description
	}
	return buf.String()
}

type BlogUpdateInput struct {
	Title       *string
	Description *string
	Image       *string
	Publisher   *string
	Date        *string
	Status      *string
}

func (s *BlogService) Update(ctx context.Context, id string, in BlogUpdateInput) (*model.Blog, error) {
	current, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	fields := map[string]interface{}{"mtime": s.now().Unix()}
	setIfString := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	setIfString("title", in.Title)
	setIfString("description", in.Description)
	setIfString("publisher", in.Publisher)
	setIfString("date", in.Date)
	setIfString("status", in.Status)
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	if err := s.blogs.Update(ctx, id, fields); err != nil {
		if appErr.IsNotFound(err) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	if in.Image != nil && current.Image != nil {
		if err := s.store.Delete(ctx, *current.Image); err != nil {
			logutil.GetLogger(ctx).Warn("remove blog image failed",
				zap.String("key", *current.Image), zap.Error(err))
		}
	}
	return s.blogs.GetByID(ctx, id)
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.blogs.SoftDelete(ctx, id, s.now().Unix()); err != nil {
		if appErr.IsNotFound(err) {
			return ErrBlogNotFound
		}
		return err
	}
	return nil
}

func (s *BlogService) List(ctx context.Context, q model.ListQuery) ([]*model.Blog, error) {
	return s.blogs.List(ctx, q)
}

func (s *BlogService) Count(ctx context.Context, search string) (int64, error) {
	return s.blogs.Count(ctx, search)
}
