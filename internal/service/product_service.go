package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/filestore"
	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
)

var ErrProductNotFound = appErr.WithMessage(appErr.ErrNotFound, "Product not found.")

type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id string, mtime int64) error
	List(ctx context.Context, q model.ListQuery) ([]*model.Product, error)
	Count(ctx context.Context, search string) (int64, error)
}

type ProductService struct {
	products ProductStore
	store    filestore.Store
	now      func() time.Time
}

func NewProductService(products ProductStore, store filestore.Store) *ProductService {
	return &ProductService{products: products, store: store, now: time.Now}
}

type ProductInput struct {
	Name         string
	Description  *string
	Price        *float64
	Image        *string
	Category     *string
	Brand        *string
	Rating       *float64
	CountInStock *int
	NumReviews   *int
	Status       *string
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	now := s.now().Unix()
	status := "active"
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	p := &model.Product{
		ID:           newID(),
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Image:        in.Image,
		Category:     in.Category,
		Brand:        in.Brand,
		Rating:       in.Rating,
		CountInStock: in.CountInStock,
		NumReviews:   in.NumReviews,
		Status:       status,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

type ProductUpdateInput struct {
	Name         *string
	Description  *string
	Price        *float64
	Image        *string
	Category     *string
	Brand        *string
	Rating       *float64
	CountInStock *int
	NumReviews   *int
	Status       *string
}

// Update applies the provided fields. A new image replaces and removes the
// previously stored object.
func (s *ProductService) Update(ctx context.Context, id string, in ProductUpdateInput) (*model.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{"mtime": s.now().Unix()}
	setIfString := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	setIfString("name", in.Name)
	setIfString("description", in.Description)
	setIfString("category", in.Category)
	setIfString("brand", in.Brand)
	setIfString("status", in.Status)
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if in.CountInStock != nil {
		fields["count_in_stock"] = *in.CountInStock
	}
	if in.NumReviews != nil {
		fields["num_reviews"] = *in.NumReviews
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	if err := s.products.Update(ctx, id, fields); err != nil {
		if appErr.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if in.Image != nil && current.Image != nil {
		s.removeImage(ctx, *current.Image)
	}
	return s.Get(ctx, id)
}

// Delete flags the product and removes its stored image as a cleanup side
// effect; the row itself is never purged.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, id, s.now().Unix()); err != nil {
		if appErr.IsNotFound(err) {
			return ErrProductNotFound
		}
		return err
	}
	if current.Image != nil {
		s.removeImage(ctx, *current.Image)
	}
	return nil
}

func (s *ProductService) List(ctx context.Context, q model.ListQuery) ([]*model.Product, error) {
	return s.products.List(ctx, q)
}

func (s *ProductService) Count(ctx context.Context, search string) (int64, error) {
	return s.products.Count(ctx, search)
}

func (s *ProductService) removeImage(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logutil.GetLogger(ctx).Warn("remove product image failed",
			zap.String("key", key), zap.Error(err))
	}
}
