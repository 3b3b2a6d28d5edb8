package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/shopkit/shopadmin/internal/model"
	"github.com/shopkit/shopadmin/internal/pkg/dbutil"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
)

const productColumns = "id, name, description, price, image, category, brand, rating, count_in_stock, num_reviews, status, state, ctime, mtime"

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	data := map[string]interface{}{
		"id":             p.ID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"image":          p.Image,
		"category":       p.Category,
		"brand":          p.Brand,
		"rating":         p.Rating,
		"count_in_stock": p.CountInStock,
		"num_reviews":    p.NumReviews,
		"status":         p.Status,
		"state":          model.StateNormal,
		"ctime":          p.Ctime,
		"mtime":          p.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("products", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	where := map[string]interface{}{"id": id, "state": model.StateNormal}
	sqlStr, args, err := builder.BuildSelect("products", where, strings.Split(productColumns, ", "))
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanProduct(rows)
}

func (r *ProductRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	where := map[string]interface{}{"id": id, "state": model.StateNormal}
	sqlStr, args, err := builder.BuildUpdate("products", where, fields)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) SoftDelete(ctx context.Context, id string, mtime int64) error {
	return r.Update(ctx, id, map[string]interface{}{"state": model.StateDeleted, "mtime": mtime})
}

func (r *ProductRepo) List(ctx context.Context, q model.ListQuery) ([]*model.Product, error) {
	sqlStr := "SELECT " + productColumns + " FROM products WHERE state = ?"
	args := []interface{}{model.StateNormal}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		sqlStr += " AND (name ILIKE ? OR brand ILIKE ? OR category ILIKE ?)"
		args = append(args, pattern, pattern, pattern)
	}
	sqlStr += " ORDER BY ctime " + orderKeyword(q.Order)
	if q.Limit > 0 {
		sqlStr += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepo) Count(ctx context.Context, search string) (int64, error) {
	sqlStr := "SELECT COUNT(*) FROM products WHERE state = ?"
	args := []interface{}{model.StateNormal}
	if search != "" {
		pattern := "%" + search + "%"
		sqlStr += " AND (name ILIKE ? OR brand ILIKE ? OR category ILIKE ?)"
		args = append(args, pattern, pattern, pattern)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var total int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanProduct(rows *sql.Rows) (*model.Product, error) {
	var p model.Product
	var description, image, category, brand sql.NullString
	var price, rating sql.NullFloat64
	var countInStock, numReviews sql.NullInt64
	if err := rows.Scan(&p.ID, &p.Name, &description, &price, &image, &category, &brand,
		&rating, &countInStock, &numReviews, &p.Status, &p.State, &p.Ctime, &p.Mtime); err != nil {
		return nil, err
	}
	p.Description = nullString(description)
	p.Image = nullString(image)
	p.Category = nullString(category)
	p.Brand = nullString(brand)
	if price.Valid {
		v := price.Float64
		p.Price = &v
	}
	if rating.Valid {
		v := rating.Float64
		p.Rating = &v
	}
	if countInStock.Valid {
		v := int(countInStock.Int64)
		p.CountInStock = &v
	}
	if numReviews.Valid {
		v := int(numReviews.Int64)
		p.NumReviews = &v
	}
	return &p, nil
}
