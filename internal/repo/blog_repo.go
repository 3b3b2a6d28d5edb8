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

const blogColumns = "id, title, description, image, publisher, date, status, state, ctime, mtime"

type BlogRepo struct {
	db *sql.DB
}

func NewBlogRepo(db *sql.DB) *BlogRepo {
	return &BlogRepo{db: db}
}

func (r *BlogRepo) Create(ctx context.Context, b *model.Blog) error {
	data := map[string]interface{}{
		"id":          b.ID,
		"title":       b.Title,
		"description": b.Description,
		"image":       b.Image,
		"publisher":   b.Publisher,
		"date":        b.Date,
		"status":      b.Status,
		"state":       model.StateNormal,
		"ctime":       b.Ctime,
		"mtime":       b.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("blogs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// GetActiveByID resolves a blog for the public surface, so inactive rows are
// treated the same as missing ones.
func (r *BlogRepo) GetActiveByID(ctx context.Context, id string) (*model.Blog, error) {
	return r.getOne(ctx, map[string]interface{}{"id": id, "status": "active", "state": model.StateNormal})
}

func (r *BlogRepo) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	return r.getOne(ctx, map[string]interface{}{"id": id, "state": model.StateNormal})
}

func (r *BlogRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Blog, error) {
	sqlStr, args, err := builder.BuildSelect("blogs", where, strings.Split(blogColumns, ", "))
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
	return scanBlog(rows)
}

func (r *BlogRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	where := map[string]interface{}{"id": id, "state": model.StateNormal}
	sqlStr, args, err := builder.BuildUpdate("blogs", where, fields)
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

func (r *BlogRepo) SoftDelete(ctx context.Context, id string, mtime int64) error {
	return r.Update(ctx, id, map[string]interface{}{"state": model.StateDeleted, "mtime": mtime})
}

func (r *BlogRepo) List(ctx context.Context, q model.ListQuery) ([]*model.Blog, error) {
	sqlStr := "SELECT " + blogColumns + " FROM blogs WHERE status = ? AND state = ?"
	args := []interface{}{"active", model.StateNormal}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		sqlStr += " AND (title ILIKE ? OR publisher ILIKE ?)"
		args = append(args, pattern, pattern)
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
	var blogs []*model.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

func (r *BlogRepo) Count(ctx context.Context, search string) (int64, error) {
	sqlStr := "SELECT COUNT(*) FROM blogs WHERE status = ? AND state = ?"
	args := []interface{}{"active", model.StateNormal}
	if search != "" {
		pattern := "%" + search + "%"
		sqlStr += " AND (title ILIKE ? OR publisher ILIKE ?)"
		args = append(args, pattern, pattern)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var total int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanBlog(rows *sql.Rows) (*model.Blog, error) {
	var b model.Blog
	var description, image, publisher, date sql.NullString
	if err := rows.Scan(&b.ID, &b.Title, &description, &image, &publisher, &date,
		&b.Status, &b.State, &b.Ctime, &b.Mtime); err != nil {
		return nil, err
	}
	b.Description = nullString(description)
	b.Image = nullString(image)
	b.Publisher = nullString(publisher)
	b.Date = nullString(date)
	return &b, nil
}
