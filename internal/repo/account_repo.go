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

const accountColumns = "id, pool, name, email, password_hash, phone, address, image, role, otp_code, otp_expires_at, is_otp_verified, status, state, ctime, mtime"

var accountFields = strings.Split(accountColumns, ", ")

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Create(ctx context.Context, acc *model.Account) error {
	data := map[string]interface{}{
		"id":              acc.ID,
		"pool":            acc.Pool,
		"name":            acc.Name,
		"email":           acc.Email,
		"password_hash":   acc.PasswordHash,
		"phone":           acc.Phone,
		"address":         acc.Address,
		"image":           acc.Image,
		"role":            acc.Role,
		"otp_code":        acc.OtpCode,
		"otp_expires_at":  acc.OtpExpiresAt,
		"is_otp_verified": acc.IsOtpVerified,
		"status":          acc.Status,
		"state":           model.StateNormal,
		"ctime":           acc.Ctime,
		"mtime":           acc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("accounts", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, pool, email string) (*model.Account, error) {
	return r.getOne(ctx, map[string]interface{}{"pool": pool, "email": email, "state": model.StateNormal})
}

func (r *AccountRepo) GetByID(ctx context.Context, pool, id string) (*model.Account, error) {
	return r.getOne(ctx, map[string]interface{}{"pool": pool, "id": id, "state": model.StateNormal})
}

func (r *AccountRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Account, error) {
	sqlStr, args, err := builder.BuildSelect("accounts", where, accountFields)
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
	return scanAccount(rows)
}

// SetOTP stores a fresh challenge, overwriting any pending one.
func (r *AccountRepo) SetOTP(ctx context.Context, pool, email string, code int, expiresAt, mtime int64) error {
	return r.update(ctx,
		map[string]interface{}{"pool": pool, "email": email, "state": model.StateNormal},
		map[string]interface{}{"otp_code": code, "otp_expires_at": expiresAt, "mtime": mtime},
	)
}

// ConsumeOTP applies extra only when the stored challenge still matches code
// and has not expired, clearing both OTP fields in the same statement. It
// reports whether the update applied, so a concurrent consume of the same
// challenge loses cleanly instead of double-firing.
func (r *AccountRepo) ConsumeOTP(ctx context.Context, pool, email string, code int, now, mtime int64, extra map[string]interface{}) (bool, error) {
	where := map[string]interface{}{
		"pool":             pool,
		"email":            email,
		"otp_code":         code,
		"otp_expires_at >=": now,
		"state":            model.StateNormal,
	}
	update := map[string]interface{}{
		"otp_code":       nil,
		"otp_expires_at": nil,
		"mtime":          mtime,
	}
	for k, v := range extra {
		update[k] = v
	}
	sqlStr, args, err := builder.BuildUpdate("accounts", where, update)
	if err != nil {
		return false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *AccountRepo) Update(ctx context.Context, pool, id string, fields map[string]interface{}) error {
	return r.update(ctx,
		map[string]interface{}{"pool": pool, "id": id, "state": model.StateNormal},
		fields,
	)
}

func (r *AccountRepo) SoftDelete(ctx context.Context, pool, id string, mtime int64) error {
	return r.update(ctx,
		map[string]interface{}{"pool": pool, "id": id, "state": model.StateNormal},
		map[string]interface{}{"state": model.StateDeleted, "mtime": mtime},
	)
}

func (r *AccountRepo) update(ctx context.Context, where, fields map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("accounts", where, fields)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
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

func (r *AccountRepo) List(ctx context.Context, pool string, q model.ListQuery) ([]*model.Account, error) {
	sqlStr := "SELECT " + accountColumns + " FROM accounts WHERE pool = ? AND state = ?"
	args := []interface{}{pool, model.StateNormal}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		sqlStr += " AND (name ILIKE ? OR email ILIKE ?)"
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
	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (r *AccountRepo) Count(ctx context.Context, pool, search string) (int64, error) {
	sqlStr := "SELECT COUNT(*) FROM accounts WHERE pool = ? AND state = ?"
	args := []interface{}{pool, model.StateNormal}
	if search != "" {
		pattern := "%" + search + "%"
		sqlStr += " AND (name ILIKE ? OR email ILIKE ?)"
		args = append(args, pattern, pattern)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var total int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ClearExpiredOTP drops challenge pairs whose expiry lies before the cutoff.
func (r *AccountRepo) ClearExpiredOTP(ctx context.Context, before int64) (int64, error) {
	sqlStr, args := dbutil.Finalize(
		"UPDATE accounts SET otp_code = NULL, otp_expires_at = NULL WHERE otp_expires_at < ?",
		[]interface{}{before},
	)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanAccount(rows *sql.Rows) (*model.Account, error) {
	var acc model.Account
	var phone, address, image, role sql.NullString
	var otpCode sql.NullInt64
	var otpExpires sql.NullInt64
	if err := rows.Scan(&acc.ID, &acc.Pool, &acc.Name, &acc.Email, &acc.PasswordHash,
		&phone, &address, &image, &role, &otpCode, &otpExpires,
		&acc.IsOtpVerified, &acc.Status, &acc.State, &acc.Ctime, &acc.Mtime); err != nil {
		return nil, err
	}
	acc.Phone = nullString(phone)
	acc.Address = nullString(address)
	acc.Image = nullString(image)
	acc.Role = nullString(role)
	if otpCode.Valid {
		code := int(otpCode.Int64)
		acc.OtpCode = &code
	}
	if otpExpires.Valid {
		exp := otpExpires.Int64
		acc.OtpExpiresAt = &exp
	}
	return &acc, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func orderKeyword(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}
