package service

import (
	"context"
	"time"

	"github.com/shopkit/shopadmin/internal/authz"
	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
	"github.com/shopkit/shopadmin/internal/pkg/password"
)

var (
	ErrStaffNotFound = appErr.WithMessage(appErr.ErrNotFound, "Staff profile not found.")
	ErrInvalidRole   = appErr.WithMessage(appErr.ErrInvalid, "The selected role is invalid.")
)

// StaffService manages admin-pool accounts. Staff accounts skip the OTP flow
// and are created verified.
type StaffService struct {
	accounts AccountStore
	now      func() time.Time
}

func NewStaffService(accounts AccountStore) *StaffService {
	return &StaffService{accounts: accounts, now: time.Now}
}

type StaffInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    *string
	Address  *string
	Image    *string
	Status   *string
}

func (s *StaffService) Create(ctx context.Context, in StaffInput) (*model.Account, error) {
	if !emailRe.MatchString(in.Email) {
		return nil, ErrInvalidEmail
	}
	if !authz.ValidStaffRole(in.Role) {
		return nil, ErrInvalidRole
	}
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	status := model.StatusActive
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	role := in.Role
	acc := &model.Account{
		ID:            newID(),
		Pool:          model.PoolAdmin,
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  hash,
		Phone:         in.Phone,
		Address:       in.Address,
		Image:         in.Image,
		Role:          &role,
		IsOtpVerified: true,
		Status:        status,
		Ctime:         now,
		Mtime:         now,
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if appErr.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return acc, nil
}

func (s *StaffService) Get(ctx context.Context, id string) (*model.Account, error) {
	acc, err := s.accounts.GetByID(ctx, model.PoolAdmin, id)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return acc, nil
}

type StaffUpdateInput struct {
	Name     *string
	Password *string
	Role     *string
	Phone    *string
	Address  *string
	Image    *string
	Status   *string
}

func (s *StaffService) Update(ctx context.Context, id string, in StaffUpdateInput) (*model.Account, error) {
	if in.Role != nil && !authz.ValidStaffRole(*in.Role) {
		return nil, ErrInvalidRole
	}
	fields := map[string]interface{}{"mtime": s.now().Unix()}
	setIfString := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	setIfString("name", in.Name)
	setIfString("role", in.Role)
	setIfString("phone", in.Phone)
	setIfString("address", in.Address)
	setIfString("image", in.Image)
	setIfString("status", in.Status)
	if in.Password != nil {
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	if err := s.accounts.Update(ctx, model.PoolAdmin, id, fields); err != nil {
		if appErr.IsNotFound(err) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *StaffService) Delete(ctx context.Context, id string) error {
	if err := s.accounts.SoftDelete(ctx, model.PoolAdmin, id, s.now().Unix()); err != nil {
		if appErr.IsNotFound(err) {
			return ErrStaffNotFound
		}
		return err
	}
	return nil
}

func (s *StaffService) List(ctx context.Context, q model.ListQuery) ([]*model.Account, error) {
	return s.accounts.List(ctx, model.PoolAdmin, q)
}

func (s *StaffService) Count(ctx context.Context, search string) (int64, error) {
	return s.accounts.Count(ctx, model.PoolAdmin, search)
}
