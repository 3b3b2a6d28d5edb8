package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/authz"
	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
	"github.com/shopkit/shopadmin/internal/pkg/password"
	"github.com/shopkit/shopadmin/internal/pkg/timeutil"
	"github.com/shopkit/shopadmin/internal/repo"
)

const (
	superAdminEmail    = "superadmin@superadmin.com"
	superAdminPassword = "12345678"
)

// Run inserts the bootstrap super admin account if it does not exist yet.
// Safe to run repeatedly.
func Run(ctx context.Context, accounts *repo.AccountRepo) error {
	if _, err := accounts.GetByEmail(ctx, model.PoolAdmin, superAdminEmail); err == nil {
		logutil.GetLogger(ctx).Info("super admin already present", zap.String("email", superAdminEmail))
		return nil
	} else if !appErr.IsNotFound(err) {
		return fmt.Errorf("check super admin: %w", err)
	}
	hash, err := password.Hash(superAdminPassword)
	if err != nil {
		return fmt.Errorf("hash super admin password: %w", err)
	}
	now := timeutil.NowUnix()
	role := authz.RoleSuperAdmin
	acc := &model.Account{
		ID:            newSeedID(),
		Pool:          model.PoolAdmin,
		Name:          "Super Admin",
		Email:         superAdminEmail,
		PasswordHash:  hash,
		Role:          &role,
		IsOtpVerified: true,
		Status:        model.StatusActive,
		State:         model.StateNormal,
		Ctime:         now,
		Mtime:         now,
	}
	if err := accounts.Create(ctx, acc); err != nil {
		if appErr.IsConflict(err) {
			return nil
		}
		return fmt.Errorf("create super admin: %w", err)
	}
	logutil.GetLogger(ctx).Info("super admin created", zap.String("email", superAdminEmail))
	return nil
}

func newSeedID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
