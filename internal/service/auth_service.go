package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/authz"
	"github.com/shopkit/shopadmin/internal/mail"
	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
	"github.com/shopkit/shopadmin/internal/pkg/jwt"
	"github.com/shopkit/shopadmin/internal/pkg/password"
)

const (
	otpMin = 1000
	otpMax = 9999
	otpTTL = 10 * time.Minute
)

// loginPools is the fixed priority order. The first pool with a credential
// match wins even when the same email exists in both.
var loginPools = []string{model.PoolAdmin, model.PoolUser}

var emailRe = regexp.MustCompile(`^[\w.\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound          = appErr.WithMessage(appErr.ErrNotFound, "User not found")
	ErrEmailTaken            = appErr.WithMessage(appErr.ErrConflict, "The email has already been taken.")
	ErrInvalidEmail          = appErr.WithMessage(appErr.ErrInvalid, "The email must be a valid email address.")
	ErrNoPendingVerification = appErr.WithMessage(appErr.ErrInvalid, "No pending OTP verification for this user.")
	ErrNoPendingReset        = appErr.WithMessage(appErr.ErrInvalid, "No pending password reset for this user.")
	ErrInvalidOTP            = appErr.WithMessage(appErr.ErrInvalid, "Invalid OTP")
	ErrOTPExpired            = appErr.WithMessage(appErr.ErrInvalid, "OTP has expired")
	ErrInvalidCredentials    = appErr.WithMessage(appErr.ErrUnauthorized, "Invalid credentials")
	ErrAccountNotVerified    = appErr.WithMessage(appErr.ErrForbidden, "Account is not verified. Please verify your OTP.")
	ErrTokenIssue            = appErr.WithMessage(appErr.ErrInternal, "Could not create token")
)

// AccountStore is the persistence surface the auth and staff services need.
// *repo.AccountRepo implements it.
type AccountStore interface {
	Create(ctx context.Context, acc *model.Account) error
	GetByEmail(ctx context.Context, pool, email string) (*model.Account, error)
	GetByID(ctx context.Context, pool, id string) (*model.Account, error)
	SetOTP(ctx context.Context, pool, email string, code int, expiresAt, mtime int64) error
	ConsumeOTP(ctx context.Context, pool, email string, code int, now, mtime int64, extra map[string]interface{}) (bool, error)
	Update(ctx context.Context, pool, id string, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, pool, id string, mtime int64) error
	List(ctx context.Context, pool string, q model.ListQuery) ([]*model.Account, error)
	Count(ctx context.Context, pool, search string) (int64, error)
}

type AuthService struct {
	accounts  AccountStore
	mailer    mail.Sender
	jwtSecret []byte
	jwtTTL    time.Duration
	now       func() time.Time
}

func NewAuthService(accounts AccountStore, mailer mail.Sender, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		accounts:  accounts,
		mailer:    mailer,
		jwtSecret: secret,
		jwtTTL:    ttl,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a pending, unverified user-pool account with a fresh OTP
// challenge. The challenge is persisted before Register returns; the mail
// dispatch is fire and forget.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	if !emailRe.MatchString(in.Email) {
		return nil, ErrInvalidEmail
	}
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := generateOTP()
	if err != nil {
		return nil, err
	}
	now := s.now()
	expiresAt := now.Add(otpTTL).Unix()
	acc := &model.Account{
		ID:           newID(),
		Pool:         model.PoolUser,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		OtpCode:      &code,
		OtpExpiresAt: &expiresAt,
		Status:       model.StatusPending,
		Ctime:        now.Unix(),
		Mtime:        now.Unix(),
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		if appErr.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.dispatchMail(acc.Email, mail.RegisterSubject, mail.RegisterOTPBody(acc.Name, code))
	return acc, nil
}

// VerifyOTP runs the ordered challenge checks and, when they pass, marks the
// account verified and active while clearing both OTP fields in one
// conditional update. The already return distinguishes the idempotent no-op on
// an account that verified earlier.
func (s *AuthService) VerifyOTP(ctx context.Context, email string, code int) (already bool, err error) {
	acc, err := s.accounts.GetByEmail(ctx, model.PoolUser, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if acc.IsOtpVerified {
		return true, nil
	}
	if err := checkChallenge(acc, code, s.now().Unix(), ErrNoPendingVerification); err != nil {
		return false, err
	}
	now := s.now().Unix()
	applied, err := s.accounts.ConsumeOTP(ctx, model.PoolUser, email, code, now, now, map[string]interface{}{
		"is_otp_verified": true,
		"status":          model.StatusActive,
	})
	if err != nil {
		return false, err
	}
	if !applied {
		// A concurrent attempt consumed the challenge first.
		return false, ErrInvalidOTP
	}
	return false, nil
}

type LoginResult struct {
	Type  string
	Name  string
	Email string
	Token string
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*LoginResult, error) {
	for _, pool := range loginPools {
		acc, err := s.accounts.GetByEmail(ctx, pool, email)
		if err != nil {
			if appErr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if password.Compare(acc.PasswordHash, plainPassword) != nil {
			continue
		}
		role := resolveRole(pool, acc)
		if role == authz.RoleUser && (acc.Status == model.StatusPending || !acc.IsOtpVerified) {
			return nil, ErrAccountNotVerified
		}
		token, err := jwt.GenerateToken(acc.ID, pool, role, s.jwtSecret, s.jwtTTL)
		if err != nil {
			return nil, ErrTokenIssue
		}
		return &LoginResult{Type: role, Name: acc.Name, Email: acc.Email, Token: token}, nil
	}
	return nil, ErrInvalidCredentials
}

// ForgetPassword issues a fresh challenge, invalidating any pending one.
func (s *AuthService) ForgetPassword(ctx context.Context, email string) error {
	acc, err := s.accounts.GetByEmail(ctx, model.PoolUser, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	code, err := generateOTP()
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.accounts.SetOTP(ctx, model.PoolUser, email, code, now.Add(otpTTL).Unix(), now.Unix()); err != nil {
		return err
	}
	s.dispatchMail(acc.Email, mail.ResetSubject, mail.ResetOTPBody(acc.Name, code))
	return nil
}

// ResetPassword replaces the password hash after the same ordered challenge
// checks as VerifyOTP. It does not require a verified account.
func (s *AuthService) ResetPassword(ctx context.Context, email string, code int, newPassword string) error {
	acc, err := s.accounts.GetByEmail(ctx, model.PoolUser, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if err := checkChallenge(acc, code, s.now().Unix(), ErrNoPendingReset); err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	applied, err := s.accounts.ConsumeOTP(ctx, model.PoolUser, email, code, now, now, map[string]interface{}{
		"password_hash": hash,
	})
	if err != nil {
		return err
	}
	if !applied {
		return ErrInvalidOTP
	}
	return nil
}

// checkChallenge applies the ordered policy: missing challenge, mismatch,
// expiry. missingErr lets verify and reset report their own wording.
func checkChallenge(acc *model.Account, code int, now int64, missingErr error) error {
	if acc.OtpCode == nil || acc.OtpExpiresAt == nil {
		return missingErr
	}
	if *acc.OtpCode != code {
		return ErrInvalidOTP
	}
	if now > *acc.OtpExpiresAt {
		return ErrOTPExpired
	}
	return nil
}

func resolveRole(pool string, acc *model.Account) string {
	if pool == model.PoolUser {
		return authz.RoleUser
	}
	if acc.Role != nil && *acc.Role != "" {
		return *acc.Role
	}
	return authz.RoleAdmin
}

func (s *AuthService) dispatchMail(email, subject, body string) {
	go func() {
		if err := s.mailer.Send(email, subject, body); err != nil {
			logutil.GetLogger(context.Background()).Error("send otp mail failed",
				zap.String("email", email), zap.Error(err))
		}
	}()
}

func generateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return 0, errors.New("generate otp: " + err.Error())
	}
	return otpMin + int(n.Int64()), nil
}
