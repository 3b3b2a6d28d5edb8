package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopkit/shopadmin/internal/model"
	appErr "github.com/shopkit/shopadmin/internal/pkg/errors"
)

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*model.Account // keyed pool|email
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]*model.Account)}
}

func accountKey(pool, email string) string {
	return pool + "|" + email
}

func (f *fakeAccountStore) Create(ctx context.Context, acc *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := accountKey(acc.Pool, acc.Email)
	if _, ok := f.accounts[key]; ok {
		return appErr.ErrConflict
	}
	cp := *acc
	f.accounts[key] = &cp
	return nil
}

func (f *fakeAccountStore) GetByEmail(ctx context.Context, pool, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountKey(pool, email)]
	if !ok || acc.State == model.StateDeleted {
		return nil, appErr.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeAccountStore) GetByID(ctx context.Context, pool, id string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acc := f.findLocked(pool, id); acc != nil {
		cp := *acc
		return &cp, nil
	}
	return nil, appErr.ErrNotFound
}

func (f *fakeAccountStore) SetOTP(ctx context.Context, pool, email string, code int, expiresAt, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountKey(pool, email)]
	if !ok {
		return appErr.ErrNotFound
	}
	acc.OtpCode = &code
	acc.OtpExpiresAt = &expiresAt
	acc.Mtime = mtime
	return nil
}

func (f *fakeAccountStore) ConsumeOTP(ctx context.Context, pool, email string, code int, now, mtime int64, extra map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[accountKey(pool, email)]
	if !ok {
		return false, nil
	}
	if acc.OtpCode == nil || *acc.OtpCode != code {
		return false, nil
	}
	if acc.OtpExpiresAt == nil || *acc.OtpExpiresAt < now {
		return false, nil
	}
	acc.OtpCode = nil
	acc.OtpExpiresAt = nil
	acc.Mtime = mtime
	applyAccountFields(acc, extra)
	return true, nil
}

func (f *fakeAccountStore) Update(ctx context.Context, pool, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := f.findLocked(pool, id)
	if acc == nil {
		return appErr.ErrNotFound
	}
	applyAccountFields(acc, fields)
	return nil
}

func (f *fakeAccountStore) SoftDelete(ctx context.Context, pool, id string, mtime int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := f.findLocked(pool, id)
	if acc == nil {
		return appErr.ErrNotFound
	}
	acc.State = model.StateDeleted
	acc.Mtime = mtime
	return nil
}

func (f *fakeAccountStore) List(ctx context.Context, pool string, q model.ListQuery) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Account
	for _, acc := range f.accounts {
		if acc.Pool != pool || acc.State == model.StateDeleted {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(acc.Name+" "+acc.Email), strings.ToLower(q.Search)) {
			continue
		}
		cp := *acc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ctime > out[j].Ctime })
	return out, nil
}

func (f *fakeAccountStore) Count(ctx context.Context, pool, search string) (int64, error) {
	items, _ := f.List(ctx, pool, model.ListQuery{Search: search})
	return int64(len(items)), nil
}

func (f *fakeAccountStore) findLocked(pool, id string) *model.Account {
	for _, acc := range f.accounts {
		if acc.Pool == pool && acc.ID == id && acc.State != model.StateDeleted {
			return acc
		}
	}
	return nil
}

func applyAccountFields(acc *model.Account, fields map[string]interface{}) {
	strPtr := func(v interface{}) *string {
		s := v.(string)
		return &s
	}
	for col, v := range fields {
		switch col {
		case "name":
			acc.Name = v.(string)
		case "password_hash":
			acc.PasswordHash = v.(string)
		case "role":
			acc.Role = strPtr(v)
		case "phone":
			acc.Phone = strPtr(v)
		case "address":
			acc.Address = strPtr(v)
		case "image":
			acc.Image = strPtr(v)
		case "status":
			acc.Status = v.(string)
		case "is_otp_verified":
			acc.IsOtpVerified = v.(bool)
		case "mtime":
			acc.Mtime = v.(int64)
		}
	}
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer feeds sends into a channel so tests can wait on the async
// dispatch.
type recordingMailer struct {
	sent chan sentMail
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan sentMail, 8)}
}

func (m *recordingMailer) Send(to, subject, htmlBody string) error {
	m.sent <- sentMail{To: to, Subject: subject, Body: htmlBody}
	return nil
}
