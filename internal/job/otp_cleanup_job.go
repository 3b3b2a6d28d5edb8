package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/shopkit/shopadmin/internal/repo"
)

const staleOTPAge = 24 * time.Hour

// OTPCleanupJob clears OTP challenges that expired long ago so stale codes do
// not linger on account rows.
type OTPCleanupJob struct {
	accounts *repo.AccountRepo
}

func NewOTPCleanupJob(accounts *repo.AccountRepo) *OTPCleanupJob {
	return &OTPCleanupJob{accounts: accounts}
}

func (j *OTPCleanupJob) Name() string {
	return "otp_cleanup"
}

func (j *OTPCleanupJob) Run(ctx context.Context) error {
	before := time.Now().Add(-staleOTPAge).Unix()
	cleared, err := j.accounts.ClearExpiredOTP(ctx, before)
	if err != nil {
		return err
	}
	if cleared > 0 {
		logutil.GetLogger(ctx).Info("cleared stale otp challenges", zap.Int64("count", cleared))
	}
	return nil
}
