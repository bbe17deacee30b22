package recovery

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/medrec/portal/internal/domain/account"
	"github.com/medrec/portal/internal/platform/db"
	"github.com/medrec/portal/internal/platform/mail"
)

var (
	// ErrCodeNotRequested is returned when no reset code is pending for the
	// account, including after a code has been consumed.
	ErrCodeNotRequested = errors.New("no reset code requested")

	// ErrCodeExpired is returned when the pending code's expiry has passed.
	ErrCodeExpired = errors.New("reset code expired")

	// ErrCodeMismatch is returned for a wrong code. The pending code stays
	// in place, so the user may retry until expiry.
	ErrCodeMismatch = errors.New("reset code mismatch")
)

const (
	codeDigits = 6
	codeTTL    = 10 * time.Minute
)

// Service coordinates the two password-recovery protocols: the signed link
// token and the short-lived numeric code. Both share the same account lookup
// and leave no partial state on failure.
type Service struct {
	accounts account.Repository
	tokens   *TokenCodec
	tx       db.TxRunner
	mailer   mail.Sender
	now      func() time.Time
}

func NewService(accounts account.Repository, tokens *TokenCodec, tx db.TxRunner, mailer mail.Sender) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		tx:       tx,
		mailer:   mailer,
		now:      time.Now,
	}
}

// IssueLinkToken starts protocol A: a signed, time-limited token is minted
// for the account's email and delivered out of band. Unknown emails return
// account.ErrNotFound, matching the portal's historical behavior of
// revealing address existence.
func (s *Service) IssueLinkToken(ctx context.Context, email string) (string, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(a.Email)
	if err != nil {
		return "", err
	}

	body := fmt.Sprintf("To reset your password, visit: /reset_password/%s\n\nIf you did not make this request, simply ignore this email.", token)
	if err := s.mailer.SendEmail(ctx, a.Email, "Password Reset Request", body); err != nil {
		return "", fmt.Errorf("send reset link: %w", err)
	}
	return token, nil
}

// RedeemLinkToken verifies the token and, on success, replaces the account's
// password. Verification failures mutate nothing.
func (s *Service) RedeemLinkToken(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.Redeem(token)
	if err != nil {
		return err
	}
	if err := account.ValidatePassword(newPassword); err != nil {
		return err
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := account.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.accounts.SetPasswordHash(ctx, a.ID, hash)
}

// IssueCode starts protocol B: a fresh 6-digit code is stored with a
// 10-minute expiry, overwriting any prior pending code, and delivered out of
// band. Both writes happen under one transaction.
func (s *Service) IssueCode(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	err = s.tx.RunTx(ctx, func(ctx context.Context) error {
		a, err := s.accounts.GetByEmailForUpdate(ctx, email)
		if err != nil {
			return err
		}
		return s.accounts.SetResetCode(ctx, a.ID, code, s.now().Add(codeTTL))
	})
	if err != nil {
		return "", err
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code)
	if err := s.mailer.SendEmail(ctx, email, "Password Reset Code", body); err != nil {
		return "", fmt.Errorf("send reset code: %w", err)
	}
	return code, nil
}

// VerifyCode checks a pending code without consuming it. Expiry is evaluated
// lazily here; nothing is cleared on Expired or Mismatch.
func (s *Service) VerifyCode(ctx context.Context, email, code string) error {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.checkCode(a, code)
}

// ConsumeCode re-validates the code and, in the same transaction, replaces
// the password hash and clears the pending code. A mismatched attempt leaves
// the code pending; a consumed code cannot be used again.
func (s *Service) ConsumeCode(ctx context.Context, email, code, newPassword string) error {
	if err := account.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := account.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.tx.RunTx(ctx, func(ctx context.Context) error {
		a, err := s.accounts.GetByEmailForUpdate(ctx, email)
		if err != nil {
			return err
		}
		if err := s.checkCode(a, code); err != nil {
			return err
		}
		return s.accounts.SetPasswordAndClearResetCode(ctx, a.ID, hash)
	})
}

func (s *Service) checkCode(a *account.Account, code string) error {
	if a.ResetCode == nil || a.ResetCodeExpiry == nil {
		return ErrCodeNotRequested
	}
	if s.now().After(*a.ResetCodeExpiry) {
		return ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(*a.ResetCode), []byte(code)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}

// generateCode draws each of the six digits independently, giving 10^6
// equiprobable codes. Strength rests on the short expiry and the rate limit
// on the recovery endpoints, not on the code itself.
func generateCode() (string, error) {
	digits := make([]byte, codeDigits)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate reset code: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
