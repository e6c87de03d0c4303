package codes

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"time"

	idperrors "github.com/jrsteele09/go-idp-core/internal/errors"
	"github.com/pkg/errors"
)

const (
	codeGenerationLength = 32
	otpDigits            = 6
)

// IssueParams describes the code to mint.
type IssueParams struct {
	Type         Type
	LoginID      string
	ConnectionID string
	CodeVerifier string
	TTL          time.Duration
}

// Issuer creates and redeems single-use codes against the code store.
type Issuer struct {
	repo    Repo
	nowTime func() time.Time
}

// IssuerOption modifies the Issuer.
type IssuerOption func(*Issuer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowTime = nowFunc
	}
}

func NewIssuer(repo Repo, options ...IssuerOption) *Issuer {
	issuer := &Issuer{repo: repo, nowTime: time.Now}
	for _, opt := range options {
		opt(issuer)
	}
	return issuer
}

// Issue mints a code with a generated unguessable id. OTP codes are
// short numeric strings users can type; everything else gets a 256-bit
// url-safe random value.
func (i *Issuer) Issue(ctx context.Context, tenantID string, params IssueParams) (*Code, error) {
	var id string
	var err error
	if params.Type == TypeOTP {
		id, err = generateOTP(otpDigits)
	} else {
		id, err = generateRandomID(codeGenerationLength)
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Issuer.Issue] id generation")
	}
	return i.IssueWithID(ctx, tenantID, id, params)
}

// IssueWithID mints a code under a caller-provided id. The connection
// flow uses it to persist the correlation value chosen by a strategy.
func (i *Issuer) IssueWithID(ctx context.Context, tenantID, id string, params IssueParams) (*Code, error) {
	now := i.nowTime()
	code := &Code{
		ID:           id,
		TenantID:     tenantID,
		Type:         params.Type,
		LoginID:      params.LoginID,
		ConnectionID: params.ConnectionID,
		CodeVerifier: params.CodeVerifier,
		ExpiresAt:    now.Add(params.TTL),
		CreatedAt:    now,
	}
	if err := i.repo.Create(ctx, code); err != nil {
		return nil, errors.Wrap(err, "[Issuer.IssueWithID] store create")
	}
	return code, nil
}

// Get returns the live code for (id, type), or ErrCodeNotFound when it
// is absent, already used, or expired.
func (i *Issuer) Get(ctx context.Context, tenantID, id string, codeType Type) (*Code, error) {
	code, err := i.repo.Get(ctx, tenantID, id, codeType)
	if err != nil {
		return nil, err
	}
	if code.UsedAt != nil {
		return nil, idperrors.ErrCodeNotFound
	}
	if code.Expired(i.nowTime()) {
		return nil, idperrors.ErrCodeNotFound
	}
	return code, nil
}

// RedeemOnce atomically consumes the code: of N concurrent redemptions
// exactly one succeeds, the rest get ErrCodeUsed.
func (i *Issuer) RedeemOnce(ctx context.Context, tenantID, id string, codeType Type) (*Code, error) {
	code, err := i.Get(ctx, tenantID, id, codeType)
	if err != nil {
		return nil, err
	}
	firstUse, err := i.repo.MarkUsed(ctx, tenantID, id, codeType, i.nowTime())
	if err != nil {
		return nil, errors.Wrap(err, "[Issuer.RedeemOnce] mark used")
	}
	if !firstUse {
		return nil, idperrors.ErrCodeUsed
	}
	return code, nil
}

// ConsumeState resolves an oauth2_state code by id alone and consumes it.
// Used by the federated callback, which knows no tenant until the state
// resolves. Read once: a second consume gets ErrCodeUsed.
func (i *Issuer) ConsumeState(ctx context.Context, id string) (*Code, error) {
	code, err := i.repo.FindState(ctx, id)
	if err != nil {
		return nil, err
	}
	if code.UsedAt != nil {
		return nil, idperrors.ErrCodeUsed
	}
	if code.Expired(i.nowTime()) {
		return nil, idperrors.ErrCodeNotFound
	}
	firstUse, err := i.repo.MarkUsed(ctx, code.TenantID, code.ID, TypeOAuth2State, i.nowTime())
	if err != nil {
		return nil, errors.Wrap(err, "[Issuer.ConsumeState] mark used")
	}
	if !firstUse {
		return nil, idperrors.ErrCodeUsed
	}
	return code, nil
}

// Remove discards the code for (id, type).
func (i *Issuer) Remove(ctx context.Context, tenantID, id string, codeType Type) error {
	return i.repo.Delete(ctx, tenantID, id, codeType)
}

func generateRandomID(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func generateOTP(digits int) (string, error) {
	otp := make([]byte, digits)
	for i := range otp {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		otp[i] = byte('0' + n.Int64())
	}
	return string(otp), nil
}
