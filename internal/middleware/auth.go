package middleware

import (
	"context"

	"github.com/questx-lab/giveaway/pkg/crypto"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/router"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

const (
	UserIDHeader    = "X-User-Id"
	SignatureHeader = "X-User-Signature"
)

// AuthVerifier trusts the user id forwarded by the upstream gateway. When a
// secret is set, the id must come with its HMAC signature.
type AuthVerifier struct {
	secret   []byte
	optional bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithSecret(secret string) *AuthVerifier {
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// Optional lets anonymous requests through without a user id.
func (a *AuthVerifier) Optional() *AuthVerifier {
	a.optional = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := xcontext.HTTPRequest(ctx)
		userID := req.Header.Get(UserIDHeader)
		if userID == "" {
			if a.optional {
				return ctx, nil
			}

			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		if a.secret != nil && !crypto.VerifyHMAC([]byte(userID), a.secret, req.Header.Get(SignatureHeader)) {
			xcontext.Logger(ctx).Debugf("Invalid signature of user %s", userID)
			return ctx, errorx.New(errorx.Unauthenticated, "Invalid user signature")
		}

		return xcontext.WithRequestUserID(ctx, userID), nil
	}
}
