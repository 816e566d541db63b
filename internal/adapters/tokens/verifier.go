// Package tokens verifies stored refresh credentials against the identity
// provider's signing keys. Verification failures are classified into
// structured kinds so the cleanup job never matches on error text.
package tokens

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/stockroomhq/warehouse-ops/internal/core"
	domainauth "github.com/stockroomhq/warehouse-ops/internal/domain/auth"
)

// VerifierConfig holds configuration for the credential verifier.
type VerifierConfig struct {
	IssuerURL  string
	ClientID   string
	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// Verifier implements core.TokenVerifier on top of go-oidc. Keys are
// fetched once at construction and cached by the underlying key set.
type Verifier struct {
	verifier *gooidc.IDTokenVerifier
}

var _ core.TokenVerifier = (*Verifier)(nil)

// NewVerifier creates a Verifier bound to the issuer's key set.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	provider, err := gooidc.NewProvider(ctx, strings.TrimSuffix(cfg.IssuerURL, "/"))
	if err != nil {
		return nil, err
	}

	return &Verifier{
		verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Verify checks the raw credential. A nil return means the credential still
// verifies; failures are classified via *auth.VerificationError.
func (v *Verifier) Verify(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return domainauth.NewVerificationError(domainauth.KindMalformed, errors.New("empty token"))
	}

	_, err := v.verifier.Verify(ctx, rawToken)
	if err == nil {
		return nil
	}
	return domainauth.NewVerificationError(classify(err), err)
}

// classify maps go-oidc failures onto the structured kinds.
func classify(err error) domainauth.VerificationKind {
	var expired *gooidc.TokenExpiredError
	if errors.As(err, &expired) {
		return domainauth.KindExpired
	}

	// go-oidc wraps parse failures with this prefix before any signature
	// check runs; everything past parsing is a signature/claim failure.
	if strings.Contains(err.Error(), "malformed jwt") {
		return domainauth.KindMalformed
	}
	return domainauth.KindSignatureInvalid
}
