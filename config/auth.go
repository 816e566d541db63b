package config

import "strings"

// AuthConfig carries the OIDC issuer settings used to verify stored
// refresh credentials during cleanup.
type AuthConfig struct {
	// OIDCIssuerURL is the token issuer. Leaving it empty disables the
	// token cleanup job regardless of its toggle.
	OIDCIssuerURL string `env:"AUTH_OIDC_ISSUER_URL" envDefault:""`
	OIDCClientID  string `env:"AUTH_OIDC_CLIENT_ID"  envDefault:"warehouse-ops"`
}

// Sanitize trims whitespace from issuer settings.
func (c *AuthConfig) Sanitize() {
	c.OIDCIssuerURL = strings.TrimSpace(c.OIDCIssuerURL)
	c.OIDCClientID = strings.TrimSpace(c.OIDCClientID)
}

// VerifierConfigured reports whether token verification can be wired.
func (c *AuthConfig) VerifierConfigured() bool {
	return c.OIDCIssuerURL != "" && c.OIDCClientID != ""
}
