package tokens

import (
	"errors"
	"fmt"
	"testing"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stockroomhq/warehouse-ops/internal/domain/auth"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want auth.VerificationKind
	}{
		{
			name: "expired token",
			err:  &gooidc.TokenExpiredError{Expiry: time.Now().Add(-time.Hour)},
			want: auth.KindExpired,
		},
		{
			name: "wrapped expired token",
			err:  fmt.Errorf("verify: %w", &gooidc.TokenExpiredError{}),
			want: auth.KindExpired,
		},
		{
			name: "malformed jwt",
			err:  errors.New("oidc: malformed jwt: illegal base64 data"),
			want: auth.KindMalformed,
		},
		{
			name: "signature failure",
			err:  errors.New("failed to verify signature: no matching key"),
			want: auth.KindSignatureInvalid,
		},
		{
			name: "claim mismatch",
			err:  errors.New("oidc: id token issued by a different provider"),
			want: auth.KindSignatureInvalid,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
