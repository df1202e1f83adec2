package productsearch

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSigner() *Signer {
	s := NewSigner("AKIDEXAMPLE", "secretkey", "us-east-1")
	s.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	}
	return s
}

func signedRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost,
		"https://webservices.amazon.com/paapi5/searchitems", strings.NewReader(string(payload)))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", searchTarget)

	fixedSigner().Sign(req, payload)
	return req
}

func TestSignerSetsDateAndAuthorization(t *testing.T) {
	req := signedRequest(t, []byte(`{"Keywords":"coffee"}`))

	assert.Equal(t, "20250601T123000Z", req.Header.Get("X-Amz-Date"))

	auth := req.Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 "))
	assert.Contains(t, auth, "Credential=AKIDEXAMPLE/20250601/us-east-1/ProductAdvertisingAPI/aws4_request")
	assert.Contains(t, auth, "SignedHeaders=content-encoding;content-type;host;x-amz-date;x-amz-target")
	assert.Contains(t, auth, "Signature=")
}

func TestSignerIsDeterministic(t *testing.T) {
	payload := []byte(`{"Keywords":"coffee"}`)

	first := signedRequest(t, payload).Header.Get("Authorization")
	second := signedRequest(t, payload).Header.Get("Authorization")

	assert.Equal(t, first, second)
}

func TestSignerSignatureChangesWithPayload(t *testing.T) {
	first := signedRequest(t, []byte(`{"Keywords":"coffee"}`)).Header.Get("Authorization")
	second := signedRequest(t, []byte(`{"Keywords":"desks"}`)).Header.Get("Authorization")

	assert.NotEqual(t, first, second)
}
