package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
)

// ErrMissingSecret means the integrity secret is not configured. The signer
// refuses to build rather than silently skipping verification: an unsigned
// webhook must never be able to move order state.
var ErrMissingSecret = errors.New("integrity secret is not configured")

// Signer computes and checks the gateway's integrity digests. The same
// shared secret covers both directions: outbound charge requests and
// inbound webhook events.
type Signer struct {
	secret string
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{secret: secret}, nil
}

// SignCharge binds a charge attempt's reference, amount and currency to the
// shared secret. The field order is fixed by the gateway contract.
func (s *Signer) SignCharge(reference string, amount int64, currency string) string {
	return digest(reference + strconv.FormatInt(amount, 10) + currency + s.secret)
}

// SignEvent computes the checksum the gateway attaches to a webhook event.
func (s *Signer) SignEvent(transactionID, status string, amount int64, timestamp int64) string {
	return digest(transactionID + status + strconv.FormatInt(amount, 10) + strconv.FormatInt(timestamp, 10) + s.secret)
}

// VerifyEvent recomputes the webhook checksum from the event fields and
// compares it to the header-supplied value in constant time.
func (s *Signer) VerifyEvent(transactionID, status string, amount int64, timestamp int64, presented string) bool {
	expected := s.SignEvent(transactionID, status, amount, timestamp)
	return hmac.Equal([]byte(expected), []byte(presented))
}

func digest(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
