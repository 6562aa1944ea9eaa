package mail

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyInboundSignature checks the signature the inbound mail provider attaches to forwarded
// messages: hex HMAC-SHA256 of timestamp followed by token, keyed with the signing key.
func VerifyInboundSignature(signingKey, timestamp, token, signature string) bool {
	if signingKey == "" || timestamp == "" || token == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(timestamp + token))
	return hmac.Equal(got, mac.Sum(nil))
}
