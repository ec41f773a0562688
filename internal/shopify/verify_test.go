package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"id": 10}`)
	secret := "shh"

	if !VerifyWebhookSignature(secret, body, sign(secret, body)) {
		t.Fatal("valid signature rejected")
	}
	if VerifyWebhookSignature(secret, body, sign("wrong", body)) {
		t.Fatal("signature from the wrong secret accepted")
	}
	if VerifyWebhookSignature(secret, []byte(`{"id": 11}`), sign(secret, body)) {
		t.Fatal("signature for a different body accepted")
	}
	if VerifyWebhookSignature(secret, body, "") {
		t.Fatal("empty signature accepted")
	}
	if VerifyWebhookSignature("", body, sign("", body)) {
		t.Fatal("empty secret accepted")
	}
}
