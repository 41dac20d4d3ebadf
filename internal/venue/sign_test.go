package venue

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func TestSigner_Headers(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}

	s := &Signer{keyID: "test-key-id", privateKey: privateKey}

	headers, err := s.Headers("GET", "/trade-api/v2/portfolio/balance")
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}

	if headers["KALSHI-ACCESS-KEY"] != "test-key-id" {
		t.Errorf("KALSHI-ACCESS-KEY = %q, want %q", headers["KALSHI-ACCESS-KEY"], "test-key-id")
	}
	if headers["KALSHI-ACCESS-TIMESTAMP"] == "" {
		t.Error("KALSHI-ACCESS-TIMESTAMP is empty")
	}
	sig := headers["KALSHI-ACCESS-SIGNATURE"]
	if sig == "" {
		t.Fatal("KALSHI-ACCESS-SIGNATURE is empty")
	}
	if _, err := base64.StdEncoding.DecodeString(sig); err != nil {
		t.Errorf("signature is not valid base64: %v", err)
	}
}

func TestNewSigner(t *testing.T) {
	t.Run("missing key id", func(t *testing.T) {
		if _, err := NewSigner("", "/tmp/key.pem"); err == nil {
			t.Error("NewSigner() error = nil, want error")
		}
	})

	t.Run("missing key path", func(t *testing.T) {
		if _, err := NewSigner("key-id", ""); err == nil {
			t.Error("NewSigner() error = nil, want error")
		}
	})

	t.Run("pkcs8 key file", func(t *testing.T) {
		path := writeTestKey(t, true)
		s, err := NewSigner("key-id", path)
		if err != nil {
			t.Fatalf("NewSigner() error = %v", err)
		}
		if s.keyID != "key-id" {
			t.Errorf("keyID = %q, want key-id", s.keyID)
		}
	})

	t.Run("pkcs1 key file", func(t *testing.T) {
		path := writeTestKey(t, false)
		if _, err := NewSigner("key-id", path); err != nil {
			t.Fatalf("NewSigner() error = %v", err)
		}
	})

	t.Run("not pem", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.pem")
		if err := os.WriteFile(path, []byte("not a key"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewSigner("key-id", path); err == nil {
			t.Error("NewSigner() error = nil, want error")
		}
	})
}

func writeTestKey(t *testing.T, pkcs8 bool) string {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	var block *pem.Block
	if pkcs8 {
		der, err := x509.MarshalPKCS8PrivateKey(privateKey)
		if err != nil {
			t.Fatalf("marshal pkcs8: %v", err)
		}
		block = &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	} else {
		block = &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)}
	}

	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}
