package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"reflect"
	"testing"
)

func TestEncryptDecryptWithBase64(t *testing.T) {
	block, err := aes.NewCipher([]byte("12345678901234567890123456789012")) // AES128=16bytes, AES192=24bytes, AES256=32bytes
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name      string
		plainText string
	}{
		{
			name:      "OK",
			plainText: "plain text",
		},
		{
			name:      "OK block-aligned length",
			plainText: "0123456789abcdef",
		},
		{
			name:      "OK empty",
			plainText: "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			encrypted, err := EncryptWithBase64(&block, c.plainText)
			if err != nil {
				t.Fatalf("failed to encrypt err: %v", err)
			}
			got, err := DecryptWithBase64(&block, encrypted)
			if err != nil {
				t.Fatalf("Unexpected error occured, err=%+v", err)
			}
			if !reflect.DeepEqual(c.plainText, got) {
				t.Fatalf("Unexpected not matching: want=%+v, got=%+v", c.plainText, got)
			}
		})
	}
}

func TestDecryptWithBase64Error(t *testing.T) {
	block, err := aes.NewCipher([]byte("12345678901234567890123456789012"))
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name  string
		input string
	}{
		{
			name:  "NG failed to decode base64",
			input: "not base64",
		},
		{
			name:  "NG ciphertext too short",
			input: "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var blockRef *cipher.Block = &block
			if _, err := DecryptWithBase64(blockRef, c.input); err == nil {
				t.Fatal("Unexpected no error")
			}
		})
	}
}
