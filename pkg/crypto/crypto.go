package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

func EncryptWithBase64(block *cipher.Block, plainText string) (string, error) {
	encrypted, err := encrypt(block, plainText)
	if err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(encrypted), nil
}

func DecryptWithBase64(block *cipher.Block, encrypted string) (string, error) {
	decoded, err := base64.RawStdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}
	decrypted, err := decrypt(block, decoded)
	if err != nil {
		return "", err
	}

	// Unpadding
	padSize := int(decrypted[len(decrypted)-1])
	if padSize > len(decrypted) {
		return "", fmt.Errorf("invalid padding size: %d", padSize)
	}
	return string(decrypted[:len(decrypted)-padSize]), nil
}

func encrypt(block *cipher.Block, plainText string) ([]byte, error) {
	padSize := aes.BlockSize - (len(plainText) % aes.BlockSize)
	pad := bytes.Repeat([]byte{byte(padSize)}, padSize)
	paddedText := append([]byte(plainText), pad...)

	encrypted := make([]byte, aes.BlockSize+len(paddedText))
	iv := encrypted[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	encrypter := cipher.NewCBCEncrypter(*block, iv)
	encrypter.CryptBlocks(encrypted[aes.BlockSize:], paddedText)
	return encrypted, nil
}

func decrypt(block *cipher.Block, encrypted []byte) ([]byte, error) {
	if len(encrypted) < aes.BlockSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	iv := encrypted[:aes.BlockSize] // Get Initial Vector form first head block.
	decrypted := make([]byte, len(encrypted[aes.BlockSize:]))
	decrypter := cipher.NewCBCDecrypter(*block, iv)
	decrypter.CryptBlocks(decrypted, encrypted[aes.BlockSize:])
	return decrypted, nil
}
