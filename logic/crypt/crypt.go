// Package crypt 批量结果的加密存储
// 服务端只保存 sha256(key) 作为任务 id，结果用 key 派生的密钥加密，拿不到 key 就读不出结果
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 16
	keySize  = 32
)

// ErrInvalidKey key 不对或密文被篡改
var ErrInvalidKey = errors.New("invalid key")

// NewKey 随机生成 32 字节 key，hex 编码后交给客户端
func NewKey() (string, error) {
	b := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// JobID 任务 id = sha256(key)
func JobID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func newGCM(key string, salt []byte, iter int) (cipher.AEAD, error) {
	derived := pbkdf2.Key([]byte(key), salt, iter, keySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt AES-256-GCM，输出 salt | nonce | ciphertext
func Encrypt(plaintext []byte, key string, iter int) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := newGCM(key, salt, iter)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Decrypt Encrypt 的逆过程
func Decrypt(data []byte, key string, iter int) ([]byte, error) {
	if len(data) < saltSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	gcm, err := newGCM(key, data[:saltSize], iter)
	if err != nil {
		return nil, err
	}

	rest := data[saltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return plaintext, nil
}
