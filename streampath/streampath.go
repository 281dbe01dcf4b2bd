// Package streampath decrypts the obfuscated stream locations found in track records.
//
// An encrypted path looks like "<d><filler><iv><base64>": d is a single decimal
// digit giving the position of a 16 character IV, the IV characters are used as
// raw bytes, and everything after the IV is base64 AES-128-CBC ciphertext padded
// with PKCS7. The key is fixed and shared by every track.
package streampath

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// QualityAuto is the adaptive tier; its manifest is redirected to 320 kbps
	QualityAuto = "auto"
	// QualityHigh is the 128 kbps tier
	QualityHigh = "high"
	// QualityMedium is the 64 kbps tier
	QualityMedium = "medium"

	ivLength = aes.BlockSize

	autoManifestSuffix  = "/f.mp4.master.m3u8"
	fixedManifestSuffix = "/320.mp4.master.m3u8"
)

var keyWords = [4]int32{1735995764, 593641578, 1814585892, 2004118885}

// key is derived once from keyWords and never reassigned
var key = fromWords(keyWords)

func fromWords(words [4]int32) [16]byte {
	var k [16]byte
	for i, w := range words {
		binary.BigEndian.PutUint32(k[i*4:], uint32(w))
	}
	return k
}

// Key returns a copy of the fixed AES-128 key
func Key() [16]byte {
	return key
}

// Decrypt reverses the stream path obfuscation and returns the plaintext URL
func Decrypt(path string) (string, error) {
	if path == "" || path[0] < '0' || path[0] > '9' {
		return "", &DecryptError{Op: "offset", Err: ErrMalformedOffset}
	}
	offset := int(path[0] - '0')

	if len(path) < offset+ivLength {
		return "", &DecryptError{Op: "iv", Err: ErrInvalidIV}
	}
	iv := []byte(path[offset : offset+ivLength])

	ciphertext, err := base64.StdEncoding.DecodeString(path[offset+ivLength:])
	if err != nil {
		return "", &DecryptError{Op: "base64", Err: ErrCiphertext, Cause: err}
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", &DecryptError{Op: "ciphertext", Err: ErrCiphertext}
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", &DecryptError{Op: "cipher", Err: ErrCiphertext, Cause: err}
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", &DecryptError{Op: "unpad", Err: err}
	}
	if !utf8.Valid(plain) {
		return "", &DecryptError{Op: "utf8", Err: ErrUTF8}
	}

	return string(plain), nil
}

// Resolve decrypts message and applies the per-quality URL fixups.
// For the auto tier the placeholder manifest is swapped for the 320 kbps one.
func Resolve(message, quality string) (string, error) {
	u, err := Decrypt(message)
	if err != nil {
		return "", err
	}
	if quality == QualityAuto {
		return rewriteManifest(u), nil
	}
	return u, nil
}

// rewriteManifest swaps the placeholder manifest at the end of the URL path.
// The query (usually an access token) and fragment are kept as they are.
func rewriteManifest(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Path, autoManifestSuffix) {
		return raw
	}
	u.Path = strings.TrimSuffix(u.Path, autoManifestSuffix) + fixedManifestSuffix
	if strings.HasSuffix(u.RawPath, autoManifestSuffix) {
		u.RawPath = strings.TrimSuffix(u.RawPath, autoManifestSuffix) + fixedManifestSuffix
	}
	return u.String()
}

// Encrypt builds an encrypted stream path for plaintext.
// Positions between the offset digit and the IV are filled with 'x'; with
// offset 0 the digit itself becomes the first IV byte.
func Encrypt(plaintext string, offset int, iv [16]byte) (string, error) {
	if offset < 0 || offset > 9 {
		return "", &DecryptError{Op: "offset", Err: ErrMalformedOffset}
	}
	if offset == 0 {
		iv[0] = '0'
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(out, padded)

	var sb strings.Builder
	if offset > 0 {
		sb.WriteByte(byte('0' + offset))
		sb.WriteString(strings.Repeat("x", offset-1))
	}
	sb.Write(iv[:])
	sb.WriteString(base64.StdEncoding.EncodeToString(out))
	return sb.String(), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrPadding
		}
	}
	return data[:len(data)-n], nil
}
