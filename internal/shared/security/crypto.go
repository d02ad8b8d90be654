package security

import (
	"OpenFront/internal/shared/utils"

	"github.com/go-think/openssl"
)

// AesCBCEncrypt 对 WS 帧做 AES-CBC 加密，key 同时作为 iv。
func AesCBCEncrypt(src, key, iv []byte, padding string) ([]byte, error) {
	return openssl.AesCBCEncrypt(src, key, iv, padding)
}

func AesCBCDecrypt(src, key, iv []byte, padding string) ([]byte, error) {
	return openssl.AesCBCDecrypt(src, key, iv, padding)
}

// Zip 压缩 WS 帧。
func Zip(data []byte) ([]byte, error) {
	return utils.CompressLZ4(data)
}

func UnZip(data []byte) ([]byte, error) {
	return utils.DecompressLZ4(data)
}
