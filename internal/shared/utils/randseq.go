package utils

import (
	"crypto/rand"
	"math/big"
)

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// RandSeq 生成长度为 n 的随机字母数字串，用作 ws 会话密钥。
func RandSeq(n int) string {
	b := make([]rune, n)
	max := big.NewInt(int64(len(letters)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = letters[v.Int64()]
	}
	return string(b)
}
