package utils

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
)

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// CompressLZ4 lz4 帧格式压缩。
func CompressLZ4(src []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	zw := lz4.NewWriter(buf)
	if _, err := zw.Write(src); err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func DecompressLZ4(src []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	zr := lz4.NewReader(bytes.NewReader(src))
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, fmt.Errorf("lz4 read: %w", err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// HashBLAKE3 返回 blake3-256 的十六进制摘要。
func HashBLAKE3(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
