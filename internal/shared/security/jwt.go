package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrJWTSecretMissing = errors.New("jwt secret is not set")
	ErrEmpireMissing    = errors.New("token has no empire id")
)

const defaultTokenTTL = 24 * time.Hour

// Claims 标识一个帝国在某局游戏里的身份。Game 为空表示不限定对局。
type Claims struct {
	EmpireID string `json:"empire_id"`
	Game     string `json:"game,omitempty"`
	jwt.RegisteredClaims
}

// Signer 持有签名密钥和有效期。
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, ErrJWTSecretMissing
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Award 生成 Token。
func (s *Signer) Award(empireID, game string) (string, error) {
	if empireID == "" {
		return "", ErrEmpireMissing
	}
	now := s.now()
	claims := &Claims{
		EmpireID: empireID,
		Game:     game,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   empireID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken 解析并验证 Token。
func (s *Signer) ParseToken(tokenStr string) (*jwt.Token, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, nil, err
	}
	if token == nil || !token.Valid {
		return nil, nil, jwt.ErrTokenInvalidClaims
	}
	if claims.EmpireID == "" {
		return nil, nil, ErrEmpireMissing
	}
	return token, claims, nil
}
