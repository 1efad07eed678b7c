package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken token mal formado, con firma o emisor ajenos, vencido o sin negocio.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Session identidad que viaja en el token: el usuario, el negocio activo y su rol en él.
type Session struct {
	UserID     string
	BusinessID string
	Role       string
}

// Claims el sujeto es el usuario; business_id y role fijan el negocio de la sesión.
type Claims struct {
	jwt.RegisteredClaims
	BusinessID string `json:"business_id"`
	Role       string `json:"role,omitempty"`
}

// Signer emite y verifica tokens HS256 de un emisor.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option ajusta el Signer.
type Option func(*Signer)

// WithClock reemplaza time.Now al emitir y al verificar.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// NewSigner construye el Signer. El secreto y el emisor son obligatorios.
func NewSigner(secret, issuer string, ttl time.Duration, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret vacío")
	}
	if issuer == "" {
		return nil, errors.New("jwt: issuer vacío")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: duración %s inválida", ttl)
	}
	s := &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL vigencia de los tokens emitidos.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Sign emite un token para la sesión. Sin usuario o sin negocio no hay token.
func (s *Signer) Sign(sess Session) (string, error) {
	if sess.UserID == "" || sess.BusinessID == "" {
		return "", errors.New("jwt: la sesión requiere user_id y business_id")
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		BusinessID: sess.BusinessID,
		Role:       sess.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifica firma, algoritmo, emisor y vigencia, y devuelve la sesión.
// Todos los fallos se envuelven en ErrInvalidToken.
func (s *Signer) Parse(tokenString string) (Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	switch {
	case claims.Subject == "":
		return Session{}, fmt.Errorf("%w: sin sujeto", ErrInvalidToken)
	case claims.BusinessID == "":
		return Session{}, fmt.Errorf("%w: sin business_id", ErrInvalidToken)
	}
	return Session{UserID: claims.Subject, BusinessID: claims.BusinessID, Role: claims.Role}, nil
}
