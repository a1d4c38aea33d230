// Package domain holds the signed single-use links dealers answer with.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"pronto-sync/internal/core/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Action is a dealer's answer to an international order.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

const tokenIssuer = "pronto-sync"

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionAccept, ActionDecline:
		return Action(raw), nil
	default:
		return "", apperror.Validation("unknown dealer action %q", raw)
	}
}

// ActionClaims binds a token to one order and one action.
type ActionClaims struct {
	jwt.RegisteredClaims
	Action Action `json:"action"`
}

// TokenSigner issues and verifies dealer action tokens (HS256).
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner creates a new TokenSigner. A nil clock means time.Now.
func NewTokenSigner(secret string, now func() time.Time) *TokenSigner {
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{
		secret: []byte(secret),
		now:    now,
	}
}

// Sign returns a token for action on orderID that expires at expiresAt.
func (s *TokenSigner) Sign(orderID int64, action Action, expiresAt time.Time) (string, error) {
	now := s.now()
	claims := &ActionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(orderID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Action: action,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign action token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and scope of a token.
func (s *TokenSigner) Verify(raw string, orderID int64, action Action) (*ActionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &ActionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: link expired", apperror.ErrInvalidToken)
		}
		return nil, apperror.ErrInvalidToken
	}

	claims, ok := token.Claims.(*ActionClaims)
	if !ok || !token.Valid {
		return nil, apperror.ErrInvalidToken
	}
	if claims.Subject != strconv.FormatInt(orderID, 10) || claims.Action != action || claims.ID == "" {
		return nil, fmt.Errorf("%w: link does not match this order", apperror.ErrInvalidToken)
	}
	return claims, nil
}
