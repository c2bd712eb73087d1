package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
)

const tokenIssuer = "roombook"

var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies paseto v4 public tokens carrying a user id as
// their subject.
type Tokens struct {
	TTL time.Duration

	key    paseto.V4AsymmetricSecretKey
	parser paseto.Parser
	now    func() time.Time
}

func NewTokens(key paseto.V4AsymmetricSecretKey, ttl time.Duration) *Tokens {
	return &Tokens{
		TTL: ttl,
		key: key,
		parser: paseto.MakeParser([]paseto.Rule{
			paseto.IssuedBy(tokenIssuer),
			paseto.NotExpired(),
		}),
		now: time.Now,
	}
}

func (t *Tokens) Issue(userID int64) (token string, expiresAt time.Time) {
	now := t.now()
	expiresAt = now.Add(t.TTL)

	tok := newToken()
	tok.SetIssuer(tokenIssuer)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(expiresAt)
	tok.SetSubject(strconv.FormatInt(userID, 10))

	token = tok.V4Sign(t.key, nil)
	return
}

func (t *Tokens) Verify(token string) (userID int64, err error) {
	if token == "" {
		err = ErrInvalidToken
		return
	}

	var tok *paseto.Token
	if tok, err = t.parser.ParseV4Public(t.key.Public(), token, nil); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidToken, err)
		return
	}

	var sub string
	if sub, err = tok.GetSubject(); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidToken, err)
		return
	}

	if userID, err = strconv.ParseInt(sub, 10, 64); err != nil || userID <= 0 {
		err = fmt.Errorf("%w: bad subject %q", ErrInvalidToken, sub)
		userID = 0
	}
	return
}

// LoadSecretKey decodes a base64 encoded ed25519 secret key.
func LoadSecretKey(encoded string) (key paseto.V4AsymmetricSecretKey, err error) {
	var decoded []byte
	if decoded, err = base64.StdEncoding.DecodeString(encoded); err != nil {
		return
	}

	return paseto.NewV4AsymmetricSecretKeyFromBytes(decoded)
}

// GenerateSecretKey returns a fresh key and its base64 form for LoadSecretKey.
func GenerateSecretKey() (key paseto.V4AsymmetricSecretKey, encoded string) {
	key = paseto.NewV4AsymmetricSecretKey()
	encoded = base64.StdEncoding.EncodeToString(key.ExportBytes())
	return
}

// XXX: paseto.NewToken returns a value, but the setters want a pointer
func newToken() *paseto.Token {
	t := paseto.NewToken()
	return &t
}
