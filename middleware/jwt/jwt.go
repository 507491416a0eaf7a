// Package jwt provides a minimal HMAC-signed JWT middleware: Sign
// issues a token, New verifies one on every request carrying an
// Authorization: Bearer header.
//
// Only the HS256 and HS512 algorithms are supported — there is no
// asymmetric-key or JWKS support here, matching the single
// pre-shared-secret model a small service typically needs.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/weaveframe/weave"
)

type (
	// Config controls how tokens are signed and verified.
	Config struct {
		Header    Header
		SecretKey string
		ExpiresIn time.Duration
		Next      func(req *weave.Request) bool
	}

	Header struct {
		Alg string `json:"alg"`
		Typ string `json:"typ"`
	}

	// Claims is the payload carried inside the token, always including
	// an "exp" unix-seconds entry once signed.
	Claims map[string]any
)

// ContextClaimsKey is the extensions-bag key New stores verified
// claims under for downstream handlers to read via req.Extension.
type contextClaimsKeyType struct{}

var ContextClaimsKey = contextClaimsKeyType{}

var ConfigDefault = Config{
	Header:    Header{Alg: "HS256", Typ: "JWT"},
	SecretKey: "weave-is-woven!",
	ExpiresIn: 500 * time.Second,
}

var (
	ErrMissingToken = errors.New("jwt: missing bearer token")
	ErrMalformed    = errors.New("jwt: malformed token")
	ErrBadSignature = errors.New("jwt: signature mismatch")
	ErrExpired      = errors.New("jwt: token expired")
)

// Sign builds a complete, signed token string for claims using cfg's
// algorithm and secret, stamping "exp" from cfg.ExpiresIn.
func Sign(cfg Config, claims Claims) (string, error) {
	out := Claims{}
	for k, v := range claims {
		out[k] = v
	}
	out["exp"] = time.Now().Add(cfg.ExpiresIn).Unix()

	hm, err := json.Marshal(cfg.Header)
	if err != nil {
		return "", err
	}
	pm, err := json.Marshal(out)
	if err != nil {
		return "", err
	}

	b64Header := base64.RawURLEncoding.EncodeToString(hm)
	b64Payload := base64.RawURLEncoding.EncodeToString(pm)
	data := b64Header + "." + b64Payload

	sig, err := sign(cfg.Header.Alg, cfg.SecretKey, data)
	if err != nil {
		return "", err
	}
	return data + "." + sig, nil
}

// Verify checks a token's signature and expiry and returns its claims.
func Verify(cfg Config, token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}

	data := parts[0] + "." + parts[1]
	wantSig, err := sign(cfg.Header.Alg, cfg.SecretKey, data)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal([]byte(wantSig), []byte(parts[2])) {
		return nil, ErrBadSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrMalformed
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrMalformed
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(exp) {
			return nil, ErrExpired
		}
	}
	return claims, nil
}

func sign(alg, secret, data string) (string, error) {
	switch alg {
	case "HS256":
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(data))
		return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
	case "HS512":
		mac := hmac.New(sha512.New, []byte(secret))
		mac.Write([]byte(data))
		return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
	default:
		return "", errors.New("jwt: unsupported algorithm " + alg)
	}
}

// New builds a weave.Middleware that verifies an Authorization: Bearer
// token on every request, rejecting missing/invalid/expired tokens
// with 401 and otherwise storing the verified claims under
// ContextClaimsKey before calling next.
//
//	s.Use(jwt.New(jwt.Config{SecretKey: "...", ExpiresIn: time.Hour}))
func New(config ...Config) weave.Middleware {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Header.Alg == "" {
		cfg.Header = ConfigDefault.Header
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if cfg.Next != nil && cfg.Next(req) {
				return next(req)
			}

			authHeader := req.Header("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return unauthorized(ErrMissingToken), nil
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := Verify(cfg, token)
			if err != nil {
				return unauthorized(err), nil
			}

			req.SetExtension(ContextClaimsKey, claims)
			return next(req)
		}
	}
}

func unauthorized(err error) *weave.Response {
	return weave.NewResponse(weave.StatusUnauthorized).
		Set("Content-Type", "application/json").
		SendString(`{"error":"` + err.Error() + `"}`)
}
