package gateway

import (
	"crypto/subtle"
	"os"

	"github.com/soyeahso/finsight/internal/config"
)

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// ResolvedAuth holds the resolved auth configuration for the gateway.
// An empty token means the gateway is open (loopback-only deployments).
type ResolvedAuth struct {
	Token string
}

// ResolveAuth resolves the gateway token from config and environment.
// Precedence: config value → env variable → empty.
func ResolveAuth(cfg config.GatewayConfig) ResolvedAuth {
	auth := ResolvedAuth{Token: cfg.Token}
	if auth.Token == "" {
		auth.Token = os.Getenv("FINSIGHT_GATEWAY_TOKEN")
	}
	return auth
}

// Authorize checks the provided ConnectAuth against the resolved server auth.
func Authorize(serverAuth ResolvedAuth, clientAuth *ConnectAuth) AuthResult {
	if serverAuth.Token == "" {
		return AuthResult{OK: true}
	}
	if clientAuth == nil || clientAuth.Token == "" {
		return AuthResult{OK: false, Reason: "token required"}
	}
	if !safeEqual(clientAuth.Token, serverAuth.Token) {
		return AuthResult{OK: false, Reason: "token_mismatch"}
	}
	return AuthResult{OK: true}
}

// AuthorizeBearer checks an HTTP Authorization header value ("Bearer <token>").
func AuthorizeBearer(serverAuth ResolvedAuth, header string) AuthResult {
	if serverAuth.Token == "" {
		return AuthResult{OK: true}
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return AuthResult{OK: false, Reason: "token required"}
	}
	if !safeEqual(header[len(prefix):], serverAuth.Token) {
		return AuthResult{OK: false, Reason: "token_mismatch"}
	}
	return AuthResult{OK: true}
}

// safeEqual performs a constant-time string comparison to prevent timing attacks.
// It avoids early-return on length mismatch to prevent leaking secret length via timing.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
