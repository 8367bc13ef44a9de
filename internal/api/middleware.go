package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourorg/attendzk/internal/verify"
)

// WalletHeader carries the caller's wallet address. It is an opaque identity
// token from the auth boundary: checked for shape only, never decoded or
// cryptographically verified here.
const WalletHeader = "X-Wallet-Address"

const walletContextKey = "wallet"

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// validWalletAddress is the minimal Stellar account-ID precondition:
// 'G' prefix, 56 base32 characters.
func validWalletAddress(addr string) bool {
	if len(addr) != 56 || addr[0] != 'G' {
		return false
	}
	for _, r := range addr {
		if !strings.ContainsRune(base32Alphabet, r) {
			return false
		}
	}
	return true
}

func requireWallet() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.GetHeader(WalletHeader)
		if !validWalletAddress(addr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(
				verify.CodeInvalidWalletAddress, "missing or malformed wallet address header"))
			return
		}
		c.Set(walletContextKey, addr)
		c.Next()
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
