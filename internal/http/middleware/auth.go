// README: Bearer-token auth middleware and caller accessors.
package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"carrental/internal/infra"
)

const (
	ctxUID    = "auth_uid"
	ctxClaims = "auth_claims"
)

// Auth rejects requests without a valid "Authorization: Bearer <token>" header and
// stores the verified identity on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		tok, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil || tok == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization error"})
			return
		}
		c.Set(ctxUID, tok.UID)
		c.Set(ctxClaims, tok.Claims)
		c.Next()
	}
}

// CallerUID returns the verified token subject, or "" outside Auth.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxUID)
}

// CallerUserID resolves the caller's numeric account id: the account id claim when
// present, else the token subject.
func CallerUserID(c *gin.Context) (int64, bool) {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(map[string]interface{}); ok {
			if id, ok := numericClaim(claims[infra.AccountIDClaim]); ok {
				return id, true
			}
		}
	}
	id, err := strconv.ParseInt(CallerUID(c), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func numericClaim(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, n > 0
	case int:
		return int64(n), n > 0
	case float64:
		if n < 1 || n >= 1<<63 || n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		id, err := n.Int64()
		return id, err == nil && id > 0
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil && id > 0
	}
	return 0, false
}
