package middleware

import (
	"net/http"
	"strings"

	"serenity/utils"

	"github.com/gin-gonic/gin"
)

// Roles carried in JWT claims. Identity issuance lives elsewhere; this
// middleware only validates tokens and places the subject in context.
const (
	RoleTherapist = "therapist"
	RolePatient   = "patient"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return token, token != ""
}

// JWTAuthMiddleware validates the bearer token and requires the given role.
// The subject lands in context under "therapistID" or "patientID".
func JWTAuthMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		subject, role, err := utils.ExtractSubjectFromToken(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		if role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Wrong role for this endpoint"})
			return
		}

		switch role {
		case RoleTherapist:
			c.Set("therapistID", subject)
		case RolePatient:
			c.Set("patientID", subject)
		}
		c.Next()
	}
}
