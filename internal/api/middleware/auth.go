package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/api/handler/v1/response"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/pkg/jwthelper"
)

// ActorKey holds the JWT subject of an authenticated admin request.
const ActorKey = "actor"

var errMissingToken = errors.New("missing bearer token")

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// IdentifyJWT records the admin as actor when a valid token is sent and
// lets every other request through unchanged.
func (a *Authenticator) IdentifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if ok && tokenString != "" {
			if claims, err := jwthelper.ParseToken(a.signingKey, tokenString, ctx.Request.UserAgent()); err == nil {
				ctx.Set(ActorKey, claims.Subject)
			}
		}

		ctx.Next()
	}
}

// VerifyJWT rejects requests without a valid "Authorization: Bearer" token
// issued to the same user agent.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, tokenString, ctx.Request.UserAgent())
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(fmt.Errorf("jwthelper.ParseToken -> %w", err)))
			return
		}

		ctx.Set(ActorKey, claims.Subject)
		ctx.Next()
	}
}
