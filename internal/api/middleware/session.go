package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionKey holds the cart session id of the request.
const SessionKey = "sessionID"

const sessionMaxAge = 7 * 24 * 60 * 60

// Session makes sure every client carries a session cookie. Each cashier
// terminal keeps its own cart under that id.
func Session(cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := ctx.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			ctx.SetSameSite(http.SameSiteLaxMode)
			ctx.SetCookie(cookieName, id, sessionMaxAge, "/", "", false, true)
		}

		ctx.Set(SessionKey, id)
		ctx.Next()
	}
}

func SessionID(ctx *gin.Context) string {
	return ctx.GetString(SessionKey)
}
