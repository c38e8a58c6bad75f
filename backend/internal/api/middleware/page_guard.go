package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
)

var protectedPages = []string{"/dashboard", "/owo", "/verifikasi", "/admin"}

// PageGuard redirects page requests by session state: /login goes to /dashboard
// when a valid session cookie is present, protected pages go to /login when not.
// API and asset requests are not touched.
func PageGuard(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}

		loggedIn := false
		if token, err := c.Cookie(jwt.CookieName); err == nil && token != "" {
			_, err := jwtMgr.ParseToken(token)
			loggedIn = err == nil
		}

		switch {
		case path == "/login" && loggedIn:
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		case isProtectedPage(path) && !loggedIn:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isProtectedPage(path string) bool {
	for _, p := range protectedPages {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
