package middleware

import (
	"os"
	"strings"

	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/gofiber/fiber/v2"
)

// OriginAllowed gates browser requests against ALLOWED_ORIGINS. It also
// fronts the websocket upgrade route, where the CORS middleware does not
// apply. An empty allowlist or a missing Origin header (non-browser clients)
// passes through.
func OriginAllowed() fiber.Handler {
	allowlist := map[string]struct{}{}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowlist[origin] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get("Origin"))
		if origin == "" || len(allowlist) == 0 {
			return c.Next()
		}
		if _, ok := allowlist[origin]; !ok {
			return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
		}
		return c.Next()
	}
}
