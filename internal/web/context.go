package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/VendorGrid/internal/core"
	webmw "github.com/JonMunkholm/VendorGrid/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, webmw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
