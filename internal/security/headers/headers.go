// headers — политика защитных заголовков ответа.
//
// Чистое преобразование: набор заголовков дополняется по пути запроса и
// Content-Type ответа, состояния и ошибок нет. CSP вешается только на
// HTML; HSTS — только в prod; Cache-Control зависит от класса пути.
package headers

import (
	"net/http"
	"path"
	"strings"
)

const (
	cspProd = "default-src 'self'; script-src 'self'; style-src 'self'; " +
		"img-src 'self' data:; font-src 'self'; connect-src 'self'; " +
		"frame-ancestors 'none'"
	cspDev = "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval'; " +
		"style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; " +
		"connect-src 'self'; frame-ancestors 'none'"

	hstsValue = "max-age=31536000; includeSubDomains; preload"

	cacheAPI     = "no-store, no-cache, must-revalidate"
	cachePrivate = "no-store, no-cache, must-revalidate, private"
	cacheStatic  = "public, max-age=31536000, immutable"

	apiPrefix   = "/api"
	usersPrefix = "/api/users"
)

// staticExts — расширения, которые считаем долгоживущей статикой.
var staticExts = map[string]struct{}{
	".js": {}, ".mjs": {}, ".css": {}, ".map": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".ico": {}, ".webp": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
}

// Policy — политика, выбранная один раз на старте по окружению.
type Policy struct {
	prod bool
}

// New строит политику; prod включает HSTS и строгий CSP.
func New(prod bool) *Policy {
	return &Policy{prod: prod}
}

// Decorate дополняет заголовки ответа. Вызывается в момент WriteHeader,
// когда Content-Type уже известен.
func (p *Policy) Decorate(h http.Header, reqPath string) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

	// Идентифицирующие фреймворк заголовки не отдаём.
	h.Del("X-Powered-By")
	h.Del("Server")

	if isHTML(h.Get("Content-Type")) {
		if p.prod {
			h.Set("Content-Security-Policy", cspProd)
		} else {
			h.Set("Content-Security-Policy", cspDev)
		}
	}

	if p.prod {
		h.Set("Strict-Transport-Security", hstsValue)
	}

	switch {
	case strings.HasPrefix(reqPath, usersPrefix):
		h.Set("Cache-Control", cachePrivate)
	case strings.HasPrefix(reqPath, apiPrefix):
		h.Set("Cache-Control", cacheAPI)
	case isStaticAsset(reqPath):
		h.Set("Cache-Control", cacheStatic)
	}
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html")
}

func isStaticAsset(reqPath string) bool {
	ext := strings.ToLower(path.Ext(reqPath))
	if ext == "" {
		return false
	}

	_, ok := staticExts[ext]
	return ok
}
