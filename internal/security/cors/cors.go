// cors — решение о кросс-доменном доступе и синтез CORS-заголовков.
//
// В prod origin разрешён, только если он буквально входит в белый список;
// вне prod отражается любой непустой origin (послабление для разработки).
// Allow-Origin никогда не равен "*": ответы ходят с credentials, и
// wildcard нарушил бы правило CORS о разделении учётных данных.
package cors

import "net/http"

const (
	headerAllowOrigin      = "Access-Control-Allow-Origin"
	headerAllowCredentials = "Access-Control-Allow-Credentials"
	headerAllowMethods     = "Access-Control-Allow-Methods"
	headerAllowHeaders     = "Access-Control-Allow-Headers"
	headerMaxAge           = "Access-Control-Max-Age"

	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, Authorization, X-CSRF-Token"
	maxAgeValue  = "600"
)

// Policy — статическая политика, построенная один раз на старте.
type Policy struct {
	allowAny bool
	allowed  map[string]struct{}
}

// New строит политику: allowAny — режим отражения origin (не-prod),
// origins — белый список для prod.
func New(allowAny bool, origins []string) *Policy {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return &Policy{allowAny: allowAny, allowed: allowed}
}

// AllowOrigin — решение по конкретному origin.
func (p *Policy) AllowOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	if p.allowAny {
		return true
	}

	_, ok := p.allowed[origin]
	return ok
}

// Decorate выставляет заголовки фактического ответа.
// Vary: Origin ставится безусловно, чтобы кэши не отдавали
// кросс-доменный ответ другому origin.
func (p *Policy) Decorate(h http.Header, origin string) {
	h.Set("Vary", "Origin")

	if !p.AllowOrigin(origin) {
		return
	}

	// Всегда буквальный origin, никогда "*".
	h.Set(headerAllowOrigin, origin)
	h.Set(headerAllowCredentials, "true")
}

// DecoratePreflight выставляет заголовки preflight-ответа (OPTIONS, 204).
func (p *Policy) DecoratePreflight(h http.Header, origin string) {
	p.Decorate(h, origin)

	h.Set(headerAllowMethods, allowMethods)
	h.Set(headerAllowHeaders, allowHeaders)
	h.Set(headerMaxAge, maxAgeValue)
}
