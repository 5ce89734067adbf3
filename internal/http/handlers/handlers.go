package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/pribylovaa/go-webapp-starter/internal/errors"
	"github.com/pribylovaa/go-webapp-starter/internal/security/csrf"
	"github.com/pribylovaa/go-webapp-starter/internal/service"
)

// Handlers агрегирует зависимости HTTP-обработчиков.
type Handlers struct {
	Service *service.Service
	CSRF    *csrf.Manager
}

func New(svc *service.Service, csrfManager *csrf.Manager) *Handlers {
	return &Handlers{
		Service: svc,
		CSRF:    csrfManager,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// badRequest — локальная ошибка парсинга тела/параметров.
func badRequest() error {
	return apierrors.ErrBadRequest
}
