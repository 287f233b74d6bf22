package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CookieCliente identifica o navegador; cada um tem a sua sessão.
const CookieCliente = "cliente_id"

type chaveContexto struct{}

// ClienteID garante que a requisição tenha um id de cliente, criando o cookie
// quando ele falta ou não é um UUID.
func ClienteID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(CookieCliente); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieCliente,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), chaveContexto{}, id)))
	})
}

func clienteIDDe(ctx context.Context) string {
	id, _ := ctx.Value(chaveContexto{}).(string)
	return id
}
