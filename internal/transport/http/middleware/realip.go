package middleware

import (
	"net"
	"net/http"
	"strings"
)

// RealIP нормализует r.RemoteAddr до адреса клиента: сначала X-Forwarded-For
// (первый адрес в списке), затем X-Real-Ip, иначе host-часть RemoteAddr.
// Rate limiting считает по этому значению, поэтому мидлвар обязан стоять
// до хендлеров create.
func RealIP() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}

	if xr := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xr != "" {
		if net.ParseIP(xr) != nil {
			return xr
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
