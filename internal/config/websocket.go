package config

import (
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
}

// AllowedOrigins lists the hosts from ALLOWED_ORIGINS (comma separated). An
// empty list allows every origin.
func AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func NewWebSocket(allowedOrigins []string) *WebSocket {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin, err := url.Parse(r.Header.Get("Origin"))
			if err != nil {
				return false
			}
			return slices.Contains(allowedOrigins, origin.Scheme+"://"+origin.Host)
		},
	}

	return &WebSocket{Upgrader: upgrader}
}
