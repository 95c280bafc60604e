package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handler and optional middleware onto the router.
type RouterConfig struct {
	Board      *BoardHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP routing table for the board API.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Board != nil {
		mux.HandleFunc("/board", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.Snapshot(w, r)
		})
		mux.HandleFunc("/board/day", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Board.SelectDay(w, r)
		})
		mux.HandleFunc("/board/entries", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Board.Drop(w, r)
		})
		mux.HandleFunc("/board/entries/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/board/entries/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			switch {
			case strings.HasSuffix(rest, "/move"):
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Board.Move(w, r, strings.TrimSuffix(rest, "/move"))
			case strings.HasSuffix(rest, "/resize"):
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Board.Resize(w, r, strings.TrimSuffix(rest, "/resize"))
			default:
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Board.Delete(w, r, rest)
			}
		})
		mux.HandleFunc("/technicians", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.Technicians(w, r)
		})
		mux.HandleFunc("/work-items", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.SearchWorkItems(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
