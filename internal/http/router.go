package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux (no third-party
// router dependency).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// methodGate rejects everything but the given method before the handler
// runs.
func methodGate(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterSelectionRoutes wires the configurator API.
func (r *Router) RegisterSelectionRoutes(h *SelectionHandler) {
	r.Handle("/selection/api/v1/sessions", methodGate(http.MethodPost, h.CreateSession))
	r.Handle("/selection/api/v1/session", methodGate(http.MethodGet, h.GetSession))
	r.Handle("/selection/api/v1/options", methodGate(http.MethodGet, h.GetOptions))

	r.Handle("/selection/api/v1/import", methodGate(http.MethodPost, h.ImportUpload))
	r.Handle("/selection/api/v1/import/url", methodGate(http.MethodPost, h.ImportFromURL))

	r.Handle("/selection/api/v1/house", methodGate(http.MethodPost, h.SetHouse))
	r.Handle("/selection/api/v1/layout", methodGate(http.MethodPost, h.SetLayout))
	r.Handle("/selection/api/v1/unlock", methodGate(http.MethodPost, h.Unlock))

	r.Handle("/selection/api/v1/items/select", methodGate(http.MethodPost, h.SelectRow))
	r.Handle("/selection/api/v1/items/assign", methodGate(http.MethodPost, h.AssignRowToRoom))
	r.Handle("/selection/api/v1/items/auto-assign", methodGate(http.MethodPost, h.AutoAssign))
	r.Handle("/selection/api/v1/items/delete", methodGate(http.MethodPost, h.DeleteItem))
	r.Handle("/selection/api/v1/items/quantity", methodGate(http.MethodPost, h.UpdateQuantity))
	r.Handle("/selection/api/v1/items/notes", methodGate(http.MethodPost, h.UpdateNotes))

	r.Handle("/selection/api/v1/tabs", methodGate(http.MethodPost, h.SetTabs))
	r.Handle("/selection/api/v1/groups", methodGate(http.MethodGet, h.GetGroups))
	r.Handle("/selection/api/v1/export", methodGate(http.MethodGet, h.Export))
	r.Handle("/selection/api/v1/reset", methodGate(http.MethodPost, h.Reset))
}
