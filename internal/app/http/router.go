package http

import (
	"github.com/julienschmidt/httprouter"
	"net/http"
)

// NewRouter creates and configures a new instance of the router.
func NewRouter(h Handler) *httprouter.Router {
	r := httprouter.New()

	r.POST("/builds", h.AddBuild)
	r.GET("/builds/:id/macros/:name", h.BuildMacro)
	r.POST("/evaluate", h.Evaluate)
	r.GET("/promotions", h.Promotions)
	r.GET("/promotion/:id", h.Promotion)
	r.POST("/promotion/:id", h.RetryPromotion)
	r.GET("/promotion/:id/macros/:name", h.PromotionMacro)
	r.GET("/jobs", h.Jobs)

	r.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetDefaultHeaders(w)
		h := w.Header()
		h.Set("Access-Control-Allow-Methods", h.Get("Allow"))
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
