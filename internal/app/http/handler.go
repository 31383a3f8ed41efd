package http

import (
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/julienschmidt/httprouter"
	"net/http"
	"strconv"
)

// NewHandler creates a new instance of the REST API handler.
func NewHandler(
	promoSvc app.PromotionSvc,
	macroSvc app.MacroSvc,
	jobRepo app.JobRepo,
	accessKey app.ApiAccessKey,
	jwtSecret app.JWTSecret,
) Handler {
	return Handler{
		promoSvc:  promoSvc,
		macroSvc:  macroSvc,
		jobRepo:   jobRepo,
		accessKey: string(accessKey),
		jwtSecret: []byte(jwtSecret),
	}
}

// Handler handles the RESP API requests.
type Handler struct {
	promoSvc  app.PromotionSvc
	macroSvc  app.MacroSvc
	jobRepo   app.JobRepo
	accessKey string
	jwtSecret []byte
}

type macroValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AddBuild accepts the build-completion event and enqueues the promotions the build qualifies for.
func (h Handler) AddBuild(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	var b app.Build
	err = json.NewDecoder(r.Body).Decode(&b)
	if err != nil {
		apiError(w, fmt.Errorf("%w: invalid build: %v", errtype.ErrBadInput, err))
		return
	}
	res, err := h.promoSvc.BuildCompleted(r.Context(), b)
	if err != nil {
		apiError(w, err)
		return
	}
	if res == nil {
		res = []app.Promotion{}
	}
	apiSuccess(w, res)
}

// BuildMacro returns the value of the coordinate macro for the build.
func (h Handler) BuildMacro(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	name := ps.ByName("name")
	v, err := h.macroSvc.Evaluate(r.Context(), ps.ByName("id"), name)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, macroValue{Name: name, Value: v})
}

// Evaluate runs the gate of every promotion process for the build without recording anything.
func (h Handler) Evaluate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	var b app.Build
	err = json.NewDecoder(r.Body).Decode(&b)
	if err != nil {
		apiError(w, fmt.Errorf("%w: invalid build: %v", errtype.ErrBadInput, err))
		return
	}
	res, err := h.promoSvc.Evaluate(r.Context(), b)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// Promotions returns the list of promotions.
func (h Handler) Promotions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.promoSvc.List(r.Context())
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// Promotion returns the promotion by ID.
func (h Handler) Promotion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	id, err := promotionID(ps)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.promoSvc.Get(r.Context(), id)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// PromotionMacro returns the value of the coordinate macro for the build targeted by the promotion.
func (h Handler) PromotionMacro(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	id, err := promotionID(ps)
	if err != nil {
		apiError(w, err)
		return
	}
	name := ps.ByName("name")
	v, err := h.macroSvc.EvaluatePromotion(r.Context(), id, name)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, macroValue{Name: name, Value: v})
}

// RetryPromotion enqueues the failed promotion once again.
func (h Handler) RetryPromotion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	id, err := promotionID(ps)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.promoSvc.Retry(r.Context(), id)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// Jobs returns the configured jobs and their promotion processes.
func (h Handler) Jobs(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.authorize(r)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.jobRepo.FindAll(r.Context())
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

func promotionID(ps httprouter.Params) (uint64, error) {
	id, err := strconv.ParseUint(ps.ByName("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid promotion id: %v", errtype.ErrBadInput, err)
	}
	return id, nil
}
