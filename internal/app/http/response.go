package http

import (
	"encoding/json"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/rs/zerolog/log"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// SetDefaultHeaders sets the headers that are common for all responses.
func SetDefaultHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Content-Type", "application/json")
}

func apiSuccess(w http.ResponseWriter, data interface{}) {
	SetDefaultHeaders(w)
	w.WriteHeader(http.StatusOK)
	if data == nil {
		return
	}
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		log.Error().Err(errors.WrapContext(err, errors.Context{Path: "http.apiSuccess.Encode"})).Send()
	}
}

func apiError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errtype.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errtype.ErrBadInput), errors.Is(err, errtype.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, errtype.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	msg := http.StatusText(status)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("API request failed")
	} else {
		msg = err.Error()
		log.Debug().Err(err).Int("status", status).Msg("API request rejected")
	}
	SetDefaultHeaders(w)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
