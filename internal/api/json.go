package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("json encode failed", zap.Error(err))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorBody(msg, code string) errResponse {
	return errResponse{Error: msg, Code: code}
}
