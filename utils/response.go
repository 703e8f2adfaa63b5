package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"pix-checkout-api/models"
)

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("failed to write JSON response", zap.Error(err))
	}
}

func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, models.ErrorResponse{
		Success: false,
		Error:   message,
	})
}
