package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"todoserver/internal/models"
)

// writeJSON отправляет ответ с указанным статусом и JSON-телом.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Статус уже отправлен клиенту, остается только залогировать
		log.Printf("[Handlers] Ошибка кодирования JSON-ответа: %v", err)
	}
}

// writeError отправляет ошибку в общем JSON-конверте {success:false, message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.MessageResponse{Success: false, Message: message})
}
