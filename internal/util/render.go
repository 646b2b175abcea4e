package util

import (
	"encoding/json"
	"log"
	"net/http"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("render json: %v", err)
	}
}

// Detail writes {"detail": msg}.
func Detail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"detail": msg})
}

// FieldErrors writes {"<field>": ["msg"]}.
func FieldErrors(w http.ResponseWriter, status int, field, msg string) {
	JSON(w, status, map[string][]string{field: {msg}})
}
