package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"product-image-studio/collection"
	"product-image-studio/service"
)

// statusFor maps service and collection errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, collection.ErrEmptySelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, collection.ErrPersist):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownRole):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrNoProduct):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, action string, err error) {
	http.Error(w, fmt.Sprintf("%s: %v", action, err), statusFor(err))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
