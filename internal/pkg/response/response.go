package response

import (
	"encoding/json"
	"net/http"

	"github.com/futig/visa-interview/internal/entity"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// the status line is already sent, nothing else to report
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes the standard error body: status text plus a client facing message
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// File writes content as a downloadable attachment
func File(w http.ResponseWriter, contentType, fileName string, content []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
