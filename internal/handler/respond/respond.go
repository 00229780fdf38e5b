package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"io"
	"net/http"
	"strconv"
)

const (
	UserIDHeader    = "User-ID"
	UserAdminHeader = "User-Admin"
)

// UserID reads the caller id that the auth middleware put on the request.
func UserID(r *http.Request) (int64, error) {
	userIDHeader := r.Header.Get(UserIDHeader)
	userID, err := strconv.ParseInt(userIDHeader, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error while parsing user ID from header %q: %w", userIDHeader, err)
	}
	return userID, nil
}

func Decode(r *http.Request, v any) error {
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logger.Log.Error("error while closing request body", logger.Error(err))
		}
	}(r.Body)

	return json.NewDecoder(r.Body).Decode(v)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("error while encoding response to JSON", logger.Error(err))
	}
}

// StatusOf maps a service error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrIncorrectCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrUserBlocked):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyResolved),
		errors.Is(err, domain.ErrRunInProgress),
		errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with its mapped status. Client errors carry the message,
// server errors only the status text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("request failed", logger.String("url", r.RequestURI), logger.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	logger.Log.Warn("request rejected", logger.String("url", r.RequestURI), logger.Int("status", status), logger.Error(err))
	http.Error(w, err.Error(), status)
}

func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.Warn("bad request", logger.String("url", r.RequestURI), logger.Error(err))
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func Internal(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.Error("request failed", logger.String("url", r.RequestURI), logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
