package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
)

// ErrorResponse is the JSON body written for failed HTTP requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func logError(ctx context.Context, msg string, err error, attrs ...any) {
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		attrs = append(attrs, "error", err.Error())
	}
	logger.Error(msg, attrs...)
}

// Report sends err to Sentry with goerr values attached as context. It is a
// no-op when Sentry has not been initialized.
func Report(ctx context.Context, err error) {
	if err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		var ge *goerr.Error
		if errors.As(err, &ge) {
			scope.SetContext("goerr", sentry.Context(ge.Values()))
		}
		hub.CaptureException(err)
	})
}

// Handle logs the error with a message and reports it.
// Use it for failures that have no HTTP response to carry them.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}
	logError(ctx, msg, err)
	Report(ctx, err)
}

// HandleHTTPMessage logs the error and writes {"error": msg, "details": err}.
// Server errors are reported to Sentry.
func HandleHTTPMessage(ctx context.Context, w http.ResponseWriter, err error, statusCode int, msg string) {
	if err == nil {
		return
	}

	logError(ctx, "HTTP error", err, "status", statusCode)
	if statusCode >= http.StatusInternalServerError {
		Report(ctx, err)
	}

	resp := ErrorResponse{Error: msg}
	if details := err.Error(); details != msg {
		resp.Details = details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.From(ctx).Error("Failed to write error response", "error", err)
	}
}
