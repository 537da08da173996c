package http

import (
	"errors"
	"net/http"

	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"github.com/secmon-lab/lmx/pkg/utils/errutil"
)

// errorStatuses maps sentinel errors to a status and client message. The
// first match wins, so more specific sentinels come first. An empty message
// falls back to the handler's message.
var errorStatuses = []struct {
	target error
	status int
	msg    string
}{
	{usecase.ErrClientUUIDMissing, http.StatusBadRequest, "Client UUID is required"},
	{usecase.ErrInvalidInput, http.StatusBadRequest, ""},
	{model.ErrInvalidKey, http.StatusBadRequest, "Invalid identifier"},
	{usecase.ErrAssessmentNotFound, http.StatusNotFound, "Assessment not found"},
	{usecase.ErrResultNotFound, http.StatusNotFound, "Result not found"},
	{usecase.ErrReportIndexMissing, http.StatusNotFound, "QBR configuration file not found"},
	{usecase.ErrReportNotFound, http.StatusNotFound, "Report not found"},
	{model.ErrNotFound, http.StatusNotFound, "Not found"},
	{usecase.ErrAssessmentExists, http.StatusConflict, "Assessment already exists"},
	{usecase.ErrReportExists, http.StatusConflict, "Report already exists"},
	{model.ErrAlreadyExists, http.StatusConflict, "Already exists"},
}

// statusOf returns the HTTP status and client message for err
func statusOf(err error, fallback string) (int, string) {
	status, msg := http.StatusInternalServerError, fallback
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			status = e.status
			if e.msg != "" {
				msg = e.msg
			}
			break
		}
	}
	if public := usecase.PublicMessage(err); public != "" {
		msg = public
	}
	return status, msg
}

// handleError writes err as {"error", "details"} with the mapped status
func handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, msg := statusOf(err, fallback)
	errutil.HandleHTTPMessage(r.Context(), w, err, status, msg)
}
