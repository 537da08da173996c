package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/usecase"
)

func assessmentID(r *http.Request) types.AssessmentID {
	return types.AssessmentID(chi.URLParam(r, "id"))
}

func listAssessmentsHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := uc.ListAssessments(r.Context())
		if err != nil {
			handleError(w, r, err, "Failed to load assessments")
			return
		}
		writeJSON(w, r, http.StatusOK, cards)
	}
}

func addAssessmentHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	type response struct {
		Success bool                    `json:"success"`
		ID      types.AssessmentID      `json:"id"`
		Config  *model.AssessmentConfig `json:"config"`
		Message string                  `json:"message"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "name is required"), "Assessment name is required")
			return
		}

		id, cfg, err := uc.AddAssessment(r.Context(), req.Name)
		if err != nil {
			handleError(w, r, err, "Failed to add assessment")
			return
		}
		writeJSON(w, r, http.StatusCreated, response{
			Success: true,
			ID:      id,
			Config:  cfg,
			Message: "Assessment '" + cfg.Description + "' added",
		})
	}
}

func removeAssessmentHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	type response struct {
		Success bool               `json:"success"`
		ID      types.AssessmentID `json:"id"`
		Message string             `json:"message"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uc.RemoveAssessment(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err, "Failed to remove assessment")
			return
		}
		writeJSON(w, r, http.StatusOK, response{
			Success: true,
			ID:      id,
			Message: "Assessment '" + string(id) + "' removed",
		})
	}
}

func getAssessmentHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := uc.GetAssessment(r.Context(), assessmentID(r))
		if err != nil {
			handleError(w, r, err, "Failed to load assessment data")
			return
		}
		writeJSON(w, r, http.StatusOK, data)
	}
}

func downloadAssessmentHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, data, err := uc.DownloadAssessment(r.Context(), assessmentID(r))
		if err != nil {
			handleError(w, r, err, "Failed to download assessment")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(data) //nolint:errcheck // header already committed
	}
}

type answersRequest struct {
	Answers model.AnswerSheet `json:"answers"`
}

func scoreAssessmentHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answersRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err, "Invalid request body")
			return
		}

		report, err := uc.ScoreAssessment(r.Context(), assessmentID(r), req.Answers)
		if err != nil {
			handleError(w, r, err, "Failed to score assessment")
			return
		}
		writeJSON(w, r, http.StatusOK, report)
	}
}

func submitAssessmentHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answersRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err, "Invalid request body")
			return
		}

		result, err := uc.SubmitAssessment(r.Context(), assessmentID(r), req.Answers)
		if err != nil {
			handleError(w, r, err, "Failed to submit assessment")
			return
		}
		writeJSON(w, r, http.StatusCreated, result)
	}
}

func listResultsHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := uc.ListResults(r.Context(), assessmentID(r))
		if err != nil {
			handleError(w, r, err, "Failed to load assessment results")
			return
		}
		writeJSON(w, r, http.StatusOK, results)
	}
}

func getResultHandler(uc *usecase.AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resultID := types.ResultID(chi.URLParam(r, "resultID"))
		result, err := uc.GetResult(r.Context(), assessmentID(r), resultID)
		if err != nil {
			handleError(w, r, err, "Failed to load assessment result")
			return
		}
		writeJSON(w, r, http.StatusOK, result)
	}
}
