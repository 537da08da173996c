package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/usecase"
)

func listReportsHandler(uc *usecase.QBRUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := uc.ListReports(r.Context())
		if err != nil {
			handleError(w, r, err, "Failed to load QBR reports")
			return
		}
		writeJSON(w, r, http.StatusOK, cards)
	}
}

func loadReportsHandler(uc *usecase.QBRUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := uc.LoadReports(r.Context())
		if err != nil {
			handleError(w, r, err, "Failed to load QBR configurations")
			return
		}
		writeJSON(w, r, http.StatusOK, reports)
	}
}

func getReportHandler(uc *usecase.QBRUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.ReportID(chi.URLParam(r, "id"))
		doc, err := uc.GetReport(r.Context(), id)
		if err != nil {
			handleError(w, r, err, "Failed to load QBR report")
			return
		}
		writeJSON(w, r, http.StatusOK, doc)
	}
}

type reportResponse struct {
	Success bool             `json:"success"`
	Config  *model.QBRConfig `json:"config"`
	Message string           `json:"message"`
}

func addReportHandler(uc *usecase.QBRUseCase) http.HandlerFunc {
	type request struct {
		ID      types.ReportID `json:"id"`
		Company string         `json:"company"`
		Type    string         `json:"type"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err, "Invalid request body")
			return
		}

		cfg, err := uc.AddReport(r.Context(), req.ID, req.Company, req.Type)
		if err != nil {
			handleError(w, r, err, "Failed to add QBR report")
			return
		}
		writeJSON(w, r, http.StatusCreated, reportResponse{
			Success: true,
			Config:  cfg,
			Message: "QBR report '" + cfg.Title + "' added",
		})
	}
}

func removeReportHandler(uc *usecase.QBRUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.ReportID(chi.URLParam(r, "id"))
		cfg, err := uc.RemoveReport(r.Context(), id)
		if err != nil {
			handleError(w, r, err, "Failed to remove QBR report")
			return
		}
		writeJSON(w, r, http.StatusOK, reportResponse{
			Success: true,
			Config:  cfg,
			Message: "QBR report '" + string(id) + "' removed",
		})
	}
}

type refreshRequest struct {
	ClientUUID string `json:"clientUuid"`
}

func corkClientsHandler(uc *usecase.RefreshUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.ListCorkClients(r.Context())
		if err != nil {
			handleError(w, r, err, "Failed to fetch clients from Cork API")
			return
		}
		writeJSON(w, r, http.StatusOK, list)
	}
}

func itglueClientsHandler(uc *usecase.RefreshUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.ListITGlueClients(r.Context())
		if err != nil {
			handleError(w, r, err, "Failed to fetch IT Glue clients")
			return
		}
		writeJSON(w, r, http.StatusOK, list)
	}
}

func vendorRefreshHandler(vendor types.Vendor, refresh func(*http.Request, string) (*model.RefreshResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err, "Invalid request body")
			return
		}

		result, err := refresh(r, req.ClientUUID)
		if err != nil {
			handleError(w, r, err, "Failed to refresh "+vendor.DisplayName()+" data")
			return
		}
		writeJSON(w, r, http.StatusOK, result)
	}
}

func corkRefreshHandler(uc *usecase.RefreshUseCase) http.HandlerFunc {
	return vendorRefreshHandler(types.VendorCork, func(r *http.Request, clientUUID string) (*model.RefreshResult, error) {
		return uc.RefreshCork(r.Context(), clientUUID)
	})
}

func itglueRefreshHandler(uc *usecase.RefreshUseCase) http.HandlerFunc {
	return vendorRefreshHandler(types.VendorITGlue, func(r *http.Request, clientUUID string) (*model.RefreshResult, error) {
		return uc.RefreshITGlue(r.Context(), clientUUID)
	})
}

func itglueTestHandler(uc *usecase.RefreshUseCase) http.HandlerFunc {
	type response struct {
		Success  bool   `json:"success"`
		Data     any    `json:"data"`
		MockData any    `json:"mockData"`
		Message  string `json:"message"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		result, err := uc.TestITGlueTemplate(r.Context())
		if err != nil {
			handleError(w, r, err, "Failed to test IT Glue template processing: "+err.Error())
			return
		}
		writeJSON(w, r, http.StatusOK, response{
			Success:  result.Success,
			Data:     result.Data,
			MockData: result.LiveData,
			Message:  result.Message,
		})
	}
}
