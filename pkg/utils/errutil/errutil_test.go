package errutil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/utils/errutil"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) errutil.ErrorResponse {
	t.Helper()
	var resp errutil.ErrorResponse
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	return resp
}

func TestHandleHTTPMessage_SameText(t *testing.T) {
	rec := httptest.NewRecorder()
	err := goerr.New("assessment not found", goerr.V("id", "x"))

	errutil.HandleHTTPMessage(context.Background(), rec, err, http.StatusNotFound, "assessment not found")

	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")
	resp := decode(t, rec)
	gt.Value(t, resp.Error).Equal("assessment not found")
	gt.Value(t, resp.Details).Equal("")
}

func TestHandleHTTPMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := goerr.Wrap(errors.New("unexpected end of JSON input"), "failed to parse")

	errutil.HandleHTTPMessage(context.Background(), rec, err, http.StatusInternalServerError, "Invalid assessment data format")

	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
	resp := decode(t, rec)
	gt.Value(t, resp.Error).Equal("Invalid assessment data format")
	gt.String(t, resp.Details).Contains("unexpected end of JSON input")
}

func TestHandleNil(t *testing.T) {
	rec := httptest.NewRecorder()
	errutil.HandleHTTPMessage(context.Background(), rec, nil, http.StatusInternalServerError, "ignored")
	gt.Value(t, rec.Body.Len()).Equal(0)

	errutil.Handle(context.Background(), nil, "ignored")
}
