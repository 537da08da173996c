package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/cli"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/repository"
	"github.com/secmon-lab/lmx/pkg/repository/fs"
	"github.com/secmon-lab/lmx/pkg/service/worker"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"go.uber.org/goleak"
)

type cliRunner struct {
	t       *testing.T
	dataDir string
}

func newRunner(t *testing.T) *cliRunner {
	t.Helper()
	return &cliRunner{t: t, dataDir: t.TempDir()}
}

// run executes the subcommand at path against the runner's data directory.
// args holds the command's own flags followed by positional arguments.
func (r *cliRunner) run(path []string, args ...string) (string, error) {
	r.t.Helper()
	var buf bytes.Buffer

	full := []string{"lmx", "--log-output", filepath.Join(r.t.TempDir(), "lmx.log")}
	full = append(full, path...)
	full = append(full, "--data-dir", r.dataDir)
	full = append(full, args...)

	err := cli.RunWithWriter(context.Background(), full, &buf)
	return buf.String(), err
}

var (
	assessmentList   = []string{"assessment", "list"}
	assessmentAdd    = []string{"assessment", "add"}
	assessmentRemove = []string{"assessment", "remove"}
	assessmentRun    = []string{"assessment", "run"}
	qbrList          = []string{"qbr", "list"}
	qbrAdd           = []string{"qbr", "add"}
	qbrRemove        = []string{"qbr", "remove"}
	validate         = []string{"validate"}
	refreshCork      = []string{"refresh", "cork"}
)

func TestRun_AssessmentLifecycle(t *testing.T) {
	r := newRunner(t)

	out, err := r.run(assessmentList)
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("No assessments registered")

	out, err = r.run(assessmentAdd, "Coffee", "Review")
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("Added assessment coffee-review")
	gt.String(t, out).Contains("assessment-coffee-review-data.json")

	out, err = r.run(assessmentList)
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("coffee-review")
	gt.String(t, out).Contains("Active")

	answersPath := filepath.Join(t.TempDir(), "answers.json")
	gt.NoError(t, os.WriteFile(answersPath, []byte(`{"answers": {"Sample Question": "Satisfactory"}}`), 0o600)).Required()

	out, err = r.run(assessmentRun, "--answers", answersPath, "--save", "coffee-review")
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("Coffee Review")
	gt.String(t, out).Contains("Overall score:")
	gt.String(t, out).Contains("Saved result")

	entries, err := os.ReadDir(filepath.Join(r.dataDir, "assessments", "results", "coffee-review"))
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(1)

	out, err = r.run(assessmentRemove, "Coffee", "Review")
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("Removed assessment coffee-review")

	_, err = r.run(assessmentRemove, "coffee-review")
	gt.Error(t, err).Is(usecase.ErrAssessmentNotFound)
}

func TestRun_AssessmentRunJSON(t *testing.T) {
	r := newRunner(t)
	_, err := r.run(assessmentAdd, "Quick Check")
	gt.NoError(t, err).Required()

	// A bare question -> label map is accepted too
	answersPath := filepath.Join(t.TempDir(), "answers.json")
	gt.NoError(t, os.WriteFile(answersPath, []byte(`{"Sample Question": "AtRisk"}`), 0o600)).Required()

	out, err := r.run(assessmentRun, "--answers", answersPath, "--json", "quick-check")
	gt.NoError(t, err).Required()

	var report map[string]any
	gt.NoError(t, json.Unmarshal([]byte(out), &report)).Required()
	gt.Value(t, report["summary"]).NotNil()

	_, err = os.Stat(filepath.Join(r.dataDir, "assessments", "results", "quick-check"))
	gt.Bool(t, os.IsNotExist(err)).True()
}

func TestRun_QBRLifecycle(t *testing.T) {
	r := newRunner(t)

	out, err := r.run(qbrAdd, "--company", "Acme", "--type", "aggregate", "acme-qbr")
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("Added QBR report acme-qbr")

	_, err = r.run(qbrAdd, "--company", "Acme", "acme-qbr")
	gt.Error(t, err).Is(usecase.ErrReportExists)

	out, err = r.run(qbrList)
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("acme-qbr")
	gt.String(t, out).Contains("aggregate")

	out, err = r.run(qbrRemove, "acme-qbr")
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("Removed QBR report acme-qbr")

	_, err = r.run(qbrRemove, "acme-qbr")
	gt.Error(t, err).Is(usecase.ErrReportNotFound)
}

func TestRun_ValidateCommand(t *testing.T) {
	r := newRunner(t)

	out, err := r.run(validate)
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("Catalog is consistent")

	_, err = r.run(assessmentAdd, "Coffee Review")
	gt.NoError(t, err).Required()
	gt.NoError(t, os.Remove(filepath.Join(r.dataDir, "assessments", "json", "assessment-coffee-review-data.json"))).Required()

	out, err = r.run(validate)
	gt.Error(t, err).Is(cli.ErrValidationFailed)
	gt.String(t, out).Contains("template file is missing")
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	r := newRunner(t)

	configPath := filepath.Join(t.TempDir(), "lmx.toml")
	gt.NoError(t, os.WriteFile(configPath, []byte("[[qbr_icons]]\nkeywords = []\nicon = \"x\"\n"), 0o600)).Required()

	_, err := r.run(validate, "--config", configPath)
	gt.Value(t, err).NotNil()

	_, err = r.run(validate, "--config", filepath.Join(t.TempDir(), "missing.toml"))
	gt.Value(t, err).NotNil()
}

func TestRun_RefreshCork(t *testing.T) {
	r := newRunner(t)

	_, err := r.run(refreshCork, "client-1")
	gt.Error(t, err).Is(usecase.ErrVendorNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gt.Value(t, req.URL.Path).Equal("/api/v1/clients")
		gt.Value(t, req.Header.Get("Authorization")).Equal("Bearer cork-key")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"uuid": "c-1", "name": "Acme Coffee", "status": "active"}},
			"total": 1,
		})
	}))
	t.Cleanup(srv.Close)

	out, err := r.run(refreshCork, "--cork-api-key", "cork-key", "--cork-base-url", srv.URL)
	gt.NoError(t, err).Required()
	gt.String(t, out).Contains("c-1")
	gt.String(t, out).Contains("Acme Coffee")
}

func newBackgroundUseCases(t *testing.T) *usecase.UseCases {
	t.Helper()
	store, err := fs.New(t.TempDir())
	gt.NoError(t, err).Required()
	return usecase.New(repository.New(store))
}

func TestStartBackground(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	uc := newBackgroundUseCases(t)
	targets := []worker.Target{{Vendor: types.VendorCork, ClientUUID: "c-1"}}

	stop, err := cli.StartBackground(ctx, uc, targets, time.Hour, t.TempDir())
	gt.NoError(t, err).Required()
	stop()
}

func TestStartBackground_WatcherFailureStopsWorker(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	uc := newBackgroundUseCases(t)
	targets := []worker.Target{{Vendor: types.VendorCork, ClientUUID: "c-1"}}
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := cli.StartBackground(ctx, uc, targets, time.Hour, missing)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to start data directory watcher")
}
