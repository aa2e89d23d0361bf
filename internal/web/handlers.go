package web

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/deltakit/deltakit/internal/delta"
	"github.com/deltakit/deltakit/internal/domain/errs"
	"github.com/deltakit/deltakit/internal/domain/table"
	"github.com/deltakit/deltakit/internal/expect"
	"github.com/deltakit/deltakit/internal/tabio"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>deltakit</title>
    <style>
        body { font-family: sans-serif; margin: 2rem; max-width: 40rem; }
        fieldset { margin-bottom: 2rem; padding: 1rem; }
        label { display: block; margin: 0.5rem 0 0.2rem; }
        input[type=submit] { margin-top: 1rem; }
    </style>
</head>
<body>
    <h1>deltakit</h1>

    <form action="/diff" method="post" enctype="multipart/form-data">
        <fieldset>
            <legend>Compare two CSV files</legend>
            <label>File A</label><input type="file" name="file_a" required>
            <label>File B</label><input type="file" name="file_b" required>
            <label>Key columns (comma separated)</label>
            <input type="text" name="keys" placeholder="id" required>
            <label>Absolute tolerance</label>
            <input type="text" name="abs_tol" value="0">
            <label>Relative tolerance</label>
            <input type="text" name="rel_tol" value="0">
            <input type="submit" value="Compare">
        </fieldset>
    </form>

    <form action="/check" method="post" enctype="multipart/form-data">
        <fieldset>
            <legend>Check expectations</legend>
            <label>File</label><input type="file" name="file" required>
            <label>Rules (one per line)</label>
            <textarea name="rules" rows="6" cols="60"
                placeholder="column id should be unique and not null"></textarea>
            <input type="submit" value="Check">
        </fieldset>
    </form>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		slog.Error("render index", "error", err)
	}
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r).With("upload_id", uuid.NewString())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
		return
	}

	tblA, err := uploadedTable(r, "file_a")
	if err != nil {
		httpError(w, http.StatusBadRequest, "file_a: %v", err)
		return
	}
	tblB, err := uploadedTable(r, "file_b")
	if err != nil {
		httpError(w, http.StatusBadRequest, "file_b: %v", err)
		return
	}

	keys := splitKeys(r.FormValue("keys"))
	if len(keys) == 0 {
		httpError(w, http.StatusBadRequest, "at least one key column is required")
		return
	}
	absTol, err := tolerance(r.FormValue("abs_tol"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "abs_tol: %v", err)
		return
	}
	relTol, err := tolerance(r.FormValue("rel_tol"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "rel_tol: %v", err)
		return
	}

	if err := tblA.RequireColumns("A", keys...); err != nil {
		httpError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}
	if err := tblB.RequireColumns("B", keys...); err != nil {
		httpError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	d, err := delta.New(tblA, tblB, keys, delta.WithTolerance(absTol, relTol))
	if err != nil {
		var schemaErr *errs.SchemaError
		if errors.As(err, &schemaErr) {
			httpError(w, http.StatusUnprocessableEntity, "%v", err)
			return
		}
		logger.Error("delta build failed", "error", err)
		httpError(w, http.StatusInternalServerError, "comparison failed")
		return
	}

	logger.Info("comparison served",
		"run_id", d.RunID(),
		"unmatched_a", d.UnmatchedA().NumRows(),
		"unmatched_b", d.UnmatchedB().NumRows(),
		"mismatches", d.Mismatches().NumRows(),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.WriteHTML(w); err != nil {
		logger.Error("render report", "error", err)
	}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart form: %v", err)
		return
	}

	tbl, err := uploadedTable(r, "file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "file: %v", err)
		return
	}

	columnRules, rowRules := expect.Parse(r.FormValue("rules"))
	report, err := expect.Evaluate(tbl, columnRules, rowRules, nil)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		httpError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	logger.Info("expectation check served",
		"column_rules", len(columnRules),
		"row_rules", len(rowRules),
		"passed", report.Passed,
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, report.HumanReadable())
}

func uploadedTable(r *http.Request, field string) (*table.Table, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing upload: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	return tabio.ReadCSV(file)
}

func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func tolerance(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("must be non-negative, got %v", f)
	}
	return f, nil
}

func httpError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	http.Error(w, fmt.Sprintf(format, args...), status)
}

// requestLogger carries chi's request ID into structured log entries.
func requestLogger(r *http.Request) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}
