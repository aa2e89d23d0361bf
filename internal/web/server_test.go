package web_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deltakit/deltakit/internal/web"
)

type upload struct {
	field, name, content string
}

func multipartBody(t *testing.T, files []upload, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(part, f.content); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func postForm(t *testing.T, path string, files []upload, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	web.NewServer().Handler().ServeHTTP(rec, req)
	return rec
}

const (
	csvA = "id,price\n1,100\n2,200\n3,300\n"
	csvB = "id,price\n2,200\n3,250\n4,400\n"
)

func TestHandleIndex(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	web.NewServer().Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `action="/diff"`) || !strings.Contains(body, `action="/check"`) {
		t.Error("index page missing upload forms")
	}
}

func TestHandleDiff(t *testing.T) {
	rec := postForm(t, "/diff",
		[]upload{
			{"file_a", "a.csv", csvA},
			{"file_b", "b.csv", csvB},
		},
		map[string]string{"keys": "id"},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Rows in A only: 1",
		"Rows in B only: 1",
		"Mismatched rows: 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestHandleDiff_WithTolerance(t *testing.T) {
	rec := postForm(t, "/diff",
		[]upload{
			{"file_a", "a.csv", "id,v\n1,100.25\n"},
			{"file_b", "b.csv", "id,v\n1,100.0\n"},
		},
		map[string]string{"keys": "id", "rel_tol": "0.0025"},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Mismatched rows: 0") {
		t.Error("tolerated difference still reported as mismatch")
	}
}

func TestHandleDiff_MissingKeyColumn(t *testing.T) {
	rec := postForm(t, "/diff",
		[]upload{
			{"file_a", "a.csv", csvA},
			{"file_b", "b.csv", "other\n9\n"},
		},
		map[string]string{"keys": "id"},
	)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id"`) {
		t.Errorf("error should name the missing column: %s", rec.Body.String())
	}
}

func TestHandleDiff_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		files  []upload
		fields map[string]string
	}{
		{
			"missing file_b",
			[]upload{{"file_a", "a.csv", csvA}},
			map[string]string{"keys": "id"},
		},
		{
			"empty keys",
			[]upload{{"file_a", "a.csv", csvA}, {"file_b", "b.csv", csvB}},
			map[string]string{"keys": "  "},
		},
		{
			"negative tolerance",
			[]upload{{"file_a", "a.csv", csvA}, {"file_b", "b.csv", csvB}},
			map[string]string{"keys": "id", "abs_tol": "-1"},
		},
		{
			"non-numeric tolerance",
			[]upload{{"file_a", "a.csv", csvA}, {"file_b", "b.csv", csvB}},
			map[string]string{"keys": "id", "rel_tol": "lots"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, "/diff", tt.files, tt.fields)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleCheck(t *testing.T) {
	rec := postForm(t, "/check",
		[]upload{{"file", "data.csv", "id,amount\n1,10\n1,-5\n"}},
		map[string]string{"rules": "column id should be unique\nrows must satisfy amount >= 0"},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Expectation report: FAILED") {
		t.Errorf("unexpected report: %s", body)
	}
	if !strings.Contains(body, "- id: FAIL") {
		t.Errorf("unique violation missing: %s", body)
	}
}

func TestHandleCheck_Passing(t *testing.T) {
	rec := postForm(t, "/check",
		[]upload{{"file", "data.csv", "id\n1\n2\n"}},
		map[string]string{"rules": "column id should be unique"},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Expectation report: PASSED") {
		t.Errorf("unexpected report: %s", rec.Body.String())
	}
}

func TestHandleCheck_MissingFile(t *testing.T) {
	rec := postForm(t, "/check", nil, map[string]string{"rules": "column id: unique"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
