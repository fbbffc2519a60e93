package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/llm"
	"github.com/glimpse-data/glimpse/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	explainer, err := insight.NewExplainer(llm.Config{})
	if err != nil {
		t.Fatalf("NewExplainer failed: %v", err)
	}
	api := New(zerolog.Nop(), model.DefaultConfig(), explainer)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func uploadCSV(t *testing.T, srv *httptest.Server, csv string) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "data.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(csv)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/datasets", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	return out.ID
}

func getJSON(t *testing.T, url string, v interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestUploadAndSummary(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "city,temp\nparis,1\nlyon,2\n")

	var out struct {
		Summary string `json:"summary"`
	}
	getJSON(t, srv.URL+"/api/v1/datasets/"+id+"/summary", &out)
	if !strings.Contains(out.Summary, "2 rows x 2 columns") {
		t.Errorf("summary missing shape line:\n%s", out.Summary)
	}
}

func TestUpload_RejectsMalformedCSV(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "bad.csv")
	fw.Write([]byte("a,b\n1,2,3\n"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/datasets", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for malformed CSV, got %d", resp.StatusCode)
	}
}

func TestGet_UnknownDataset(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/datasets/nope/summary")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestForecast_EndToEndLinearSeries(t *testing.T) {
	srv := newTestServer(t)

	// 100 rows of linearly growing sales
	var b strings.Builder
	b.WriteString("date,sales\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "%s,%g\n", start.AddDate(0, 0, i).Format("2006-01-02"), 10+2*float64(i))
	}
	id := uploadCSV(t, srv, b.String())

	var f struct {
		Target    string `json:"target"`
		Predicted []struct {
			Date  time.Time `json:"date"`
			Value float64   `json:"value"`
		} `json:"predicted"`
	}
	getJSON(t, srv.URL+"/api/v1/datasets/"+id+"/forecast?target=sales&horizon=10", &f)

	if len(f.Predicted) != 10 {
		t.Fatalf("expected 10 predictions, got %d", len(f.Predicted))
	}
	lastObserved := start.AddDate(0, 0, 99)
	for i, p := range f.Predicted {
		if !p.Date.After(lastObserved) {
			t.Errorf("prediction %d: date %s not after last observed %s", i, p.Date, lastObserved)
		}
		want := 10 + 2*float64(100+i)
		if diff := p.Value - want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("prediction %d: expected %v, got %v", i, want, p.Value)
		}
	}
}

func TestForecast_UnavailableWithoutDateColumn(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "sales\n1\n2\n3\n")

	var out struct {
		Unavailable bool   `json:"unavailable"`
		Reason      string `json:"reason"`
	}
	getJSON(t, srv.URL+"/api/v1/datasets/"+id+"/forecast", &out)
	if !out.Unavailable || out.Reason == "" {
		t.Errorf("expected unavailable forecast with a reason, got %+v", out)
	}
}

func TestReport_AllStages(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "date,sales\n2024-01-01,1\n2024-01-02,2\n2024-01-03,3\n")

	var report struct {
		Stages []struct {
			Stage string `json:"stage"`
		} `json:"stages"`
	}
	getJSON(t, srv.URL+"/api/v1/datasets/"+id+"/report", &report)
	if len(report.Stages) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(report.Stages))
	}
}

func TestCorrelationChart_Renders(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "a,b\n1,2\n2,4\n3,6\n")

	resp, err := http.Get(srv.URL + "/charts/" + id + "/correlation")
	if err != nil {
		t.Fatalf("GET chart: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected HTML content type, got %s", ct)
	}
}

func TestForecastChart_UnavailableIsNotAnError(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "sales\n1\n2\n3\n")

	resp, err := http.Get(srv.URL + "/charts/" + id + "/forecast")
	if err != nil {
		t.Fatalf("GET chart: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected HTML content type, got %s", ct)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(body.String(), "forecast unavailable") {
		t.Errorf("expected the unavailability reason in the body, got:\n%s", body.String())
	}
}

func TestInsights_RuleBasedByDefault(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "v\n1\n1\n1\n1\n100\n")

	var out struct {
		Insights []string `json:"insights"`
	}
	getJSON(t, srv.URL+"/api/v1/datasets/"+id+"/insights", &out)
	if len(out.Insights) == 0 {
		t.Fatal("expected at least one insight")
	}
}
