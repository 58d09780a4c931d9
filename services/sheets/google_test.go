package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
)

func newTestService(t *testing.T, h http.HandlerFunc) *GoogleService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := NewGoogleServiceWithOptions(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGetColumnFlattensRows(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/values/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":  "Clients!C1:C3",
			"values": [][]any{{"Email"}, {"ann@example.com"}, {"bob@example.com"}},
		})
	})

	got, err := svc.GetColumn(context.Background(), "sheet-1", "Clients!C:C")
	if err != nil {
		t.Fatalf("get column: %v", err)
	}
	if strings.Join(got, ",") != "Email,ann@example.com,bob@example.com" {
		t.Fatalf("got %v", got)
	}
}

func TestAppendRowUsesUserEntered(t *testing.T) {
	var gotOption string
	var gotValues [][]string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":append") {
			http.NotFound(w, r)
			return
		}
		gotOption = r.URL.Query().Get("valueInputOption")
		var body struct {
			Values [][]string `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotValues = body.Values
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	})

	row := []string{"Ann", "Lee", "ann@example.com", "555", "1990-01-01", "1 Main St"}
	if err := svc.AppendRow(context.Background(), "sheet-1", "Clients!A1", row); err != nil {
		t.Fatalf("append: %v", err)
	}
	if gotOption != "USER_ENTERED" {
		t.Fatalf("valueInputOption: %q", gotOption)
	}
	if len(gotValues) != 1 || strings.Join(gotValues[0], "|") != strings.Join(row, "|") {
		t.Fatalf("values: %v", gotValues)
	}
}

func TestGetColumnPropagatesAPIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})
	if _, err := svc.GetColumn(context.Background(), "sheet-1", "Clients!C:C"); err == nil {
		t.Fatalf("expected error")
	}
}
