package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"budgetvs/internal/core"

	goption "google.golang.org/api/option"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "abc"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "abc", CredentialsFile: "/non/existent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAppendExpense_Validation(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Expenses"}

	_, err := c.AppendExpense(context.Background(), "s1", core.ExpenseRecord{Category: "Food", Amount: -2, Date: core.NewDate(2024, 1, 1)})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = c.AppendExpense(context.Background(), "s1", core.ExpenseRecord{Category: "Food", Amount: 2, Date: core.NewDate(2024, 1, 1)})
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("expected uninitialized service error, got %v", err)
	}
}

func TestAppendExpense_FakeEndpoint(t *testing.T) {
	var (
		mu       sync.Mutex
		gotPath  string
		gotQuery string
		gotBody  struct {
			Values [][]string `json:"values"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"Expenses!A7:D7","updatedRows":1}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		SheetName:     "Expenses",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ref, err := c.AppendExpense(context.Background(), "s1", core.ExpenseRecord{Category: "Rent", Amount: 900, Date: core.NewDate(2024, 3, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "Expenses!A7:D7" {
		t.Errorf("ref = %q", ref)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(gotPath, "/spreadsheets/sheet-1/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "valueInputOption=USER_ENTERED") || !strings.Contains(gotQuery, "insertDataOption=INSERT_ROWS") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(gotBody.Values) != 1 || strings.Join(gotBody.Values[0], "|") != "2024-03-01|Rent|900.00|s1" {
		t.Errorf("unexpected body %+v", gotBody.Values)
	}
}
