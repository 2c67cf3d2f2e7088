//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"budgetvs/internal/core"
)

// Integration tests require a real spreadsheet shared with the service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_AppendExpense(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	credsJSON := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	credsFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if credsJSON == "" && credsFile == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := New(ctx, Options{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: credsJSON,
		CredentialsFile: credsFile,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	now := time.Now().UTC()
	ref, err := client.AppendExpense(ctx, "integration-test", core.ExpenseRecord{
		Category: "Integration",
		Amount:   0.01,
		Date:     core.NewDate(now.Year(), int(now.Month()), now.Day()),
	})
	if err != nil {
		t.Fatalf("AppendExpense failed: %v", err)
	}
	t.Logf("Appended row at %s", ref)
}
