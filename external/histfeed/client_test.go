package histfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fplstats/fpl-stats/internal/platform/logging"
	"github.com/fplstats/fpl-stats/internal/usecase"
)

const sheetCSV = "name,position,team,xP,total_points,minutes\n" +
	"Bukayo Saka,MID,Arsenal,5.2,12,90\n" +
	"Emiliano Martinez,GK,Aston Villa,3.1,2,90\n"

func TestFetchGameweek_ParsesSheet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gw3.csv" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(sheetCSV))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		URLTemplate: server.URL + "/gw%d.csv",
		Logger:      logging.NewNop(),
	})

	sheet, err := client.FetchGameweek(context.Background(), 3)
	if err != nil {
		t.Fatalf("fetch gameweek: %v", err)
	}
	if len(sheet.StatColumns) != 5 || sheet.StatColumns[0] != "position" || sheet.StatColumns[4] != "minutes" {
		t.Fatalf("unexpected stat columns: %v", sheet.StatColumns)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}

	saka := sheet.Rows[0]
	if saka.Name != "Bukayo Saka" || saka.Position != "MID" {
		t.Fatalf("unexpected row: %+v", saka)
	}
	if saka.Team != "ARS" {
		t.Fatalf("full club name should be shortened, got %q", saka.Team)
	}
	if saka.Stats[1] != "ARS" {
		t.Fatalf("team stat cell should carry the short name, got %q", saka.Stats[1])
	}
	if saka.Stats[2] != "5.2" || saka.Stats[3] != "12" {
		t.Fatalf("unexpected stat cells: %v", saka.Stats)
	}
}

func TestFetchGameweek_NotPublishedYet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		URLTemplate: server.URL + "/gw%d.csv",
		Logger:      logging.NewNop(),
	})

	_, err := client.FetchGameweek(context.Background(), 38)
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestFetchGameweek_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		URLTemplate: server.URL + "/gw%d.csv",
		Logger:      logging.NewNop(),
	})

	_, err := client.FetchGameweek(context.Background(), 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency-unavailable, got %v", err)
	}
}

func TestParseSheet_RejectsRaggedRecords(t *testing.T) {
	_, err := parseSheet([]byte("name,team\nSaka,Arsenal,extra\n"))
	if err == nil {
		t.Fatal("expected ragged record to be rejected")
	}
}

func TestParseSheet_RequiresNameColumn(t *testing.T) {
	_, err := parseSheet([]byte("team,points\nArsenal,12\n"))
	if err == nil {
		t.Fatal("expected missing name column to be rejected")
	}
}
