package histfeed

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fplstats/fpl-stats/internal/domain/stats"
	"github.com/fplstats/fpl-stats/internal/platform/logging"
	"github.com/fplstats/fpl-stats/internal/usecase"
)

const maxResponseBytes = 8 << 20

type ClientConfig struct {
	HTTPClient  *http.Client
	URLTemplate string
	Timeout     time.Duration
	Logger      *logging.Logger
}

// Client fetches one historical stats sheet per gameweek. The sheet is a
// CSV whose header starts with name, position, team; team values arrive
// as full club names and are translated to short names during parsing.
type Client struct {
	httpClient  *http.Client
	urlTemplate string
	logger      *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}
	if httpClient.Transport == nil {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	return &Client{
		httpClient:  httpClient,
		urlTemplate: strings.TrimSpace(cfg.URLTemplate),
		logger:      logger,
	}
}

// FetchGameweek downloads and parses the sheet for one gameweek. A 404
// means the sheet is not published yet and maps to not-found.
func (c *Client) FetchGameweek(ctx context.Context, gameweek int) (stats.HistorySheet, error) {
	if gameweek < 1 {
		return stats.HistorySheet{}, fmt.Errorf("gameweek must be >= 1")
	}
	if c.urlTemplate == "" {
		return stats.HistorySheet{}, fmt.Errorf("history url template is not configured")
	}

	fullURL := fmt.Sprintf(c.urlTemplate, gameweek)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return stats.HistorySheet{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "history sheet request failed", "gameweek", gameweek, "error", err)
		return stats.HistorySheet{}, crerr.Mark(fmt.Errorf("send request: %v", err), usecase.ErrDependencyUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return stats.HistorySheet{}, crerr.Mark(
			fmt.Errorf("stats for gameweek %d are not available yet", gameweek),
			usecase.ErrNotFound,
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "history sheet returned non-success status", "gameweek", gameweek, "status", resp.StatusCode)
		return stats.HistorySheet{}, crerr.Mark(fmt.Errorf("history feed status=%d", resp.StatusCode), usecase.ErrDependencyUnavailable)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return stats.HistorySheet{}, crerr.Mark(fmt.Errorf("read response body: %v", err), usecase.ErrDependencyUnavailable)
	}

	sheet, err := parseSheet(buf.B)
	if err != nil {
		return stats.HistorySheet{}, fmt.Errorf("parse gameweek %d sheet: %w", gameweek, err)
	}
	return sheet, nil
}

func parseSheet(raw []byte) (stats.HistorySheet, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return stats.HistorySheet{}, fmt.Errorf("read header: %w", err)
	}

	nameIdx, positionIdx, teamIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameIdx = i
		case "position":
			positionIdx = i
		case "team":
			teamIdx = i
		}
	}
	if nameIdx < 0 {
		return stats.HistorySheet{}, fmt.Errorf("sheet has no name column")
	}

	statColumns := make([]string, 0, len(header)-1)
	for i, col := range header {
		if i == nameIdx {
			continue
		}
		statColumns = append(statColumns, strings.TrimSpace(col))
	}

	sheet := stats.HistorySheet{StatColumns: statColumns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats.HistorySheet{}, fmt.Errorf("read record: %w", err)
		}
		if len(record) != len(header) {
			return stats.HistorySheet{}, fmt.Errorf("record has %d fields, header has %d", len(record), len(header))
		}

		row := stats.HistoryRow{Name: strings.TrimSpace(record[nameIdx])}
		if positionIdx >= 0 {
			row.Position = strings.TrimSpace(record[positionIdx])
		}
		if teamIdx >= 0 {
			// Sheets publish full club names; joined output uses short names.
			if abbr, ok := stats.TeamAbbreviation(strings.TrimSpace(record[teamIdx])); ok {
				record[teamIdx] = abbr
			}
			row.Team = strings.TrimSpace(record[teamIdx])
		}

		cells := make([]string, 0, len(statColumns))
		for i, value := range record {
			if i == nameIdx {
				continue
			}
			cells = append(cells, strings.TrimSpace(value))
		}
		row.Stats = cells
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}
