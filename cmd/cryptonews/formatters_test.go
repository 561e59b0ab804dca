package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pevans/cryptonews/discovery"
	"github.com/pevans/cryptonews/newsfeed"
	"github.com/pevans/cryptonews/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArticles() []newsfeed.Article {
	return []newsfeed.Article{
		{
			Title:       "Bitcoin hits new high",
			Link:        "http://example.com/btc",
			Description: "Prices rose sharply...",
			Source:      "CoinDesk",
			PubDate:     "Mon, 15 Jan 2024 10:30:00 +0000",
			Timestamp:   1705314600,
		},
		{
			Title:       "Ether upgrade ships",
			Link:        "http://example.com/eth",
			Description: "Developers confirmed...",
			Source:      "CryptoSlate",
			Timestamp:   1705300000,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    outputFormat
		wantErr bool
	}{
		{"table", formatTable, false},
		{"JSON", formatJSON, false},
		{"compact", formatCompact, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintListTable(t *testing.T) {
	var buf bytes.Buffer
	printListTable(&buf, testArticles(), 5)

	out := buf.String()
	assert.Contains(t, out, "Showing 2 of 5 articles")
	assert.Contains(t, out, "Bitcoin hits new high")
	assert.Contains(t, out, "CoinDesk | Published: Mon, 15 Jan 2024 10:30:00 +0000")
	assert.Contains(t, out, "CryptoSlate | Published: 2024-01-15 06:26")
	assert.Contains(t, out, "URL: http://example.com/eth")
}

func TestPrintListTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	printListTable(&buf, nil, 0)
	assert.Equal(t, "No articles to display.\n", buf.String())
}

func TestPrintListJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printListJSON(&buf, testArticles(), 2))

	var decoded struct {
		Articles []map[string]any `json:"articles"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Total)
	require.Len(t, decoded.Articles, 2)
	assert.Equal(t, "Bitcoin hits new high", decoded.Articles[0]["title"])
	assert.Equal(t, "Mon, 15 Jan 2024 10:30:00 +0000", decoded.Articles[0]["pub_date"])
}

func TestPrintListCompact(t *testing.T) {
	var buf bytes.Buffer
	printListCompact(&buf, testArticles())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-01-15 10:30 Bitcoin hits new high (CoinDesk)", lines[0])
}

func TestPrintRefreshSummary(t *testing.T) {
	result := &discovery.RefreshResult{
		Articles:      testArticles(),
		SourcesSynced: 1,
		SourcesFailed: 1,
		Errors: []discovery.SourceError{
			{Source: sources.Source{Name: "Broken"}, Err: errors.New("HTTP 500")},
		},
	}

	var quiet, verbose bytes.Buffer
	printRefreshSummary(&quiet, result, false)
	printRefreshSummary(&verbose, result, true)

	assert.Contains(t, quiet.String(), "Sources failed: 1")
	assert.Contains(t, quiet.String(), "Articles: 2")
	assert.NotContains(t, quiet.String(), "Broken")
	assert.Contains(t, verbose.String(), "- Broken: HTTP 500")
}

func TestPrintSources(t *testing.T) {
	success := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	lastErr := "HTTP 503"
	statuses := []sources.SourceStatus{
		{Name: "CoinDesk", URL: "http://coindesk", LastSuccessAt: &success, ArticleCount: 25},
		{Name: "CryptoSlate", URL: "http://cryptoslate", FetchErrorCount: 2, LastError: &lastErr},
	}

	var buf bytes.Buffer
	printSources(&buf, statuses)

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "CoinDesk")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "last error: HTTP 503")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ünï...", truncate("ünïcödé!", 6))
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "one two\n  three", wrapText("one two three", 8, "  "))
	assert.Equal(t, "", wrapText("", 10, ""))
}
