package finance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent", "")
}

const teslaSearch = `{
	"quotes": [
		{"symbol": "TSLA", "shortname": "Tesla, Inc.", "quoteType": "EQUITY"}
	]
}`

const teslaQuote = `{
	"quoteSummary": {
		"result": [{
			"price": {
				"regularMarketPrice": {"raw": 242.50},
				"regularMarketChange": {"raw": 3.10},
				"regularMarketChangePercent": {"raw": 0.0129},
				"marketCap": {"raw": 770000000000},
				"currency": "USD",
				"shortName": "Tesla, Inc."
			},
			"summaryDetail": {"trailingPE": {"raw": 68.4}},
			"financialData": {
				"targetMeanPrice": {"raw": 255.0},
				"revenueGrowth": {"raw": 0.08},
				"profitMargins": {"raw": 0.11}
			},
			"defaultKeyStatistics": {"trailingEps": {"raw": 3.55}},
			"recommendationTrend": {
				"trend": [{"period": "0m", "strongBuy": 7, "buy": 12, "hold": 16, "sell": 5, "strongSell": 3}]
			},
			"assetProfile": {
				"sector": "Consumer Cyclical",
				"industry": "Auto Manufacturers",
				"website": "https://www.tesla.com",
				"country": "United States",
				"fullTimeEmployees": 140000
			}
		}],
		"error": null
	}
}`

func newTestServer(t *testing.T, searchBody, quoteBody string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/finance/search"):
			w.Write([]byte(searchBody))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			w.Write([]byte(quoteBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_ResolvesTickerAndParsesQuote(t *testing.T) {
	srv := newTestServer(t, teslaSearch, teslaQuote)
	a := New(srv.URL, testLogger())

	resp, err := a.Fetch(context.Background(), domain.Query{Text: "Tesla", Mode: domain.ModeFinance})
	require.NoError(t, err)

	assert.Equal(t, "finance", resp.AgentID)
	assert.Equal(t, domain.KindFinance, resp.Kind)
	require.NotNil(t, resp.Finance)
	assert.Equal(t, "TSLA", resp.Finance.Symbol)
	assert.InDelta(t, 242.50, resp.Finance.Price, 0.001)
	assert.Equal(t, "USD", resp.Finance.Currency)
	assert.InDelta(t, 68.4, resp.Finance.Fundamentals.TrailingPE, 0.001)
	require.Len(t, resp.Finance.Recommendations, 1)
	assert.Equal(t, 7, resp.Finance.Recommendations[0].StrongBuy)
	assert.Equal(t, "Consumer Cyclical", resp.Finance.Company.Sector)

	// content includes price and recommendations
	assert.Contains(t, resp.Content, "242.50 USD")
	assert.Contains(t, resp.Content, "Analyst recommendations")
	assert.False(t, resp.Failed)
}

func TestFetch_NoTickerYieldsPlaceholder(t *testing.T) {
	srv := newTestServer(t, `{"quotes": []}`, teslaQuote)
	a := New(srv.URL, testLogger())

	resp, err := a.Fetch(context.Background(), domain.Query{Text: "elections", Mode: domain.ModeFinance})
	require.NoError(t, err)

	assert.Nil(t, resp.Finance)
	assert.False(t, resp.Failed)
	assert.Contains(t, resp.Content, `No ticker symbol matched "elections"`)
}

func TestFetch_SkipsNonEquityQuotes(t *testing.T) {
	search := `{"quotes": [
		{"symbol": "^TSLA-IDX", "quoteType": "INDEX"},
		{"symbol": "TSLA", "shortname": "Tesla, Inc.", "quoteType": "EQUITY"}
	]}`
	srv := newTestServer(t, search, teslaQuote)
	a := New(srv.URL, testLogger())

	resp, err := a.Fetch(context.Background(), domain.Query{Text: "Tesla"})
	require.NoError(t, err)
	assert.Equal(t, "TSLA", resp.Finance.Symbol)
}

func TestFetch_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	a := New(srv.URL, testLogger())
	_, err := a.Fetch(context.Background(), domain.Query{Text: "Tesla"})
	require.Error(t, err)

	var agentErr *domain.AgentError
	require.ErrorAs(t, err, &agentErr)
	assert.Equal(t, http.StatusBadGateway, agentErr.Code)
}

func TestFetch_QuoteSummaryError(t *testing.T) {
	quote := `{"quoteSummary": {"result": [], "error": {"code": "Not Found", "description": "Quote not found for symbol"}}}`
	srv := newTestServer(t, teslaSearch, quote)
	a := New(srv.URL, testLogger())

	_, err := a.Fetch(context.Background(), domain.Query{Text: "Tesla"})
	require.Error(t, err)

	var agentErr *domain.AgentError
	require.ErrorAs(t, err, &agentErr)
	assert.Contains(t, agentErr.Message, "Quote not found")
}
