// Package finance implements the finance agent backed by the Yahoo
// Finance quote API. It reports price, fundamentals, analyst
// recommendations, and company info for whichever ticker the query
// resolves to.
package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
)

const agentID = "finance"

// quoteModules selects the quoteSummary sections we consume.
const quoteModules = "price,summaryDetail,financialData,defaultKeyStatistics,recommendationTrend,assetProfile"

// Agent queries Yahoo Finance for structured financial data.
type Agent struct {
	endpoint string
	client   *http.Client
	log      *logging.Logger
}

// New creates a finance agent. endpoint defaults to the public Yahoo
// query host when empty; tests point it at a local server.
func New(endpoint string, log *logging.Logger) *Agent {
	if endpoint == "" {
		endpoint = "https://query1.finance.yahoo.com"
	}
	return &Agent{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log.Sub("agent.finance"),
	}
}

func (a *Agent) ID() string             { return agentID }
func (a *Agent) Kind() domain.AgentKind { return domain.KindFinance }

// yahooValue is Yahoo's {raw, fmt} number wrapper.
type yahooValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteResult struct {
	Price struct {
		RegularMarketPrice         yahooValue `json:"regularMarketPrice"`
		RegularMarketChange        yahooValue `json:"regularMarketChange"`
		RegularMarketChangePercent yahooValue `json:"regularMarketChangePercent"`
		MarketCap                  yahooValue `json:"marketCap"`
		Currency                   string     `json:"currency"`
		ShortName                  string     `json:"shortName"`
	} `json:"price"`
	SummaryDetail struct {
		TrailingPE yahooValue `json:"trailingPE"`
	} `json:"summaryDetail"`
	FinancialData struct {
		TargetMeanPrice yahooValue `json:"targetMeanPrice"`
		RevenueGrowth   yahooValue `json:"revenueGrowth"`
		ProfitMargins   yahooValue `json:"profitMargins"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		TrailingEps yahooValue `json:"trailingEps"`
	} `json:"defaultKeyStatistics"`
	RecommendationTrend struct {
		Trend []struct {
			Period     string `json:"period"`
			StrongBuy  int    `json:"strongBuy"`
			Buy        int    `json:"buy"`
			Hold       int    `json:"hold"`
			Sell       int    `json:"sell"`
			StrongSell int    `json:"strongSell"`
		} `json:"trend"`
	} `json:"recommendationTrend"`
	AssetProfile struct {
		Sector              string `json:"sector"`
		Industry            string `json:"industry"`
		Website             string `json:"website"`
		Country             string `json:"country"`
		FullTimeEmployees   int    `json:"fullTimeEmployees"`
		LongBusinessSummary string `json:"longBusinessSummary"`
	} `json:"assetProfile"`
}

// Fetch resolves the query to a ticker and returns its financial data.
// A query that matches no ticker yields a placeholder response rather
// than a failure, so team mode can still report the other agent's answer.
func (a *Agent) Fetch(ctx context.Context, q domain.Query) (domain.AgentResponse, error) {
	start := time.Now()

	symbol, name, err := a.resolveTicker(ctx, q.Text)
	if err != nil {
		return domain.AgentResponse{}, err
	}
	if symbol == "" {
		a.log.Debug().Str("query", q.Text).Msg("no ticker resolved")
		return domain.AgentResponse{
			AgentID:  agentID,
			Kind:     domain.KindFinance,
			Content:  fmt.Sprintf("No ticker symbol matched %q.", q.Text),
			Duration: time.Since(start),
		}, nil
	}

	data, err := a.quoteSummary(ctx, symbol)
	if err != nil {
		return domain.AgentResponse{}, err
	}
	if data.Company.Name == "" {
		data.Company.Name = name
	}

	a.log.Debug().Str("query", q.Text).Str("symbol", symbol).Msg("finance lookup completed")

	return domain.AgentResponse{
		AgentID:  agentID,
		Kind:     domain.KindFinance,
		Content:  formatFinance(data),
		Finance:  data,
		Duration: time.Since(start),
	}, nil
}

// resolveTicker maps a company name or symbol to an equity ticker using
// Yahoo's symbol search. Returns an empty symbol when nothing matches.
func (a *Agent) resolveTicker(ctx context.Context, text string) (symbol, name string, err error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("quotesCount", "5")
	params.Set("newsCount", "0")

	body, code, err := a.get(ctx, "/v1/finance/search?"+params.Encode())
	if err != nil {
		return "", "", err
	}
	if code != http.StatusOK {
		return "", "", &domain.AgentError{AgentID: agentID, Code: code, Message: strings.TrimSpace(string(body))}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", &domain.AgentError{AgentID: agentID, Message: "parsing search response: " + err.Error()}
	}

	for _, quote := range parsed.Quotes {
		if quote.Symbol == "" {
			continue
		}
		if quote.QuoteType == "" || quote.QuoteType == "EQUITY" || quote.QuoteType == "ETF" {
			return quote.Symbol, quote.ShortName, nil
		}
	}
	return "", "", nil
}

// quoteSummary fetches the structured quote data for a symbol.
func (a *Agent) quoteSummary(ctx context.Context, symbol string) (*domain.FinanceData, error) {
	path := fmt.Sprintf("/v10/finance/quoteSummary/%s?modules=%s", url.PathEscape(symbol), quoteModules)

	body, code, err := a.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, &domain.AgentError{AgentID: agentID, Code: code, Message: strings.TrimSpace(string(body))}
	}

	var parsed quoteSummaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &domain.AgentError{AgentID: agentID, Message: "parsing quote response: " + err.Error()}
	}
	if qerr := parsed.QuoteSummary.Error; qerr != nil {
		return nil, &domain.AgentError{AgentID: agentID, Message: qerr.Description}
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, &domain.AgentError{AgentID: agentID, Message: "empty quote summary for " + symbol}
	}

	r := parsed.QuoteSummary.Result[0]
	data := &domain.FinanceData{
		Symbol:        symbol,
		Price:         r.Price.RegularMarketPrice.Raw,
		Currency:      r.Price.Currency,
		Change:        r.Price.RegularMarketChange.Raw,
		ChangePercent: r.Price.RegularMarketChangePercent.Raw,
		Fundamentals: domain.Fundamentals{
			MarketCap:       r.Price.MarketCap.Raw,
			TrailingPE:      r.SummaryDetail.TrailingPE.Raw,
			EPS:             r.DefaultKeyStatistics.TrailingEps.Raw,
			TargetMeanPrice: r.FinancialData.TargetMeanPrice.Raw,
			RevenueGrowth:   r.FinancialData.RevenueGrowth.Raw,
			ProfitMargin:    r.FinancialData.ProfitMargins.Raw,
		},
		Company: domain.CompanyInfo{
			Name:      r.Price.ShortName,
			Sector:    r.AssetProfile.Sector,
			Industry:  r.AssetProfile.Industry,
			Website:   r.AssetProfile.Website,
			Country:   r.AssetProfile.Country,
			Employees: r.AssetProfile.FullTimeEmployees,
			Summary:   r.AssetProfile.LongBusinessSummary,
		},
	}
	for _, t := range r.RecommendationTrend.Trend {
		data.Recommendations = append(data.Recommendations, domain.RecommendationTrend{
			Period:     t.Period,
			StrongBuy:  t.StrongBuy,
			Buy:        t.Buy,
			Hold:       t.Hold,
			Sell:       t.Sell,
			StrongSell: t.StrongSell,
		})
	}
	return data, nil
}

func (a *Agent) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+path, nil)
	if err != nil {
		return nil, 0, &domain.AgentError{AgentID: agentID, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	// Yahoo rejects requests without a browser-like user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; finsight)")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, &domain.AgentError{AgentID: agentID, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &domain.AgentError{AgentID: agentID, Message: "reading response: " + err.Error()}
	}
	return body, resp.StatusCode, nil
}

// formatFinance renders the structured data as text tables, matching how
// the aggregate is displayed downstream.
func formatFinance(d *domain.FinanceData) string {
	var b strings.Builder
	title := d.Company.Name
	if title == "" {
		title = d.Symbol
	}
	fmt.Fprintf(&b, "Financial data for %s (%s)\n\n", title, d.Symbol)

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Price | %.2f %s |\n", d.Price, d.Currency)
	fmt.Fprintf(&b, "| Change | %+.2f (%+.2f%%) |\n", d.Change, d.ChangePercent*100)
	if d.Fundamentals.MarketCap > 0 {
		fmt.Fprintf(&b, "| Market cap | %.0f |\n", d.Fundamentals.MarketCap)
	}
	if d.Fundamentals.TrailingPE > 0 {
		fmt.Fprintf(&b, "| Trailing P/E | %.2f |\n", d.Fundamentals.TrailingPE)
	}
	if d.Fundamentals.EPS != 0 {
		fmt.Fprintf(&b, "| EPS | %.2f |\n", d.Fundamentals.EPS)
	}
	if d.Fundamentals.TargetMeanPrice > 0 {
		fmt.Fprintf(&b, "| Analyst target | %.2f |\n", d.Fundamentals.TargetMeanPrice)
	}

	if len(d.Recommendations) > 0 {
		t := d.Recommendations[0]
		fmt.Fprintf(&b, "\nAnalyst recommendations: %d strong buy, %d buy, %d hold, %d sell, %d strong sell\n",
			t.StrongBuy, t.Buy, t.Hold, t.Sell, t.StrongSell)
	}

	if d.Company.Sector != "" {
		fmt.Fprintf(&b, "\nCompany: %s / %s", d.Company.Sector, d.Company.Industry)
		if d.Company.Website != "" {
			fmt.Fprintf(&b, " — %s", d.Company.Website)
		}
		b.WriteString("\n")
	}
	return b.String()
}
