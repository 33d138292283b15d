package domain

import "time"

// AgentKind classifies what a backend agent returns.
type AgentKind string

const (
	KindWebSearch AgentKind = "websearch"
	KindNews      AgentKind = "news"
	KindFinance   AgentKind = "finance"
)

// SearchResult is one web search snippet.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Headline is one news item.
type Headline struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// RecommendationTrend summarizes analyst ratings for one period.
type RecommendationTrend struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// Fundamentals carries the financial-data fields the finance agent reports.
type Fundamentals struct {
	MarketCap       float64 `json:"marketCap,omitempty"`
	TrailingPE      float64 `json:"trailingPe,omitempty"`
	EPS             float64 `json:"eps,omitempty"`
	TargetMeanPrice float64 `json:"targetMeanPrice,omitempty"`
	RevenueGrowth   float64 `json:"revenueGrowth,omitempty"`
	ProfitMargin    float64 `json:"profitMargin,omitempty"`
}

// CompanyInfo is the company profile portion of a finance response.
type CompanyInfo struct {
	Name      string `json:"name,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
	Website   string `json:"website,omitempty"`
	Country   string `json:"country,omitempty"`
	Employees int    `json:"employees,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// FinanceData is the structured payload of a finance agent response.
type FinanceData struct {
	Symbol          string                `json:"symbol"`
	Price           float64               `json:"price"`
	Currency        string                `json:"currency,omitempty"`
	Change          float64               `json:"change,omitempty"`
	ChangePercent   float64               `json:"changePercent,omitempty"`
	Fundamentals    Fundamentals          `json:"fundamentals"`
	Recommendations []RecommendationTrend `json:"recommendations,omitempty"`
	Company         CompanyInfo           `json:"company"`
}

// AgentResponse is the outcome of one agent invocation. A failed call is
// recorded in place (Failed + Error) instead of discarding the whole result,
// so team mode can report the surviving agent's answer.
type AgentResponse struct {
	AgentID   string          `json:"agentId"`
	Kind      AgentKind       `json:"kind"`
	Content   string          `json:"content,omitempty"`
	Results   []SearchResult  `json:"results,omitempty"`
	Headlines []Headline      `json:"headlines,omitempty"`
	Finance   *FinanceData    `json:"finance,omitempty"`
	Duration  time.Duration   `json:"duration"`
	Failed    bool            `json:"failed,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Status classifies an aggregated result.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// AggregatedResult is the ordered collection of per-agent responses
// produced for a single query. Ordering is stable per mode: team mode
// always lists news before finance.
type AggregatedResult struct {
	Query     Query           `json:"query"`
	Responses []AgentResponse `json:"responses"`
	Combined  string          `json:"combined"`
	Status    Status          `json:"status"`
	Duration  time.Duration   `json:"duration"`
}

// Succeeded returns the responses that completed without a failure marker.
func (r *AggregatedResult) Succeeded() []AgentResponse {
	out := make([]AgentResponse, 0, len(r.Responses))
	for _, resp := range r.Responses {
		if !resp.Failed {
			out = append(out, resp)
		}
	}
	return out
}
