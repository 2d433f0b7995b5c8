// Package model defines the PredictIt market payload and the extraction
// envelope that moves through the pipeline.
package model

import (
	"encoding/json"
	"time"
)

// MarketList is the top-level body returned by the market data API.
type MarketList struct {
	Markets []Market `json:"markets"`
}

// Market is a single prediction market with its nested contracts.
type Market struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	ShortName string     `json:"shortName"`
	Image     string     `json:"image,omitempty"`
	URL       string     `json:"url"`
	Status    string     `json:"status"`
	Contracts []Contract `json:"contracts"`
	TimeStamp string     `json:"timeStamp,omitempty"`
}

// Contract is one tradeable outcome within a market.
type Contract struct {
	ID              int      `json:"id"`
	DateEnd         string   `json:"dateEnd,omitempty"`
	Image           string   `json:"image,omitempty"`
	Name            string   `json:"name"`
	ShortName       string   `json:"shortName,omitempty"`
	Status          string   `json:"status"`
	LastTradePrice  *float64 `json:"lastTradePrice"`
	BestBuyYesCost  *float64 `json:"bestBuyYesCost"`
	BestBuyNoCost   *float64 `json:"bestBuyNoCost"`
	BestSellYesCost *float64 `json:"bestSellYesCost"`
	BestSellNoCost  *float64 `json:"bestSellNoCost"`
	LastClosePrice  *float64 `json:"lastClosePrice"`
	DisplayOrder    int      `json:"displayOrder"`
}

// Envelope wraps an extracted payload with provenance metadata. Data holds
// the API response verbatim so the staged file preserves the source bytes.
type Envelope struct {
	ExtractedAt time.Time       `json:"extracted_at"`
	Source      string          `json:"source"`
	Data        json.RawMessage `json:"data"`
}
