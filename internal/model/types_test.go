package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketListUnmarshal(t *testing.T) {
	body := `{
		"markets": [
			{
				"id": 7419,
				"name": "Which party will win the 2028 election?",
				"shortName": "2028 election winner",
				"url": "https://www.predictit.org/markets/detail/7419",
				"status": "Open",
				"contracts": [
					{
						"id": 24812,
						"name": "Democratic",
						"status": "Open",
						"lastTradePrice": 0.53,
						"bestBuyYesCost": 0.54,
						"bestBuyNoCost": 0.48,
						"bestSellYesCost": 0.52,
						"bestSellNoCost": 0.46,
						"lastClosePrice": 0.53,
						"displayOrder": 1
					},
					{
						"id": 24813,
						"name": "Republican",
						"status": "Open",
						"lastTradePrice": null,
						"bestBuyYesCost": 0.49,
						"bestBuyNoCost": 0.53,
						"bestSellYesCost": null,
						"bestSellNoCost": null,
						"lastClosePrice": 0.47,
						"displayOrder": 2
					}
				],
				"timeStamp": "2026-02-23T14:30:00.1234567"
			}
		]
	}`

	var list MarketList
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list.Markets, 1)

	m := list.Markets[0]
	assert.Equal(t, 7419, m.ID)
	assert.Equal(t, "Open", m.Status)
	require.Len(t, m.Contracts, 2)

	require.NotNil(t, m.Contracts[0].LastTradePrice)
	assert.InDelta(t, 0.53, *m.Contracts[0].LastTradePrice, 1e-9)

	// Untraded contracts come back with null prices.
	assert.Nil(t, m.Contracts[1].LastTradePrice)
	assert.Equal(t, 2, m.Contracts[1].DisplayOrder)
}

func TestEnvelopePreservesPayloadBytes(t *testing.T) {
	payload := []byte(`{"markets":[{"id":1,"name":"m","shortName":"m","url":"u","status":"Open","contracts":[]}]}`)

	env := Envelope{Source: "https://example.org/api", Data: payload}
	out, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.JSONEq(t, string(payload), string(decoded.Data))
	assert.Equal(t, "https://example.org/api", decoded.Source)
}
