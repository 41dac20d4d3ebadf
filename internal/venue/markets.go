package venue

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// ExchangeStatus fetches the venue's exchange status (public endpoint).
func (c *Client) ExchangeStatus(ctx context.Context) (*ExchangeStatusResponse, error) {
	var resp ExchangeStatusResponse
	if err := c.get(ctx, "/exchange/status", nil, &resp); err != nil {
		return nil, upstreamErr("get exchange status", "", err)
	}
	return &resp, nil
}

// Balance fetches the portfolio balance (credentialed endpoint); used as the
// authenticated handshake probe.
func (c *Client) Balance(ctx context.Context) (*BalanceResponse, error) {
	var resp BalanceResponse
	if err := c.get(ctx, "/portfolio/balance", nil, &resp); err != nil {
		return nil, upstreamErr("get balance", "", err)
	}
	return &resp, nil
}

// Markets fetches up to limit markets.
func (c *Client) Markets(ctx context.Context, limit int) ([]APIMarket, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, upstreamErr("list markets", "", err)
	}

	return resp.Markets, nil
}

// Market fetches a single market by ticker.
func (c *Client) Market(ctx context.Context, ticker string) (*APIMarket, error) {
	var resp SingleMarketResponse
	if err := c.get(ctx, "/markets/"+ticker, nil, &resp); err != nil {
		return nil, upstreamErr("get market", ticker, err)
	}
	return &resp.Market, nil
}

// Orderbook fetches the order book for a market.
func (c *Client) Orderbook(ctx context.Context, ticker string) (*APIOrderbook, error) {
	var resp OrderbookResponse
	if err := c.get(ctx, "/markets/"+ticker+"/orderbook", nil, &resp); err != nil {
		return nil, upstreamErr("get orderbook", ticker, err)
	}
	return &resp.Orderbook, nil
}

// Trades fetches up to limit raw trade records for a market, newest first.
func (c *Client) Trades(ctx context.Context, ticker string, limit int) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("ticker", ticker)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp TradesResponse
	if err := c.get(ctx, "/markets/trades", query, &resp); err != nil {
		return nil, upstreamErr("list trades", ticker, err)
	}

	return resp.Trades, nil
}
