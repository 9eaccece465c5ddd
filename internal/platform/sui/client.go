// Package sui is a JSON-RPC client for a Sui-style fullnode: pool object
// snapshots, owned coin objects, coin metadata, and protocol event queries.
// It is read-only; transaction submission is out of scope.
package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
)

// Client talks JSON-RPC to a fullnode over HTTP.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// NewClient creates a fullnode client for the given RPC endpoint.
func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetPool fetches a pool object snapshot with its content and decodes it
// into the domain model.
func (c *Client) GetPool(ctx context.Context, poolID string) (*domain.Pool, error) {
	params := []any{
		poolID,
		map[string]bool{"showContent": true, "showType": true},
	}
	raw, err := c.call(ctx, "sui_getObject", params)
	if err != nil {
		return nil, fmt.Errorf("sui: get pool %s: %w", poolID, err)
	}

	var resp objectResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("sui: decode pool %s: %w", poolID, err)
	}
	if resp.Data == nil || resp.Data.Content == nil {
		return nil, fmt.Errorf("sui: pool %s: %w", poolID, domain.ErrNotFound)
	}

	var fields poolFields
	if err := json.Unmarshal(resp.Data.Content.Fields, &fields); err != nil {
		return nil, fmt.Errorf("sui: decode pool %s fields: %w", poolID, err)
	}
	if len(fields.CoinTypes) != len(fields.Balances) {
		return nil, fmt.Errorf("sui: pool %s types/balances length skew (%d/%d)",
			poolID, len(fields.CoinTypes), len(fields.Balances))
	}

	lpType, err := lpTypeFromObjectType(resp.Data.Type)
	if err != nil {
		return nil, err
	}
	lpSupply, ok := sdkmath.NewIntFromString(fields.LPSupply.Fields.Value)
	if !ok {
		return nil, fmt.Errorf("sui: pool %s: bad lp supply %q", poolID, fields.LPSupply.Fields.Value)
	}
	version, err := strconv.ParseUint(resp.Data.Version, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("sui: pool %s: bad version %q: %w", poolID, resp.Data.Version, err)
	}
	if err := validateDigest(resp.Data.Digest); err != nil {
		return nil, err
	}

	reserves := make(map[domain.CoinType]sdkmath.Int, len(fields.CoinTypes))
	for i, ct := range fields.CoinTypes {
		balance, ok := sdkmath.NewIntFromString(fields.Balances[i])
		if !ok {
			return nil, fmt.Errorf("sui: pool %s: bad balance %q for %s", poolID, fields.Balances[i], ct)
		}
		reserves[domain.CoinType(ct)] = balance
	}

	return &domain.Pool{
		ID:         resp.Data.ObjectID,
		Name:       fields.Name,
		LPCoinType: lpType,
		LPSupply:   lpSupply,
		Reserves:   reserves,
		Ref: domain.ObjectRef{
			ObjectID: resp.Data.ObjectID,
			Version:  version,
			Digest:   resp.Data.Digest,
		},
	}, nil
}

// OwnedCoins lists every coin object of the given type owned by owner,
// following pagination to the end.
func (c *Client) OwnedCoins(ctx context.Context, owner string, coinType domain.CoinType) ([]domain.CoinObject, error) {
	var (
		coins  []domain.CoinObject
		cursor any
	)
	for {
		raw, err := c.call(ctx, "suix_getCoins", []any{owner, string(coinType), cursor, nil})
		if err != nil {
			return nil, fmt.Errorf("sui: get coins %s for %s: %w", coinType, owner, err)
		}

		var page coinPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("sui: decode coin page: %w", err)
		}

		for _, entry := range page.Data {
			balance, ok := sdkmath.NewIntFromString(entry.Balance)
			if !ok {
				return nil, fmt.Errorf("sui: bad coin balance %q", entry.Balance)
			}
			version, err := strconv.ParseUint(entry.Version, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("sui: bad coin version %q: %w", entry.Version, err)
			}
			if err := validateDigest(entry.Digest); err != nil {
				return nil, err
			}
			coins = append(coins, domain.CoinObject{
				Ref: domain.ObjectRef{
					ObjectID: entry.CoinObjectID,
					Version:  version,
					Digest:   entry.Digest,
				},
				Type:    domain.CoinType(entry.CoinType),
				Balance: balance,
			})
		}

		if !page.HasNextPage || page.NextCursor == "" {
			return coins, nil
		}
		cursor = page.NextCursor
	}
}

// CoinMetadata fetches decimals/symbol/name for a coin type.
func (c *Client) CoinMetadata(ctx context.Context, coinType domain.CoinType) (*domain.CoinMeta, error) {
	raw, err := c.call(ctx, "suix_getCoinMetadata", []any{string(coinType)})
	if err != nil {
		return nil, fmt.Errorf("sui: coin metadata %s: %w", coinType, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("sui: coin metadata %s: %w", coinType, domain.ErrNotFound)
	}

	var meta coinMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("sui: decode coin metadata %s: %w", coinType, err)
	}
	return &domain.CoinMeta{
		Type:     coinType,
		Symbol:   meta.Symbol,
		Name:     meta.Name,
		Decimals: meta.Decimals,
	}, nil
}

// QueryEvents returns events of the given type, oldest first, following
// pagination up to limit entries (0 means no limit).
func (c *Client) QueryEvents(ctx context.Context, eventType string, limit int) ([]domain.RawEvent, error) {
	var (
		out    []domain.RawEvent
		cursor any
	)
	filter := map[string]any{"MoveEventType": eventType}
	for {
		raw, err := c.call(ctx, "suix_queryEvents", []any{filter, cursor, nil, false})
		if err != nil {
			return nil, fmt.Errorf("sui: query events %s: %w", eventType, err)
		}

		var page eventPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("sui: decode event page: %w", err)
		}

		for _, entry := range page.Data {
			ev, err := decodeEvent(entry)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}

		if !page.HasNextPage || page.NextCursor == nil {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

func decodeEvent(entry eventEntry) (domain.RawEvent, error) {
	seq, err := strconv.ParseUint(entry.ID.EventSeq, 10, 64)
	if err != nil {
		return domain.RawEvent{}, fmt.Errorf("sui: bad event seq %q: %w", entry.ID.EventSeq, err)
	}
	ts, err := strconv.ParseInt(entry.TimestampMs, 10, 64)
	if err != nil {
		return domain.RawEvent{}, fmt.Errorf("sui: bad event timestamp %q: %w", entry.TimestampMs, err)
	}
	if err := validateDigest(entry.ID.TxDigest); err != nil {
		return domain.RawEvent{}, err
	}
	return domain.RawEvent{
		ID: domain.EventID{
			TxDigest: entry.ID.TxDigest,
			EventSeq: seq,
		},
		Type:        entry.Type,
		TimestampMs: ts,
		ParsedJSON:  entry.ParsedJSON,
	}, nil
}

// call executes one JSON-RPC request and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}
