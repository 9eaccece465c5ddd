package sui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/lantern-fi/suipool/internal/domain"
)

// rpcRequest is the JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcResponse is the JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// objectResponse is the result shape of sui_getObject with content shown.
type objectResponse struct {
	Data *objectData `json:"data"`
}

type objectData struct {
	ObjectID string         `json:"objectId"`
	Version  string         `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type"`
	Content  *objectContent `json:"content"`
}

type objectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

// poolFields is the content schema of the protocol's Pool object.
type poolFields struct {
	Name      string      `json:"name"`
	LPSupply  supplyField `json:"lp_supply"`
	CoinTypes []string    `json:"type_names"`
	Balances  []string    `json:"normalized_balances"`
}

type supplyField struct {
	Fields struct {
		Value string `json:"value"`
	} `json:"fields"`
}

// coinPage is the result shape of suix_getCoins.
type coinPage struct {
	Data        []coinEntry `json:"data"`
	NextCursor  string      `json:"nextCursor"`
	HasNextPage bool        `json:"hasNextPage"`
}

type coinEntry struct {
	CoinType     string `json:"coinType"`
	CoinObjectID string `json:"coinObjectId"`
	Version      string `json:"version"`
	Digest       string `json:"digest"`
	Balance      string `json:"balance"`
}

// coinMetadata is the result shape of suix_getCoinMetadata.
type coinMetadata struct {
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}

// eventPage is the result shape of suix_queryEvents.
type eventPage struct {
	Data        []eventEntry `json:"data"`
	NextCursor  *eventCursor `json:"nextCursor"`
	HasNextPage bool         `json:"hasNextPage"`
}

type eventCursor struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

type eventEntry struct {
	ID          eventCursor     `json:"id"`
	Type        string          `json:"type"`
	TimestampMs string          `json:"timestampMs"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
}

// validateDigest checks that a digest is well-formed base58 of a 32-byte
// hash, catching truncated or corrupted indexer payloads early.
func validateDigest(digest string) error {
	raw, err := base58.Decode(digest)
	if err != nil {
		return fmt.Errorf("sui: digest %q is not base58: %w", digest, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("sui: digest %q decodes to %d bytes, want 32", digest, len(raw))
	}
	return nil
}

// lpTypeFromObjectType extracts the LP coin type parameter from a pool
// object's type tag, e.g. "0xamm::pool::Pool<0xdef::amm_lp::AmmLP>".
func lpTypeFromObjectType(objectType string) (domain.CoinType, error) {
	start := strings.Index(objectType, "<")
	end := strings.LastIndex(objectType, ">")
	if start < 0 || end <= start+1 {
		return "", fmt.Errorf("sui: pool type %q has no LP type parameter", objectType)
	}
	return domain.CoinType(objectType[start+1 : end]), nil
}
