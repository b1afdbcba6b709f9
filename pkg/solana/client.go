// Package solana is a minimal JSON-RPC client for the Solana methods the
// payment verifier needs.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/codeGROOVE-dev/retry"
)

// Client calls a Solana JSON-RPC endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	attempts   uint
	nextID     atomic.Int64
}

// NewClient creates an RPC client. attempts < 1 is treated as 1.
func NewClient(endpoint string, timeout time.Duration, attempts uint) *Client {
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		attempts:   attempts,
	}
}

// RPCError is an error object returned by the node
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// UITokenAmount is the human readable token amount of a balance entry
type UITokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       int      `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// TokenBalance is one entry of pre/postTokenBalances
type TokenBalance struct {
	AccountIndex  int           `json:"accountIndex"`
	Mint          string        `json:"mint"`
	Owner         string        `json:"owner"`
	UITokenAmount UITokenAmount `json:"uiTokenAmount"`
}

// TransactionMeta carries execution status and balances
type TransactionMeta struct {
	Err               json.RawMessage `json:"err"`
	Fee               uint64          `json:"fee"`
	PreTokenBalances  []TokenBalance  `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance  `json:"postTokenBalances"`
}

// Failed reports whether the transaction errored on chain
func (m *TransactionMeta) Failed() bool {
	return len(m.Err) > 0 && string(m.Err) != "null"
}

// Transaction is the subset of getTransaction's result used here
type Transaction struct {
	Slot      uint64           `json:"slot"`
	BlockTime *int64           `json:"blockTime"`
	Meta      *TransactionMeta `json:"meta"`
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// GetTransaction fetches a confirmed transaction. It returns nil, nil when the
// node does not know the signature.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	raw, err := c.call(ctx, "getTransaction", params)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &tx, nil
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	var result json.RawMessage
	err = retry.Do(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
			if reqErr != nil {
				return retry.Unrecoverable(reqErr)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, doErr := c.httpClient.Do(req)
			if doErr != nil {
				return fmt.Errorf("rpc request: %w", doErr)
			}
			defer resp.Body.Close()

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			if readErr != nil {
				return fmt.Errorf("read rpc response: %w", readErr)
			}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("rpc http status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("rpc http status %d", resp.StatusCode))
			}

			var out rpcResponse
			if jsonErr := json.Unmarshal(body, &out); jsonErr != nil {
				return retry.Unrecoverable(fmt.Errorf("decode rpc response: %w", jsonErr))
			}
			if out.Error != nil {
				return retry.Unrecoverable(out.Error)
			}
			result = out.Result
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(250*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			pkglogger.GetLogger().Warn().Err(err).Uint("attempt", n).Str("method", method).Msg("retrying solana rpc")
		}),
	)
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		return nil, err
	}
	return result, nil
}
