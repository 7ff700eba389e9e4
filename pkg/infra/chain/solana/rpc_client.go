// Package solana is the operator's only chain collaborator: a hand-rolled
// JSON-RPC client plus a pool-program-aware layer above it. No Solana SDK
// exists anywhere in the reference corpus (see DESIGN.md) — this follows
// the teacher's own bespoke HTTP client shape (pkg/infra/clients) rather
// than reach for an unvetted third-party dependency.
package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

// RPCClient is a minimal Solana JSON-RPC 2.0 client over the handful of
// methods the operator actually calls.
type RPCClient struct {
	httpClient *http.Client
	endpoint   string
}

func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
		endpoint: endpoint,
	}
}

var _ pool_out.ChainClient = (*RPCClient)(nil)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("solana rpc: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("solana rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("solana rpc: %s: %w", method, err)
	}
	defer res.Body.Close()

	var envelope rpcResponse
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("solana rpc: %s: decode response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("solana rpc: %s: %d %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("solana rpc: %s: unmarshal result: %w", method, err)
	}
	return nil
}

func (c *RPCClient) LatestBlockhash(ctx context.Context) (string, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getLatestBlockhash", []any{map[string]string{"commitment": "confirmed"}}, &result); err != nil {
		return "", err
	}
	return result.Value.Blockhash, nil
}

func (c *RPCClient) GetAccountInfo(ctx context.Context, address string) ([]byte, error) {
	var result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	params := []any{address, map[string]string{"encoding": "base64", "commitment": "confirmed"}}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil || len(result.Value.Data) == 0 {
		return nil, fmt.Errorf("solana rpc: account %s not found", address)
	}
	return base64.StdEncoding.DecodeString(result.Value.Data[0])
}

func (c *RPCClient) SendTransaction(ctx context.Context, signedTxBase64 string) (string, error) {
	var signature string
	params := []any{signedTxBase64, map[string]any{"encoding": "base64", "skipPreflight": false, "maxRetries": 0}}
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

func (c *RPCClient) SimulateTransaction(ctx context.Context, signedTxBase64 string) ([]string, error) {
	var result struct {
		Value struct {
			Logs []string `json:"logs"`
			Err  any      `json:"err"`
		} `json:"value"`
	}
	params := []any{signedTxBase64, map[string]any{"encoding": "base64", "commitment": "confirmed"}}
	if err := c.call(ctx, "simulateTransaction", params, &result); err != nil {
		return nil, err
	}
	if result.Value.Err != nil {
		slog.WarnContext(ctx, "solana: simulation reported an error", "err", result.Value.Err)
	}
	return result.Value.Logs, nil
}

func (c *RPCClient) ConfirmTransaction(ctx context.Context, signature string) (bool, error) {
	var result struct {
		Value []*struct {
			ConfirmationStatus string `json:"confirmationStatus"`
			Err                any    `json:"err"`
		} `json:"value"`
	}
	params := []any{[]string{signature}, map[string]string{"searchTransactionHistory": "true"}}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return false, err
	}
	if len(result.Value) == 0 || result.Value[0] == nil {
		return false, nil
	}
	status := result.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("solana rpc: transaction %s failed on-chain: %v", signature, status.Err)
	}
	return status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized", nil
}

func (c *RPCClient) GetTransactionLogs(ctx context.Context, signature string) ([]string, error) {
	var result struct {
		Meta struct {
			LogMessages []string `json:"logMessages"`
		} `json:"meta"`
	}
	params := []any{signature, map[string]any{"encoding": "json", "commitment": "confirmed", "maxSupportedTransactionVersion": 0}}
	if err := c.call(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}
	return result.Meta.LogMessages, nil
}
