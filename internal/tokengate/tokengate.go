// Package tokengate checks whether a wallet holds the gating token by calling
// balanceOf on the token contract over Ethereum JSON-RPC.
package tokengate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/metrics"
	"marketplace/internal/validation"
)

// balanceOfSelector is the 4-byte selector of balanceOf(address).
const balanceOfSelector = "0x70a08231"

// ErrNotConfigured is returned when no contract address is set.
var ErrNotConfigured = errors.New("token contract address not configured")

// Result is the outcome of a holder check.
type Result struct {
	IsHolder  bool      `json:"isHolder"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Config holds checker configuration.
type Config struct {
	RPCURL          string
	ContractAddress string
	Timeout         time.Duration
}

// Checker queries token balances.
type Checker struct {
	rpcURL     string
	contract   string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a checker. An empty contract address is allowed; every check
// then reports not-a-holder.
func New(cfg Config, logger *zap.Logger) *Checker {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Checker{
		rpcURL:     cfg.RPCURL,
		contract:   strings.ToLower(cfg.ContractAddress),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Check reports whether address holds at least one token. Any configuration
// or RPC failure yields IsHolder=false; the failure is logged and counted
// separately from a genuine zero balance.
func (c *Checker) Check(ctx context.Context, address string) Result {
	res := Result{CheckedAt: c.now()}

	balance, err := c.BalanceOf(ctx, address)
	switch {
	case errors.Is(err, ErrNotConfigured):
		c.logger.Error("token gate check skipped", zap.Error(err))
		metrics.RecordTokenGateCheck(metrics.OutcomeUnconfigured)
	case err != nil:
		c.logger.Warn("token gate check failed",
			zap.String("upstream", "ethereum_rpc"),
			zap.String("address", address),
			zap.Error(err),
		)
		metrics.RecordTokenGateCheck(metrics.OutcomeError)
	case balance.Sign() > 0:
		res.IsHolder = true
		metrics.RecordTokenGateCheck(metrics.OutcomeHolder)
	default:
		metrics.RecordTokenGateCheck(metrics.OutcomeNotHolder)
	}
	return res
}

// BalanceOf returns the token balance of address.
func (c *Checker) BalanceOf(ctx context.Context, address string) (*big.Int, error) {
	if c.contract == "" {
		return nil, ErrNotConfigured
	}
	if !validation.IsWalletAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}

	// ABI encoding: selector followed by the address left-padded to 32 bytes.
	data := balanceOfSelector + strings.Repeat("0", 24) + strings.ToLower(address[2:])
	call := map[string]string{"to": c.contract, "data": data}

	result, err := c.call(ctx, "eth_call", []any{call, "latest"})
	if err != nil {
		return nil, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	hex = strings.TrimPrefix(hex, "0x")
	if hex == "" {
		return nil, errors.New("empty eth_call result")
	}
	balance, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return nil, fmt.Errorf("invalid balance %q", hex)
	}
	return balance, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Checker) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}
