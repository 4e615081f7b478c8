// Package rpc is a minimal JSON-RPC client for the handful of read-only
// eth_ namespace calls a forked simulation needs. It deliberately stays on
// net/http + encoding/json rather than a full client library: the surface
// is five methods against a single endpoint, with no websocket, IPC, or
// subscription support to carry.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Client talks to one JSON-RPC endpoint.
type Client struct {
	Endpoint string

	httpClient *http.Client
}

// NewClient returns a Client for endpoint with a sane request timeout.
func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// normalizeBlockTag converts a hex block number into the tag form the eth_
// namespace accepts, falling back to "latest" for anything unparseable or
// non-positive.
func normalizeBlockTag(blk string) string {
	blkNumber, ok := new(big.Int).SetString(strings.TrimPrefix(blk, "0x"), 16)
	if !ok || blkNumber.Cmp(big.NewInt(0)) <= 0 {
		return "latest"
	}
	return blk
}

// GetCode fetches the code deployed at address as of blk.
func (c *Client) GetCode(address, blk string) ([]byte, error) {
	result, err := c.callString("eth_getCode", address, normalizeBlockTag(blk))
	if err != nil {
		return nil, err
	}
	return hexutil.Decode(result)
}

// GetStorageAt fetches one storage slot of address as of blk.
func (c *Client) GetStorageAt(address, position, blk string) (common.Hash, error) {
	result, err := c.callString("eth_getStorageAt", address, position, normalizeBlockTag(blk))
	if err != nil {
		return common.Hash{}, err
	}
	return common.HexToHash(result), nil
}

// GetBalance fetches the wei balance of address as of blk.
func (c *Client) GetBalance(address, blk string) (*big.Int, error) {
	result, err := c.callString("eth_getBalance", address, normalizeBlockTag(blk))
	if err != nil {
		return nil, err
	}
	balance, ok := new(big.Int).SetString(strings.TrimPrefix(result, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("invalid balance received in response: %s", result)
	}
	return balance, nil
}

// GetTransactionCount fetches address's nonce as of blk, which CREATE
// address derivation needs for accounts whose nonce the simulation has not
// itself advanced.
func (c *Client) GetTransactionCount(address, blk string) (uint64, error) {
	result, err := c.callString("eth_getTransactionCount", address, normalizeBlockTag(blk))
	if err != nil {
		return 0, err
	}
	nonce, ok := new(big.Int).SetString(strings.TrimPrefix(result, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("invalid nonce received in response: %s", result)
	}
	return nonce.Uint64(), nil
}

// GetBlockHash fetches the hash of the block at number, for the BLOCKHASH
// opcode's 256-block window.
func (c *Client) GetBlockHash(number int64) (common.Hash, error) {
	tag := "0x" + big.NewInt(number).Text(16)
	rpcResp, err := c.post("eth_getBlockByNumber", tag, false)
	if err != nil {
		return common.Hash{}, err
	}
	var header struct {
		Hash common.Hash `json:"hash"`
	}
	if err := json.Unmarshal(rpcResp.Result, &header); err != nil {
		return common.Hash{}, err
	}
	return header.Hash, nil
}

// callString performs an RPC call whose result is a single hex string.
func (c *Client) callString(method string, params ...interface{}) (string, error) {
	rpcResp, err := c.post(method, params...)
	if err != nil {
		return "", err
	}
	var result string
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return "", err
	}
	return result, nil
}

type rpcRequest struct {
	ID      int           `json:"id"`
	JSONRpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	ID      int             `json:"id"`
	JSONRpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Err     *ErrResponse    `json:"error,omitempty"`
}

// ErrResponse is the error object of a failed JSON-RPC call.
type ErrResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *ErrResponse) Error() string {
	return fmt.Sprintf(`{"code": "%d", "message": "%s"}`, e.Code, e.Message)
}

func (c *Client) post(method string, params ...interface{}) (*rpcResponse, error) {
	payload := rpcRequest{
		ID:      1,
		JSONRpc: "2.0",
		Method:  method,
		Params:  params,
	}

	data, err := json.Marshal(&payload)
	if err != nil {
		return nil, err
	}

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Post(c.Endpoint, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result rpcResponse
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	if result.Err != nil {
		return nil, result.Err
	}
	return &result, nil
}
