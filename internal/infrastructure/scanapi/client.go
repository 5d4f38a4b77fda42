package scanapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/config"
)

// RawLog is one entry from the log-search API's getLogs result. All
// quantity fields arrive hex-encoded.
type RawLog struct {
	Address  string   `json:"address"`
	Topics   []string `json:"topics"`
	Data     string   `json:"data"`
	Block    string   `json:"blockNumber"`
	TxHash   string   `json:"transactionHash"`
	TxIndex  string   `json:"transactionIndex"`
	TimeSt   string   `json:"timeStamp"`
	LogIndex string   `json:"logIndex"`
}

// Client queries an etherscan-compatible log-search API
type Client struct {
	httpClient *http.Client
	cfg        config.ScanAPIConfig
	logger     *zap.Logger
}

// NewClient creates a new log-search API client
func NewClient(cfg config.ScanAPIConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// logsResponse is the getLogs envelope. Result is raw because the API
// returns a string there on errors and a log array on success.
type logsResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// GetLogs retrieves raw logs for an inclusive block range and a
// single topic0 filter. Network and API failures are retried with a
// fixed delay up to the configured limit; they are transient.
func (c *Client) GetLogs(ctx context.Context, contract string, topic0 common.Hash, fromBlock, toBlock int64) ([]RawLog, error) {
	params := url.Values{}
	params.Set("module", "logs")
	params.Set("action", "getLogs")
	params.Set("fromBlock", strconv.FormatInt(fromBlock, 10))
	params.Set("toBlock", strconv.FormatInt(toBlock, 10))
	params.Set("topic0", topic0.Hex())
	if contract != "" {
		params.Set("address", contract)
	}
	if c.cfg.APIKey != "" {
		params.Set("apikey", c.cfg.APIKey)
	}

	var logs []RawLog
	var err error

	for i := 0; i <= c.cfg.MaxRetries; i++ {
		logs, err = c.getLogsOnce(ctx, params)
		if err == nil {
			return logs, nil
		}

		c.logger.Warn("Failed to get logs, retrying",
			zap.Int("attempt", i+1),
			zap.Int64("from_block", fromBlock),
			zap.Int64("to_block", toBlock),
			zap.Error(err),
		)

		if i < c.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to get logs after %d retries: %w", c.cfg.MaxRetries, err)
}

func (c *Client) getLogsOnce(ctx context.Context, params url.Values) ([]RawLog, error) {
	body, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp logsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	// Status "0" covers both "no records" (an empty result) and real
	// API errors (rate limit, bad key), which carry a string result.
	if resp.Status != "1" {
		if strings.Contains(resp.Message, "No records found") {
			return []RawLog{}, nil
		}
		return nil, fmt.Errorf("api error: %s", resp.Message)
	}

	var logs []RawLog
	if err := json.Unmarshal(resp.Result, &logs); err != nil {
		return nil, fmt.Errorf("malformed log list: %w", err)
	}

	return logs, nil
}

// headResponse is the proxy eth_blockNumber envelope
type headResponse struct {
	Result string `json:"result"`
}

// HeadBlock returns the current chain head height
func (c *Client) HeadBlock(ctx context.Context) (int64, error) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_blockNumber")
	if c.cfg.APIKey != "" {
		params.Set("apikey", c.cfg.APIKey)
	}

	var head int64
	var err error

	for i := 0; i <= c.cfg.MaxRetries; i++ {
		head, err = c.headBlockOnce(ctx, params)
		if err == nil {
			return head, nil
		}

		c.logger.Warn("Failed to get head block, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}

	return 0, fmt.Errorf("failed to get head block after %d retries: %w", c.cfg.MaxRetries, err)
}

func (c *Client) headBlockOnce(ctx context.Context, params url.Values) (int64, error) {
	body, err := c.do(ctx, params)
	if err != nil {
		return 0, err
	}

	var resp headResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("malformed response: %w", err)
	}

	head, err := parseHexUint(resp.Result)
	if err != nil {
		return 0, fmt.Errorf("malformed head block %q: %w", resp.Result, err)
	}

	return head, nil
}

// do issues one GET against the API and returns the response body
func (c *Client) do(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// parseHexUint parses a 0x-prefixed hex quantity
func parseHexUint(s string) (int64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, fmt.Errorf("empty hex quantity")
	}
	return strconv.ParseInt(s, 16, 64)
}
