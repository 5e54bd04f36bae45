// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package poolclient provides an HTTP client for the staking ledger API.
// It offers typed methods to query the registry, pools, token accounts and event logs,
// and to submit operations on behalf of a caller.
package poolclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/accounts"
	"github.com/vechain/stakepool/api/clock"
	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/pools"
	"github.com/vechain/stakepool/api/registry"
	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/thor"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// StatusError is returned when the server responds with a non 200 status code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error - Status Code %d - %s", e.Code, e.Message)
}

// Is reports ErrNotFound for 404 responses and ErrNot200Status for any status error.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrNot200Status:
		return true
	}
	return false
}

// Reverted reports whether the server rejected the operation, which left no state change.
func (e *StatusError) Reverted() bool {
	return e.Code == http.StatusForbidden
}

// Status is the response of GET /status.
type Status struct {
	GenesisID thor.Bytes32 `json:"genesisId"`
	Seq       uint64       `json:"seq"`
	Time      uint64       `json:"time"`
}

// Client represents the HTTP client for interacting with the staking ledger.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimRight(url, "/"),
		c:   c,
	}
}

// Status retrieves the genesis id, the last operation sequence and the ledger time.
func (c *Client) Status() (*Status, error) {
	var status Status
	if err := c.get("/status", &status); err != nil {
		return nil, fmt.Errorf("unable to retrieve status - %w", err)
	}
	return &status, nil
}

// Registry retrieves the registry summary.
func (c *Client) Registry() (*registry.Summary, error) {
	var summary registry.Summary
	if err := c.get("/registry", &summary); err != nil {
		return nil, fmt.Errorf("unable to retrieve registry - %w", err)
	}
	return &summary, nil
}

// Pools retrieves the addresses of all pools in creation order.
func (c *Client) Pools() ([]thor.Address, error) {
	var addrs []thor.Address
	if err := c.get("/registry/pools", &addrs); err != nil {
		return nil, fmt.Errorf("unable to retrieve pools - %w", err)
	}
	return addrs, nil
}

// CreatePool deploys a new pool. The caller must be the registry owner.
func (c *Client) CreatePool(req *registry.CreatePool) (*registry.PoolCreated, error) {
	var created registry.PoolCreated
	if err := c.post("/registry/pools", req, &created); err != nil {
		return nil, fmt.Errorf("unable to create pool - %w", err)
	}
	return &created, nil
}

// Withdraw moves tokens from the reward reserve to the caller.
func (c *Client) Withdraw(caller thor.Address, amount *big.Int) (*utils.Receipt, error) {
	return c.amountOp("/registry/withdraw", caller, amount)
}

// Fund moves tokens from the caller into the reward reserve.
func (c *Client) Fund(caller thor.Address, amount *big.Int) (*utils.Receipt, error) {
	return c.amountOp("/registry/fund", caller, amount)
}

// SetOperator replaces the registry operator.
func (c *Client) SetOperator(caller, operator thor.Address) (*utils.Receipt, error) {
	return c.addressOp("/registry/operator", caller, operator)
}

// SetOwner transfers registry ownership.
func (c *Client) SetOwner(caller, owner thor.Address) (*utils.Receipt, error) {
	return c.addressOp("/registry/owner", caller, owner)
}

func (c *Client) amountOp(path string, caller thor.Address, amount *big.Int) (*utils.Receipt, error) {
	var receipt utils.Receipt
	req := &registry.AmountRequest{Caller: &caller, Amount: utils.Amount(amount)}
	if err := c.post(path, req, &receipt); err != nil {
		return nil, fmt.Errorf("unable to request %s - %w", path, err)
	}
	return &receipt, nil
}

func (c *Client) addressOp(path string, caller, addr thor.Address) (*utils.Receipt, error) {
	var receipt utils.Receipt
	req := &registry.AddressRequest{Caller: &caller, Address: &addr}
	if err := c.post(path, req, &receipt); err != nil {
		return nil, fmt.Errorf("unable to request %s - %w", path, err)
	}
	return &receipt, nil
}

// Pool retrieves the configuration and total stake of a pool.
func (c *Client) Pool(addr thor.Address) (*pools.Pool, error) {
	var pool pools.Pool
	if err := c.get("/pools/"+addr.String(), &pool); err != nil {
		return nil, fmt.Errorf("unable to retrieve pool - %w", err)
	}
	return &pool, nil
}

// Stake retrieves the position of staker in a pool along with its pending reward.
func (c *Client) Stake(pool, staker thor.Address) (*pools.Stake, error) {
	var stake pools.Stake
	if err := c.get("/pools/"+pool.String()+"/stakes/"+staker.String(), &stake); err != nil {
		return nil, fmt.Errorf("unable to retrieve stake - %w", err)
	}
	return &stake, nil
}

// StakeTokens deposits amount into a pool on behalf of caller.
// The caller must have approved the pool to pull the tokens.
func (c *Client) StakeTokens(pool, caller thor.Address, amount *big.Int) (*utils.Receipt, error) {
	var receipt utils.Receipt
	req := &pools.StakeRequest{Caller: &caller, Amount: utils.Amount(amount)}
	if err := c.post("/pools/"+pool.String()+"/stake", req, &receipt); err != nil {
		return nil, fmt.Errorf("unable to stake - %w", err)
	}
	return &receipt, nil
}

// Unstake closes the position of caller and pays out principal and reward.
func (c *Client) Unstake(pool, caller thor.Address) (*pools.Unstaked, error) {
	var unstaked pools.Unstaked
	req := &pools.UnstakeRequest{Caller: &caller}
	if err := c.post("/pools/"+pool.String()+"/unstake", req, &unstaked); err != nil {
		return nil, fmt.Errorf("unable to unstake - %w", err)
	}
	return &unstaked, nil
}

// Token retrieves the staking token metadata.
func (c *Client) Token() (*accounts.Token, error) {
	var token accounts.Token
	if err := c.get("/accounts/token", &token); err != nil {
		return nil, fmt.Errorf("unable to retrieve token - %w", err)
	}
	return &token, nil
}

// Balance retrieves the token balance of addr.
func (c *Client) Balance(addr thor.Address) (*big.Int, error) {
	var account accounts.Account
	if err := c.get("/accounts/"+addr.String(), &account); err != nil {
		return nil, fmt.Errorf("unable to retrieve account - %w", err)
	}
	return bigOf(account.Balance), nil
}

// Allowance retrieves the amount spender may pull from owner.
func (c *Client) Allowance(owner, spender thor.Address) (*big.Int, error) {
	var allowance accounts.Allowance
	if err := c.get("/accounts/"+owner.String()+"/allowance/"+spender.String(), &allowance); err != nil {
		return nil, fmt.Errorf("unable to retrieve allowance - %w", err)
	}
	return bigOf(allowance.Amount), nil
}

// Transfer moves tokens from caller to another account.
func (c *Client) Transfer(caller, to thor.Address, amount *big.Int) (*utils.Receipt, error) {
	var receipt utils.Receipt
	req := &accounts.TransferRequest{Caller: &caller, To: &to, Amount: utils.Amount(amount)}
	if err := c.post("/accounts/transfer", req, &receipt); err != nil {
		return nil, fmt.Errorf("unable to transfer - %w", err)
	}
	return &receipt, nil
}

// Approve sets the allowance of spender over the tokens of caller.
func (c *Client) Approve(caller, spender thor.Address, amount *big.Int) (*utils.Receipt, error) {
	var receipt utils.Receipt
	req := &accounts.ApproveRequest{Caller: &caller, Spender: &spender, Amount: utils.Amount(amount)}
	if err := c.post("/accounts/approve", req, &receipt); err != nil {
		return nil, fmt.Errorf("unable to approve - %w", err)
	}
	return &receipt, nil
}

// Now retrieves the ledger clock.
func (c *Client) Now() (uint64, error) {
	var t clock.Time
	if err := c.get("/clock", &t); err != nil {
		return 0, fmt.Errorf("unable to retrieve time - %w", err)
	}
	return t.Now, nil
}

// Advance moves a manual ledger clock forward and returns the new time.
func (c *Client) Advance(seconds uint64) (uint64, error) {
	var t clock.Time
	if err := c.post("/clock/advance", &clock.AdvanceRequest{Seconds: seconds}, &t); err != nil {
		return 0, fmt.Errorf("unable to advance clock - %w", err)
	}
	return t.Now, nil
}

// FilterEvents retrieves event logs matching the given filter.
func (c *Client) FilterEvents(filter *events.EventFilter) ([]*events.FilteredEvent, error) {
	var filtered []*events.FilteredEvent
	if err := c.post("/logs/events", filter, &filtered); err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}
	return filtered, nil
}

func (c *Client) get(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) post(path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.do(http.MethodPost, path, bytes.NewReader(data), out)
}

func (c *Client) do(method, path string, payload io.Reader, out any) error {
	req, err := http.NewRequest(method, c.url+path, payload)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unable to unmarshal response - %w", err)
	}
	return nil
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}
