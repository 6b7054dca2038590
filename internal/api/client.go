// Package api implements the JSON-over-HTTP client for the remote
// catalog/order/user API. It is the only place the wire dialect lives;
// slices consume it through narrow interfaces.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luminacart/storefront/pkg/auth"
	"github.com/luminacart/storefront/pkg/config"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/metrics"
	"github.com/luminacart/storefront/pkg/query"
	"github.com/luminacart/storefront/pkg/types"
)

// Client talks to the remote storefront API. The bearer token slot is set
// by the auth slice after login and cleared on sign-out.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.RequestMetrics

	mu    sync.RWMutex
	token string
}

// NewClient builds a client from the API config. Metrics may be nil.
func NewClient(cfg config.APIConfig, m *metrics.RequestMetrics) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("api base url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		metrics: m,
	}, nil
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// apiError is the failure envelope the remote API returns on non-2xx.
type apiError struct {
	Message string `json:"message"`
}

// tokenEnvelope is the success envelope for auth endpoints.
type tokenEnvelope struct {
	Token string `json:"token"`
}

// Credentials is the login/signup payload.
type Credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     string         `json:"role,omitempty"`
	Address  *types.Address `json:"address,omitempty"`
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, params url.Values, body, out any) error {
	started := time.Now()
	err := c.doOnce(ctx, method, path, params, body, out)
	c.metrics.ObserveDuration(endpoint, time.Since(started))
	if err != nil {
		c.metrics.IncFailure(endpoint)
		return err
	}
	c.metrics.IncSuccess(endpoint)
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, params url.Values, body, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s %s response", method, path))
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	code := pkgerrors.CodeForStatus(resp.StatusCode)
	payload := apiError{}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = pkgerrors.MetadataFor(code).PublicMessage
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"status": resp.StatusCode,
	})
}

// FetchProducts lists catalog products for the given descriptor.
func (c *Client) FetchProducts(ctx context.Context, desc query.Descriptor) (*types.ProductPage, error) {
	page := &types.ProductPage{}
	if err := c.do(ctx, "products/list", http.MethodGet, "/products", desc.Values(), nil, page); err != nil {
		return nil, err
	}
	return page, nil
}

// FetchProductByID loads one catalog product.
func (c *Client) FetchProductByID(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	product := &types.Product{}
	if err := c.do(ctx, "products/detail", http.MethodGet, "/products/"+id.String(), nil, nil, product); err != nil {
		return nil, err
	}
	return product, nil
}

// CreateProduct registers a new catalog product (admin only).
func (c *Client) CreateProduct(ctx context.Context, product types.Product) (*types.Product, error) {
	created := &types.Product{}
	if err := c.do(ctx, "products/create", http.MethodPost, "/products", nil, product, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateProduct replaces a catalog product (admin only). Soft deletion is
// an update with the Deleted flag set.
func (c *Client) UpdateProduct(ctx context.Context, product types.Product) (*types.Product, error) {
	updated := &types.Product{}
	if err := c.do(ctx, "products/update", http.MethodPatch, "/products/"+product.ID.String(), nil, product, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// FetchCart lists the cart lines belonging to a user.
func (c *Client) FetchCart(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error) {
	params := url.Values{}
	params.Set("user", userID.String())
	var lines []types.CartLine
	if err := c.do(ctx, "cart/fetch", http.MethodGet, "/cart", params, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddToCart creates a cart line for the user.
func (c *Client) AddToCart(ctx context.Context, line types.CartLine) (*types.CartLine, error) {
	created := &types.CartLine{}
	if err := c.do(ctx, "cart/add", http.MethodPost, "/cart", nil, line, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateCartLine changes the quantity on an existing cart line.
func (c *Client) UpdateCartLine(ctx context.Context, id uuid.UUID, quantity int) (*types.CartLine, error) {
	updated := &types.CartLine{}
	body := map[string]int{"quantity": quantity}
	if err := c.do(ctx, "cart/update", http.MethodPatch, "/cart/"+id.String(), nil, body, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCartLine removes a cart line.
func (c *Client) DeleteCartLine(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, "cart/delete", http.MethodDelete, "/cart/"+id.String(), nil, nil, nil)
}

// CreateOrder submits the assembled checkout payload and returns the
// persisted order including its server-assigned identity.
func (c *Client) CreateOrder(ctx context.Context, order types.Order) (*types.Order, error) {
	created := &types.Order{}
	if err := c.do(ctx, "orders/create", http.MethodPost, "/orders", nil, order, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateOrder submits the full order object (admin status updates).
func (c *Client) UpdateOrder(ctx context.Context, order types.Order) (*types.Order, error) {
	updated := &types.Order{}
	if err := c.do(ctx, "orders/update", http.MethodPatch, "/orders/"+order.ID.String(), nil, order, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// FetchAllOrders lists every order for the back office.
func (c *Client) FetchAllOrders(ctx context.Context, sort query.Sort, page query.Pagination) (*types.OrderPage, error) {
	desc := query.Descriptor{Sort: sort, Page: page}
	out := &types.OrderPage{}
	if err := c.do(ctx, "orders/list", http.MethodGet, "/orders", desc.Values(), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchUserOrders lists the signed-in user's order history.
func (c *Client) FetchUserOrders(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.do(ctx, "orders/own", http.MethodGet, "/orders/own", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*auth.SessionToken, error) {
	return c.authCall(ctx, "auth/login", "/auth/login", creds)
}

// Signup registers a new user and returns their session token.
func (c *Client) Signup(ctx context.Context, creds Credentials) (*auth.SessionToken, error) {
	return c.authCall(ctx, "auth/signup", "/auth/signup", creds)
}

func (c *Client) authCall(ctx context.Context, endpoint, path string, creds Credentials) (*auth.SessionToken, error) {
	envelope := tokenEnvelope{}
	if err := c.do(ctx, endpoint, http.MethodPost, path, nil, creds, &envelope); err != nil {
		return nil, err
	}
	token, err := auth.DecodeSessionToken(envelope.Token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid session token from api")
	}
	return token, nil
}

// CheckSession validates the stored bearer token against the API.
func (c *Client) CheckSession(ctx context.Context) (*auth.SessionToken, error) {
	envelope := tokenEnvelope{}
	if err := c.do(ctx, "auth/check", http.MethodGet, "/auth/check", nil, nil, &envelope); err != nil {
		return nil, err
	}
	token, err := auth.DecodeSessionToken(envelope.Token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid session token from api")
	}
	return token, nil
}

// SignOut invalidates the user's server-side session.
func (c *Client) SignOut(ctx context.Context, userID uuid.UUID) error {
	body := map[string]string{"user": userID.String()}
	return c.do(ctx, "auth/signout", http.MethodPost, "/auth/signout", nil, body, nil)
}

// FetchProfile loads the signed-in user's full record.
func (c *Client) FetchProfile(ctx context.Context) (*types.User, error) {
	user := &types.User{}
	if err := c.do(ctx, "users/own", http.MethodGet, "/users/own", nil, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile replaces the user record (address book edits).
func (c *Client) UpdateProfile(ctx context.Context, user types.User) (*types.User, error) {
	updated := &types.User{}
	if err := c.do(ctx, "users/update", http.MethodPatch, "/users/"+user.ID.String(), nil, user, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
