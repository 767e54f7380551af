package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/EcoPlate/storefront-engine/config"
	"github.com/EcoPlate/storefront-engine/domain"
	"github.com/EcoPlate/storefront-engine/pkg/logger"
)

// HTTPClient talks to the commerce REST API. All calls go through a shared
// circuit breaker; concurrent fetches of the same order are collapsed with
// singleflight, as the cart cache reads were in the original service.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*apiResponse]
	sfg     singleflight.Group
	token   func() string
	log     *logger.Logger
}

type apiResponse struct {
	status int
	body   []byte
}

type Option func(*HTTPClient)

// WithHTTPClient swaps the underlying http.Client, used by tests.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTokenFunc supplies the bearer token attached to every request.
func WithTokenFunc(fn func() string) Option {
	return func(h *HTTPClient) { h.token = fn }
}

func NewHTTPClient(cfg *config.Config, log *logger.Logger, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.RequestTimeout,
		},
		log: log,
	}
	maxFailures := cfg.Breaker.MaxFailures
	c.breaker = gobreaker.NewCircuitBreaker[*apiResponse](gobreaker.Settings{
		Name:        "commerce-api",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) AddCartItem(ctx context.Context, item CartItemPayload) error {
	_, err := c.do(ctx, "add cart item", http.MethodPost, "/cart/items", item, "failed to add item to cart")
	return err
}

func (c *HTTPClient) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	path := "/cart/items/" + url.PathEscape(productID)
	_, err := c.do(ctx, "update cart item", http.MethodPatch, path, body, "failed to update cart item")
	return err
}

func (c *HTTPClient) RemoveCartItem(ctx context.Context, productID string) error {
	path := "/cart/items/" + url.PathEscape(productID)
	_, err := c.do(ctx, "remove cart item", http.MethodDelete, path, nil, "failed to remove cart item")
	return err
}

func (c *HTTPClient) ClearCart(ctx context.Context) error {
	_, err := c.do(ctx, "clear cart", http.MethodDelete, "/cart", nil, "failed to clear cart")
	return err
}

func (c *HTTPClient) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	res, err := c.do(ctx, "checkout", http.MethodPost, "/cart/checkout", req, "checkout failed")
	if err != nil {
		return nil, err
	}
	return decodeOrder(res.body)
}

func (c *HTTPClient) ListOrders(ctx context.Context, page, limit int, status domain.OrderStatus) (*OrderPage, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	if status != "" {
		q.Set("status", string(status))
	}
	res, err := c.do(ctx, "list orders", http.MethodGet, "/orders?"+q.Encode(), nil, "failed to load orders")
	if err != nil {
		return nil, err
	}

	var pageResp OrderPage
	if err := json.Unmarshal(res.body, &pageResp); err != nil {
		return nil, fmt.Errorf("unmarshal order page: %w", err)
	}
	return &pageResp, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	// Collapse concurrent fetches of the same order into one request.
	v, err, _ := c.sfg.Do("order:"+id, func() (interface{}, error) {
		res, err := c.do(ctx, "get order", http.MethodGet, "/orders/"+url.PathEscape(id), nil, "failed to load order")
		if err != nil {
			var se *ServerError
			if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
				return nil, domain.ErrOrderNotFound
			}
			return nil, err
		}
		return decodeOrder(res.body)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Order), nil
}

func (c *HTTPClient) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, notes string) (*domain.Order, error) {
	body := map[string]string{"status": string(status)}
	if notes != "" {
		body["notes"] = notes
	}
	path := "/orders/" + url.PathEscape(id) + "/status"
	res, err := c.do(ctx, "update order status", http.MethodPatch, path, body, "failed to update order status")
	if err != nil {
		return nil, err
	}
	return decodeOrder(res.body)
}

func (c *HTTPClient) RefundOrder(ctx context.Context, id string, reason string) (*domain.Order, error) {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	path := "/orders/" + url.PathEscape(id) + "/refund"
	res, err := c.do(ctx, "refund order", http.MethodPost, path, body, "refund failed")
	if err != nil {
		return nil, err
	}
	return decodeOrder(res.body)
}

// do executes one API call through the circuit breaker and maps the outcome
// onto the error taxonomy: unreachable server or open breaker becomes
// TransportError, any non-2xx becomes ServerError carrying the
// server-provided message when one is present.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body any, fallback string) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	res, execErr := c.breaker.Execute(func() (*apiResponse, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		out := &apiResponse{status: resp.StatusCode, body: data}
		if resp.StatusCode >= http.StatusInternalServerError {
			// 5xx counts against the breaker; 4xx does not.
			return out, fmt.Errorf("server error %d", resp.StatusCode)
		}
		return out, nil
	})
	if execErr != nil {
		if res != nil && res.status >= http.StatusInternalServerError {
			return nil, &ServerError{Op: op, StatusCode: res.status, Message: serverMessage(res.body, fallback)}
		}
		c.log.WarnContext(ctx, "request failed", "op", op, "error", execErr)
		return nil, &TransportError{Op: op, Err: execErr}
	}
	if res.status >= http.StatusBadRequest {
		return nil, &ServerError{Op: op, StatusCode: res.status, Message: serverMessage(res.body, fallback)}
	}
	return res, nil
}

func decodeOrder(body []byte) (*domain.Order, error) {
	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &order, nil
}

// serverMessage pulls the human-readable message out of an error body,
// falling back to the per-operation default when the body has none.
func serverMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fallback
}
