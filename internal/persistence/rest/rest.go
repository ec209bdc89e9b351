// Package rest implements persistence against a hosted table API with
// PostgREST-style semantics (eq. filters, Prefer headers, representation
// returns).
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/persistence"
)

// Client handles all communication with the table API.
type Client struct {
	BaseURL    string
	apiKey     string
	HttpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		apiKey:     apiKey,
		HttpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// do is the single, unified helper for making table API requests.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body io.Reader, prefer string) (*http.Response, error) {
	u := c.BaseURL + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create table API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("table API unavailable: %w", err)
	}
	return resp, nil
}

// Collection binds one table to its record type.
type Collection[T any, ID comparable] struct {
	client *Client
	table  string
	// conflict lists the uniqueness key columns used by Upsert.
	conflict []string
}

func NewCollection[T any, ID comparable](client *Client, table string, conflict ...string) *Collection[T, ID] {
	return &Collection[T, ID]{client: client, table: table, conflict: conflict}
}

func (c *Collection[T, ID]) FetchOne(ctx context.Context, id ID) (T, error) {
	var zero T
	q := url.Values{}
	q.Set("id", "eq."+formatValue(id))
	q.Set("limit", "1")
	recs, err := c.fetch(ctx, q)
	if err != nil {
		return zero, err
	}
	if len(recs) == 0 {
		return zero, internal_errors.NotFound
	}
	return recs[0], nil
}

func (c *Collection[T, ID]) FetchMany(ctx context.Context, filter persistence.Filter, order persistence.Order) ([]T, error) {
	q := filterQuery(filter)
	if order.Field != "" {
		dir := "asc"
		if order.Desc {
			dir = "desc"
		}
		q.Set("order", order.Field+"."+dir)
	}
	return c.fetch(ctx, q)
}

func (c *Collection[T, ID]) Insert(ctx context.Context, rec T) (T, error) {
	return c.write(ctx, http.MethodPost, url.Values{}, rec, "return=representation")
}

func (c *Collection[T, ID]) Update(ctx context.Context, id ID, patch persistence.Patch) (T, error) {
	var zero T
	q := url.Values{}
	q.Set("id", "eq."+formatValue(id))
	body, err := json.Marshal(patch)
	if err != nil {
		return zero, fmt.Errorf("failed to encode patch: %w", err)
	}
	resp, err := c.client.do(ctx, http.MethodPatch, c.table, q, bytes.NewReader(body), "return=representation")
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	recs, err := decodeRows[T](resp)
	if err != nil {
		return zero, err
	}
	if len(recs) == 0 {
		return zero, internal_errors.NotFound
	}
	return recs[0], nil
}

func (c *Collection[T, ID]) Delete(ctx context.Context, id ID) error {
	q := url.Values{}
	q.Set("id", "eq."+formatValue(id))
	resp, err := c.client.do(ctx, http.MethodDelete, c.table, q, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Collection[T, ID]) DeleteWhere(ctx context.Context, filter persistence.Filter) error {
	resp, err := c.client.do(ctx, http.MethodDelete, c.table, filterQuery(filter), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (c *Collection[T, ID]) Upsert(ctx context.Context, key persistence.Filter, rec T) (T, error) {
	q := url.Values{}
	cols := c.conflict
	if len(cols) == 0 {
		cols = sortedKeys(key)
	}
	q.Set("on_conflict", strings.Join(cols, ","))
	return c.write(ctx, http.MethodPost, q, rec, "resolution=merge-duplicates,return=representation")
}

func (c *Collection[T, ID]) fetch(ctx context.Context, q url.Values) ([]T, error) {
	resp, err := c.client.do(ctx, http.MethodGet, c.table, q, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeRows[T](resp)
}

func (c *Collection[T, ID]) write(ctx context.Context, method string, q url.Values, rec T, prefer string) (T, error) {
	var zero T
	body, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to encode record: %w", err)
	}
	resp, err := c.client.do(ctx, method, c.table, q, bytes.NewReader(body), prefer)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	recs, err := decodeRows[T](resp)
	if err != nil {
		return zero, err
	}
	if len(recs) == 0 {
		return zero, fmt.Errorf("table API returned no representation for %s", c.table)
	}
	return recs[0], nil
}

func decodeRows[T any](resp *http.Response) ([]T, error) {
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var recs []T
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return nil, fmt.Errorf("failed to decode table API response: %w", err)
	}
	return recs, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return internal_errors.NotFound
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &internal_errors.ErrorWithStatusCode{
		Message:    fmt.Sprintf("table API error: %s", string(msg)),
		StatusCode: resp.StatusCode,
	}
}

func filterQuery(filter persistence.Filter) url.Values {
	q := url.Values{}
	for field, v := range filter {
		if ids, ok := v.([]int64); ok {
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = strconv.FormatInt(id, 10)
			}
			q.Set(field, "in.("+strings.Join(parts, ",")+")")
			continue
		}
		q.Set(field, "eq."+formatValue(v))
	}
	return q
}

func formatValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case bool:
		return strconv.FormatBool(n)
	case time.Time:
		return n.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", n)
	}
}

func sortedKeys(f persistence.Filter) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewPersistence wires the standard table names.
func NewPersistence(client *Client) *persistence.Persistence {
	return &persistence.Persistence{
		Threads:  NewCollection[domain.Thread, domain.ThreadId](client, "threads"),
		Posts:    NewCollection[domain.Post, domain.PostId](client, "posts"),
		Votes:    NewCollection[domain.Vote, domain.VoteId](client, "votes", "post_id", "user_id"),
		Saved:    NewCollection[domain.SavedThread, int64](client, "saved_threads", "user_id", "thread_id"),
		Reports:  NewCollection[domain.Report, int64](client, "reports", "post_id", "reporter_id"),
		Profiles: NewCollection[domain.Profile, domain.UserId](client, "profiles"),
	}
}
