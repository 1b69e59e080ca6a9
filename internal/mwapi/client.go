// Package mwapi is a thin typed client for the MediaWiki-style action
// API: the recent-activity listings, site namespace metadata, and the
// per-user options endpoint.
package mwapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wikivigil/vigil/internal/model"
)

const defaultTimeout = 15 * time.Second

// Client talks to one wiki's api.php endpoint.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

// NewClient creates a client for the given api.php URL.
func NewClient(endpoint, userAgent string) *Client {
	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		http:      &http.Client{Timeout: defaultTimeout},
	}
}

// changeItem is the wire shape of one listing entry (formatversion=2).
type changeItem struct {
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	RevID     int64    `json:"revid"`
	OldRevID  int64    `json:"old_revid"`
	Timestamp string   `json:"timestamp"`
	OldLen    int      `json:"oldlen"`
	NewLen    int      `json:"newlen"`
	Tags      []string `json:"tags"`
}

type queryResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Query struct {
		RecentChanges []changeItem `json:"recentchanges"`
		Watchlist     []changeItem `json:"watchlist"`
		Namespaces    map[string]struct {
			ID      int  `json:"id"`
			Content bool `json:"content"`
		} `json:"namespaces"`
	} `json:"query"`
}

// RecentChanges issues the described query and returns the matching
// unpatrolled changes. All failures come back as *FetchError; there is
// no internal retry.
func (c *Client) RecentChanges(ctx context.Context, q model.QueryDescription) ([]model.ChangeRecord, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("list", q.List)
	params.Set(q.Prefix+"prop", strings.Join(q.Fields, "|"))
	params.Set(q.Prefix+"show", "!patrolled")
	params.Set(q.Prefix+"type", strings.Join(q.Kinds, "|"))
	params.Set(q.Prefix+"dir", q.Direction)
	params.Set(q.Prefix+"limit", strconv.Itoa(q.Limit))
	if len(q.Namespaces) > 0 {
		params.Set(q.Prefix+"namespace", joinInts(q.Namespaces))
	}
	// Freshness hint: a cached response no older than one polling
	// interval is acceptable.
	params.Set("maxage", strconv.Itoa(q.MaxAge))
	params.Set("smaxage", strconv.Itoa(q.MaxAge))

	var resp queryResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, &FetchError{Message: q.List + " query", Cause: err}
	}
	if resp.Error != nil {
		return nil, &FetchError{Message: fmt.Sprintf("%s query: %s (%s)", q.List, resp.Error.Info, resp.Error.Code)}
	}

	items := resp.Query.RecentChanges
	if q.List == model.OriginWatchlist {
		items = resp.Query.Watchlist
	}

	records := make([]model.ChangeRecord, 0, len(items))
	for _, it := range items {
		records = append(records, toRecord(it))
	}
	return records, nil
}

// SiteInfo fetches the wiki's namespace groupings.
func (c *Client) SiteInfo(ctx context.Context) (model.NamespaceIndex, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("meta", "siteinfo")
	params.Set("siprop", "namespaces")

	var resp queryResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return model.NamespaceIndex{}, &FetchError{Message: "siteinfo query", Cause: err}
	}
	if resp.Error != nil {
		return model.NamespaceIndex{}, &FetchError{Message: "siteinfo query: " + resp.Error.Info}
	}

	var ns model.NamespaceIndex
	for _, info := range resp.Query.Namespaces {
		ns.All = append(ns.All, info.ID)
		if info.Content {
			ns.Content = append(ns.Content, info.ID)
		}
	}
	return ns, nil
}

// SaveOption writes one per-user option remotely. Failures come back as
// *PersistError; the caller's local write has already been applied.
func (c *Client) SaveOption(ctx context.Context, key, value string) error {
	form := url.Values{}
	form.Set("action", "options")
	form.Set("format", "json")
	form.Set("optionname", key)
	form.Set("optionvalue", value)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &PersistError{Key: key, Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return &PersistError{Key: key, Cause: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &PersistError{Key: key, Cause: err}
	}
	if httpResp.StatusCode != http.StatusOK {
		return &PersistError{Key: key, Cause: fmt.Errorf("status %d", httpResp.StatusCode)}
	}

	var result struct {
		Options string `json:"options"`
		Error   *struct {
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return &PersistError{Key: key, Cause: err}
	}
	if result.Error != nil {
		return &PersistError{Key: key, Cause: fmt.Errorf("%s", result.Error.Info)}
	}
	if result.Options != "success" {
		return &PersistError{Key: key, Cause: fmt.Errorf("unexpected response %q", result.Options)}
	}
	return nil
}

// DiffURL returns the page URL comparing a revision to its predecessor.
func (c *Client) DiffURL(rec model.ChangeRecord) string {
	base := strings.TrimSuffix(c.endpoint, "api.php") + "index.php"
	v := url.Values{}
	v.Set("diff", strconv.FormatInt(rec.RevisionID, 10))
	v.Set("oldid", strconv.FormatInt(rec.OldRevID, 10))
	return base + "?" + v.Encode()
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func toRecord(it changeItem) model.ChangeRecord {
	ts, _ := time.Parse(time.RFC3339, it.Timestamp)
	return model.ChangeRecord{
		Title:      it.Title,
		RevisionID: it.RevID,
		OldRevID:   it.OldRevID,
		Timestamp:  ts,
		OldSize:    it.OldLen,
		NewSize:    it.NewLen,
		Tags:       it.Tags,
		ChangeKind: it.Type,
	}
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, "|")
}
