package pagerduty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const acceptHeader = "application/vnd.pagerduty+json;version=2"

// Client issues authenticated, paginated reads against the PagerDuty REST API.
// One Client is shared by the four concurrent collection fetches; the
// underlying http.Client pools connections.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchCollection pulls every page of one collection endpoint and returns the
// concatenated records in page order. name is the envelope key holding the
// record list ("services", "incidents", "teams", "escalation_policies") and
// doubles as the endpoint path. Any transport error or non-2xx status aborts
// the fetch.
func (c *Client) FetchCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	offset := 0

	for {
		page, err := c.getPage(ctx, name, offset)
		if err != nil {
			return nil, err
		}

		all = append(all, page.records...)

		if !page.more {
			break
		}

		offset += page.limit
	}

	return all, nil
}

type page struct {
	records []json.RawMessage
	limit   int
	more    bool
}

func (c *Client) getPage(ctx context.Context, name string, offset int) (page, error) {
	endpoint := fmt.Sprintf("%s/%s?offset=%d", c.baseURL, name, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)

	if err != nil {
		return page{}, err
	}

	req.Header.Set("Authorization", "Token token="+c.apiKey)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)

	if err != nil {
		return page{}, fmt.Errorf("fetch %s at offset %d: %w", name, offset, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page{}, fmt.Errorf("fetch %s at offset %d: unexpected status %s", name, offset, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return page{}, fmt.Errorf("fetch %s at offset %d: %w", name, offset, err)
	}

	var envelope map[string]json.RawMessage

	if err := json.Unmarshal(body, &envelope); err != nil {
		return page{}, fmt.Errorf("decode %s page at offset %d: %w", name, offset, err)
	}

	var p page

	if raw, ok := envelope[name]; ok {
		if err := json.Unmarshal(raw, &p.records); err != nil {
			return page{}, fmt.Errorf("decode %s records at offset %d: %w", name, offset, err)
		}
	}

	if raw, ok := envelope["limit"]; ok {
		if err := json.Unmarshal(raw, &p.limit); err != nil {
			return page{}, fmt.Errorf("decode %s limit at offset %d: %w", name, offset, err)
		}
	}

	if raw, ok := envelope["more"]; ok {
		if err := json.Unmarshal(raw, &p.more); err != nil {
			return page{}, fmt.Errorf("decode %s continuation flag at offset %d: %w", name, offset, err)
		}
	}

	if p.more && p.limit <= 0 {
		return page{}, fmt.Errorf("fetch %s at offset %d: server reported more pages with limit %d", name, offset, p.limit)
	}

	return p, nil
}
