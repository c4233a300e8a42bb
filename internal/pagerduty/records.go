package pagerduty

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection envelope keys, which also name the endpoints.
const (
	CollectionServices           = "services"
	CollectionIncidents          = "incidents"
	CollectionTeams              = "teams"
	CollectionEscalationPolicies = "escalation_policies"
)

// Ref is a nested reference object inside a record payload. Only the id is
// read; everything else PagerDuty embeds is ignored.
type Ref struct {
	ID string `json:"id"`
}

// Optional string fields are pointers so an absent or null field can be told
// apart from an empty one and given its default downstream.

type RawTeam struct {
	ID      string  `json:"id"`
	Name    *string `json:"name"`
	HTMLURL *string `json:"html_url"`
}

type RawEscalationPolicy struct {
	ID      string  `json:"id"`
	Name    *string `json:"name"`
	HTMLURL *string `json:"html_url"`
	Teams   []Ref   `json:"teams"`
}

type RawService struct {
	ID               string  `json:"id"`
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	Status           *string `json:"status"`
	HTMLURL          *string `json:"html_url"`
	EscalationPolicy *Ref    `json:"escalation_policy"`
	Teams            []Ref   `json:"teams"`
}

type RawIncident struct {
	ID               string  `json:"id"`
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Status           *string `json:"status"`
	HTMLURL          *string `json:"html_url"`
	Service          *Ref    `json:"service"`
	EscalationPolicy *Ref    `json:"escalation_policy"`
}

func (c *Client) FetchTeams(ctx context.Context) ([]RawTeam, error) {
	return fetchAs[RawTeam](ctx, c, CollectionTeams)
}

func (c *Client) FetchEscalationPolicies(ctx context.Context) ([]RawEscalationPolicy, error) {
	return fetchAs[RawEscalationPolicy](ctx, c, CollectionEscalationPolicies)
}

func (c *Client) FetchServices(ctx context.Context) ([]RawService, error) {
	return fetchAs[RawService](ctx, c, CollectionServices)
}

func (c *Client) FetchIncidents(ctx context.Context) ([]RawIncident, error) {
	return fetchAs[RawIncident](ctx, c, CollectionIncidents)
}

func fetchAs[T any](ctx context.Context, c *Client, name string) ([]T, error) {
	raws, err := c.FetchCollection(ctx, name)

	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(raws))

	for i, raw := range raws {
		var record T

		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", name, i, err)
		}

		records = append(records, record)
	}

	return records, nil
}
