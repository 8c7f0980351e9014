package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/saravenpi/switchboard/internal/models"
)

type subaccountRequest struct {
	FriendlyName string `json:"friendly_name" validate:"required,max=64"`
}

type closeRequest struct {
	Closed bool `json:"closed"`
}

func (c *Client) ListSubaccounts(ctx context.Context) ([]models.Subaccount, error) {
	var subs []models.Subaccount
	if err := c.do(ctx, "list subaccounts", http.MethodGet, path("subaccounts"), nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) GetSubaccount(ctx context.Context, sid string) (models.Subaccount, error) {
	const op = "get subaccount"
	if err := requireID(op, param{"sid", sid}); err != nil {
		return models.Subaccount{}, err
	}
	var sub models.Subaccount
	err := c.do(ctx, op, http.MethodGet, path("subaccounts", sid), nil, &sub)
	return sub, err
}

func (c *Client) CreateSubaccount(ctx context.Context, friendlyName string) (models.Subaccount, error) {
	const op = "create subaccount"
	req := subaccountRequest{FriendlyName: strings.TrimSpace(friendlyName)}
	if err := c.check(op, req); err != nil {
		return models.Subaccount{}, err
	}
	var sub models.Subaccount
	err := c.do(ctx, op, http.MethodPost, path("subaccounts"), req, &sub)
	return sub, err
}

func (c *Client) RenameSubaccount(ctx context.Context, sid, friendlyName string) (models.Subaccount, error) {
	const op = "rename subaccount"
	if err := requireID(op, param{"sid", sid}); err != nil {
		return models.Subaccount{}, err
	}
	req := subaccountRequest{FriendlyName: strings.TrimSpace(friendlyName)}
	if err := c.check(op, req); err != nil {
		return models.Subaccount{}, err
	}
	var sub models.Subaccount
	err := c.do(ctx, op, http.MethodPut, path("subaccounts", sid), req, &sub)
	return sub, err
}

// CloseSubaccount closes the subaccount; the backend releases its numbers.
func (c *Client) CloseSubaccount(ctx context.Context, sid string) error {
	const op = "close subaccount"
	if err := requireID(op, param{"sid", sid}); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodDelete, path("subaccounts", sid), closeRequest{Closed: true}, nil)
}

func (c *Client) FetchBadges(ctx context.Context, sid string) (models.Badges, error) {
	const op = "fetch badges"
	if err := requireID(op, param{"sid", sid}); err != nil {
		return models.Badges{}, err
	}
	var badges models.Badges
	err := c.do(ctx, op, http.MethodGet, path("subaccounts", sid, "badges"), nil, &badges)
	return badges, err
}
