package backend

import (
	"context"
	"net/http"

	"github.com/saravenpi/switchboard/internal/models"
)

func (c *Client) ListPhoneNumbers(ctx context.Context, sid string) ([]models.PhoneNumber, error) {
	const op = "list phone numbers"
	if err := requireID(op, param{"sid", sid}); err != nil {
		return nil, err
	}
	var numbers []models.PhoneNumber
	if err := c.do(ctx, op, http.MethodGet, path("subaccounts", sid, "phone-numbers"), nil, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

func (c *Client) GetPhoneNumber(ctx context.Context, sid, phoneSID string) (models.PhoneNumber, error) {
	const op = "get phone number"
	if err := requireID(op, param{"sid", sid}, param{"phone number sid", phoneSID}); err != nil {
		return models.PhoneNumber{}, err
	}
	var number models.PhoneNumber
	err := c.do(ctx, op, http.MethodGet, path("subaccounts", sid, phoneSID), nil, &number)
	return number, err
}

func (c *Client) ReleasePhoneNumber(ctx context.Context, sid, phoneSID string) error {
	const op = "release phone number"
	if err := requireID(op, param{"sid", sid}, param{"phone number sid", phoneSID}); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodDelete, path("subaccounts", sid, phoneSID), nil, nil)
}

// RemoveEmergencyAddress unsets the emergency address of the number
// identified by phoneSID, which the platform requires before some numbers
// can be released.
func (c *Client) RemoveEmergencyAddress(ctx context.Context, sid, phoneSID string) error {
	const op = "remove emergency address"
	if err := requireID(op, param{"sid", sid}, param{"phone number sid", phoneSID}); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodPut, path("subaccounts", sid, phoneSID), nil, nil)
}
