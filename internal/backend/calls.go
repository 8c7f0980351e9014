package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/saravenpi/switchboard/internal/models"
)

type callRequest struct {
	From string `json:"from" validate:"required,e164"`
	To   string `json:"to" validate:"required,e164"`
}

func (c *Client) PlaceCall(ctx context.Context, from, to string) (models.Call, error) {
	const op = "place call"
	req := callRequest{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}
	if err := c.check(op, req); err != nil {
		return models.Call{}, err
	}
	var call models.Call
	err := c.do(ctx, op, http.MethodPost, path("calls"), req, &call)
	return call, err
}

func (c *Client) Hangup(ctx context.Context, callSID string) error {
	const op = "hang up call"
	if err := requireID(op, param{"call sid", callSID}); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodPost, path("calls", callSID, "hangup"), nil, nil)
}
