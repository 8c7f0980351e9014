package backend

import (
	"context"
	"net/http"

	"github.com/saravenpi/switchboard/internal/models"
)

func (c *Client) ListConversations(ctx context.Context, sid, phoneNumber string) ([]models.Conversation, error) {
	const op = "list conversations"
	if err := requireID(op, param{"sid", sid}, param{"phone number", phoneNumber}); err != nil {
		return nil, err
	}
	var conversations []models.Conversation
	if err := c.do(ctx, op, http.MethodGet, path("subaccounts", sid, phoneNumber, "conversations"), nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (c *Client) ListMessages(ctx context.Context, sid, conversationSID string) ([]models.Message, error) {
	const op = "list messages"
	if err := requireID(op, param{"sid", sid}, param{"conversation sid", conversationSID}); err != nil {
		return nil, err
	}
	var messages []models.Message
	p := path("subaccounts", sid, "conversations", conversationSID, "messages")
	if err := c.do(ctx, op, http.MethodGet, p, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) GetMessage(ctx context.Context, sid, conversationSID, messageSID string) (models.MessageDetail, error) {
	const op = "get message"
	ids := []param{{"sid", sid}, {"conversation sid", conversationSID}, {"message sid", messageSID}}
	if err := requireID(op, ids...); err != nil {
		return models.MessageDetail{}, err
	}
	var detail models.MessageDetail
	p := path("subaccounts", sid, "conversations", conversationSID, "messages", messageSID)
	err := c.do(ctx, op, http.MethodGet, p, nil, &detail)
	return detail, err
}
