package models

import (
	"encoding/json"
	"strings"
)

type Subaccount struct {
	SID             string    `json:"sid"`
	FriendlyName    string    `json:"friendly_name"`
	Status          string    `json:"status,omitempty"`
	DateCreated     Timestamp `json:"date_created"`
	DateUpdated     Timestamp `json:"date_updated"`
	OwnerAccountSID string    `json:"owner_account_sid,omitempty"`
}

// UnmarshalJSON accepts the list endpoint's shape, which carries the
// friendly name under "id".
func (s *Subaccount) UnmarshalJSON(data []byte) error {
	type plain Subaccount
	var raw struct {
		plain
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Subaccount(raw.plain)
	if s.FriendlyName == "" {
		s.FriendlyName = raw.ID
	}
	return nil
}

// DisplayName falls back to the sid for unnamed subaccounts.
func (s Subaccount) DisplayName() string {
	if strings.TrimSpace(s.FriendlyName) == "" {
		return s.SID
	}
	return s.FriendlyName
}

// Badges are derived indicators fetched separately from the subaccount.
// A nil field has not been fetched yet.
type Badges struct {
	AllEmergenciesRegistered *bool `json:"allEmergenciesRegistered"`
	BasicAuthMedia           *bool `json:"basicAuthMedia"`
}

type PhoneNumber struct {
	SID                 string    `json:"sid"`
	Number              string    `json:"phone_number"`
	FriendlyName        string    `json:"friendly_name,omitempty"`
	Status              string    `json:"status,omitempty"`
	DateCreated         Timestamp `json:"date_created"`
	EmergencyAddressSID string    `json:"emergency_address_sid,omitempty"`
}

func (p PhoneNumber) HasEmergencyAddress() bool {
	return p.EmergencyAddressSID != ""
}

type Conversation struct {
	SID          string    `json:"sid"`
	FriendlyName string    `json:"friendlyName,omitempty"`
	DateCreated  Timestamp `json:"dateCreated"`
	DateUpdated  Timestamp `json:"dateUpdated"`
}

func (c Conversation) DisplayName() string {
	if c.FriendlyName == "" {
		return "Unnamed Conversation"
	}
	return c.FriendlyName
}

type Message struct {
	SID         string    `json:"sid"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	DateCreated Timestamp `json:"dateCreated"`
	DateUpdated Timestamp `json:"dateUpdated"`
}

type MessageDetail struct {
	Message
	ConversationSID string     `json:"conversationSid"`
	Index           int        `json:"index"`
	ParticipantSID  string     `json:"participantSid,omitempty"`
	Attributes      Attributes `json:"attributes"`
}

type Call struct {
	SID    string `json:"sid"`
	From   string `json:"from"`
	To     string `json:"to"`
	Status string `json:"status"`
}

type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)
