package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSubaccountNameFallsBackToID(t *testing.T) {
	var list []Subaccount
	if err := json.Unmarshal([]byte(`[{"sid":"AC1","id":"Acme"},{"sid":"AC2","friendly_name":"Globex"}]`), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if list[0].FriendlyName != "Acme" {
		t.Errorf("expected Acme, got %q", list[0].FriendlyName)
	}
	if list[1].FriendlyName != "Globex" {
		t.Errorf("expected Globex, got %q", list[1].FriendlyName)
	}
}

func TestSubaccountDetailDecode(t *testing.T) {
	body := `{"sid":"AC1","friendly_name":"Acme","status":"active",
		"date_created":"2024-03-01T10:00:00+00:00","date_updated":"2024-03-02T10:00:00+00:00",
		"owner_account_sid":"ACparent"}`
	var s Subaccount
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Status != "active" || s.OwnerAccountSID != "ACparent" {
		t.Errorf("unexpected subaccount: %+v", s)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !s.DateCreated.Equal(want) {
		t.Errorf("date_created = %v, want %v", s.DateCreated.Time, want)
	}
}

func TestDisplayName(t *testing.T) {
	if got := (Subaccount{SID: "AC1"}).DisplayName(); got != "AC1" {
		t.Errorf("expected sid fallback, got %q", got)
	}
	if got := (Conversation{}).DisplayName(); got != "Unnamed Conversation" {
		t.Errorf("unexpected conversation name %q", got)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	cases := []string{
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:00:00.123456",
		"2024-03-01T10:00:00",
		"Fri, 01 Mar 2024 10:00:00 GMT",
	}
	for _, c := range cases {
		got, err := ParseTimestamp(c)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", c, err)
			continue
		}
		if got.Year() != 2024 || got.Month() != time.March || got.Day() != 1 {
			t.Errorf("ParseTimestamp(%q) = %v", c, got)
		}
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unknown layout")
	}
	if got, err := ParseTimestamp(""); err != nil || !got.IsZero() {
		t.Errorf("empty string should give zero time, got %v, %v", got, err)
	}
}

func TestTimestampNull(t *testing.T) {
	var p PhoneNumber
	if err := json.Unmarshal([]byte(`{"sid":"PN1","phone_number":"+15550001111","date_created":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.DateCreated.IsZero() {
		t.Errorf("expected zero date, got %v", p.DateCreated.Time)
	}
	if p.HasEmergencyAddress() {
		t.Error("expected no emergency address")
	}
}

func TestBadgesNullable(t *testing.T) {
	var b Badges
	if err := json.Unmarshal([]byte(`{"allEmergenciesRegistered":false,"basicAuthMedia":null}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.AllEmergenciesRegistered == nil || *b.AllEmergenciesRegistered {
		t.Errorf("expected registered=false, got %v", b.AllEmergenciesRegistered)
	}
	if b.BasicAuthMedia != nil {
		t.Errorf("expected basicAuthMedia unknown, got %v", *b.BasicAuthMedia)
	}
}

func TestMessageDetailAttributes(t *testing.T) {
	cases := map[string]string{
		"object": `{"sid":"IM1","attributes":{"channel":"sms"}}`,
		"string": `{"sid":"IM1","attributes":"{\"channel\":\"sms\"}"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var d MessageDetail
			if err := json.Unmarshal([]byte(body), &d); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if d.SID != "IM1" {
				t.Errorf("expected embedded sid, got %q", d.SID)
			}
			if d.Attributes["channel"] != "sms" {
				t.Errorf("expected channel=sms, got %v", d.Attributes)
			}
		})
	}

	var empty MessageDetail
	if err := json.Unmarshal([]byte(`{"sid":"IM2","attributes":"{}"}`), &empty); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := empty.Attributes.Pretty(); got != "{}" {
		t.Errorf("expected {}, got %q", got)
	}
}
