package domain

import "time"

// Bus channels.
const (
	ChannelWagers   = "wagers"
	ChannelAccounts = "accounts"
)

// WagerEventType names a ledger transition.
type WagerEventType string

const (
	EventWagerPlaced     WagerEventType = "wager.placed"
	EventWagerSettled    WagerEventType = "wager.settled"
	EventWagerCancelled  WagerEventType = "wager.cancelled"
	EventWagerDeleted    WagerEventType = "wager.deleted"
	EventAccountCreated  WagerEventType = "account.created"
	EventExportCompleted WagerEventType = "export.completed"
)

// WagerEvent is published on ChannelWagers after a ledger write commits.
type WagerEvent struct {
	Type       WagerEventType `json:"type"`
	WagerID    string         `json:"wager_id,omitempty"`
	AccountID  *string        `json:"account_id,omitempty"`
	Wager      *Wager         `json:"wager,omitempty"`
	Settlement *Settlement    `json:"settlement,omitempty"`
	Account    *Account       `json:"account,omitempty"`
	At         time.Time      `json:"at"`
}
