package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a derived per-partner summary of the most recent message
// exchanged with that partner. It is recomputed on every request and never
// persisted. The partner presence fields carry the stored values; the
// effective presence is derived at the HTTP boundary.
type Conversation struct {
	PartnerID         uuid.UUID  `json:"partnerId"`
	PartnerName       string     `json:"partnerName"`
	LastMessageText   string     `json:"lastMessageText"`
	LastMessageTime   time.Time  `json:"lastMessageTime"`
	PartnerIsOnline   bool       `json:"-"`
	PartnerLastSeenAt *time.Time `json:"-"`
}
