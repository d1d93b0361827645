package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUserRole enumerates allowed roles.
type AdminUserRole string

const (
	RoleSuperAdmin    AdminUserRole = "SUPERADMIN"
	RoleAdmin         AdminUserRole = "ADMIN"
	RoleHost          AdminUserRole = "HOST"
	RoleWinnerReports AdminUserRole = "WINNERREPORTS"
)

// UserStatus enumerates user account states.
type UserStatus string

const (
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
	StatusLocked   UserStatus = "Locked"
)

// AdminUser is an operator allowed to drive or administer the drawing stage.
type AdminUser struct {
	ID           uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username     string        `gorm:"uniqueIndex;not null" json:"username"`
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"not null" json:"password_hash,omitempty"`
	Role         AdminUserRole `gorm:"not null" json:"role"`
	Status       UserStatus    `gorm:"not null;default:'Active'" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// KVEntry is one row of the key/value persistence table.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the KV table name.
func (KVEntry) TableName() string { return "lottery_kv" }

// Tier is one prize category, e.g. “First Prize”, with the number of winners it hands out.
type Tier struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Quota int    `json:"count"`
}

// Candidate is a pending entrant. Weights are keyed by tier key; a missing key means weight 1.
type Candidate struct {
	ID          string             `json:"id"`
	NameLocal   string             `json:"namezh"`
	NameForeign string             `json:"nameen"`
	AvatarChar  string             `json:"avatarChar,omitempty"`
	Portrait    string             `json:"image,omitempty"`
	Wish        string             `json:"wish,omitempty"`
	Weights     map[string]float64 `json:"awardWeights,omitempty"`
	Locked      bool               `json:"locked"`
}

// Weight returns the candidate's weight for a tier, defaulting to 1.
func (c Candidate) Weight(tierKey string) float64 {
	w, ok := c.Weights[tierKey]
	if !ok {
		return 1
	}
	if w < 0 {
		return 0
	}
	return w
}

// Clone returns a deep copy.
func (c Candidate) Clone() Candidate {
	out := c
	if c.Weights != nil {
		out.Weights = make(map[string]float64, len(c.Weights))
		for k, v := range c.Weights {
			out.Weights[k] = v
		}
	}
	return out
}

// Gift is a physical item handed out with a tier win. Placeholder gifts are
// synthesised for tiers without a stocked catalog and carry the tier label.
type Gift struct {
	Name              string `json:"giftName"`
	TierKey           string `json:"giftLevel"`
	Description       string `json:"description,omitempty"`
	Image             string `json:"giftImage,omitempty"`
	TotalQuantity     int    `json:"giftQuantity"`
	RemainingQuantity int    `json:"remainingQuantity"`
	Placeholder       bool   `json:"placeholder,omitempty"`
}

// Clone returns a copy of g, or nil.
func (g *Gift) Clone() *Gift {
	if g == nil {
		return nil
	}
	out := *g
	return &out
}

// WinnerRecord is the reduced record kept once a candidate has been drawn.
type WinnerRecord struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	NameLocal   string    `json:"namezh"`
	NameForeign string    `json:"nameen"`
	AvatarChar  string    `json:"avatarChar,omitempty"`
	Portrait    string    `json:"image,omitempty"`
	TierKey     string    `json:"tierKey"`
	TierLabel   string    `json:"tierLabel"`
	Gift        *Gift     `json:"gift,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Clone returns a deep copy.
func (w WinnerRecord) Clone() WinnerRecord {
	w.Gift = w.Gift.Clone()
	return w
}

// Snapshot is an independent copy of the four drawing aggregates.
type Snapshot struct {
	Pool      []Candidate               `json:"lotteryData"`
	Remaining map[string]int            `json:"awardLog"`
	Winners   map[string][]WinnerRecord `json:"winnerMap"`
	Gifts     []Gift                    `json:"prizeList"`
}

// RoundMarker ties a history entry to a multi-round session.
type RoundMarker struct {
	IsMultiRound bool   `json:"isMultiRound"`
	SessionID    string `json:"sessionId"`
	RoundIndex   int    `json:"roundIndex"`
	TotalRounds  int    `json:"totalRounds"`
}

// HistoryEntry records one completed draw with the state needed to reverse it.
type HistoryEntry struct {
	ID         string       `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	TierKey    string       `json:"awardKey"`
	TierLabel  string       `json:"awardName"`
	Winner     Candidate    `json:"winner"`
	Record     WinnerRecord `json:"record"`
	Gift       *Gift        `json:"gift,omitempty"`
	Snapshot   Snapshot     `json:"snapshots"`
	MultiRound *RoundMarker `json:"multiRound,omitempty"`
}

// Migrate creates or updates the admin and key/value tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&AdminUser{},
		&KVEntry{},
	)
}
