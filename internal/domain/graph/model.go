package graph

import (
	"strings"
	"time"

	"patron-crm-go/internal/domain/roles"
)

// RoleHead is the household member role carried by the single primary member.
const RoleHead = "Head"

// RoleMember is used when no better household role can be derived.
const RoleMember = "Member"

type RelationshipType string

const (
	TypeHousehold    RelationshipType = "household"
	TypePersonal     RelationshipType = "personal"
	TypeProfessional RelationshipType = "professional"
	TypeOrganization RelationshipType = "organization"
)

func (t RelationshipType) Valid() bool {
	switch t {
	case TypeHousehold, TypePersonal, TypeProfessional, TypeOrganization:
		return true
	default:
		return false
	}
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Patron is owned by the wider CRM. The graph only reads identity fields and
// writes HouseholdID.
type Patron struct {
	ID          string       `gorm:"primaryKey"`
	FirstName   string       `gorm:"not null"`
	LastName    string       `gorm:"not null"`
	Gender      roles.Gender `gorm:"type:varchar(16)"`
	Email       string
	Address     Address `gorm:"embedded;embeddedPrefix:address_"`
	HouseholdID *string `gorm:"index"`
}

func (p Patron) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p Patron) InHousehold() bool {
	return p.HouseholdID != nil
}

type ExternalContact struct {
	Name     string
	Company  string
	Initials string
	Title    string
}

// CustomLabels carries the role labels of a relationship. From describes the
// From patron as seen by the To side; To describes the To side as seen by From.
type CustomLabels struct {
	From string
	To   string
}

// Relationship is a directed edge. A nil ToPatronID marks an external contact.
// Ending a relationship sets EndDate; records are never removed.
type Relationship struct {
	ID              string           `gorm:"primaryKey"`
	Seq             int64            `gorm:"not null;index"`
	FromPatronID    string           `gorm:"not null;index"`
	ToPatronID      *string          `gorm:"index"`
	Type            RelationshipType `gorm:"type:varchar(16);not null"`
	Category        roles.Category   `gorm:"type:varchar(64);not null"`
	FromLabel       string
	ToLabel         string
	Notes           string
	StartDate       time.Time
	EndDate         *time.Time
	ExternalContact *ExternalContact `gorm:"embedded;embeddedPrefix:external_"`
}

func (r Relationship) Active() bool {
	return r.EndDate == nil
}

func (r Relationship) IsExternal() bool {
	return r.ToPatronID == nil
}

func (r Relationship) Involves(patronID string) bool {
	return r.FromPatronID == patronID || (r.ToPatronID != nil && *r.ToPatronID == patronID)
}

// Connects ignores direction.
func (r Relationship) Connects(a, b string) bool {
	if r.ToPatronID == nil {
		return false
	}
	to := *r.ToPatronID
	return (r.FromPatronID == a && to == b) || (r.FromPatronID == b && to == a)
}

// Counterpart returns the other participant's patron id, false for external
// contacts seen from the From side or when patronID is not a participant.
func (r Relationship) Counterpart(patronID string) (string, bool) {
	switch {
	case r.FromPatronID == patronID && r.ToPatronID != nil:
		return *r.ToPatronID, true
	case r.ToPatronID != nil && *r.ToPatronID == patronID:
		return r.FromPatronID, true
	default:
		return "", false
	}
}

// RoleOf returns the label describing patronID within the relationship.
func (r Relationship) RoleOf(patronID string) string {
	if r.FromPatronID == patronID {
		return r.FromLabel
	}
	return r.ToLabel
}

// DisplayRole is what the counterpart is to viewerID.
func (r Relationship) DisplayRole(viewerID string) string {
	if r.FromPatronID == viewerID {
		return r.ToLabel
	}
	return r.FromLabel
}

type Household struct {
	ID       string `gorm:"primaryKey"`
	Seq      int64  `gorm:"not null;index"`
	Name     string `gorm:"not null"`
	Verified bool   `gorm:"not null;default:false"`
}

// HouseholdMember joins a patron to a household. Role describes the member
// relative to the head.
type HouseholdMember struct {
	ID          string `gorm:"primaryKey"`
	Seq         int64  `gorm:"not null;index"`
	HouseholdID string `gorm:"not null;index"`
	PatronID    string `gorm:"not null;uniqueIndex"`
	Role        string `gorm:"not null"`
	IsPrimary   bool   `gorm:"not null;default:false"`
}

func (m HouseholdMember) IsHead() bool {
	return m.IsPrimary
}

// Connection is a read view of an active non-household relationship.
type Connection struct {
	Relationship Relationship
	PatronID     string
	External     *ExternalContact
	Role         string
}

type HouseholdConflict struct {
	Household        Household
	IsHead           bool
	MemberCount      int
	RemainingMembers []HouseholdMember
}

// RequiresHeadChoice is true when the candidate heads a household that survives
// their departure, so someone has to pick the next head.
func (c HouseholdConflict) RequiresHeadChoice() bool {
	return c.IsHead && len(c.RemainingMembers) >= 2
}

func (c HouseholdConflict) WillDissolve() bool {
	return len(c.RemainingMembers) < 2
}

type NewRelationship struct {
	FromPatronID    string
	ToPatronID      *string
	Type            RelationshipType
	Category        roles.Category
	Labels          CustomLabels
	Notes           string
	ExternalContact *ExternalContact
}
