package graph

import "errors"

var (
	ErrPatronNotFound          = errors.New("patron not found")
	ErrHouseholdNotFound       = errors.New("household not found")
	ErrRelationshipNotFound    = errors.New("relationship not found")
	ErrMemberNotFound          = errors.New("household member not found")
	ErrSamePatron              = errors.New("patron cannot be related to themselves")
	ErrInvalidType             = errors.New("invalid relationship type")
	ErrRoleRequired            = errors.New("role is required")
	ErrNameRequired            = errors.New("household name is required")
	ErrExternalContactRequired = errors.New("external contact name is required")
	ErrDuplicateRelationship   = errors.New("active relationship already exists")
	ErrAlreadyInHousehold      = errors.New("patron already belongs to a household")
	ErrNotInHousehold          = errors.New("patron does not belong to a household")
	ErrAlreadyHouseholdMember  = errors.New("patron is already a member of this household")
	ErrHouseholdConflict       = errors.New("patron belongs to a different household")
	ErrSameHousehold           = errors.New("patron already belongs to the target household")
	ErrHeadChoiceRequired      = errors.New("new head of household must be chosen")
	ErrInvalidHeadChoice       = errors.New("new head must be a remaining household member")
	ErrConflictUnresolved      = errors.New("household conflict not resolved")
	ErrLinkClosed              = errors.New("household link already closed")
	ErrLinkStale               = errors.New("household link is stale")
	ErrInvalidLinkTransition   = errors.New("invalid household link transition")
	ErrPatronInUse             = errors.New("patron is still referenced by the graph")
)
