package roles

import "strings"

type Category string

const (
	CategoryParentChild     Category = "parent-child"
	CategoryGrandparent     Category = "grandparent-grandchild"
	CategoryStepparent      Category = "stepparent-stepchild"
	CategoryParentInLaw     Category = "parent-in-law"
	CategoryAuntUncle       Category = "aunt-uncle"
	CategoryGodparent       Category = "godparent-godchild"
	CategoryGuardian        Category = "guardian-ward"
	CategorySpouse          Category = "spouse"
	CategoryPartner         Category = "partner"
	CategorySibling         Category = "sibling"
	CategoryStepsibling     Category = "stepsibling"
	CategorySiblingInLaw    Category = "sibling-in-law"
	CategoryCousin          Category = "cousin"
	CategoryFriend          Category = "friend"
	CategoryNeighbor        Category = "neighbor"
	CategoryColleague       Category = "colleague"
	CategoryManager         Category = "manager-report"
	CategoryMentor          Category = "mentor-mentee"
	CategoryBusinessPartner Category = "business-partner"
	CategoryAdvisor         Category = "advisor-client"
	CategoryEmployment      Category = "employer-employee"
	CategoryBoard           Category = "board-member"
	CategoryVolunteer       Category = "volunteer"
	CategoryFounder         Category = "founder"
	CategoryCustom          Category = "custom"
)

func (c Category) IsCustom() bool {
	return c == CategoryCustom
}

// Known reports whether the category has an entry in the resolution table.
func (c Category) Known() bool {
	_, ok := pairings[c]
	return ok
}

// Side identifies which participant of an asymmetric pairing a label describes.
type Side int

const (
	SideNone Side = iota
	SideOne
	SideTwo
)

func (s Side) Opposite() Side {
	switch s {
	case SideOne:
		return SideTwo
	case SideTwo:
		return SideOne
	default:
		return SideNone
	}
}

type Gender string

const (
	GenderUnknown   Gender = ""
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "nonbinary"
)

func ParseGender(value string) Gender {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "m", "male", "man":
		return GenderMale
	case "f", "female", "woman":
		return GenderFemale
	case "x", "nonbinary", "non-binary":
		return GenderNonBinary
	default:
		return GenderUnknown
	}
}

type Resolution struct {
	Category Category
	Side     Side
}

func (r Resolution) Symmetric() bool {
	return r.Side == SideNone
}
