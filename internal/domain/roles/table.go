package roles

import "strings"

type labelSet struct {
	male    string
	female  string
	neutral string
}

func (l labelSet) pick(gender Gender) string {
	switch gender {
	case GenderMale:
		return l.male
	case GenderFemale:
		return l.female
	default:
		return l.neutral
	}
}

func (l labelSet) gendered() bool {
	return l.male != l.female
}

func (l labelSet) labels() []string {
	return []string{l.male, l.female, l.neutral}
}

type pairing struct {
	one       labelSet
	two       labelSet
	symmetric bool
}

func same(label string) labelSet {
	return labelSet{male: label, female: label, neutral: label}
}

var pairings = map[Category]pairing{
	CategoryParentChild: {
		one: labelSet{"Father", "Mother", "Parent"},
		two: labelSet{"Son", "Daughter", "Child"},
	},
	CategoryGrandparent: {
		one: labelSet{"Grandfather", "Grandmother", "Grandparent"},
		two: labelSet{"Grandson", "Granddaughter", "Grandchild"},
	},
	CategoryStepparent: {
		one: labelSet{"Stepfather", "Stepmother", "Stepparent"},
		two: labelSet{"Stepson", "Stepdaughter", "Stepchild"},
	},
	CategoryParentInLaw: {
		one: labelSet{"Father-in-law", "Mother-in-law", "Parent-in-law"},
		two: labelSet{"Son-in-law", "Daughter-in-law", "Child-in-law"},
	},
	CategoryAuntUncle: {
		one: labelSet{"Uncle", "Aunt", "Aunt/Uncle"},
		two: labelSet{"Nephew", "Niece", "Niece/Nephew"},
	},
	CategoryGodparent: {
		one: labelSet{"Godfather", "Godmother", "Godparent"},
		two: labelSet{"Godson", "Goddaughter", "Godchild"},
	},
	CategoryGuardian: {
		one: same("Guardian"),
		two: same("Ward"),
	},
	CategorySpouse: {
		one:       labelSet{"Husband", "Wife", "Spouse"},
		symmetric: true,
	},
	CategoryPartner: {
		one:       same("Partner"),
		symmetric: true,
	},
	CategorySibling: {
		one:       labelSet{"Brother", "Sister", "Sibling"},
		symmetric: true,
	},
	CategoryStepsibling: {
		one:       labelSet{"Stepbrother", "Stepsister", "Stepsibling"},
		symmetric: true,
	},
	CategorySiblingInLaw: {
		one:       labelSet{"Brother-in-law", "Sister-in-law", "Sibling-in-law"},
		symmetric: true,
	},
	CategoryCousin: {
		one:       same("Cousin"),
		symmetric: true,
	},
	CategoryFriend: {
		one:       same("Friend"),
		symmetric: true,
	},
	CategoryNeighbor: {
		one:       same("Neighbor"),
		symmetric: true,
	},
	CategoryColleague: {
		one:       same("Colleague"),
		symmetric: true,
	},
	CategoryManager: {
		one: same("Manager"),
		two: same("Direct Report"),
	},
	CategoryMentor: {
		one: same("Mentor"),
		two: same("Mentee"),
	},
	CategoryBusinessPartner: {
		one:       same("Business Partner"),
		symmetric: true,
	},
	CategoryAdvisor: {
		one: same("Advisor"),
		two: same("Client"),
	},
	CategoryEmployment: {
		one: same("Employer"),
		two: same("Employee"),
	},
	CategoryBoard: {
		one: same("Board"),
		two: same("Board Member"),
	},
	CategoryVolunteer: {
		one: same("Volunteer Organization"),
		two: same("Volunteer"),
	},
	CategoryFounder: {
		one: same("Founded Organization"),
		two: same("Founder"),
	},
}

// aliases resolve alternative spellings onto a pairing side.
var aliases = map[string]Resolution{
	"mom":               {CategoryParentChild, SideOne},
	"dad":               {CategoryParentChild, SideOne},
	"grandma":           {CategoryGrandparent, SideOne},
	"grandpa":           {CategoryGrandparent, SideOne},
	"domestic partner":  {CategoryPartner, SideNone},
	"significant other": {CategoryPartner, SideNone},
	"coworker":          {CategoryColleague, SideNone},
	"co-worker":         {CategoryColleague, SideNone},
	"supervisor":        {CategoryManager, SideOne},
	"boss":              {CategoryManager, SideOne},
	"attorney":          {CategoryAdvisor, SideOne},
	"lawyer":            {CategoryAdvisor, SideOne},
	"accountant":        {CategoryAdvisor, SideOne},
	"financial advisor": {CategoryAdvisor, SideOne},
	"trustee":           {CategoryBoard, SideTwo},
	"director":          {CategoryBoard, SideTwo},
	"board of trustees": {CategoryBoard, SideOne},
	"co-founder":        {CategoryFounder, SideTwo},
}

var index = buildIndex()

func buildIndex() map[string]Resolution {
	result := make(map[string]Resolution, len(aliases)+len(pairings)*6)
	for category, p := range pairings {
		if p.symmetric {
			for _, label := range p.one.labels() {
				result[normalizeLabel(label)] = Resolution{Category: category, Side: SideNone}
			}
			continue
		}
		for _, label := range p.one.labels() {
			result[normalizeLabel(label)] = Resolution{Category: category, Side: SideOne}
		}
		for _, label := range p.two.labels() {
			result[normalizeLabel(label)] = Resolution{Category: category, Side: SideTwo}
		}
	}
	for label, resolution := range aliases {
		result[label] = resolution
	}
	return result
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
