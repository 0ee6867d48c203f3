package roles

// OtherLabel is the catalog entry that switches the UI to free-text input.
const OtherLabel = "Other"

type CatalogType string

const (
	CatalogHousehold    CatalogType = "household"
	CatalogPersonal     CatalogType = "personal"
	CatalogProfessional CatalogType = "professional"
	CatalogOrganization CatalogType = "organization"
)

var catalogs = map[CatalogType][]string{
	CatalogHousehold: {
		"Spouse", "Husband", "Wife", "Partner",
		"Child", "Son", "Daughter",
		"Parent", "Father", "Mother",
		"Sibling", "Brother", "Sister",
		"Grandparent", "Grandchild",
		"Stepparent", "Stepchild",
		"Parent-in-law", "Child-in-law",
		"Guardian", "Ward",
	},
	CatalogPersonal: {
		"Friend", "Neighbor", "Cousin",
		"Aunt", "Uncle", "Niece", "Nephew",
		"Godparent", "Godchild",
		"Grandparent", "Grandchild",
		"Parent", "Child", "Sibling", "Brother", "Sister",
		"Sibling-in-law", "Parent-in-law", "Child-in-law",
		"Spouse", "Partner", "Guardian", "Ward",
	},
	CatalogProfessional: {
		"Colleague", "Coworker",
		"Manager", "Supervisor", "Direct Report",
		"Mentor", "Mentee",
		"Business Partner",
		"Advisor", "Attorney", "Accountant", "Financial Advisor", "Client",
	},
	CatalogOrganization: {
		"Employer", "Employee",
		"Board", "Board Member", "Trustee",
		"Volunteer Organization", "Volunteer",
		"Founded Organization", "Founder",
	},
}

// Catalog returns the selectable role labels for a relationship type, without OtherLabel.
func Catalog(kind CatalogType) []string {
	labels, ok := catalogs[kind]
	if !ok {
		return nil
	}
	return append([]string(nil), labels...)
}

func CatalogTypes() []CatalogType {
	return []CatalogType{CatalogHousehold, CatalogPersonal, CatalogProfessional, CatalogOrganization}
}
