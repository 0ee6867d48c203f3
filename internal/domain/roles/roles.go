// Package roles resolves free-text relationship labels into normalized categories
// and derives the reciprocal label seen from the other participant.
package roles

// Resolve maps a label onto its category and the side of the pairing it describes.
// Unknown labels report false.
func Resolve(label string) (Resolution, bool) {
	resolution, ok := index[normalizeLabel(label)]
	return resolution, ok
}

// CategoryOf never fails: unknown labels degrade to CategoryCustom.
func CategoryOf(label string) Category {
	resolution, ok := Resolve(label)
	if !ok {
		return CategoryCustom
	}
	return resolution.Category
}

// ReciprocalRole returns the label describing the other participant, picking the
// gendered variant for otherGender. Symmetric labels without gendered variants and
// unknown labels come back unchanged.
func ReciprocalRole(label string, otherGender Gender) string {
	resolution, ok := Resolve(label)
	if !ok {
		return label
	}
	p := pairings[resolution.Category]

	if p.symmetric {
		if !p.one.gendered() {
			return label
		}
		return p.one.pick(otherGender)
	}

	if resolution.Side == SideOne {
		return p.two.pick(otherGender)
	}
	return p.one.pick(otherGender)
}

// LabelFor returns the canonical label for a side of a known category.
func LabelFor(category Category, side Side, gender Gender) (string, bool) {
	p, ok := pairings[category]
	if !ok {
		return "", false
	}
	if p.symmetric || side != SideTwo {
		return p.one.pick(gender), true
	}
	return p.two.pick(gender), true
}
