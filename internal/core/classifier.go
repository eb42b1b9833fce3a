package core

import "strings"

// Classification is the canonical read model derived from the stringly-typed
// role and gender fields duplicated across the registration tables.
type Classification struct {
	Category Category
	Gender   Gender
}

// privilegedRoles are the role values that always earn a single room.
var privilegedRoles = map[string]struct{}{
	"facilitator": {},
	"organizer":   {},
}

// Classify derives the participant's role category and normalized gender.
// Either the role or the participant-role field triggers privileged status;
// the participant's own gender field wins over the registration fallback.
func Classify(p Participant) Classification {
	return Classification{
		Category: classifyCategory(p),
		Gender:   normalizeGender(p),
	}
}

func classifyCategory(p Participant) Category {
	if isPrivilegedRole(p.Role) || isPrivilegedRole(p.ParticipantRole) {
		return CategoryPrivileged
	}
	return CategoryPoolable
}

func isPrivilegedRole(role string) bool {
	_, ok := privilegedRoles[strings.ToLower(strings.TrimSpace(role))]
	return ok
}

func normalizeGender(p Participant) Gender {
	signal := ""
	if p.Gender != nil && strings.TrimSpace(*p.Gender) != "" {
		signal = *p.Gender
	} else if p.RegistrationGender != nil {
		signal = *p.RegistrationGender
	}
	switch strings.ToLower(strings.TrimSpace(signal)) {
	case "man", "male":
		return GenderMale
	case "woman", "female":
		return GenderFemale
	default:
		return GenderOther
	}
}
