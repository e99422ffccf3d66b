package service

import "affinity-chat/internal/domain"

type constRand struct{ n int }

func (r constRand) Intn(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

// seqRand devuelve los valores en orden y luego repite el ultimo.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[len(r.vals)-1]
	if r.i < len(r.vals) {
		v = r.vals[r.i]
		r.i++
	}
	if v >= n {
		return n - 1
	}
	return v
}

func testPersona(p domain.PersonalityType, hobbies ...domain.Hobby) domain.Persona {
	return domain.Persona{
		ID:   "p1",
		Name: "林晚",
		Traits: domain.PersonaTraits{
			Age:         24,
			Occupation:  domain.OccupationDesigner,
			Education:   domain.EducationBachelor,
			Personality: p,
			Profanity:   domain.ProfanityNone,
			Emoji:       domain.EmojiRare,
			Hobbies:     hobbies,
			Proactivity: 3,
			Openness:    4,
			ChatDelay:   domain.ChatDelay{MinMS: 0, MaxMS: 0},
		},
	}
}
