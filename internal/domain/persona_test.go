package domain

import (
	"errors"
	"strings"
	"testing"
)

func validTraits() PersonaTraits {
	return PersonaTraits{
		Age:         24,
		Occupation:  OccupationDesigner,
		Education:   EducationBachelor,
		Personality: PersonalityCoolElegant,
		Profanity:   ProfanityNone,
		Emoji:       EmojiRare,
		Hobbies:     []Hobby{HobbyMovies, HobbyReading},
		Proactivity: 3,
		Openness:    5,
		ChatDelay:   ChatDelay{MinMS: 500, MaxMS: 1500},
	}
}

func TestPersonaTraitsValidate(t *testing.T) {
	if err := validTraits().Validate(); err != nil {
		t.Fatalf("expected valid traits, got %v", err)
	}

	cases := map[string]func(*PersonaTraits){
		"edad baja":          func(p *PersonaTraits) { p.Age = 17 },
		"edad alta":          func(p *PersonaTraits) { p.Age = 36 },
		"personalidad":       func(p *PersonaTraits) { p.Personality = "GRUMPY" },
		"demasiados hobbies": func(p *PersonaTraits) { p.Hobbies = []Hobby{HobbyMovies, HobbyMusic, HobbyGames, HobbyPets} },
		"hobby repetido":     func(p *PersonaTraits) { p.Hobbies = []Hobby{HobbyMovies, HobbyMovies} },
		"hobby desconocido":  func(p *PersonaTraits) { p.Hobbies = []Hobby{"KNITTING"} },
		"proactividad":       func(p *PersonaTraits) { p.Proactivity = 11 },
		"apertura":           func(p *PersonaTraits) { p.Openness = -1 },
		"banda de demora":    func(p *PersonaTraits) { p.ChatDelay = ChatDelay{MinMS: 900, MaxMS: 100} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tr := validTraits()
			mutate(&tr)
			if err := tr.Validate(); !errors.Is(err, ErrInvalidTraits) {
				t.Fatalf("expected ErrInvalidTraits, got %v", err)
			}
		})
	}
}

func TestPersonalityProfile(t *testing.T) {
	if got := PersonalityCoolElegant.Profile().Style; got != StyleCool {
		t.Fatalf("expected cool style, got %q", got)
	}
	if got := PersonalityType("UNKNOWN").Profile().Style; got != StyleNormal {
		t.Fatalf("expected normal style for unknown personality, got %q", got)
	}
	tr := validTraits()
	tr.Personality = PersonalitySensitiveShy
	if !tr.HasMarker(MarkerSensitive) || tr.HasMarker(MarkerTolerant) {
		t.Fatalf("unexpected markers for sensitive persona: %+v", tr.Profile().Markers)
	}
}

func TestPersonaBio(t *testing.T) {
	p := Persona{ID: "p1", Name: "林晚", Traits: validTraits()}
	bio := p.Bio()
	for _, want := range []string{"林晚", "24岁", "设计师", "看电影", "高冷优雅"} {
		if !strings.Contains(bio, want) {
			t.Fatalf("expected bio to contain %q, got %q", want, bio)
		}
	}
}
