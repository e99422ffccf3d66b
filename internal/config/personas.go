package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"affinity-chat/internal/domain"
)

type personaFile struct {
	Personas []personaEntry `yaml:"personas"`
}

type personaEntry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Age         int      `yaml:"age"`
	Occupation  string   `yaml:"occupation"`
	Education   string   `yaml:"education"`
	Personality string   `yaml:"personality"`
	Profanity   string   `yaml:"profanity"`
	Emoji       string   `yaml:"emoji"`
	Hobbies     []string `yaml:"hobbies"`
	Proactivity int      `yaml:"proactivity"`
	Openness    int      `yaml:"openness"`
	ChatDelay   struct {
		MinMS int `yaml:"min_ms"`
		MaxMS int `yaml:"max_ms"`
	} `yaml:"chat_delay"`
}

// LoadPersonasFile lee un archivo YAML de personajes predefinidos.
func LoadPersonasFile(path string) ([]domain.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}
	return ParsePersonas(data)
}

// ParsePersonas valida cada personaje; un archivo sin personajes es un error.
func ParsePersonas(data []byte) ([]domain.Persona, error) {
	var f personaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}
	if len(f.Personas) == 0 {
		return nil, fmt.Errorf("parse personas: no personas defined")
	}
	out := make([]domain.Persona, 0, len(f.Personas))
	for i, e := range f.Personas {
		p := e.toDomain()
		if p.Name == "" {
			return nil, fmt.Errorf("persona %d: missing name", i)
		}
		if err := p.Traits.Validate(); err != nil {
			return nil, fmt.Errorf("persona %q: %w", p.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (e personaEntry) toDomain() domain.Persona {
	hobbies := make([]domain.Hobby, 0, len(e.Hobbies))
	for _, h := range e.Hobbies {
		hobbies = append(hobbies, domain.Hobby(h))
	}
	return domain.Persona{
		ID:   e.ID,
		Name: e.Name,
		Traits: domain.PersonaTraits{
			Age:         e.Age,
			Occupation:  domain.Occupation(e.Occupation),
			Education:   domain.Education(e.Education),
			Personality: domain.PersonalityType(e.Personality),
			Profanity:   domain.ProfanityLevel(e.Profanity),
			Emoji:       domain.EmojiLevel(e.Emoji),
			Hobbies:     hobbies,
			Proactivity: e.Proactivity,
			Openness:    e.Openness,
			ChatDelay:   domain.ChatDelay{MinMS: e.ChatDelay.MinMS, MaxMS: e.ChatDelay.MaxMS},
		},
	}
}
