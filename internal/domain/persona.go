package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTraits = errors.New("invalid persona traits")

type Occupation string

const (
	OccupationStudent     Occupation = "STUDENT"
	OccupationOfficeClerk Occupation = "OFFICE_CLERK"
	OccupationDesigner    Occupation = "DESIGNER"
	OccupationTeacher     Occupation = "TEACHER"
	OccupationNurse       Occupation = "NURSE"
	OccupationProgrammer  Occupation = "PROGRAMMER"
	OccupationFreelancer  Occupation = "FREELANCER"
)

var occupationLabels = map[Occupation]string{
	OccupationStudent:     "大学生",
	OccupationOfficeClerk: "上班族",
	OccupationDesigner:    "设计师",
	OccupationTeacher:     "老师",
	OccupationNurse:       "护士",
	OccupationProgrammer:  "程序员",
	OccupationFreelancer:  "自由职业者",
}

// Label devuelve la etiqueta visible de la ocupacion.
func (o Occupation) Label() string {
	if l, ok := occupationLabels[o]; ok {
		return l
	}
	return "普通人"
}

type Education string

const (
	EducationHighSchool Education = "HIGH_SCHOOL"
	EducationBachelor   Education = "BACHELOR"
	EducationMaster     Education = "MASTER"
	EducationDoctor     Education = "DOCTOR"
)

var educationLabels = map[Education]string{
	EducationHighSchool: "高中",
	EducationBachelor:   "本科",
	EducationMaster:     "硕士",
	EducationDoctor:     "博士",
}

func (e Education) Label() string {
	if l, ok := educationLabels[e]; ok {
		return l
	}
	return "本科"
}

type ProfanityLevel string

const (
	ProfanityNone       ProfanityLevel = "NONE"
	ProfanityOccasional ProfanityLevel = "OCCASIONAL"
	ProfanityNormal     ProfanityLevel = "NORMAL"
)

type EmojiLevel string

const (
	EmojiRare     EmojiLevel = "RARE"
	EmojiNormal   EmojiLevel = "NORMAL"
	EmojiFrequent EmojiLevel = "FREQUENT"
)

// Hobby es un interes del personaje; cada uno tiene palabras que lo disparan en la charla.
type Hobby string

const (
	HobbyMovies      Hobby = "MOVIES"
	HobbyMusic       Hobby = "MUSIC"
	HobbyTravel      Hobby = "TRAVEL"
	HobbyGames       Hobby = "GAMES"
	HobbyReading     Hobby = "READING"
	HobbySports      Hobby = "SPORTS"
	HobbyFood        Hobby = "FOOD"
	HobbyPhotography Hobby = "PHOTOGRAPHY"
	HobbyPets        Hobby = "PETS"
	HobbyAnime       Hobby = "ANIME"
)

type hobbyInfo struct {
	label    string
	keywords []string
}

var hobbyTable = map[Hobby]hobbyInfo{
	HobbyMovies:      {"看电影", []string{"电影", "影院", "新片", "导演"}},
	HobbyMusic:       {"听音乐", []string{"音乐", "歌", "演唱会", "乐队"}},
	HobbyTravel:      {"旅行", []string{"旅行", "旅游", "出去玩", "机票"}},
	HobbyGames:       {"打游戏", []string{"游戏", "开黑", "上分", "steam"}},
	HobbyReading:     {"看书", []string{"看书", "读书", "小说", "书店"}},
	HobbySports:      {"运动", []string{"运动", "健身", "跑步", "打球"}},
	HobbyFood:        {"美食", []string{"美食", "好吃", "餐厅", "火锅"}},
	HobbyPhotography: {"摄影", []string{"摄影", "拍照", "相机", "照片"}},
	HobbyPets:        {"撸猫撸狗", []string{"猫", "狗", "宠物", "毛孩子"}},
	HobbyAnime:       {"追番", []string{"动漫", "番剧", "二次元", "漫画"}},
}

func (h Hobby) Label() string {
	if info, ok := hobbyTable[h]; ok {
		return info.label
	}
	return string(h)
}

// Keywords devuelve las palabras que activan este hobby en un mensaje.
func (h Hobby) Keywords() []string {
	return hobbyTable[h].keywords
}

func (h Hobby) valid() bool {
	_, ok := hobbyTable[h]
	return ok
}

// ChatDelay es la banda de demora (ms) con la que el personaje suele contestar.
type ChatDelay struct {
	MinMS int `json:"min_ms"`
	MaxMS int `json:"max_ms"`
}

// PersonaTraits es inmutable una vez que la conversacion empieza.
type PersonaTraits struct {
	Age         int             `json:"age"`
	Occupation  Occupation      `json:"occupation"`
	Education   Education       `json:"education"`
	Personality PersonalityType `json:"personality"`
	Profanity   ProfanityLevel  `json:"profanity"`
	Emoji       EmojiLevel      `json:"emoji"`
	Hobbies     []Hobby         `json:"hobbies"`
	Proactivity int             `json:"proactivity"`
	Openness    int             `json:"openness"`
	ChatDelay   ChatDelay       `json:"chat_delay"`
}

// Validate revisa rangos y cardinalidades de los rasgos.
func (t PersonaTraits) Validate() error {
	if t.Age < 18 || t.Age > 35 {
		return fmt.Errorf("%w: age %d out of [18,35]", ErrInvalidTraits, t.Age)
	}
	if _, ok := personalityTable[t.Personality]; !ok {
		return fmt.Errorf("%w: unknown personality %q", ErrInvalidTraits, t.Personality)
	}
	if len(t.Hobbies) > 3 {
		return fmt.Errorf("%w: at most 3 hobbies, got %d", ErrInvalidTraits, len(t.Hobbies))
	}
	seen := make(map[Hobby]struct{}, len(t.Hobbies))
	for _, h := range t.Hobbies {
		if !h.valid() {
			return fmt.Errorf("%w: unknown hobby %q", ErrInvalidTraits, h)
		}
		if _, dup := seen[h]; dup {
			return fmt.Errorf("%w: duplicated hobby %q", ErrInvalidTraits, h)
		}
		seen[h] = struct{}{}
	}
	if t.Proactivity < 0 || t.Proactivity > 10 || t.Openness < 0 || t.Openness > 10 {
		return fmt.Errorf("%w: proactivity/openness must be in [0,10]", ErrInvalidTraits)
	}
	if t.ChatDelay.MinMS < 0 || t.ChatDelay.MaxMS < t.ChatDelay.MinMS {
		return fmt.Errorf("%w: invalid chat delay band %d-%d", ErrInvalidTraits, t.ChatDelay.MinMS, t.ChatDelay.MaxMS)
	}
	return nil
}

// Profile devuelve la fila de la tabla de personalidad; nunca falla (usa la normal por defecto).
func (t PersonaTraits) Profile() PersonalityProfile {
	return t.Personality.Profile()
}

// HasMarker indica si la personalidad trae el marcador dado.
func (t PersonaTraits) HasMarker(m TraitMarker) bool {
	for _, x := range t.Profile().Markers {
		if x == m {
			return true
		}
	}
	return false
}

type Persona struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Traits PersonaTraits `json:"traits"`
}

// Bio arma una biografia corta a partir de los rasgos.
func (p Persona) Bio() string {
	t := p.Traits
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s，%d岁，%s学历，职业是%s。", p.Name, t.Age, t.Education.Label(), t.Occupation.Label()))
	if len(t.Hobbies) > 0 {
		labels := make([]string, 0, len(t.Hobbies))
		for _, h := range t.Hobbies {
			labels = append(labels, h.Label())
		}
		sb.WriteString("平时喜欢" + strings.Join(labels, "、") + "。")
	}
	sb.WriteString("性格" + t.Profile().Label + "。")
	return sb.String()
}
