package service

import (
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/campaign-companion/internal/model"
)

var hitDieTypes = map[string]bool{"d4": true, "d6": true, "d8": true, "d10": true, "d12": true}

// Text limits follow the column widths. maxLongTextLen runes of utf8mb4 fit
// in a MySQL TEXT column.
const (
	maxShortTextLen = 64
	maxLongTextLen  = 10000
)

// SheetInput is the request form of a character sheet. Name and charClass
// are required; omitted numeric fields take the documented defaults.
type SheetInput struct {
	Name       *string `json:"name"`
	CharClass  *string `json:"charClass"`
	Level      *int    `json:"level"`
	Race       *string `json:"race"`
	Background *string `json:"background"`
	Alignment  *string `json:"alignment"`
	Backstory  *string `json:"backstory"`
	Notes      *string `json:"notes"`

	Strength     *int `json:"strength"`
	Dexterity    *int `json:"dexterity"`
	Constitution *int `json:"constitution"`
	Intelligence *int `json:"intelligence"`
	Wisdom       *int `json:"wisdom"`
	Charisma     *int `json:"charisma"`

	ArmorClass       *int `json:"armorClass"`
	MaxHP            *int `json:"maxHp"`
	CurrentHP        *int `json:"currentHp"`
	Speed            *int `json:"speed"`
	ProficiencyBonus *int `json:"proficiencyBonus"`

	HitDiceTotal     *int    `json:"hitDiceTotal"`
	HitDiceRemaining *int    `json:"hitDiceRemaining"`
	HitDieType       *string `json:"hitDieType"`
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// tooLong reports a BadRequest when v has more than limit runes.
func tooLong(field string, v *string, limit int) error {
	if v != nil && utf8.RuneCountInString(*v) > limit {
		return badRequest("%s must be at most %d characters", field, limit)
	}
	return nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// Sheet validates the input and fills in defaults.
func (in SheetInput) Sheet() (model.CharacterSheet, error) {
	var s model.CharacterSheet
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return s, badRequest("name is required")
	}
	if in.CharClass == nil || strings.TrimSpace(*in.CharClass) == "" {
		return s, badRequest("charClass is required")
	}
	s.Name = strings.TrimSpace(*in.Name)
	s.CharClass = strings.TrimSpace(*in.CharClass)
	if utf8.RuneCountInString(s.Name) > maxNameLen {
		return s, badRequest("name must be at most %d characters", maxNameLen)
	}
	if utf8.RuneCountInString(s.CharClass) > maxShortTextLen {
		return s, badRequest("charClass must be at most %d characters", maxShortTextLen)
	}

	s.Level = intOr(in.Level, 1)
	if s.Level < 1 {
		return s, badRequest("level must be at least 1")
	}
	s.Race, s.Background, s.Alignment = trimmedOrNil(in.Race), trimmedOrNil(in.Background), trimmedOrNil(in.Alignment)
	s.Backstory, s.Notes = trimmedOrNil(in.Backstory), trimmedOrNil(in.Notes)
	for _, f := range []struct {
		name  string
		v     *string
		limit int
	}{
		{"race", s.Race, maxShortTextLen},
		{"background", s.Background, maxNameLen},
		{"alignment", s.Alignment, maxShortTextLen},
		{"backstory", s.Backstory, maxLongTextLen},
		{"notes", s.Notes, maxLongTextLen},
	} {
		if err := tooLong(f.name, f.v, f.limit); err != nil {
			return s, err
		}
	}

	s.Strength = intOr(in.Strength, 10)
	s.Dexterity = intOr(in.Dexterity, 10)
	s.Constitution = intOr(in.Constitution, 10)
	s.Intelligence = intOr(in.Intelligence, 10)
	s.Wisdom = intOr(in.Wisdom, 10)
	s.Charisma = intOr(in.Charisma, 10)
	// checked in sheet order so the first bad score is the one reported
	for _, a := range []struct {
		name string
		v    int
	}{
		{"strength", s.Strength}, {"dexterity", s.Dexterity}, {"constitution", s.Constitution},
		{"intelligence", s.Intelligence}, {"wisdom", s.Wisdom}, {"charisma", s.Charisma},
	} {
		if a.v < 1 || a.v > 30 {
			return s, badRequest("%s must be between 1 and 30", a.name)
		}
	}

	s.ArmorClass = intOr(in.ArmorClass, 10)
	s.MaxHP = intOr(in.MaxHP, 10)
	s.CurrentHP = intOr(in.CurrentHP, s.MaxHP)
	s.Speed = intOr(in.Speed, 30)
	s.ProficiencyBonus = intOr(in.ProficiencyBonus, 2)
	if s.ArmorClass < 0 || s.Speed < 0 || s.ProficiencyBonus < 0 {
		return s, badRequest("armorClass, speed and proficiencyBonus must not be negative")
	}
	if s.MaxHP < 1 {
		return s, badRequest("maxHp must be at least 1")
	}
	if s.CurrentHP < 0 || s.CurrentHP > s.MaxHP {
		return s, badRequest("currentHp must be between 0 and maxHp")
	}

	s.HitDiceTotal = intOr(in.HitDiceTotal, s.Level)
	s.HitDiceRemaining = intOr(in.HitDiceRemaining, s.HitDiceTotal)
	if s.HitDiceTotal < 0 || s.HitDiceRemaining < 0 || s.HitDiceRemaining > s.HitDiceTotal {
		return s, badRequest("hitDiceRemaining must be between 0 and hitDiceTotal")
	}
	s.HitDieType = "d8"
	if in.HitDieType != nil {
		s.HitDieType = strings.ToLower(strings.TrimSpace(*in.HitDieType))
	}
	if !hitDieTypes[s.HitDieType] {
		return s, badRequest("hitDieType must be one of d4, d6, d8, d10, d12")
	}
	return s, nil
}
