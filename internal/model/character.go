package model

// Character mirrors a row of the `characters` table. CampaignID is nil while
// the character is not assigned; CampaignName is filled by queries that join
// the campaign and is not stored.
type Character struct {
	ID           int64   `json:"id"`
	UserID       string  `json:"userId"`
	CampaignID   *string `json:"campaignId"`
	CampaignName *string `json:"campaignName,omitempty"`

	Name       string  `json:"name"`
	CharClass  string  `json:"charClass"`
	Level      int     `json:"level"`
	Race       *string `json:"race"`
	Background *string `json:"background"`
	Alignment  *string `json:"alignment"`
	Backstory  *string `json:"backstory"`
	Notes      *string `json:"notes"`

	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`

	ArmorClass       int `json:"armorClass"`
	MaxHP            int `json:"maxHp"`
	CurrentHP        int `json:"currentHp"`
	Speed            int `json:"speed"`
	ProficiencyBonus int `json:"proficiencyBonus"`

	HitDiceTotal     int    `json:"hitDiceTotal"`
	HitDiceRemaining int    `json:"hitDiceRemaining"`
	HitDieType       string `json:"hitDieType"`

	CreatedAt int64 `json:"createdAt"`
}

// CharacterSheet holds the owner-editable fields of a character. Updates
// replace every field at once.
type CharacterSheet struct {
	Name       string
	CharClass  string
	Level      int
	Race       *string
	Background *string
	Alignment  *string
	Backstory  *string
	Notes      *string

	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int

	ArmorClass       int
	MaxHP            int
	CurrentHP        int
	Speed            int
	ProficiencyBonus int

	HitDiceTotal     int
	HitDiceRemaining int
	HitDieType       string
}

// Apply copies the sheet onto c.
func (s CharacterSheet) Apply(c *Character) {
	c.Name, c.CharClass, c.Level = s.Name, s.CharClass, s.Level
	c.Race, c.Background, c.Alignment, c.Backstory, c.Notes = s.Race, s.Background, s.Alignment, s.Backstory, s.Notes
	c.Strength, c.Dexterity, c.Constitution = s.Strength, s.Dexterity, s.Constitution
	c.Intelligence, c.Wisdom, c.Charisma = s.Intelligence, s.Wisdom, s.Charisma
	c.ArmorClass, c.MaxHP, c.CurrentHP = s.ArmorClass, s.MaxHP, s.CurrentHP
	c.Speed, c.ProficiencyBonus = s.Speed, s.ProficiencyBonus
	c.HitDiceTotal, c.HitDiceRemaining, c.HitDieType = s.HitDiceTotal, s.HitDiceRemaining, s.HitDieType
}
