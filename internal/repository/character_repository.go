package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/model"
)

// CharacterRepo provides data access to the characters table.
type CharacterRepo struct{ q database.Querier }

func NewCharacterRepo(q database.Querier) *CharacterRepo { return &CharacterRepo{q: q} }

const sheetColumns = `name, char_class, level, race, background, alignment, backstory, notes,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	armor_class, max_hp, current_hp, speed, proficiency_bonus,
	hit_dice_total, hit_dice_remaining, hit_die_type`

const characterColumns = "ch.id, ch.user_id, ch.campaign_id, " +
	`ch.name, ch.char_class, ch.level, ch.race, ch.background, ch.alignment, ch.backstory, ch.notes,
	ch.strength, ch.dexterity, ch.constitution, ch.intelligence, ch.wisdom, ch.charisma,
	ch.armor_class, ch.max_hp, ch.current_hp, ch.speed, ch.proficiency_bonus,
	ch.hit_dice_total, ch.hit_dice_remaining, ch.hit_die_type, ch.created_at`

func sheetArgs(s model.CharacterSheet) []any {
	return []any{
		s.Name, s.CharClass, s.Level,
		nullString(s.Race), nullString(s.Background), nullString(s.Alignment), nullString(s.Backstory), nullString(s.Notes),
		s.Strength, s.Dexterity, s.Constitution, s.Intelligence, s.Wisdom, s.Charisma,
		s.ArmorClass, s.MaxHP, s.CurrentHP, s.Speed, s.ProficiencyBonus,
		s.HitDiceTotal, s.HitDiceRemaining, s.HitDieType,
	}
}

// scanCharacter scans characterColumns, optionally followed by a campaign name.
func scanCharacter(row interface{ Scan(...any) error }, withCampaignName bool) (model.Character, error) {
	var (
		c                                              model.Character
		campaignID, campaignName                       sql.NullString
		race, background, alignment, backstory, notes sql.NullString
	)
	dest := []any{
		&c.ID, &c.UserID, &campaignID,
		&c.Name, &c.CharClass, &c.Level, &race, &background, &alignment, &backstory, &notes,
		&c.Strength, &c.Dexterity, &c.Constitution, &c.Intelligence, &c.Wisdom, &c.Charisma,
		&c.ArmorClass, &c.MaxHP, &c.CurrentHP, &c.Speed, &c.ProficiencyBonus,
		&c.HitDiceTotal, &c.HitDiceRemaining, &c.HitDieType, &c.CreatedAt,
	}
	if withCampaignName {
		dest = append(dest, &campaignName)
	}
	if err := row.Scan(dest...); err != nil {
		return c, err
	}
	c.CampaignID = stringPtr(campaignID)
	c.CampaignName = stringPtr(campaignName)
	c.Race, c.Background, c.Alignment = stringPtr(race), stringPtr(background), stringPtr(alignment)
	c.Backstory, c.Notes = stringPtr(backstory), stringPtr(notes)
	return c, nil
}

// Create inserts an unassigned character and fills in its generated ID.
func (r *CharacterRepo) Create(ctx context.Context, c *model.Character) error {
	args := append([]any{c.UserID}, sheetArgs(sheetOf(c))...)
	args = append(args, c.CreatedAt)
	id, err := database.InsertID(ctx, r.q,
		`INSERT INTO characters (user_id, `+sheetColumns+`, created_at)
		 VALUES (?, ?,?,?,?,?,?,?,?, ?,?,?,?,?,?, ?,?,?,?,?, ?,?,?, ?)`,
		args...)
	if err != nil {
		return err
	}
	c.ID = id
	c.CampaignID = nil
	return nil
}

// GetByID loads a character without its campaign name. With lock set the
// row stays locked for the rest of the transaction.
func (r *CharacterRepo) GetByID(ctx context.Context, id int64, lock bool) (model.Character, error) {
	query := "SELECT " + characterColumns + " FROM characters ch WHERE ch.id = ?"
	if lock {
		query += r.q.Dialect().ForUpdate()
	}
	c, err := scanCharacter(r.q.QueryRowContext(ctx, query, id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// GetWithCampaign loads a character annotated with its campaign name.
func (r *CharacterRepo) GetWithCampaign(ctx context.Context, id int64) (model.Character, error) {
	c, err := scanCharacter(r.q.QueryRowContext(ctx,
		"SELECT "+characterColumns+", cp.name FROM characters ch LEFT JOIN campaigns cp ON cp.id = ch.campaign_id WHERE ch.id = ?",
		id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

func (r *CharacterRepo) list(ctx context.Context, where string, args ...any) ([]model.Character, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+characterColumns+", cp.name FROM characters ch LEFT JOIN campaigns cp ON cp.id = ch.campaign_id WHERE "+
			where+" ORDER BY ch.created_at DESC, ch.id DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListByUser returns the characters owned by userID, newest first.
func (r *CharacterRepo) ListByUser(ctx context.Context, userID string) ([]model.Character, error) {
	return r.list(ctx, "ch.user_id = ?", userID)
}

// ListByCampaign returns every character assigned to a campaign.
func (r *CharacterRepo) ListByCampaign(ctx context.Context, campaignID string) ([]model.Character, error) {
	return r.list(ctx, "ch.campaign_id = ?", campaignID)
}

// ListByUserAndCampaign returns the characters of userID assigned to a campaign.
func (r *CharacterRepo) ListByUserAndCampaign(ctx context.Context, userID, campaignID string) ([]model.Character, error) {
	return r.list(ctx, "ch.user_id = ? AND ch.campaign_id = ?", userID, campaignID)
}

// UpdateSheet replaces every editable field of a character.
func (r *CharacterRepo) UpdateSheet(ctx context.Context, id int64, s model.CharacterSheet) error {
	args := append(sheetArgs(s), id)
	_, err := r.q.ExecContext(ctx,
		`UPDATE characters SET name = ?, char_class = ?, level = ?, race = ?, background = ?, alignment = ?,
		 backstory = ?, notes = ?, strength = ?, dexterity = ?, constitution = ?, intelligence = ?, wisdom = ?,
		 charisma = ?, armor_class = ?, max_hp = ?, current_hp = ?, speed = ?, proficiency_bonus = ?,
		 hit_dice_total = ?, hit_dice_remaining = ?, hit_die_type = ?
		 WHERE id = ?`, args...)
	return err
}

// SetCampaign assigns a character to campaignID, or detaches it when nil.
func (r *CharacterRepo) SetCampaign(ctx context.Context, id int64, campaignID *string) error {
	_, err := r.q.ExecContext(ctx, "UPDATE characters SET campaign_id = ? WHERE id = ?", nullString(campaignID), id)
	return err
}

// FindOtherAssigned returns the id of a character of userID, other than
// exceptID, that is assigned to campaignID. It is a locking read so it sees
// assignments committed after the transaction's snapshot was taken.
func (r *CharacterRepo) FindOtherAssigned(ctx context.Context, userID, campaignID string, exceptID int64) (int64, bool, error) {
	var id int64
	err := r.q.QueryRowContext(ctx,
		"SELECT id FROM characters WHERE user_id = ? AND campaign_id = ? AND id <> ? LIMIT 1"+r.q.Dialect().ForUpdate(),
		userID, campaignID, exceptID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// DetachCampaign clears the assignment of every character in a campaign.
func (r *CharacterRepo) DetachCampaign(ctx context.Context, campaignID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, "UPDATE characters SET campaign_id = NULL WHERE campaign_id = ?", campaignID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LevelUpCampaign increments the level of every character assigned to a
// campaign and returns how many were updated.
func (r *CharacterRepo) LevelUpCampaign(ctx context.Context, campaignID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, "UPDATE characters SET level = level + 1 WHERE campaign_id = ?", campaignID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a character row.
func (r *CharacterRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, "DELETE FROM characters WHERE id = ?", id)
	return err
}

func sheetOf(c *model.Character) model.CharacterSheet {
	return model.CharacterSheet{
		Name: c.Name, CharClass: c.CharClass, Level: c.Level,
		Race: c.Race, Background: c.Background, Alignment: c.Alignment, Backstory: c.Backstory, Notes: c.Notes,
		Strength: c.Strength, Dexterity: c.Dexterity, Constitution: c.Constitution,
		Intelligence: c.Intelligence, Wisdom: c.Wisdom, Charisma: c.Charisma,
		ArmorClass: c.ArmorClass, MaxHP: c.MaxHP, CurrentHP: c.CurrentHP,
		Speed: c.Speed, ProficiencyBonus: c.ProficiencyBonus,
		HitDiceTotal: c.HitDiceTotal, HitDiceRemaining: c.HitDiceRemaining, HitDieType: c.HitDieType,
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
