package database

import (
	"context"
	"errors"
	"testing"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"mysql", MySQL, false},
		{" Postgres ", Postgres, false},
		{"sqlite", SQLite, false},
		{"sqlite3", SQLite, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDialect(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT id FROM t WHERE a = ? AND b = ? LIMIT ?"
	if got := MySQL.Rebind(q); got != q {
		t.Errorf("mysql rebind changed query: %q", got)
	}
	if got := SQLite.Rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	if got, want := Postgres.Rebind(q), "SELECT id FROM t WHERE a = $1 AND b = $2 LIMIT $3"; got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

func TestForUpdate(t *testing.T) {
	if SQLite.ForUpdate() != "" || MySQL.ForUpdate() != " FOR UPDATE" || Postgres.ForUpdate() != " FOR UPDATE" {
		t.Fatal("unexpected locking suffixes")
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestIsDuplicate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	insert := "INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)"
	if _, err := db.ExecContext(ctx, insert, "u1", "alice", "h", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := db.ExecContext(ctx, insert, "u2", "alice", "h", 1)
	if !IsDuplicate(err) {
		t.Fatalf("IsDuplicate(%v) = false", err)
	}
	if IsDuplicate(errors.New("boom")) || IsDuplicate(nil) {
		t.Fatal("IsDuplicate matched an unrelated error")
	}
}

func TestInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)", "u1", "alice", "h", 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows after rollback = %d", n)
	}
}

func TestInsertID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	q := `INSERT INTO characters (user_id, name, char_class, level, strength, dexterity, constitution, intelligence, wisdom, charisma,
		armor_class, max_hp, current_hp, speed, proficiency_bonus, hit_dice_total, hit_dice_remaining, hit_die_type, created_at)
		VALUES (?, ?, ?, 1, 10, 10, 10, 10, 10, 10, 10, 10, 10, 30, 2, 1, 1, 'd8', 0)`
	first, err := InsertID(ctx, db, q, "u1", "A", "Bard")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := InsertID(ctx, db, q, "u1", "B", "Bard")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first <= 0 || second <= first {
		t.Fatalf("ids = %d, %d", first, second)
	}
}
