package character

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/suderio/dicebot/internal/data"
)

const schema = `
CREATE TABLE IF NOT EXISTS characters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	server TEXT NOT NULL,
	user TEXT NOT NULL,
	UNIQUE (name, server),
	UNIQUE (server, user)
);
CREATE TABLE IF NOT EXISTS rolls (
	character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	expression TEXT NOT NULL,
	PRIMARY KEY (character_id, name)
);
CREATE TABLE IF NOT EXISTS variables (
	character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	value INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (character_id, name)
);
CREATE TABLE IF NOT EXISTS initiatives (
	character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
	channel TEXT NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (character_id, channel)
);`

// ErrNotFound is returned when a character, roll, variable or initiative does not exist.
var ErrNotFound = errors.New("not found")

// Character is a player character on one chat server.
type Character struct {
	ID     int64
	Name   string
	Server string
	User   string
}

func (c Character) String() string { return c.Name }

// Roll is a named dice expression saved by a character.
type Roll struct {
	Name       string
	Expression string
}

func (r Roll) String() string { return fmt.Sprintf("%s: %s", r.Name, r.Expression) }

// Variable is a named integer saved by a character.
type Variable struct {
	Name  string
	Value int64
}

func (v Variable) String() string { return fmt.Sprintf("%s: %d", v.Name, v.Value) }

// Initiative is a character's place in the turn order of one channel.
type Initiative struct {
	Character string
	Channel   string
	Value     int64
}

func (i Initiative) String() string { return fmt.Sprintf("%s: %d", i.Character, i.Value) }

// Store persists characters with their rolls and variables in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("character: sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("character: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("character: sqlite open: %w", err)
	}
	// One connection keeps ":memory:" databases and PRAGMAs consistent.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("character: sqlite init: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save creates the character for user on server, or renames the one they already have.
func (s *Store) Save(ctx context.Context, server, user, name string) (Character, error) {
	if strings.TrimSpace(name) == "" {
		return Character{}, errors.New("character: name is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO characters (name, server, user) VALUES (?, ?, ?)
ON CONFLICT (server, user) DO UPDATE SET name = excluded.name`, name, server, user)
	if err != nil {
		return Character{}, fmt.Errorf("character: save %s: %w", name, err)
	}
	return s.ForUser(ctx, server, user)
}

// ForUser returns the character played by user on server.
func (s *Store) ForUser(ctx context.Context, server, user string) (Character, error) {
	return s.queryCharacter(ctx, `
SELECT id, name, server, user FROM characters WHERE server = ? AND user = ?`, server, user)
}

// ByName returns the character called name on server.
func (s *Store) ByName(ctx context.Context, server, name string) (Character, error) {
	return s.queryCharacter(ctx, `
SELECT id, name, server, user FROM characters WHERE server = ? AND name = ?`, server, name)
}

func (s *Store) queryCharacter(ctx context.Context, query string, args ...any) (Character, error) {
	var c Character
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Server, &c.User)
	if errors.Is(err, sql.ErrNoRows) {
		return Character{}, fmt.Errorf("character: %w", ErrNotFound)
	}
	if err != nil {
		return Character{}, fmt.Errorf("character: query: %w", err)
	}
	return c, nil
}

// Delete removes a character with all its rolls and variables.
func (s *Store) Delete(ctx context.Context, c Character) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, c.ID)
	if err != nil {
		return fmt.Errorf("character: delete %s: %w", c.Name, err)
	}
	return expectOne(res, c.Name)
}

// SetRoll adds or updates a saved roll.
func (s *Store) SetRoll(ctx context.Context, c Character, name, expression string) (Roll, error) {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rolls (character_id, name, expression) VALUES (?, ?, ?)
ON CONFLICT (character_id, name) DO UPDATE SET expression = excluded.expression`, c.ID, name, expression)
	if err != nil {
		return Roll{}, fmt.Errorf("character: set roll %s: %w", name, err)
	}
	return Roll{Name: name, Expression: expression}, nil
}

// Roll returns a saved roll by name.
func (s *Store) Roll(ctx context.Context, c Character, name string) (Roll, error) {
	r := Roll{Name: name}
	err := s.db.QueryRowContext(ctx, `
SELECT expression FROM rolls WHERE character_id = ? AND name = ?`, c.ID, name).Scan(&r.Expression)
	if errors.Is(err, sql.ErrNoRows) {
		return Roll{}, fmt.Errorf("character: roll %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Roll{}, fmt.Errorf("character: roll %s: %w", name, err)
	}
	return r, nil
}

// Rolls lists a character's saved rolls ordered by name.
func (s *Store) Rolls(ctx context.Context, c Character) ([]Roll, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, expression FROM rolls WHERE character_id = ? ORDER BY name ASC`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("character: list rolls: %w", err)
	}
	defer rows.Close()

	var out []Roll
	for rows.Next() {
		var r Roll
		if err := rows.Scan(&r.Name, &r.Expression); err != nil {
			return nil, fmt.Errorf("character: scan roll: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRoll removes a saved roll.
func (s *Store) DeleteRoll(ctx context.Context, c Character, name string) (Roll, error) {
	r, err := s.Roll(ctx, c, name)
	if err != nil {
		return Roll{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rolls WHERE character_id = ? AND name = ?`, c.ID, name); err != nil {
		return Roll{}, fmt.Errorf("character: delete roll %s: %w", name, err)
	}
	return r, nil
}

// SetVariable adds or updates a variable.
func (s *Store) SetVariable(ctx context.Context, c Character, name string, value int64) (Variable, error) {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO variables (character_id, name, value) VALUES (?, ?, ?)
ON CONFLICT (character_id, name) DO UPDATE SET value = excluded.value`, c.ID, name, value)
	if err != nil {
		return Variable{}, fmt.Errorf("character: set variable %s: %w", name, err)
	}
	return Variable{Name: name, Value: value}, nil
}

// Variable returns a variable by name.
func (s *Store) Variable(ctx context.Context, c Character, name string) (Variable, error) {
	v := Variable{Name: name}
	err := s.db.QueryRowContext(ctx, `
SELECT value FROM variables WHERE character_id = ? AND name = ?`, c.ID, name).Scan(&v.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return Variable{}, fmt.Errorf("character: variable %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Variable{}, fmt.Errorf("character: variable %s: %w", name, err)
	}
	return v, nil
}

// Variables lists a character's variables ordered by name.
func (s *Store) Variables(ctx context.Context, c Character) ([]Variable, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, value FROM variables WHERE character_id = ? ORDER BY name ASC`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("character: list variables: %w", err)
	}
	defer rows.Close()

	var out []Variable
	for rows.Next() {
		var v Variable
		if err := rows.Scan(&v.Name, &v.Value); err != nil {
			return nil, fmt.Errorf("character: scan variable: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteVariable removes a variable.
func (s *Store) DeleteVariable(ctx context.Context, c Character, name string) (Variable, error) {
	v, err := s.Variable(ctx, c, name)
	if err != nil {
		return Variable{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM variables WHERE character_id = ? AND name = ?`, c.ID, name); err != nil {
		return Variable{}, fmt.Errorf("character: delete variable %s: %w", name, err)
	}
	return v, nil
}

// SetInitiative records the initiative of c in channel, replacing any earlier one.
func (s *Store) SetInitiative(ctx context.Context, c Character, channel string, value int64) (Initiative, error) {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO initiatives (character_id, channel, value) VALUES (?, ?, ?)
ON CONFLICT (character_id, channel) DO UPDATE SET value = excluded.value`, c.ID, channel, value)
	if err != nil {
		return Initiative{}, fmt.Errorf("character: set initiative of %s: %w", c.Name, err)
	}
	return Initiative{Character: c.Name, Channel: channel, Value: value}, nil
}

// Initiative returns the initiative of c in channel.
func (s *Store) Initiative(ctx context.Context, c Character, channel string) (Initiative, error) {
	i := Initiative{Character: c.Name, Channel: channel}
	err := s.db.QueryRowContext(ctx, `
SELECT value FROM initiatives WHERE character_id = ? AND channel = ?`, c.ID, channel).Scan(&i.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return Initiative{}, fmt.Errorf("character: initiative of %s: %w", c.Name, ErrNotFound)
	}
	if err != nil {
		return Initiative{}, fmt.Errorf("character: initiative of %s: %w", c.Name, err)
	}
	return i, nil
}

// Initiatives lists the turn order of channel, highest value first. Ties keep name order.
func (s *Store) Initiatives(ctx context.Context, channel string) ([]Initiative, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.name, i.value FROM initiatives i
JOIN characters c ON c.id = i.character_id
WHERE i.channel = ?
ORDER BY i.value DESC, c.name ASC`, channel)
	if err != nil {
		return nil, fmt.Errorf("character: list initiatives: %w", err)
	}
	defer rows.Close()

	var out []Initiative
	for rows.Next() {
		i := Initiative{Channel: channel}
		if err := rows.Scan(&i.Character, &i.Value); err != nil {
			return nil, fmt.Errorf("character: scan initiative: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// DeleteInitiative removes the initiative of c in channel.
func (s *Store) DeleteInitiative(ctx context.Context, c Character, channel string) (Initiative, error) {
	i, err := s.Initiative(ctx, c, channel)
	if err != nil {
		return Initiative{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM initiatives WHERE character_id = ? AND channel = ?`, c.ID, channel); err != nil {
		return Initiative{}, fmt.Errorf("character: delete initiative of %s: %w", c.Name, err)
	}
	return i, nil
}

// ClearInitiatives ends combat in channel and reports how many entries were removed.
func (s *Store) ClearInitiatives(ctx context.Context, channel string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM initiatives WHERE channel = ?`, channel)
	if err != nil {
		return 0, fmt.Errorf("character: clear initiatives: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("character: rows affected: %w", err)
	}
	return n, nil
}

// Import saves sheet as the character of user on server, adding its rolls and variables.
func (s *Store) Import(ctx context.Context, server, user string, sheet *data.Sheet) (Character, error) {
	c, err := s.Save(ctx, server, user, sheet.Name)
	if err != nil {
		return Character{}, err
	}
	for _, name := range sortedKeys(sheet.Rolls) {
		if _, err := s.SetRoll(ctx, c, name, sheet.Rolls[name]); err != nil {
			return Character{}, err
		}
	}
	for _, name := range sortedKeys(sheet.Variables) {
		if _, err := s.SetVariable(ctx, c, name, sheet.Variables[name]); err != nil {
			return Character{}, err
		}
	}
	return c, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func expectOne(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("character: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("character: %s: %w", name, ErrNotFound)
	}
	return nil
}
