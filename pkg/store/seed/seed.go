// Package seed provisions the construction project dataset: schema, views
// and the reference quantities per story.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/malbeclabs/nlquery/pkg/store"
)

type Story struct {
	ID          int
	Code        string
	Name        string
	FloorLevel  int
	Description string
}

type Element struct {
	ID          int
	Code        string
	Name        string
	Category    string
	Unit        string
	Description string
}

type Placement struct {
	ID        int
	StoryID   int
	ElementID int
	Quantity  int
	Notes     string
}

type placement struct {
	story    string
	element  string
	quantity int
	notes    string
}

// Placements resolves the story and element codes of the seed quantities
// into ids, numbering rows in declaration order.
func Placements() []Placement {
	storyIDs := make(map[string]int, len(Stories))
	for _, s := range Stories {
		storyIDs[s.Code] = s.ID
	}
	elementIDs := make(map[string]int, len(Elements))
	for _, e := range Elements {
		elementIDs[e.Code] = e.ID
	}

	out := make([]Placement, 0, len(placements))
	for i, p := range placements {
		out = append(out, Placement{
			ID:        i + 1,
			StoryID:   storyIDs[p.story],
			ElementID: elementIDs[p.element],
			Quantity:  p.quantity,
			Notes:     p.notes,
		})
	}
	return out
}

// Categories returns the distinct element categories, sorted.
func Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range Elements {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	sort.Strings(out)
	return out
}

// TotalQuantity is the sum of all placement quantities.
func TotalQuantity() int {
	total := 0
	for _, p := range placements {
		total += p.quantity
	}
	return total
}

var Views = []string{"element_totals_view", "story_elements_view", "story_summary_view"}

var Tables = []string{"story_elements", "elements", "stories"}

type Config struct {
	Logger *slog.Logger
	DB     store.DB

	// Reset drops existing tables and views before creating them.
	Reset bool
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.DB == nil {
		return errors.New("database is required")
	}
	return nil
}

// Provision creates the schema, loads the seed rows and creates the views.
func Provision(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to validate seed config: %w", err)
	}
	dialect := cfg.DB.Dialect()

	conn, err := cfg.DB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Reset {
		for _, v := range Views {
			if _, err := conn.ExecContext(ctx, "DROP VIEW IF EXISTS "+dialect.QuoteIdent(v)); err != nil {
				return fmt.Errorf("failed to drop view %s: %w", v, err)
			}
		}
		for _, t := range Tables {
			if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+dialect.QuoteIdent(t)); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", t, err)
			}
		}
	}

	for _, stmt := range tableDDL(dialect.Driver()) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	if err := insertRows(ctx, conn, dialect, "stories",
		[]string{"story_id", "story_code", "story_name", "floor_level", "description"},
		len(Stories), func(i int) []any {
			s := Stories[i]
			return []any{int32(s.ID), s.Code, s.Name, int32(s.FloorLevel), s.Description}
		}); err != nil {
		return err
	}

	if err := insertRows(ctx, conn, dialect, "elements",
		[]string{"element_id", "element_code", "element_name", "category", "unit", "description"},
		len(Elements), func(i int) []any {
			e := Elements[i]
			return []any{int32(e.ID), e.Code, e.Name, e.Category, e.Unit, e.Description}
		}); err != nil {
		return err
	}

	ps := Placements()
	if err := insertRows(ctx, conn, dialect, "story_elements",
		[]string{"id", "story_id", "element_id", "quantity", "notes"},
		len(ps), func(i int) []any {
			p := ps[i]
			return []any{int32(p.ID), int32(p.StoryID), int32(p.ElementID), int32(p.Quantity), p.Notes}
		}); err != nil {
		return err
	}

	for _, stmt := range viewDDL {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create view: %w", err)
		}
	}

	cfg.Logger.Info("seed: provisioned construction dataset",
		"driver", dialect.Driver(),
		"stories", len(Stories),
		"elements", len(Elements),
		"placements", len(ps),
	)
	return nil
}

// Provisioned reports whether the stories table already exists.
func Provisioned(ctx context.Context, db store.DB) (bool, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	tables, err := db.Dialect().Tables(ctx, conn)
	if err != nil {
		return false, fmt.Errorf("failed to list tables: %w", err)
	}
	return slices.Contains(tables, "stories"), nil
}

func insertRows(ctx context.Context, conn store.Connection, dialect store.Dialect, table string, columns []string, n int, row func(int) []any) error {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = dialect.QuoteIdent(c)
		marks[i] = dialect.Placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		dialect.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}
