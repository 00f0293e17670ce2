// Package catalog serves the typed, non-generated reads over the
// construction dataset: stories, elements, categories and their totals.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/malbeclabs/nlquery/pkg/store"
)

var ErrNotFound = errors.New("not found")

type Story struct {
	ID          int    `json:"story_id"`
	Code        string `json:"story_code"`
	Name        string `json:"story_name"`
	FloorLevel  int    `json:"floor_level"`
	Description string `json:"description"`
}

type Element struct {
	ID          int    `json:"element_id"`
	Code        string `json:"element_code"`
	Name        string `json:"element_name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

type ElementTotal struct {
	Code          string `json:"element_code"`
	Name          string `json:"element_name"`
	Category      string `json:"category"`
	Unit          string `json:"unit"`
	TotalQuantity int64  `json:"total_quantity"`
}

type StorySummary struct {
	Code         string `json:"story_code"`
	Name         string `json:"story_name"`
	ElementCount int64  `json:"element_count"`
	TotalItems   int64  `json:"total_items"`
}

// Info holds the dataset aggregates served by /info.
type Info struct {
	StoryCount   int      `json:"story_count"`
	ElementCount int      `json:"element_count"`
	Categories   []string `json:"categories"`
	TotalItems   int64    `json:"total_items"`
}

type Config struct {
	Logger *slog.Logger
	DB     store.DB
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

type Catalog struct {
	log *slog.Logger
	db  store.DB
}

func New(cfg Config) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate catalog config: %w", err)
	}
	return &Catalog{log: cfg.Logger, db: cfg.DB}, nil
}

const (
	storyColumns   = `story_id, story_code, story_name, floor_level, COALESCE(description, '')`
	elementColumns = `element_id, element_code, element_name, category, unit, COALESCE(description, '')`
)

func (c *Catalog) Stories(ctx context.Context) ([]Story, error) {
	return queryList(ctx, c.db, scanStory,
		`SELECT `+storyColumns+` FROM stories ORDER BY floor_level DESC`)
}

// Story returns the story with the given code, or ErrNotFound.
func (c *Catalog) Story(ctx context.Context, code string) (Story, error) {
	q := `SELECT ` + storyColumns + ` FROM stories WHERE story_code = ` + c.db.Dialect().Placeholder(1)
	return queryOne(ctx, c.db, scanStory, q, code)
}

func (c *Catalog) StorySummary(ctx context.Context) ([]StorySummary, error) {
	return queryList(ctx, c.db, func(s scanner) (StorySummary, error) {
		var v StorySummary
		err := s.Scan(&v.Code, &v.Name, &v.ElementCount, &v.TotalItems)
		return v, err
	}, `SELECT v.story_code, v.story_name,
			CAST(v.element_count AS BIGINT),
			CAST(COALESCE(v.total_items, 0) AS BIGINT)
		FROM story_summary_view v
		JOIN stories s ON s.story_code = v.story_code
		ORDER BY s.floor_level DESC`)
}

// Elements lists all elements, or only those of category when it is set.
func (c *Catalog) Elements(ctx context.Context, category string) ([]Element, error) {
	if category == "" {
		return queryList(ctx, c.db, scanElement,
			`SELECT `+elementColumns+` FROM elements ORDER BY category, element_name`)
	}
	q := `SELECT ` + elementColumns + ` FROM elements WHERE category = ` + c.db.Dialect().Placeholder(1) + ` ORDER BY element_name`
	return queryList(ctx, c.db, scanElement, q, category)
}

// Element returns the element with the given code, or ErrNotFound.
func (c *Catalog) Element(ctx context.Context, code string) (Element, error) {
	q := `SELECT ` + elementColumns + ` FROM elements WHERE element_code = ` + c.db.Dialect().Placeholder(1)
	return queryOne(ctx, c.db, scanElement, q, code)
}

func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	return queryList(ctx, c.db, func(s scanner) (string, error) {
		var v string
		err := s.Scan(&v)
		return v, err
	}, `SELECT DISTINCT category FROM elements ORDER BY category`)
}

func (c *Catalog) ElementTotals(ctx context.Context) ([]ElementTotal, error) {
	return queryList(ctx, c.db, func(s scanner) (ElementTotal, error) {
		var v ElementTotal
		err := s.Scan(&v.Code, &v.Name, &v.Category, &v.Unit, &v.TotalQuantity)
		return v, err
	}, `SELECT element_code, element_name, category, unit,
			CAST(COALESCE(total_quantity, 0) AS BIGINT)
		FROM element_totals_view
		ORDER BY category, element_name`)
}

// Info aggregates the dataset counts.
func (c *Catalog) Info(ctx context.Context) (Info, error) {
	stories, err := c.Stories(ctx)
	if err != nil {
		return Info{}, err
	}
	elements, err := c.Elements(ctx, "")
	if err != nil {
		return Info{}, err
	}
	categories, err := c.Categories(ctx)
	if err != nil {
		return Info{}, err
	}
	total, err := queryOne(ctx, c.db, func(s scanner) (int64, error) {
		var v int64
		err := s.Scan(&v)
		return v, err
	}, `SELECT CAST(COALESCE(SUM(quantity), 0) AS BIGINT) FROM story_elements`)
	if err != nil {
		return Info{}, err
	}

	return Info{
		StoryCount:   len(stories),
		ElementCount: len(elements),
		Categories:   categories,
		TotalItems:   total,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(s scanner) (Story, error) {
	var v Story
	err := s.Scan(&v.ID, &v.Code, &v.Name, &v.FloorLevel, &v.Description)
	return v, err
}

func scanElement(s scanner) (Element, error) {
	var v Element
	err := s.Scan(&v.ID, &v.Code, &v.Name, &v.Category, &v.Unit, &v.Description)
	return v, err
}

func queryList[T any](ctx context.Context, db store.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func queryOne[T any](ctx context.Context, db store.DB, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	var zero T
	conn, err := db.Conn(ctx)
	if err != nil {
		return zero, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	v, err := scan(conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("failed to query row: %w", err)
	}
	return v, nil
}
