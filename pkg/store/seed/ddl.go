package seed

import "github.com/malbeclabs/nlquery/pkg/store"

func tableDDL(driver store.Driver) []string {
	if driver == store.DriverClickHouse {
		return []string{
			`CREATE TABLE IF NOT EXISTS stories (
				story_id Int32,
				story_code String,
				story_name String,
				floor_level Int32,
				description Nullable(String)
			) ENGINE = MergeTree ORDER BY story_id`,
			`CREATE TABLE IF NOT EXISTS elements (
				element_id Int32,
				element_code String,
				element_name String,
				category String,
				unit String,
				description Nullable(String)
			) ENGINE = MergeTree ORDER BY element_id`,
			`CREATE TABLE IF NOT EXISTS story_elements (
				id Int32,
				story_id Int32,
				element_id Int32,
				quantity Int32 DEFAULT 0,
				notes Nullable(String)
			) ENGINE = MergeTree ORDER BY id`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS stories (
			story_id INTEGER PRIMARY KEY,
			story_code VARCHAR NOT NULL UNIQUE,
			story_name VARCHAR NOT NULL,
			floor_level INTEGER NOT NULL,
			description VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS elements (
			element_id INTEGER PRIMARY KEY,
			element_code VARCHAR NOT NULL UNIQUE,
			element_name VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			unit VARCHAR NOT NULL,
			description VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS story_elements (
			id INTEGER PRIMARY KEY,
			story_id INTEGER NOT NULL REFERENCES stories (story_id),
			element_id INTEGER NOT NULL REFERENCES elements (element_id),
			quantity INTEGER NOT NULL DEFAULT 0,
			notes VARCHAR,
			UNIQUE (story_id, element_id)
		)`,
	}
}

var viewDDL = []string{
	`CREATE OR REPLACE VIEW story_elements_view AS
	SELECT
		s.story_code,
		s.story_name,
		e.element_code,
		e.element_name,
		e.category,
		se.quantity,
		e.unit,
		se.notes
	FROM story_elements se
	JOIN stories s ON se.story_id = s.story_id
	JOIN elements e ON se.element_id = e.element_id
	ORDER BY s.floor_level DESC, e.category, e.element_name`,

	`CREATE OR REPLACE VIEW element_totals_view AS
	SELECT
		e.element_code,
		e.element_name,
		e.category,
		e.unit,
		SUM(se.quantity) AS total_quantity
	FROM elements e
	LEFT JOIN story_elements se ON e.element_id = se.element_id
	GROUP BY e.element_id, e.element_code, e.element_name, e.category, e.unit
	ORDER BY e.category, e.element_name`,

	`CREATE OR REPLACE VIEW story_summary_view AS
	SELECT
		s.story_code,
		s.story_name,
		COUNT(se.element_id) AS element_count,
		SUM(se.quantity) AS total_items
	FROM stories s
	LEFT JOIN story_elements se ON s.story_id = se.story_id
	GROUP BY s.story_id, s.story_code, s.story_name, s.floor_level
	ORDER BY s.floor_level DESC`,
}
