package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
)

type example struct {
	Title string
	SQL   string
}

// examples are hand-written queries that show what the dataset answers
// without a reasoning service. They stick to SQL accepted by every store.
var examples = []example{
	{
		Title: "All stories",
		SQL:   `SELECT story_code, story_name, floor_level FROM stories ORDER BY floor_level DESC`,
	},
	{
		Title: "Fire safety elements",
		SQL:   `SELECT element_code, element_name, unit FROM elements WHERE category = 'Brandschutz' ORDER BY element_code`,
	},
	{
		Title: "Elements on the ground floor (EG)",
		SQL: `SELECT category, element_code, element_name, quantity, unit
FROM story_elements_view
WHERE story_code = 'EG'
ORDER BY category, element_name`,
	},
	{
		Title: "Top elements by total quantity (at least 20 units)",
		SQL: `SELECT element_name, category, total_quantity, unit
FROM element_totals_view
WHERE total_quantity >= 20
ORDER BY total_quantity DESC, element_name
LIMIT 10`,
	},
	{
		Title: "Electrical elements by story",
		SQL: `SELECT s.story_code, s.story_name, e.element_name, se.quantity, e.unit
FROM story_elements se
JOIN stories s ON se.story_id = s.story_id
JOIN elements e ON se.element_id = e.element_id
WHERE e.category = 'Elektro'
ORDER BY s.floor_level DESC, e.element_name`,
	},
	{
		Title: "Stories with an above-average element count",
		SQL: `WITH counts AS (
	SELECT s.story_code, COUNT(se.element_id) AS element_count
	FROM stories s
	LEFT JOIN story_elements se ON s.story_id = se.story_id
	GROUP BY s.story_code
)
SELECT story_code, element_count
FROM counts
WHERE element_count > (SELECT AVG(element_count) FROM counts)
ORDER BY element_count DESC`,
	},
	{
		Title: "Element volume classification",
		SQL: `SELECT element_name, category, total_quantity,
	CASE
		WHEN total_quantity >= 50 THEN 'High Volume'
		WHEN total_quantity >= 20 THEN 'Medium Volume'
		WHEN total_quantity >= 10 THEN 'Standard Volume'
		ELSE 'Low Volume'
	END AS volume_category
FROM element_totals_view
WHERE total_quantity > 0
ORDER BY total_quantity DESC, element_name
LIMIT 15`,
	},
	{
		Title: "Top three elements per category",
		SQL: `SELECT category, element_name, total_quantity, rank_in_category
FROM (
	SELECT category, element_name, total_quantity,
		ROW_NUMBER() OVER (PARTITION BY category ORDER BY total_quantity DESC, element_name) AS rank_in_category
	FROM element_totals_view
	WHERE total_quantity > 0
) ranked
WHERE rank_in_category <= 3
ORDER BY category, rank_in_category`,
	},
	{
		Title: "Fire safety compliance per story",
		SQL: `SELECT s.story_code, s.story_name,
	COUNT(CASE WHEN e.element_code LIKE 'BM%' THEN 1 END) AS smoke_detectors,
	COUNT(CASE WHEN e.element_code LIKE 'FLL%' THEN 1 END) AS emergency_lights,
	COUNT(CASE WHEN e.element_code LIKE 'FE%' THEN 1 END) AS extinguishers,
	CASE
		WHEN COUNT(CASE WHEN e.element_code LIKE 'BM%' THEN 1 END) >= 1
			AND COUNT(CASE WHEN e.element_code LIKE 'FLL%' THEN 1 END) >= 1
		THEN 'COMPLIANT'
		ELSE 'NEEDS REVIEW'
	END AS fire_safety_status
FROM stories s
JOIN story_elements se ON s.story_id = se.story_id
JOIN elements e ON se.element_id = e.element_id
WHERE e.category = 'Brandschutz'
GROUP BY s.story_id, s.story_code, s.story_name, s.floor_level
ORDER BY s.floor_level DESC`,
	},
}

type ExamplesCmd struct {
	questions bool
	maxRows   int
}

func NewExamplesCmd() *ExamplesCmd {
	return &ExamplesCmd{}
}

func (c *ExamplesCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Run the built-in example queries against the store",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if c.questions {
				for _, ex := range a.Pipeline.Vocabulary().Examples {
					fmt.Fprintf(w, "Q: %s\nSQL: %s\n\n", ex.Question, ex.SQL)
				}
				return nil
			}
			return c.run(ctx, a, w)
		}),
	}
	cmd.Flags().BoolVar(&c.questions, "questions", false, "List the example questions from the vocabulary instead")
	cmd.Flags().IntVar(&c.maxRows, "max-rows", 0, "Maximum rows to print per query (0 for all)")
	return cmd
}

func (c *ExamplesCmd) run(ctx context.Context, a *app.App, w io.Writer) error {
	for i, ex := range examples {
		fmt.Fprintf(w, "%d. %s\n", i+1, strings.ToUpper(ex.Title))
		fmt.Fprintf(w, "SQL: %s\n", ex.SQL)
		res, err := a.Querier.Query(ctx, ex.SQL)
		if err != nil {
			return fmt.Errorf("example %q: %w", ex.Title, err)
		}
		renderRows(w, res.Columns, res.Rows, c.maxRows)
		fmt.Fprintf(w, "\n%s\n\n", strings.Repeat("=", 60))
	}
	return nil
}
