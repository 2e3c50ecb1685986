package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"io"
	"sort"
	"strings"
	"summarycube/core"
	"summarycube/criteria"
	"summarycube/frame"
	"summarycube/logger"
	"summarycube/storage"
)

type criteriaFlags struct {
	variant  string
	organism string
	filters  []string
}

func (flags *criteriaFlags) register(cmd *cobra.Command, defaultVariant string) {
	cmd.Flags().StringVar(&flags.variant, "variant", defaultVariant, "criteria variant")
	cmd.Flags().StringVar(&flags.organism, "organism", "", "organism_ontology_term_id")
	cmd.Flags().StringArrayVarP(&flags.filters, "filter", "f", nil,
		"field=value[,value...]; may be repeated")
}

func (flags *criteriaFlags) build() (*criteria.Criteria, error) {
	variant, ok := criteria.VariantByName(flags.variant)
	if !ok {
		return nil, errors.Newf("unknown criteria variant %q", flags.variant)
	}
	values, err := parseFilters(flags.filters)
	if err != nil {
		return nil, err
	}
	if flags.organism != "" {
		values[criteria.OrganismOntologyTermID] = []string{flags.organism}
	}
	return criteria.New(variant, values)
}

// parseFilters turns field=v1,v2 arguments into criteria values. Repeating
// a field appends to it.
func parseFilters(filters []string) (criteria.Values, error) {
	values := criteria.Values{}
	for _, filter := range filters {
		field, list, ok := strings.Cut(filter, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, errors.Newf("filter %q is not of the form field=value", filter)
		}
		if _, seen := values[field]; !seen {
			values[field] = []string{}
		}
		for _, v := range strings.Split(list, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values[field] = append(values[field], v)
			}
		}
	}
	return values, nil
}

type outputFlags struct {
	arrow bool
}

func (flags *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flags.arrow, "arrow", false, "write an arrow IPC stream instead of JSON")
}

func (flags *outputFlags) write(out io.Writer, result *frame.Frame) error {
	if flags.arrow {
		return writeArrow(out, result)
	}
	return writeJSON(out, result.Records())
}

func newRootCmd(out io.Writer) *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "summarycube",
		Short:         "Query precomputed expression cubes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file; SUMMARYCUBE_* environment variables take precedence")

	// withApp opens the snapshot for the duration of fn.
	withApp := func(fn func(a *app) error) error {
		a, err := openApp(configFile)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a)
	}

	root.AddCommand(
		newExpressionCmd(out, withApp),
		newCellCountsCmd(out, withApp),
		newMarkersCmd(out, withApp),
		newTermsCmd(out, withApp),
		newGroupedTermsCmd(out, withApp),
		newExplainCmd(out, withApp),
	)
	return root
}

type runner func(fn func(a *app) error) error

func newExpressionCmd(out io.Writer, withApp runner) *cobra.Command {
	var (
		crit    criteriaFlags
		output  outputFlags
		cube    string
		compare string
	)
	cmd := &cobra.Command{
		Use:   "expression",
		Short: "Query an expression summary cube",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := crit.build()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				var result *frame.Frame
				switch cube {
				case "summary":
					result, err = a.query.ExpressionSummary(c, compare)
				case "default":
					result, err = a.query.ExpressionSummaryDefault(c)
				case "diffexp":
					result, err = a.query.ExpressionSummaryDiffExp(c)
				default:
					return errors.Newf("unknown cube %q, want summary, default or diffexp", cube)
				}
				if err != nil {
					return err
				}
				logRows("expression", result)
				return output.write(out, result)
			})
		},
	}
	crit.register(cmd, criteria.WmgQueryV2.Name)
	output.register(cmd)
	cmd.Flags().StringVar(&cube, "cube", "summary", "summary, default or diffexp")
	cmd.Flags().StringVar(&compare, "compare", "", "compare dimension")
	return cmd
}

func newCellCountsCmd(out io.Writer, withApp runner) *cobra.Command {
	var (
		crit      criteriaFlags
		output    outputFlags
		compare   string
		sideTable bool
	)
	cmd := &cobra.Command{
		Use:   "cell-counts",
		Short: "Count cells matching criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := crit.build()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				var result *frame.Frame
				if sideTable {
					result, err = a.query.CellCountsDF(c)
				} else {
					result, err = a.query.CellCounts(c, compare)
				}
				if err != nil {
					return err
				}
				logRows("cell-counts", result)
				return output.write(out, result)
			})
		},
	}
	crit.register(cmd, criteria.WmgQueryV2.Name)
	output.register(cmd)
	cmd.Flags().StringVar(&compare, "compare", "", "compare dimension")
	cmd.Flags().BoolVar(&sideTable, "side-table", false, "filter the flattened cell count table instead of the cube")
	return cmd
}

func newMarkersCmd(out io.Writer, withApp runner) *cobra.Command {
	var (
		organism, tissue, cellType string
		test                       string
		n                          int
	)
	cmd := &cobra.Command{
		Use:   "markers",
		Short: "Rank marker genes of a cell type in a tissue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := criteria.New(criteria.MarkerGeneQuery, criteria.Values{
				criteria.OrganismOntologyTermID: {organism},
				criteria.TissueOntologyTermID:   {tissue},
				criteria.CellTypeOntologyTermID: {cellType},
			})
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				result, err := a.query.MarkerGenes(c)
				if err != nil {
					return err
				}
				markers, err := core.RetrieveTopNMarkers(result, test, n)
				if err != nil {
					return err
				}
				logRows("markers", result)
				return writeJSON(out, markers)
			})
		},
	}
	cmd.Flags().StringVar(&organism, "organism", "", "organism_ontology_term_id")
	cmd.Flags().StringVar(&tissue, "tissue", "", "tissue_ontology_term_id")
	cmd.Flags().StringVar(&cellType, "cell-type", "", "cell_type_ontology_term_id")
	cmd.Flags().StringVar(&test, "test", core.TTest, "ranking method")
	cmd.Flags().IntVarP(&n, "n", "n", 10, "number of markers, 0 for all")
	return cmd
}

func newTermsCmd(out io.Writer, withApp runner) *cobra.Command {
	return &cobra.Command{
		Use:   "terms DIMENSION",
		Short: "List the distinct term ids of a cell count dimension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				terms, err := a.query.ListPrimaryFilterDimensionTermIDs(args[0])
				if err != nil {
					return err
				}
				return writeJSON(out, terms)
			})
		},
	}
}

func newGroupedTermsCmd(out io.Writer, withApp runner) *cobra.Command {
	return &cobra.Command{
		Use:   "grouped-terms DIMENSION GROUP_BY",
		Short: "List the term ids of a dimension grouped by another dimension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				grouped, err := a.query.ListGroupedPrimaryFilterDimensionsTermIDs(args[0], args[1])
				if err != nil {
					return err
				}
				return writeJSON(out, grouped)
			})
		},
	}
}

type explainOutput struct {
	Cube      string     `json:"cube"`
	Key       string     `json:"diffexp_key,omitempty"`
	Condition string     `json:"condition"`
	DimSlices [][]string `json:"dim_slices"`
	Columns   []string   `json:"columns"`
}

func newExplainCmd(out io.Writer, withApp runner) *cobra.Command {
	var (
		crit    criteriaFlags
		role    string
		compare string
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the cube read planned for criteria without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := crit.build()
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				var (
					cube storage.Cube
					key  string
				)
				if role == "diffexp" {
					cube, key, err = core.SelectDiffExpCube(a.query.Snapshot(), c)
				} else {
					cube, err = a.query.Snapshot().Cube(role)
				}
				if err != nil {
					return err
				}
				plan, err := a.query.Explain(cube, c, compare)
				if err != nil {
					return err
				}
				return writeJSON(out, explainOutput{
					Cube:      plan.Cube,
					Key:       key,
					Condition: plan.Condition(),
					DimSlices: plan.DimSlices,
					Columns:   plan.Columns,
				})
			})
		},
	}
	crit.register(cmd, criteria.WmgQueryV2.Name)
	cmd.Flags().StringVar(&role, "cube", core.ExpressionSummaryCube,
		"cube role ("+strings.Join(cubeRoles(), ", ")+") or diffexp")
	cmd.Flags().StringVar(&compare, "compare", "", "compare dimension")
	return cmd
}

func cubeRoles() []string {
	roles := []string{
		core.ExpressionSummaryCube,
		core.ExpressionSummaryDefaultCube,
		core.MarkerGenesCube,
		core.CellCountsCube,
	}
	sort.Strings(roles)
	return roles
}

func logRows(command string, result *frame.Frame) {
	logger.Info("query finished", "command", command, "rows", humanizeRows(result.Len()))
}
