package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ogurasousui/payroll-forensics/internal/adapters/workbook"
	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/benford"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/report"
	"github.com/ogurasousui/payroll-forensics/internal/platform/bootstrap"
	"github.com/ogurasousui/payroll-forensics/internal/platform/config"
)

type auditOptions struct {
	files     map[dataset.Kind]*string
	out       string
	profile   string
	minDays   int
	threshold float64
	noBenford bool
	maps      []string
}

func newAuditCmd(root *rootOptions) *cobra.Command {
	opts := &auditOptions{files: map[dataset.Kind]*string{}}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run the audit rules and export the findings workbook",
		Example: `  caat audit --employees empleados.xlsx --payroll nomina.csv --out resultados.xlsx
  caat audit --config assets/local.yaml --profile v1 --no-benford`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	for _, f := range []struct {
		kind dataset.Kind
		name string
	}{
		{dataset.KindEmployees, "employees"},
		{dataset.KindPayroll, "payroll"},
		{dataset.KindAttendance, "attendance"},
		{dataset.KindAuthorizedAccounts, "authorized"},
		{dataset.KindContracts, "contracts"},
		{dataset.KindRelatedParties, "related"},
	} {
		opts.files[f.kind] = flags.String(f.name, "", fmt.Sprintf("%s table (.csv or .xlsx)", f.kind))
	}
	flags.StringVarP(&opts.out, "out", "o", "", "output workbook path (defaults to output.workbook_path)")
	flags.StringVar(&opts.profile, "profile", "", "rule profile: v1 or v2")
	flags.IntVar(&opts.minDays, "min-days", audit.DefaultMinAttendanceDays, "minimum attendance days per payment month (0 disables the rule)")
	flags.Float64Var(&opts.threshold, "threshold", audit.DefaultBenfordThresholdPct, "Benford deviation threshold in percentage points")
	flags.BoolVar(&opts.noBenford, "no-benford", false, "skip the Benford first-digit analysis")
	flags.StringArrayVar(&opts.maps, "map", nil, "manual column mapping kind.field=column (repeatable, column \"(none)\" unmaps)")

	return cmd
}

func runAudit(cmd *cobra.Command, root *rootOptions, opts *auditOptions) error {
	ctx := cmd.Context()
	cfg := root.cfg
	logger := root.logger

	params, err := cfg.AuditParams()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("profile") {
		params.Profile = audit.Profile(opts.profile)
	}
	if flags.Changed("min-days") {
		params.MinAttendanceDays = opts.minDays
	}
	if flags.Changed("threshold") {
		params.BenfordThresholdPct = opts.threshold
	}
	if opts.noBenford {
		params.BenfordEnabled = false
	}

	mappings := cfg.KindMappings()
	if err := parseMapFlags(opts.maps, mappings); err != nil {
		return err
	}

	files := make(map[dataset.Kind]string, len(opts.files))
	for kind, p := range opts.files {
		files[kind] = *p
	}
	if anyFile(files) {
		cfg.Source.Driver = config.DriverFile
	}

	app, err := bootstrap.New(ctx, cfg, files, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Service.Run(ctx, audit.RunInput{Params: params, Mappings: mappings})
	if err != nil {
		return err
	}

	wb := report.Assemble(res)
	printSummary(cmd.OutOrStdout(), res)

	out := opts.out
	if out == "" {
		out = cfg.Output.WorkbookPath
	}
	if out == "" {
		out = "caat_results.xlsx"
	}
	if err := writeWorkbook(out, wb); err != nil {
		return err
	}
	logger.Info("workbook written", zap.String("path", out), zap.Int("sheets", len(wb.Sheets)))
	fmt.Fprintf(cmd.OutOrStdout(), "\nworkbook: %s (%d sheets)\n", out, len(wb.Sheets))
	return nil
}

func anyFile(files map[dataset.Kind]string) bool {
	for _, v := range files {
		if v != "" {
			return true
		}
	}
	return false
}

// parseMapFlags は kind.field=column 形式の指定を mappings に追加します。
func parseMapFlags(values []string, mappings map[dataset.Kind]map[string]string) error {
	for _, v := range values {
		key, column, ok := strings.Cut(v, "=")
		rawKind, field, okKey := strings.Cut(key, ".")
		if !ok || !okKey || field == "" {
			return fmt.Errorf("--map %q: expected kind.field=column", v)
		}
		kind, err := dataset.ParseKind(strings.TrimSpace(rawKind))
		if err != nil {
			return fmt.Errorf("--map %q: %w", v, err)
		}
		merged := map[string]string{}
		for f, c := range mappings[kind] {
			merged[f] = c
		}
		merged[strings.TrimSpace(field)] = column
		mappings[kind] = merged
	}
	return nil
}

func writeWorkbook(path string, wb report.Workbook) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return workbook.Write(f, wb)
}

func printSummary(w io.Writer, res *audit.Result) {
	fmt.Fprintf(w, "run %s (profile %s)\n\n", res.RunID, res.Params.Profile)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tSTATUS\tFINDINGS\tNOTE")
	for _, s := range res.Statuses {
		status := "skipped"
		findings := "-"
		if s.Ran {
			status = "ran"
			findings = fmt.Sprint(s.Findings)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Rule, status, findings, s.Note)
	}
	_ = tw.Flush()

	if res.Ran(audit.RuleBenford) && !res.Benford.Empty() {
		fmt.Fprintf(w, "\nbenford: chi-square %.2f (reference critical value %.2f, df=8), %d outlier digit(s)\n",
			res.Benford.ChiSquare, benford.CriticalValue, len(res.BenfordOutliers))
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}
