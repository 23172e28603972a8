package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seasonplan/entities"
	"seasonplan/pkg/costing"
)

type summaryFlags struct {
	file      string
	pass      string
	priceBook bool
	format    string
}

func (a *app) summaryCmd() *cobra.Command {
	f := &summaryFlags{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Cost a crop plan file",
		Long: `Reads a YAML plan snapshot (crop, timings, applications, products and an
optional price book) and prints the season summary, or one pass with --pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSummary(f)
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "plan file (YAML)")
	cmd.Flags().StringVar(&f.pass, "pass", "", "only summarize the timing with this name")
	cmd.Flags().BoolVar(&f.priceBook, "pricebook", false, "price from the file's price_book section")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format: text|json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) runSummary(f *summaryFlags) error {
	if f.format != "text" && f.format != "json" {
		return fmt.Errorf("unknown format %q", f.format)
	}
	pf, err := loadPlan(f.file)
	if err != nil {
		return err
	}
	snap, err := pf.resolve(f.priceBook)
	if err != nil {
		return err
	}
	a.logger.Debug("plan loaded",
		zap.String("crop", snap.crop.Name),
		zap.Int("timings", len(snap.crop.Timings)),
		zap.Int("applications", len(snap.crop.Applications)),
		zap.Bool("pricebook", snap.prices != nil))

	if f.pass != "" {
		var timing *entities.ApplicationTiming
		for i := range snap.crop.Timings {
			if strings.EqualFold(snap.crop.Timings[i].Name, f.pass) {
				timing = &snap.crop.Timings[i]
				break
			}
		}
		if timing == nil {
			return fmt.Errorf("no timing named %q", f.pass)
		}
		p := costing.SummarizePass(*timing, snap.crop, snap.products, snap.prices)
		a.logIssues(p.Applications)
		if f.format == "json" {
			return a.writeJSON(p)
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		writePass(tw, p)
		return tw.Flush()
	}

	s := costing.SummarizeSeason(snap.crop, snap.products, snap.prices)
	for _, p := range s.Passes {
		a.logIssues(p.Applications)
	}
	if f.format == "json" {
		return a.writeJSON(s)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\t%.1f ac\n", snap.crop.Name, s.SeasonYear, s.TotalAcres)
	for _, p := range s.Passes {
		writePass(tw, p)
	}
	fmt.Fprintf(tw, "Season total\t$%.2f\t$%.2f/ac\n", s.TotalCost, s.CostPerAcre)
	fmt.Fprintf(tw, "Nutrients\tN %.1f\tP %.1f\tK %.1f\tS %.1f\n", s.Nutrients.N, s.Nutrients.P, s.Nutrients.K, s.Nutrients.S)
	if s.Unpriced {
		fmt.Fprintln(tw, "Some products have no price.")
	}
	return tw.Flush()
}

func writePass(tw *tabwriter.Writer, p costing.PassSummary) {
	fmt.Fprintf(tw, "%d. %s\t%s\t$%.2f\t$%.2f/ac\n", p.Order, p.TimingName, p.Pattern, p.TotalCost, p.CostPerFieldAcre)
	for _, l := range p.Applications {
		name := l.ProductName
		if name == "" {
			name = fmt.Sprintf("product #%d", l.ProductID)
		}
		note := string(l.PriceSource)
		if l.Issue != costing.IssueNone {
			note = string(l.Issue)
		}
		fmt.Fprintf(tw, "   %s\t%g %s\t%.0f%% %s\t$%.2f\t%s\n", name, l.Rate, l.RateUnit, l.AcresPercentage, l.Tier.Label(), l.TotalCost, note)
	}
}

func (a *app) logIssues(lines []costing.ApplicationLine) {
	for _, l := range lines {
		if err := l.Issue.Err(); err != nil {
			a.logger.Debug("application recovered", zap.Uint("application_id", l.ApplicationID), zap.Error(err))
		}
	}
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
