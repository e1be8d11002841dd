package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/app"
	"github.com/fleveque/company-enricher/internal/model"
	"github.com/fleveque/company-enricher/internal/service"
	"github.com/fleveque/company-enricher/internal/sheet"
	"github.com/fleveque/company-enricher/internal/storage"
	"github.com/fleveque/company-enricher/internal/tier"
)

// confirmThreshold is the batch size above which the CLI asks before starting.
const confirmThreshold = 5

type batchFlags struct {
	delay        time.Duration
	validateOnly bool
	yes          bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.delay, "delay", 0, "Pause between rows (default from config, 2s)")
	cmd.Flags().BoolVar(&f.validateOnly, "validate-only", false, "Only validate configuration and the input file")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Skip the confirmation prompt for large batches")
}

func companiesCmd(g *globals) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "companies INPUT [OUTPUT_PREFIX]",
		Short: "Estimate revenue and assign a tier for every company in a CSV or .xlsx sheet",
		Args:  cobra.RangeArgs(1, 2),
		// RunE returns an error (vs Run which doesn't). Cobra prints the error automatically.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompanies(cmd, g, flags, args)
		},
	}
	flags.register(cmd)
	return cmd
}

func contactsCmd(g *globals) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "contacts INPUT [OUTPUT_PREFIX]",
		Short: "Find LinkedIn profile, job title and work email for every contact in a CSV or .xlsx sheet",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContacts(cmd, g, flags, args)
		},
	}
	flags.register(cmd)
	return cmd
}

// batchEnv is what both batch commands set up before processing rows.
type batchEnv struct {
	app       *app.App
	logger    *zap.Logger
	delay     time.Duration
	artifacts *storage.Artifacts
	out       io.Writer
}

// prepare validates config and input, asks for confirmation and wires the
// pipeline. A nil env with a nil error means there is nothing more to do.
func prepare(cmd *cobra.Command, g *globals, flags *batchFlags, args []string, rows int, suffix string) (*batchEnv, error) {
	out := cmd.OutOrStdout()

	cfg, logger, err := g.load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "✓ Configuration validated")
	fmt.Fprintf(out, "✓ Input loaded with %d rows\n", rows)

	if flags.validateOnly {
		fmt.Fprintln(out, "\nValidation complete. Run without --validate-only to process rows.")
		return nil, nil
	}
	if rows == 0 {
		fmt.Fprintln(out, "Nothing to process.")
		return nil, nil
	}

	prefix := sheet.DefaultPrefix(args[0], suffix)
	if len(args) > 1 {
		prefix = args[1]
	}
	delay := cfg.Batch.Delay
	if cmd.Flags().Changed("delay") {
		delay = flags.delay
	}
	if delay < 0 {
		return nil, &model.ValidationError{Field: "delay", Message: "must not be negative"}
	}

	fmt.Fprintf(out, "✓ Output prefix: %s\n", prefix)
	fmt.Fprintf(out, "✓ Delay between rows: %s\n", delay)

	if rows > confirmThreshold && !flags.yes {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("\nReady to process %d rows. Continue? (y/N): ", rows))
		if err != nil {
			return nil, err
		}
		if !ok {
			fmt.Fprintln(out, "Processing cancelled.")
			return nil, nil
		}
	}

	artifacts, err := storage.NewArtifacts(prefix)
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &batchEnv{app: a, logger: logger, delay: delay, artifacts: artifacts, out: out}, nil
}

func (e *batchEnv) close() {
	_ = e.app.Close()
	_ = e.logger.Sync()
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

// signalContext is cancelled by Ctrl+C or SIGTERM. Rows finished before the
// signal are still written out.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// write saves the three artifacts and reports where they went.
func (e *batchEnv) write(csvData, jsonData []byte, summary string) error {
	for _, a := range []struct {
		kind storage.ArtifactKind
		data []byte
	}{
		{storage.ArtifactCSV, csvData},
		{storage.ArtifactJSON, jsonData},
		{storage.ArtifactSummary, []byte(summary)},
	} {
		if err := e.artifacts.Write(a.kind, a.data); err != nil {
			return err
		}
	}

	fmt.Fprintln(e.out, "\nResults saved to:")
	fmt.Fprintf(e.out, "  - %s\n", e.artifacts.Path(storage.ArtifactCSV))
	fmt.Fprintf(e.out, "  - %s\n", e.artifacts.Path(storage.ArtifactJSON))
	fmt.Fprintf(e.out, "  - %s\n", e.artifacts.Path(storage.ArtifactSummary))
	return nil
}

func runCompanies(cmd *cobra.Command, g *globals, flags *batchFlags, args []string) error {
	companies, err := sheet.ReadCompaniesFile(args[0])
	if err != nil {
		return err
	}

	env, err := prepare(cmd, g, flags, args, len(companies), "_analyzed")
	if env == nil || err != nil {
		return err
	}
	defer env.close()

	ctx, stop := signalContext()
	defer stop()

	run, err := env.app.Recorder.StartRun(ctx, model.RunCompanies, args[0], len(companies))
	if err != nil {
		return err
	}

	start := time.Now()
	runner := service.NewRunner[model.CompanyInput, *model.CompanyResult](env.delay, env.logger)
	results, runErr := runner.Run(ctx, companies,
		env.app.RevenueService.AnalyzeResult,
		service.FailedCompanyResult,
		func(i int, r *model.CompanyResult) {
			env.app.Recorder.Company(ctx, run.ID, i+1, r)
		},
	)
	interrupted := runErr != nil
	if interrupted {
		env.logger.Warn("interrupted, saving completed rows", zap.Int("completed", len(results)))
	}
	env.app.Recorder.FinishRun(ctx, run.ID, len(results), interrupted)

	csvData, err := sheet.CompaniesCSV(results)
	if err != nil {
		return err
	}
	jsonData, err := sheet.JSON(results)
	if err != nil {
		return err
	}
	if err := env.write(csvData, jsonData, sheet.CompanySummary(results, interrupted)); err != nil {
		return err
	}

	printCompanyTotals(env.out, results, time.Since(start))
	if interrupted {
		return fmt.Errorf("processing interrupted after %d of %d companies: %w", len(results), len(companies), runErr)
	}
	return nil
}

func printCompanyTotals(out io.Writer, results []*model.CompanyResult, elapsed time.Duration) {
	found := 0
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Tier]++
		if r.EstimatedRevenueUSD != nil {
			found++
		}
	}

	fmt.Fprintf(out, "\nProcessing completed in %s\n", elapsed.Round(100*time.Millisecond))
	fmt.Fprintf(out, "Total Companies: %d\n", len(results))
	fmt.Fprintf(out, "Revenue Data Found: %d\n", found)
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(out, "Success Rate: %.1f%%\n", float64(found)/float64(len(results))*100)
	fmt.Fprintln(out, "\nTier Distribution:")
	for i := len(tier.All) - 1; i >= 0; i-- {
		t := string(tier.All[i])
		if n := counts[t]; n > 0 {
			fmt.Fprintf(out, "  %s: %d (%.1f%%)\n", t, n, float64(n)/float64(len(results))*100)
		}
	}
}

func runContacts(cmd *cobra.Command, g *globals, flags *batchFlags, args []string) error {
	contacts, err := sheet.ReadContactsFile(args[0])
	if err != nil {
		return err
	}

	env, err := prepare(cmd, g, flags, args, len(contacts), "_enriched")
	if env == nil || err != nil {
		return err
	}
	defer env.close()

	ctx, stop := signalContext()
	defer stop()

	run, err := env.app.Recorder.StartRun(ctx, model.RunContacts, args[0], len(contacts))
	if err != nil {
		return err
	}

	runner := service.NewRunner[model.ContactInput, *model.ContactInfo](env.delay, env.logger)
	results, runErr := runner.Run(ctx, contacts,
		env.app.ContactService.Enrich,
		func(in model.ContactInput, err error) *model.ContactInfo {
			return model.FailedContact(in, err.Error())
		},
		func(i int, info *model.ContactInfo) {
			env.app.Recorder.Contact(ctx, run.ID, i+1, info)
		},
	)
	interrupted := runErr != nil
	if interrupted {
		env.logger.Warn("interrupted, saving completed rows", zap.Int("completed", len(results)))
	}
	env.app.Recorder.FinishRun(ctx, run.ID, len(results), interrupted)

	csvData, err := sheet.ContactsCSV(results)
	if err != nil {
		return err
	}
	jsonData, err := sheet.JSON(results)
	if err != nil {
		return err
	}
	summary := sheet.ContactSummary(results, interrupted)
	if err := env.write(csvData, jsonData, summary); err != nil {
		return err
	}

	fmt.Fprintln(env.out)
	fmt.Fprint(env.out, summary)
	if interrupted {
		return fmt.Errorf("processing interrupted after %d of %d contacts: %w", len(results), len(contacts), runErr)
	}
	return nil
}
