package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai/provider"
	"github.com/spigell/resume-screener/internal/errs"
	"github.com/spigell/resume-screener/internal/evaluate"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/ingestion"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/normalize"
	"github.com/spigell/resume-screener/internal/record"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	PromptSaveCSV  = "Save results to CSV"
	PromptSaveXLSX = "Save results to XLSX"
	PromptShow     = "Show an evaluation"
	PromptExit     = "Exit"
	PromptBack     = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptSaveCSV, PromptSaveXLSX, PromptShow, PromptExit},
}

var screenCmd = &cobra.Command{
	Use:   "screen [files or directories...]",
	Short: "Evaluate resumes (.pdf, .docx) and recommend whom to shortlist",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringP("output", "o", "", "file to save results to, .xlsx writes a workbook (default is output/evaluations.csv)")
	screenCmd.Flags().BoolP("yes", "y", false, "save results to the output file without asking")
	screenCmd.Flags().IntP("workers", "w", 0, "how many resumes to screen at once (default 1)")
	screenCmd.Flags().StringSliceP("exclude", "e", nil, "file name patterns to skip, e.g. 'draft-*'")
	screenCmd.Flags().StringP("provider", "p", "", "completion provider: groq or gemini")

	viper.BindPFlag("output", screenCmd.Flags().Lookup("output"))
	viper.BindPFlag("workers", screenCmd.Flags().Lookup("workers"))
	viper.BindPFlag("exclude", screenCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("ai.provider", screenCmd.Flags().Lookup("provider"))
}

// screen is the main command for the cli.
func screen(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go releaseSignals(ctx, stop)

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-screener", zap.String("version", version))
	logger.Debug("starting with config", zap.String("config", redacted(config)))

	collector, err := ingestion.New(logger, config.Exclude...)
	if err != nil {
		logger.Fatal("preparing input", zap.Error(err))
	}

	paths, err := collector.Collect(args)
	if err != nil {
		logger.Fatal("collecting resumes", zap.Error(err))
	}

	if len(paths) == 0 {
		logger.Info("exiting", zap.String("reason", "no resumes found"))
		return
	}

	generator, err := provider.NewGenerator(ctx, config.AI.Settings, logger)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if errors.Is(err, errs.ErrConfiguration) {
			fields = append(fields, zap.String("hint", "put the key into the environment, a .env file or the configuration file"))
		}
		logger.Fatal("creating the completion provider", fields...)
	}

	extractor, err := extract.New(ctx, logger)
	if err != nil {
		logger.Fatal("creating the extractor", zap.Error(err))
	}

	evaluator := evaluate.New(generator, logger,
		evaluate.WithTimeout(config.AI.Timeout),
		evaluate.WithMaxLogLength(config.AI.MaxLogLength),
	)

	screener := screening.New(extractor, normalize.New(), evaluator, logger,
		screening.WithWorkers(config.Workers),
		screening.WithProgress(func(done, total int, o screening.Outcome) {
			logger.Info("progress", zap.Int("done", done), zap.Int("total", total), zap.String("resume", o.Resume))
		}),
	)

	batch, err := screener.Run(ctx, paths)
	interrupted := err != nil
	if interrupted {
		logger.Warn("screening interrupted", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	printBatch(out, batch)

	results := batch.Results()
	if len(results) == 0 {
		logger.Fatal("exiting", zap.String("reason", "no resume was screened successfully"))
	}

	if cmd.Flag("yes").Value.String() == "true" {
		if err := save(logger, config.Output, results); err != nil {
			logger.Fatal("saving results", zap.Error(err))
		}
		return
	}

	if interrupted {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}

		if err := handleAction(action, out, logger, config, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

// releaseSignals restores default signal handling once the first signal
// arrived, so a second Ctrl-C terminates the process.
func releaseSignals(ctx context.Context, stop context.CancelFunc) {
	<-ctx.Done()
	stop()
}

func handleAction(action string, out io.Writer, logger *zap.Logger, config *Config, results []screening.Result) error {
	switch action {
	case PromptSaveCSV:
		return save(logger, withExt(config.Output, ".csv"), results)
	case PromptSaveXLSX:
		return save(logger, withExt(config.Output, ".xlsx"), results)
	case PromptShow:
		return showEvaluation(out, results)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showEvaluation(out io.Writer, results []screening.Result) error {
	items := make([]string, 0, len(results)+1)
	for i, r := range results {
		items = append(items, fmt.Sprintf("%d %s - %s", i+1, r.Resume, r.Recommendation))
	}

	resumePrompt := promptui.Select{
		Label: "Choose a resume and press ENTER",
		Items: append(items, PromptBack),
		Size:  10,
	}

	idx, _, err := resumePrompt.Run()
	if err != nil {
		return err
	}
	if idx >= len(results) {
		return nil
	}

	printResult(out, results[idx])
	return nil
}

func save(logger *zap.Logger, path string, results []screening.Result) error {
	if strings.TrimSpace(path) == "" {
		path = record.DefaultPath
	}

	if err := record.Write(path, results); err != nil {
		return err
	}

	logger.Info("results saved", zap.String("path", path), zap.Int("count", len(results)))
	return nil
}

func printBatch(out io.Writer, batch *screening.Batch) {
	for _, r := range batch.Results() {
		printResult(out, r)
	}

	for _, o := range batch.Failures() {
		fmt.Fprintf(out, "=== %s - failed at %s (%s) ===\n%v\n\n", o.Resume, o.Stage, failureKind(o.Err), o.Err)
	}

	s := batch.Summary()
	fmt.Fprintf(out, "screened %d resumes: %d shortlisted, %d rejected, %d failed\n",
		s.Total, s.Shortlisted, s.Rejected, s.Failed)
}

// failureKind names the error category, cancellations carry no errs kind.
func failureKind(err error) string {
	if kind := errs.Kind(err); kind != nil {
		return kind.Error()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "interrupted"
	}
	return "unknown"
}

func printResult(out io.Writer, r screening.Result) {
	fmt.Fprintf(out, "=== %s - %s ===\n%s\n\nRecommendation: %s\n\n", r.Resume, r.Recommendation, r.Evaluation, r.Recommendation)
}

// withExt swaps the extension of path, keeping its directory and base name.
func withExt(path, ext string) string {
	if strings.TrimSpace(path) == "" {
		path = record.DefaultPath
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// redacted renders config for debug logs without credentials.
func redacted(config *Config) string {
	c := *config
	if config.AI != nil {
		aiCopy := *config.AI
		for _, creds := range []*provider.Credentials{&aiCopy.Groq, &aiCopy.Gemini} {
			if creds.APIKey != "" {
				creds.APIKey = "***"
			}
		}
		c.AI = &aiCopy
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(c, "", "  ")
	return string(pretty)
}
