package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/subsleuth/subsleuth/internal"
)

type Params struct {
	Source        string `descr:"Input format" alts:"json,xlsx" strict:"true"`
	Config        string `descr:"Path to config file"`
	Output        string `descr:"Output format" alts:"table,json" strict:"true"`
	OutFile       string `descr:"Also write the subscription list as JSON to this file"`
	Currency      string `descr:"Currency code for table amounts"`
	Model         string `descr:"Override the classifier model"`
	NoAi          bool   `descr:"Disable the OpenAI classifier even if OPENAI_API_KEY is set"`
	SuggestGroups bool   `descr:"Print suggested config groups for near-duplicate names instead of results"`
	Verbose       bool   `descr:"Log every processed email"`
	File          string `descr:"Path to the email export file" positional:"true"`
}

func main() {
	boa.NewCmdT[Params]("subsleuth").
		WithShort("Detect recurring subscriptions from an email export").
		WithLong("Analyzes exported emails (receipts, invoices, trial notices) to infer recurring subscriptions: service name, price, billing cycle, trial status and category, deduplicated per service. Set OPENAI_API_KEY to refine the rule-based extraction with an LLM.").
		WithRunFunc(run).
		Run()
}

func run(params *Params) {
	log := newLogger(params.Verbose)
	defer log.Sync()

	cfg := loadConfig(params.Config, log)

	format, path := internal.ParseFileArg(params.File)
	if params.Source != "" {
		format = params.Source
	}
	if format == "" {
		format = formatFromExtension(path)
	}

	parser, err := internal.GetParser(format)
	if err != nil {
		log.Fatal("resolving input format", zap.Error(err))
	}

	emails, err := parser.Parse(path)
	if err != nil {
		log.Fatal("parsing input file", zap.String("path", path), zap.Error(err))
	}
	log.Info("loaded emails", zap.Int("count", len(emails)))

	classifier := makeClassifier(params, cfg, log)

	detector := internal.NewDetector(classifier, cfg, log)
	report := detector.ProcessEmails(context.Background(), emails)

	log.Info("batch complete",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("classifier_failures", report.ClassifierFailures),
		zap.Int("subscriptions", len(report.Subscriptions)))

	if params.SuggestGroups {
		printGroupSuggestions(report.Subscriptions)
		return
	}

	if params.OutFile != "" {
		if err := writeOutputFile(params.OutFile, report.Subscriptions); err != nil {
			log.Fatal("writing output file", zap.Error(err))
		}
		log.Info("results saved", zap.String("path", params.OutFile))
	}

	switch params.Output {
	case "json":
		if err := internal.WriteSubscriptionsJSON(os.Stdout, report.Subscriptions); err != nil {
			log.Fatal("encoding output", zap.Error(err))
		}
	default:
		currencyCode := params.Currency
		if currencyCode == "" {
			currencyCode = "USD"
		}
		internal.PrintSubscriptionsTable(os.Stdout, report.Subscriptions, internal.OutputOptions{
			Currency: internal.GetCurrency(currencyCode),
		})
	}
}

func newLogger(verbose bool) *zap.Logger {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = true
	}
	// stdout carries only results
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}

func loadConfig(path string, log *zap.Logger) *internal.Config {
	if path != "" {
		cfg, err := internal.LoadConfig(path)
		if err != nil {
			log.Fatal("loading config", zap.String("path", path), zap.Error(err))
		}
		return cfg
	}

	defaultPath := internal.DefaultConfigPath()
	if defaultPath != "" {
		if _, err := os.Stat(defaultPath); err == nil {
			cfg, err := internal.LoadConfig(defaultPath)
			if err != nil {
				log.Fatal("loading config", zap.String("path", defaultPath), zap.Error(err))
			}
			return cfg
		}
	}

	cfg, err := internal.NewDefaultConfig()
	if err != nil {
		log.Fatal("building default config", zap.Error(err))
	}
	return cfg
}

// makeClassifier engages the LLM classifier only when a credential is
// present and it was not explicitly disabled.
func makeClassifier(params *Params, cfg *internal.Config, log *zap.Logger) internal.Classifier {
	if params.NoAi {
		return nil
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}

	model := params.Model
	if model == "" {
		model = cfg.AI.Model
	}

	classifier, err := internal.NewOpenAIClassifier(apiKey, model, cfg.AI.BaseURL)
	if err != nil {
		log.Fatal("initializing classifier", zap.Error(err))
	}
	log.Info("classifier enabled", zap.String("model", model))
	return classifier
}

func formatFromExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "json"
}

func writeOutputFile(path string, subs []internal.Subscription) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return internal.WriteSubscriptionsJSON(f, subs)
}

func printGroupSuggestions(subs []internal.Subscription) {
	suggestions := internal.SuggestAliasGroups(subs)
	if len(suggestions) == 0 {
		fmt.Println("No alias groups to suggest.")
		return
	}

	for _, s := range suggestions {
		fmt.Printf("# %s (%s): %s\n", s.Name, s.Category, strings.Join(s.Names, ", "))
	}

	out, err := yaml.Marshal(map[string][]internal.Group{
		"groups": internal.SuggestedGroups(suggestions),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling suggestions: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nAdd to your config file:")
	fmt.Print(string(out))
}
