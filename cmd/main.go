package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yenhunghuang/license-compliance-copilot/internal/engine"
	"github.com/yenhunghuang/license-compliance-copilot/internal/kb"
	"github.com/yenhunghuang/license-compliance-copilot/pkg/config"
	"github.com/yenhunghuang/license-compliance-copilot/pkg/logger"
	"github.com/yenhunghuang/license-compliance-copilot/pkg/types"
)

var (
	// Version will be set during build
	Version = "dev"
	// BuildDate will be set during build
	BuildDate = "unknown"

	configFile   string
	distribution string
	useCase      string
)

var rootCmd = &cobra.Command{
	Use:   "license-compliance-copilot",
	Short: "License compatibility and obligation analysis for dependency trees",
	Long: `License Compliance Copilot reasons over a typed license knowledge
graph to answer compatibility, obligation, and compliance questions for a
set of software dependencies.

Examples:
  # Analyze a dependency manifest
  license-compliance-copilot analyze deps.yaml

  # Check a single license pair
  license-compliance-copilot check MIT GPL-3.0-only

  # List the obligations a license imposes under SaaS distribution
  license-compliance-copilot obligations AGPL-3.0-only --distribution saas`,
}

func newEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewWithOptions(logger.LogLevel(cfg.Logging.Level), logger.Format(cfg.Logging.Format))
	audit := logger.NewAuditLoggerWith(log)

	audit.Event(logger.KnowledgeLoadStart, nil)
	store, err := kb.NewStore()
	if err != nil {
		audit.Event(logger.KnowledgeLoadFailure, map[string]interface{}{"error": err.Error()})
		return nil, nil, fmt.Errorf("load built-in knowledge base: %w", err)
	}
	for _, extra := range cfg.Knowledge.ExtraFiles {
		if err := kb.LoadFile(extra, store); err != nil {
			audit.Event(logger.KnowledgeLoadFailure, map[string]interface{}{"file": extra, "error": err.Error()})
			return nil, nil, err
		}
	}
	stats := store.GetStatistics()
	audit.Event(logger.KnowledgeLoadSuccess, map[string]interface{}{
		"licenses":    stats.LicenseCount,
		"obligations": stats.ObligationCount,
		"edges":       stats.EdgeCount,
	})

	eng := engine.New(store, log, engine.Options{
		MaxPathDepth:    cfg.Analysis.MaxPathDepth,
		ParallelWorkers: cfg.Analysis.ParallelWorkers,
	})
	return eng, cfg, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [manifest]",
	Short: "Analyze a dependency manifest for license compliance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cfg, err := newEngine()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read manifest %s: %w", args[0], err)
		}
		var manifest struct {
			Dependencies []types.Dependency `yaml:"dependencies" json:"dependencies"`
		}
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return fmt.Errorf("parse manifest %s: %w", args[0], err)
		}

		analysis := eng.AnalyzeDependencyTree(manifest.Dependencies, useCase)
		if err := printJSON(analysis); err != nil {
			return err
		}

		switch analysis.Verdict {
		case engine.VerdictBlocked:
			os.Exit(2)
		case engine.VerdictWarnings:
			if cfg.Analysis.FailOnWarnings {
				os.Exit(1)
			}
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [licenseA] [licenseB]",
	Short: "Check compatibility between two licenses",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		return printJSON(eng.CheckCompatibility(args[0], args[1], useCase))
	},
}

var obligationsCmd = &cobra.Command{
	Use:   "obligations [license]",
	Short: "List the obligations a license imposes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cfg, err := newEngine()
		if err != nil {
			return err
		}
		if _, ok := eng.GetLicenseDetails(args[0]); !ok {
			return fmt.Errorf("license %q is not in the knowledge graph", args[0])
		}
		scope := distribution
		if scope == "" {
			scope = cfg.Analysis.DefaultDistribution
		}
		return printJSON(eng.GetObligationsForDistribution(args[0], engine.DistributionScope(scope)))
	},
}

var licenseCmd = &cobra.Command{
	Use:   "license [id]",
	Short: "Show everything the knowledge graph knows about a license",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		details, ok := eng.GetLicenseDetails(args[0])
		if !ok {
			return fmt.Errorf("license %q is not in the knowledge graph", args[0])
		}
		return printJSON(details)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge-graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		return printJSON(eng.GetStatistics())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&useCase, "use-case", "", "Target use case for compatibility checks")
	obligationsCmd.Flags().StringVarP(&distribution, "distribution", "d", "", "Distribution scope (internal, binary, source, saas, embedded)")

	rootCmd.AddCommand(analyzeCmd, checkCmd, obligationsCmd, licenseCmd, statsCmd)

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("License Compliance Copilot %s (built %s)\n", Version, BuildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
