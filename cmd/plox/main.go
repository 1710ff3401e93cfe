// Command plox orders game plugin load orders against a community rule
// set. It is a thin cobra front end over the ordering core
// (internal/parser, internal/applier, internal/sorter) and the concrete
// external collaborators in internal/inventory, structured as a cobra
// root command with one subcommand per verb.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frederic-klein/plox/internal/applier"
	"github.com/frederic-klein/plox/internal/config"
	"github.com/frederic-klein/plox/internal/inventory"
	"github.com/frederic-klein/plox/internal/message"
	"github.com/frederic-klein/plox/internal/parser"
	"github.com/frederic-klein/plox/internal/ploxerr"
	"github.com/frederic-klein/plox/internal/ruleupdate"
	"github.com/frederic-klein/plox/internal/sorter"
)

var (
	gameFlag           string
	rulesDirFlag       string
	configPathFlag     string
	dryRunFlag         bool
	unstableFlag       bool
	nonInteractiveFlag bool
	noDownloadFlag     bool
	ruleRepoFlag       string
	listFormatFlag     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plox",
		Short: "Plugin Load Order eXpert",
		Long:  "PLOX orders game plugin load orders using mlox-compatible community rules.",
	}

	rootCmd.PersistentFlags().StringVar(&gameFlag, "game", "", "game to target: tes3, openmw, or cyberpunk (overrides plox.yaml)")
	rootCmd.PersistentFlags().StringVar(&rulesDirFlag, "rules-dir", "", "directory of rule files (overrides plox.yaml)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "game configuration file (Morrowind.ini / openmw.cfg / install root)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractiveFlag, "non-interactive", false, "never prompt for confirmation")
	rootCmd.PersistentFlags().BoolVar(&noDownloadFlag, "no-download", false, "skip fetching missing rule files before parsing")
	rootCmd.PersistentFlags().StringVar(&ruleRepoFlag, "rule-repo", "", "base URL new rule files are fetched from (e.g. https://example.org/rules/)")

	sortCmd := &cobra.Command{
		Use:   "sort",
		Short: "Compute and apply a resolved load order",
		RunE:  runSort,
	}
	sortCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "compute the order but do not write it back")
	sortCmd.Flags().BoolVar(&unstableFlag, "unstable", false, "use the faster, more-perturbing Kahn's-algorithm sorter")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the current inventory in load order",
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&listFormatFlag, "format", "plain", "output format: plain or yaml")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Apply the rule set and print the resulting messages without sorting",
		RunE:  runVerify,
	}

	rootCmd.AddCommand(sortCmd, listCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		if pe, ok := err.(*ploxerr.Error); ok {
			fmt.Fprintln(os.Stderr, pe)
			os.Exit(pe.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, ploxerr.New(ploxerr.KindConfig, err)
	}
	if gameFlag != "" {
		cfg.Game = gameFlag
	}
	if rulesDirFlag != "" {
		cfg.RulesDir = rulesDirFlag
	}
	if nonInteractiveFlag {
		cfg.NonInteractive = true
	}
	return cfg, nil
}

func openSource(cfg *config.Config) (inventory.Source, error) {
	meta := inventory.NewHeaderMetadataReader(".")
	switch cfg.Game {
	case "tes3":
		path := configPathFlag
		if path == "" {
			path = "Morrowind.ini"
		}
		return inventory.NewTES3Source(path, meta), nil
	case "openmw":
		path := configPathFlag
		if path == "" {
			path = "openmw.cfg"
		}
		return inventory.NewOpenMWSource(path, meta), nil
	case "cyberpunk":
		root := configPathFlag
		if root == "" {
			root = "."
		}
		return inventory.NewCyberpunkSource(root, meta), nil
	default:
		return nil, fmt.Errorf("unknown game %q", cfg.Game)
	}
}

func openWriter(cfg *config.Config) (inventory.Writer, error) {
	switch cfg.Game {
	case "tes3":
		path := configPathFlag
		if path == "" {
			path = "Morrowind.ini"
		}
		return &inventory.TES3Writer{IniPath: path}, nil
	case "openmw":
		path := configPathFlag
		if path == "" {
			path = "openmw.cfg"
		}
		return &inventory.OpenMWWriter{CfgPath: path}, nil
	case "cyberpunk":
		root := configPathFlag
		if root == "" {
			root = "."
		}
		return &inventory.CyberpunkManifestWriter{ManifestPath: filepath.Join(root, "load_order.txt")}, nil
	default:
		return nil, fmt.Errorf("unknown game %q", cfg.Game)
	}
}

// conventionalRuleFiles are the filenames a community rule repository
// conventionally serves; mlox itself ships exactly these two.
var conventionalRuleFiles = []string{"mlox_base.txt", "mlox_user.txt"}

func maybeUpdateRules(cfg *config.Config) {
	if noDownloadFlag || ruleRepoFlag == "" {
		return
	}
	var files []ruleupdate.RuleFile
	for _, name := range conventionalRuleFiles {
		files = append(files, ruleupdate.RuleFile{
			URL:      strings.TrimSuffix(ruleRepoFlag, "/") + "/" + name,
			DestPath: filepath.Join(cfg.RulesDir, name),
		})
	}
	for _, r := range ruleupdate.NewUpdater(4).Fetch(files) {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "warning: fetching %s: %v\n", r.File.URL, r.Error)
		}
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	inv, err := src.Load()
	if err != nil {
		return ploxerr.New(ploxerr.KindInventoryIO, err)
	}

	switch listFormatFlag {
	case "yaml":
		data, err := inventory.DumpYAML(inv)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		return inventory.RenderPlain(os.Stdout, inv)
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	inv, err := src.Load()
	if err != nil {
		return ploxerr.New(ploxerr.KindInventoryIO, err)
	}

	maybeUpdateRules(cfg)
	rs, diags, err := parser.ParseFiles(os.DirFS(cfg.RulesDir), ".", []string{"**/*.txt"})
	if err != nil {
		return ploxerr.New(ploxerr.KindInventoryIO, err)
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s\n", d)
	}

	result := applier.New(log).Apply(rs, inv)
	renderSelfEdges(result.SelfEdges)
	return message.Render(os.Stdout, result.Messages)
}

func runSort(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if unstableFlag {
		cfg.UnstableSorter = true
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	inv, err := src.Load()
	if err != nil {
		return ploxerr.New(ploxerr.KindInventoryIO, err)
	}

	maybeUpdateRules(cfg)
	rs, diags, err := parser.ParseFiles(os.DirFS(cfg.RulesDir), ".", []string{"**/*.txt"})
	if err != nil {
		return ploxerr.New(ploxerr.KindInventoryIO, err)
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s\n", d)
	}

	result := applier.New(log).Apply(rs, inv)
	renderSelfEdges(result.SelfEdges)
	if err := message.Render(os.Stdout, result.Messages); err != nil {
		return err
	}

	sortFn := sorter.Stable
	if cfg.UnstableSorter {
		sortFn = sorter.Unstable
	}
	newOrder, sortErr := sortFn(inv, result.Graph)
	if sortErr != nil {
		var cycleErr *sorter.CycleError
		if asCycleError(sortErr, &cycleErr) {
			fmt.Fprintln(os.Stderr, cycleErr.Report.DOT())
		}
		return ploxerr.New(ploxerr.KindOrderingCycle, sortErr)
	}

	if dryRunFlag {
		for _, id := range newOrder {
			fmt.Println(string(id))
		}
		return nil
	}

	if !cfg.NonInteractive {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Write the resolved order back to the %s configuration?", cfg.Game),
			Default: true,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(os.Stderr, "aborted, no changes written")
			return nil
		}
	}

	w, err := openWriter(cfg)
	if err != nil {
		return err
	}
	if err := w.Write(newOrder); err != nil {
		return ploxerr.New(ploxerr.KindInventoryIO, err)
	}
	return nil
}

// renderSelfEdges prints a diagnostic line per rejected self-edge (a rule
// asserting a plugin must load before itself). These are dropped from the
// ordering graph rather than aborting the run, so they're reported
// alongside parse diagnostics rather than through message.Render's fixed
// message kinds.
func renderSelfEdges(edges []applier.SelfLoop) {
	for _, e := range edges {
		fmt.Fprintf(os.Stderr, "%s\n", e)
	}
}

func asCycleError(err error, out **sorter.CycleError) bool {
	if ce, ok := err.(*sorter.CycleError); ok {
		*out = ce
		return true
	}
	return false
}
