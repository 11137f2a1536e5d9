package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/internal/config"
	"github.com/matzehuels/depscope/pkg/depgraph"
	"github.com/matzehuels/depscope/pkg/render/dot"
	"github.com/matzehuels/depscope/pkg/render/tree"
)

// analyzeCommand creates the analyze command, the config-driven entry
// point for a full dependency analysis.
func (c *CLI) analyzeCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a package's dependency closure",
		Long: `Analyze builds the dependency graph described by a configuration file,
reports cycles, and renders the configured outputs.

Example:
  depscope analyze -c config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printError("%v", err)
				return err
			}
			return c.runAnalysis(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to the configuration file")
	return cmd
}

// runAnalysis drives the engine: select source, build the graph, report,
// render, and write artifacts.
func (c *CLI) runAnalysis(ctx context.Context, cfg *config.Config) error {
	printConfigSummary(cfg)

	src, repo, err := c.newSource(ctx, cfg)
	if err != nil {
		printError("%v", err)
		return err
	}

	g := depgraph.New(cfg.Filter)
	opts := depgraph.BuildOptions{
		Warn: func(pkg string, err error) {
			c.Logger.Debugf("fetch failed for %s: %v", pkg, err)
		},
	}

	p := newProgress(c.Logger)
	if cfg.Source == config.SourceRegistry {
		spin := newSpinner(ctx, fmt.Sprintf("Resolving %s from %s", cfg.Package, cfg.RegistryURL))
		spin.Start()
		g.BuildWithOptions(ctx, cfg.Package, src, opts)
		spin.Stop()
	} else {
		g.BuildWithOptions(ctx, cfg.Package, src, opts)
		// Ingest the rest of the fixture so reverse dependency queries see
		// the whole repository, not just the root's reachable subgraph.
		for _, pkg := range repo.Packages() {
			if pkg == cfg.Package {
				continue
			}
			g.BuildWithOptions(ctx, pkg, src, opts)
		}
	}
	p.done(fmt.Sprintf("Analyzed %d packages, %d edges", g.Len(), g.EdgeCount()))

	c.printReport(g, cfg.Package)

	if cfg.Render.Tree {
		printNewline()
		fmt.Print(tree.Render(g, cfg.Package))
	}
	if cfg.Render.Compact {
		printNewline()
		fmt.Print(tree.RenderCompact(g, cfg.Package))
	}
	if cfg.Render.Diagram {
		printNewline()
		fmt.Print(dot.ToDOT(g, cfg.Package))
	}

	return c.writeArtifacts(ctx, g, cfg)
}

// printConfigSummary echoes the effective configuration before analysis.
func printConfigSummary(cfg *config.Config) {
	fmt.Println(StyleTitle.Render("Configuration"))
	printKeyValue("package", cfg.Package)
	printKeyValue("version", cfg.Version)
	printKeyValue("source", cfg.Source)
	if cfg.Source == config.SourceRegistry {
		printKeyValue("registry", cfg.RegistryURL)
	} else {
		printKeyValue("fixture", cfg.FixturePath)
	}
	if cfg.Filter != "" {
		printKeyValue("filter", cfg.Filter)
	}
	printNewline()
}

// printReport prints dependency counts and the cycle list for root.
func (c *CLI) printReport(g *depgraph.Graph, root string) {
	direct := g.Direct(root)
	transitive := g.Transitive(root)
	dependents := g.Dependents(root)

	printInfo("%s depends directly on %d packages (%d transitively)", root, len(direct), len(transitive))
	if len(dependents) > 0 {
		printDetail("required by: %s", strings.Join(dependents, ", "))
	}

	if !g.HasCycles() {
		printSuccess("No dependency cycles detected")
		return
	}

	cycles := g.Cycles()
	printWarning("Detected %d dependency cycle(s)", len(cycles))
	for _, cycle := range cycles {
		printDetail("%s", strings.Join(cycle, " "+iconArrow+" "))
	}
}

// writeArtifacts writes the configured output files.
func (c *CLI) writeArtifacts(ctx context.Context, g *depgraph.Graph, cfg *config.Config) error {
	if cfg.Output.Dot == "" && cfg.Output.SVG == "" && cfg.Output.JSON == "" {
		return nil
	}

	printNewline()
	dotText := dot.ToDOT(g, cfg.Package)

	if cfg.Output.Dot != "" {
		if err := os.WriteFile(cfg.Output.Dot, []byte(dotText), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Output.Dot, err)
		}
		printFile(cfg.Output.Dot)
	}

	if cfg.Output.SVG != "" {
		svg, err := dot.RenderSVG(ctx, dotText)
		if err != nil {
			return fmt.Errorf("render SVG: %w", err)
		}
		if err := os.WriteFile(cfg.Output.SVG, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Output.SVG, err)
		}
		printFile(cfg.Output.SVG)
	}

	if cfg.Output.JSON != "" {
		snap := g.Export(cfg.Package)
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if err := os.WriteFile(cfg.Output.JSON, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.Output.JSON, err)
		}
		printFile(cfg.Output.JSON)
	}

	return nil
}
