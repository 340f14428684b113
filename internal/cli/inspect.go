package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vegadeck/pkg/dataflow"
	"github.com/matzehuels/vegadeck/pkg/spec"
)

// inspectCommand creates the inspect command for interactive browsing of
// a specification's data sources.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <spec-file>",
		Short: "Browse a specification's data sources interactively",
		Long: `Browse a specification's data sources interactively.

Each data stanza is listed with its kind (inline values, remote url,
derived source), the loader type of remote stanzas, and a short detail
such as the index name or row count. Selecting a dataset prints its
dependencies and consumers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0])
		},
	}

	return cmd
}

// runInspect builds the data-flow graph and hands it to the TUI.
func (c *CLI) runInspect(ctx context.Context, input string) error {
	raw, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read spec: %w", err)
	}
	doc, err := spec.Parse(raw)
	if err != nil {
		return err
	}

	g := dataflow.Build(doc)
	if len(g.Nodes()) == 0 {
		printInfo("No data stanzas found in %s", input)
		return nil
	}

	model := NewDatasetListModel(g)
	program := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("inspect: %w", err)
	}

	m, ok := final.(DatasetListModel)
	if !ok || m.Selected == nil {
		return nil
	}
	printDataset(m, m.Selected)
	return nil
}

// printDataset prints the selected dataset's summary after the TUI exits.
func printDataset(m DatasetListModel, n *dataflow.Node) {
	printKeyValue("Dataset", n.ID)
	printKeyValue("Kind", string(n.Kind))
	if n.Type != "" {
		printKeyValue("Loader", n.Type)
	}
	if n.Detail != "" {
		printKeyValue("Detail", n.Detail)
	}
	if inputs := m.Inputs[n.ID]; len(inputs) > 0 {
		printKeyValue("Reads from", strings.Join(inputs, ", "))
	}
	if consumers := m.Consumers[n.ID]; len(consumers) > 0 {
		printKeyValue("Feeds", strings.Join(consumers, ", "))
	}
	if n.Conflict {
		printWarning("Stanza mixes more than one of url, values and source")
	}
	if n.Kind == dataflow.KindMissing {
		printWarning("Referenced but never defined")
	}
}
