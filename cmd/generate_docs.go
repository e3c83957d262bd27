package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate command documentation",
		Long: `Generate markdown documentation for all calimport commands.
The command tree is walked at runtime so the output always matches the flags
and help texts of the binary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown := generateCommandsMarkdown(cmd.Root())

			if outputFile != "" {
				if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), markdown)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func generateCommandsMarkdown(root *cobra.Command) string {
	var sb strings.Builder

	sb.WriteString("# Command Reference\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the command definitions.\n\n")

	commands := visibleCommands(root)

	sb.WriteString("## Table of Contents\n\n")
	for _, c := range commands {
		anchor := strings.ReplaceAll(c.CommandPath(), " ", "-")
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", c.CommandPath(), anchor))
	}
	sb.WriteString("\n")

	if flags := flagLines(root.PersistentFlags()); len(flags) > 0 {
		sb.WriteString("## Global Flags\n\n")
		for _, line := range flags {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}

	for _, c := range commands {
		sb.WriteString(generateCommandMarkdown(c))
		sb.WriteString("\n")
	}

	return sb.String()
}

// visibleCommands lists root and its runnable descendants sorted by path.
func visibleCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			return
		}
		if c.Runnable() || c == root {
			out = append(out, c)
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)

	sort.Slice(out, func(i, j int) bool {
		return out[i].CommandPath() < out[j].CommandPath()
	})
	return out
}

func generateCommandMarkdown(c *cobra.Command) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", c.CommandPath()))

	if c.Short != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", c.Short))
	}
	if c.Long != "" {
		sb.WriteString("```\n")
		sb.WriteString(strings.TrimSpace(c.Long))
		sb.WriteString("\n```\n\n")
	}

	sb.WriteString(fmt.Sprintf("**Usage:** `%s`\n\n", c.UseLine()))

	if flags := flagLines(c.LocalNonPersistentFlags()); len(flags) > 0 {
		sb.WriteString("**Flags:**\n")
		for _, line := range flags {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func flagLines(fs *pflag.FlagSet) []string {
	var lines []string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" || f.Name == "version" {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		line := fmt.Sprintf("- `%s` (%s): %s", name, f.Value.Type(), f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			line += fmt.Sprintf(" (default `%s`)", f.DefValue)
		}
		lines = append(lines, line+"\n")
	})
	return lines
}
