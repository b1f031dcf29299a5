package cli

import (
	"fmt"

	"github.com/kolah/xml2openrpc/internal/config"
	"github.com/kolah/xml2openrpc/internal/convert"
	"github.com/kolah/xml2openrpc/internal/generator"
	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/spf13/cobra"
)

func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [xml-file] [branch] [output-dir]",
		Short: "Write one document per handler to <output-dir>/<branch>/<handler>.json",
		Args:  cobra.MaximumNArgs(3),
		RunE:  runConvert,
	}

	config.BindFlags(cmd)

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd, args)
	if err != nil {
		return err
	}

	result, err := loader.LoadFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	gen, err := generator.New(cfg)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var sink generator.Sink
	if dryRun {
		sink = func(out generator.Output) error {
			cmd.Printf("// %s\n%s\n", out.Filename, out.Content)
			return nil
		}
	} else {
		writer := generator.NewFileWriter(cfg.OutputDir)
		if err := writer.Prepare(cfg.Branch); err != nil {
			return err
		}
		sink = func(out generator.Output) error {
			if err := writer.Write(out); err != nil {
				return err
			}
			cmd.PrintErrf("Written: %s\n", writer.Written[len(writer.Written)-1])
			return nil
		}
	}

	report, err := gen.Generate(result.Root, sink)
	printDiagnostics(cmd, report.Diagnostics)
	if err != nil {
		return fmt.Errorf("generating documents: %w", err)
	}
	if herr := report.HandlerErrors(); herr != nil {
		cmd.PrintErrf("Warning: aborted handlers:\n%v\n", herr)
	}

	cmd.PrintErrf("Branch %s: %d written, %d aborted, %d skipped, %d methods, %d diagnostics\n",
		cfg.Branch, report.Written, report.Aborted, report.Skipped, report.Methods, len(report.Diagnostics))

	return nil
}

func printDiagnostics(cmd *cobra.Command, diags []convert.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case convert.SeverityError:
			cmd.PrintErrf("Error: %s\n", d)
		default:
			cmd.PrintErrf("Warning: %s\n", d)
		}
	}
}
