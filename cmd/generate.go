package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rolloutplan/core/rollout"
	"github.com/kilianp07/rolloutplan/infra/logger"
	"github.com/kilianp07/rolloutplan/pkg/export"
)

var genOpts struct {
	branches int
	format   string
	out      string
	company  string
	project  string
}

var createOutput = func(path string) (io.WriteCloser, error) { return os.Create(path) }

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a rollout plan to stdout or a file",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&genOpts.branches, "branches", "b", 0, "number of branches (default from config)")
	f.StringVarP(&genOpts.format, "format", "f", string(export.Text), "output format: text, json, yaml, csv or html")
	f.StringVarP(&genOpts.out, "out", "o", "", "output file (default stdout)")
	f.StringVar(&genOpts.company, "company", "", "company name shown in the heading")
	f.StringVar(&genOpts.project, "project", "", "project name shown in the heading")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadOptional(cmd)
	if err != nil {
		return err
	}
	logg := logger.New("generate")

	format, err := export.ParseFormat(genOpts.format)
	if err != nil {
		return err
	}
	n := cfg.Plan.Branches
	if cmd.Flags().Changed("branches") {
		if err := rollout.ValidateBranches(genOpts.branches); err != nil {
			return err
		}
		n = genOpts.branches
	}
	doc := export.Document{
		CompanyName:     cfg.Plan.CompanyName,
		ProjectName:     cfg.Plan.ProjectName,
		ShowCompanyName: cfg.Plan.ShowCompanyName,
	}
	if genOpts.company != "" {
		doc.CompanyName = genOpts.company
		doc.ShowCompanyName = true
	}
	if genOpts.project != "" {
		doc.ProjectName = genOpts.project
	}

	start := time.Now()
	doc.Weeks = rollout.Generate(n)
	logg.Debugw("plan generated", map[string]any{
		"branches": n,
		"weeks":    len(doc.Weeks),
		"elapsed":  time.Since(start).String(),
	})

	var w io.Writer = cmd.OutOrStdout()
	if genOpts.out != "" {
		file, cerr := createOutput(genOpts.out)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		w = file
	}
	if err := export.Write(w, format, doc); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	if genOpts.out != "" {
		logg.Infof("wrote %d weeks to %s", len(doc.Weeks), genOpts.out)
	}
	return nil
}
