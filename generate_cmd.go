package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/config"
	"github.com/Aditi-179/Docify/doc"
)

type generateFlags struct {
	mode   string
	prompt string
	text   string
	file   string
	source string
	format string
	out    string
	copy   bool
}

func generateCmd(configPath *string) *cobra.Command {
	var flags generateFlags

	cmd := cobra.Command{
		Use:   "generate",
		Short: "Generate one document and export it as Markdown.",
		Long: `Generate one document and export it as Markdown.

The input depends on the mode:
  prompt-to-doc  --prompt
  text-to-doc    --text
  doc-to-doc     --file
  reformatter    --source and --format
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			in, err := flags.input()
			if err != nil {
				return err
			}
			if !in.Valid() {
				return fmt.Errorf("input is not complete for mode %s", in.Mode)
			}

			// No one is waiting on a spinner here.
			cfg.Generator.Delay = 0
			gen, err := newGenerator(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			d, err := gen.Generate(cmd.Context(), in)
			if err != nil {
				return err
			}
			exp := doc.NewExport(d)
			logger.Debug("generated document", zap.String("title", d.Title), zap.Int("words", d.WordCount()))

			if flags.copy {
				if err := clipboard.WriteAll(string(exp.Content)); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Content copied to clipboard")
			}

			if flags.out == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), exp.Content)
				return err
			}
			path := flags.out
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, exp.Filename)
			}
			if err := os.WriteFile(path, []byte(exp.Content), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Document downloaded to", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.mode, "mode", string(doc.ModePromptToDoc), "Workflow: prompt-to-doc, text-to-doc, doc-to-doc or reformatter.")
	f.StringVar(&flags.prompt, "prompt", "", "Prompt describing the document.")
	f.StringVar(&flags.text, "text", "", "Raw notes to structure.")
	f.StringVar(&flags.file, "file", "", "Document to extract from.")
	f.StringVar(&flags.source, "source", "", "Document whose content is reformatted.")
	f.StringVar(&flags.format, "format", "", "Template document giving the target structure.")
	f.StringVarP(&flags.out, "out", "o", "", "Write the Markdown to this file or directory instead of stdout.")
	f.BoolVar(&flags.copy, "copy", false, "Copy the Markdown to the clipboard.")
	return &cmd
}

func (f generateFlags) input() (doc.Input, error) {
	mode, err := doc.ParseMode(f.mode)
	if err != nil {
		return doc.Input{}, err
	}
	in := doc.NewInput(mode)
	in.PromptText = f.prompt
	in.RawText = f.text

	for slot, path := range map[doc.FileSlot]string{
		doc.SlotUploaded: f.file,
		doc.SlotSource:   f.source,
		doc.SlotFormat:   f.format,
	} {
		if path == "" {
			continue
		}
		file, err := readFile(path)
		if err != nil {
			return doc.Input{}, err
		}
		if in, err = in.WithFile(slot, file); err != nil {
			return doc.Input{}, err
		}
	}
	return in, nil
}

func readFile(path string) (*doc.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &doc.File{Name: filepath.Base(path), Data: data}, nil
}
