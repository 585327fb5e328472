package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lesson-notes-server/internal/document"
	"lesson-notes-server/internal/export"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a stored note document",
	}

	cmd.AddCommand(renderHTMLCmd())
	cmd.AddCommand(renderTextCmd())

	return cmd
}

func renderHTMLCmd() *cobra.Command {
	var (
		baseURL string
		word    bool
	)

	cmd := &cobra.Command{
		Use:   "html [file|-]",
		Short: "Render a note document as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var assets document.AssetResolver
			if baseURL != "" {
				assets = document.AssetBase{BaseURL: baseURL}
			}

			body := document.RenderHTML(raw, assets)
			if word {
				_, err = cmd.OutOrStdout().Write(export.WordDocument(body))
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
			return err
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for relative image paths")
	cmd.Flags().BoolVar(&word, "word", false, "Wrap the output in the Word export document")

	return cmd
}

func renderTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text [file|-]",
		Short: "Extract the plain text of a note document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), document.ExtractText(document.Parse(raw)))
			return err
		},
	}
}

func blankCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "blank",
		Short: "Print the blank editor document, or check whether a document is blank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if check == "" {
				_, err := fmt.Fprintln(out, string(document.BlankJSON))
				return err
			}

			raw, err := readInput(cmd, check)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(out, document.IsBlank(document.Parse(raw)))
			return err
		},
	}

	cmd.Flags().StringVar(&check, "check", "", "Document file (or -) to test for blankness")

	return cmd
}
