package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/folio/docpipe"
	"github.com/hazyhaar/folio/kit"
	"github.com/hazyhaar/folio/slug"
	"github.com/hazyhaar/folio/toc"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "folioctl",
		Short: "Turn documents into normalized article HTML",
		Long: `folioctl runs the folio import pipeline locally.

Usage:
  folioctl import <file> [--mime type] [--toc] [--markdown]
  folioctl slug <title> [--existing a,b]
  folioctl toc <file.html>`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lvl := slog.LevelWarn
			if verbose {
				lvl = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline stages to stderr")

	root.AddCommand(newImportCmd(), newSlugCmd(), newTOCCmd())
	return root
}

type importFlags struct {
	mime     string
	withTOC  bool
	markdown bool
	asJSON   bool
	password string
	maxSize  int64
}

func newImportCmd() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a text, Word, ODT, PDF, Markdown or HTML file",
		Long: `Import decodes a document and prints its normalized HTML.

The format comes from the file extension unless --mime is given.

Examples:
  folioctl import report.docx
  folioctl import scan.pdf --toc
  folioctl import notes --mime text/plain --markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.mime, "mime", "", "Declared content type (default: from the extension)")
	cmd.Flags().BoolVar(&f.withTOC, "toc", false, "Anchor headings and print the table of contents first")
	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Print Markdown instead of HTML")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the whole import result as JSON")
	cmd.Flags().StringVar(&f.password, "password", "", "Password for encrypted PDFs")
	cmd.Flags().Int64Var(&f.maxSize, "max-size", docpipe.DefaultMaxFileSize, "Maximum input size in bytes")
	return cmd
}

func runImport(ctx context.Context, out, errOut io.Writer, path string, f importFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = kit.WithTransport(ctx, kit.TransportCLI)
	pipe := docpipe.New(docpipe.Config{
		MaxFileSize: f.maxSize,
		PDF:         docpipe.PDFConfig{Password: f.password},
		Logger:      slog.Default(),
	})

	var (
		doc *docpipe.Document
		err error
	)
	if f.mime != "" {
		var file *os.File
		if file, err = os.Open(path); err != nil {
			return err
		}
		defer file.Close()
		doc, err = pipe.ImportReader(ctx, file, f.mime, path)
	} else {
		doc, err = pipe.ImportFile(ctx, path)
	}
	if err != nil {
		return err
	}
	for _, w := range doc.Warnings {
		if w.Page > 0 {
			fmt.Fprintf(errOut, "warning: %s (page %d): %s\n", w.Code, w.Page, w.Message)
		} else {
			fmt.Fprintf(errOut, "warning: %s: %s\n", w.Code, w.Message)
		}
	}

	html := doc.HTML
	var headings []*toc.Heading
	if f.withTOC {
		if html, headings, err = toc.Extract(html); err != nil {
			return err
		}
	}

	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*docpipe.Document
			HTML string         `json:"html"`
			TOC  []*toc.Heading `json:"toc,omitempty"`
		}{doc, html, headings})
	}

	if f.markdown {
		md, err := docpipe.ToMarkdown(html)
		if err != nil {
			return err
		}
		if f.withTOC {
			writeMarkdownTOC(out, headings, 0)
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, md)
		return nil
	}

	if f.withTOC && len(headings) > 0 {
		fmt.Fprintln(out, toc.RenderHTML(headings))
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, html)
	return nil
}

func writeMarkdownTOC(w io.Writer, hs []*toc.Heading, depth int) {
	for _, h := range hs {
		fmt.Fprintf(w, "%s- [%s](#%s)\n", strings.Repeat("  ", depth), h.Text, h.ID)
		writeMarkdownTOC(w, h.Children, depth+1)
	}
}

func newSlugCmd() *cobra.Command {
	var existing []string
	cmd := &cobra.Command{
		Use:   "slug <title>",
		Short: "Print the URL slug for a title",
		Long: `Slug lowercases the title, strips accents and joins words with hyphens.
With --existing, the result is made unique against the given slugs.

Examples:
  folioctl slug "Café Society"
  folioctl slug "My Post" --existing my-post,my-post-2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := slug.Generate(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), slug.ResolveUnique(base, slug.NewSet(existing...)))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&existing, "existing", nil, "Slugs already in use (comma separated)")
	return cmd
}

func newTOCCmd() *cobra.Command {
	var printHTML bool
	cmd := &cobra.Command{
		Use:   "toc <file.html>",
		Short: "Print the table of contents of an HTML file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			html, headings, err := toc.Extract(string(data))
			if err != nil {
				return err
			}
			if printHTML {
				fmt.Fprintln(cmd.OutOrStdout(), html)
				return nil
			}
			if headings == nil {
				headings = []*toc.Heading{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(headings)
		},
	}
	cmd.Flags().BoolVar(&printHTML, "html", false, "Print the HTML with heading anchors instead")
	return cmd
}
