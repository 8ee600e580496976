package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/spanmark/internal/annotations"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/presentation"
)

var errSpansNeedAttention = errors.New("some spans no longer match the document")

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the tokens of a document",
	Long: `Print the tokenization of a document, one token per line as its index and
quoted text. Span token ids refer to these indexes.

Examples:
  spanmark tokens notes.txt
  spanmark tokens notes.txt --json | jq '.[].text'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDocument(args)
		if err != nil {
			return err
		}
		doc, err := loadDocument(path)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		return writeTokens(cmd.OutOrStdout(), doc, asJSON)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the stored object list as JSON",
	Long: `Write the object list stored for a document as a JSON envelope holding the
document path, the version the spans were made against and the spans.

Examples:
  spanmark export notes.txt > notes.objects.json
  spanmark export notes.txt | jq '.objects[].label'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDocument(args)
		if err != nil {
			return err
		}
		return withRepository(cmd.Context(), cmd.Name(), func(ctx context.Context, repo annotations.Repository) error {
			return exportObjects(ctx, cmd.OutOrStdout(), repo, path)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file] objects.json",
	Short: "Replace the stored object list",
	Long: `Replace the object list stored for a document with the spans in a JSON file.
The file may hold a bare array of spans or an envelope written by export.
Use - to read from stdin.

Examples:
  spanmark import notes.txt notes.objects.json
  spanmark export a.txt | spanmark import b.txt -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[len(args)-1]
		path, err := resolveDocument(args[:len(args)-1])
		if err != nil {
			return err
		}
		data, err := readSource(cmd.InOrStdin(), source)
		if err != nil {
			return err
		}
		doc, err := loadDocument(path)
		if err != nil {
			return err
		}
		return withRepository(cmd.Context(), cmd.Name(), func(ctx context.Context, repo annotations.Repository) error {
			return importObjects(ctx, cmd.OutOrStdout(), repo, path, doc, data)
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Report spans that no longer match the document",
	Long: `Compare the stored object list against the current document text. Spans whose
text changed are shown with an inline diff ([-removed-]{+added+}). Spans that
point past the end of the document are reported as out of range.

Exits non-zero when any span needs attention.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDocument(args)
		if err != nil {
			return err
		}
		doc, err := loadDocument(path)
		if err != nil {
			return err
		}
		return withRepository(cmd.Context(), cmd.Name(), func(ctx context.Context, repo annotations.Repository) error {
			return checkObjects(ctx, cmd.OutOrStdout(), repo, path, doc)
		})
	},
}

func init() {
	tokensCmd.Flags().Bool("json", false, "print tokens as JSON")
	rootCmd.AddCommand(tokensCmd, exportCmd, importCmd, checkCmd)
}

func readSource(stdin io.Reader, source string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source) //nolint:gosec // G304: user-chosen objects file
	}
	if err != nil {
		return nil, fmt.Errorf("reading objects: %w", err)
	}
	return data, nil
}

func writeTokens(w io.Writer, doc document.Document, asJSON bool) error {
	formatter := presentation.NewFormatter(w)
	tokens := presentation.FromDomainTokens(doc.Tokens)
	if asJSON {
		return formatter.FormatJSON(tokens)
	}
	return formatter.FormatTokens(tokens)
}

// exportObjects writes the stored list for path. A document with nothing
// stored exports an empty list.
func exportObjects(ctx context.Context, w io.Writer, repo annotations.Repository, path string) error {
	rec, err := repo.Load(ctx, path)
	var nf *annotations.DocumentNotFoundError
	switch {
	case errors.As(err, &nf):
		rec = annotations.Record{Document: annotations.Document{Path: path}, Objects: document.Clear()}
	case err != nil:
		return fmt.Errorf("loading annotations: %w", err)
	}
	return presentation.NewFormatter(w).FormatJSON(presentation.FromDomainRecord(rec))
}

func importObjects(ctx context.Context, w io.Writer, repo annotations.Repository, path string, doc document.Document, data []byte) error {
	objects, err := presentation.ParseObjects(data)
	if err != nil {
		return err
	}
	if _, err := repo.Save(ctx, path, doc.Version, objects); err != nil {
		return fmt.Errorf("saving annotations: %w", err)
	}
	fmt.Fprintf(w, "imported %d spans into %s\n", len(objects), path)
	if issues := presentation.Check(doc.Tokens, objects); len(issues) > 0 {
		fmt.Fprintf(w, "%d spans do not match the document; run check for details\n", len(issues))
	}
	return nil
}

func checkObjects(ctx context.Context, w io.Writer, repo annotations.Repository, path string, doc document.Document) error {
	rec, err := repo.Load(ctx, path)
	var nf *annotations.DocumentNotFoundError
	switch {
	case errors.As(err, &nf):
		rec.Objects = document.Clear()
	case err != nil:
		return fmt.Errorf("loading annotations: %w", err)
	}

	issues := presentation.Check(doc.Tokens, rec.Objects)
	if err := presentation.NewFormatter(w).FormatIssues(issues); err != nil {
		return err
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d of %d spans: %w", len(issues), len(rec.Objects), errSpansNeedAttention)
	}
	return nil
}
