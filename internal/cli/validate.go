package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lwerner/copperline/pkg/errors"
	"github.com/lwerner/copperline/pkg/verify"
)

// fabExtensions is the set of file extensions validate recognizes as
// fabrication outputs.
var fabExtensions = map[string]bool{
	"GTL": true, "GBL": true,
	"GTS": true, "GBS": true,
	"GTO": true, "GKO": true,
	"DRL": true,
}

// validateCommand creates the validate command for checking an existing
// output directory.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check fabrication files in a directory",
		Long: `Run structural checks over every Gerber and drill file in the given
directory: file framing, terminators, and aperture/tool consistency.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotFound, err, "read directory")
	}

	files := make(map[string][]byte)
	var order []string
	for _, e := range entries {
		if e.IsDir() || !fabExtensions[extensionOf(e.Name())] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "read %s", e.Name())
		}
		files[e.Name()] = data
		order = append(order, e.Name())
	}
	sort.Strings(order)

	if len(order) == 0 {
		return errors.New(errors.ErrCodeNotFound, "no fabrication files in %s", dir)
	}

	reports, err := verify.All(files, order)
	for _, rep := range reports {
		if rep.OK() {
			printSuccess("%s", rep.Name)
			continue
		}
		printError("%s", rep.Name)
		for _, problem := range rep.Problems {
			printDetail("%s", problem)
		}
	}
	if err != nil {
		return err
	}

	printInfo("%d files OK", len(reports))
	return nil
}

func extensionOf(name string) string {
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
}
