package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"xpns-ingestion-service/cmd/xpns/config"
	"xpns-ingestion-service/internal/mapping"

	"github.com/spf13/cobra"
)

// Flags for the template commands
var (
	templateName string
	templateFile string
	templateDesc string
)

// templateCmd groups the mapping-template subcommands
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage saved column-mapping templates",
	Long: `Templates save a column mapping under a name so repeat uploads from
the same bank skip the mapping step. Saving infers a mapping from a file's
headers; edit the resulting YAML file if the inference needs correcting.`,
}

// templateSaveCmd infers a mapping from a CSV's headers and saves it
var templateSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Infer a mapping from a CSV's headers and save it under a name",
	RunE:  runTemplateSave,
}

// templateListCmd lists saved templates
var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved mapping templates",
	RunE:  runTemplateList,
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateSaveCmd)
	templateCmd.AddCommand(templateListCmd)

	templateSaveCmd.Flags().StringVarP(&templateName, "name", "n", "", "template name (required)")
	templateSaveCmd.Flags().StringVarP(&templateFile, "file", "f", "", "CSV file whose headers seed the template (required)")
	templateSaveCmd.Flags().StringVar(&templateDesc, "description", "", "optional template description")
	templateSaveCmd.MarkFlagRequired("name")
	templateSaveCmd.MarkFlagRequired("file")
}

func runTemplateSave(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	headers, err := readHeaderLine(templateFile)
	if err != nil {
		return err
	}

	store, err := mapping.NewTemplateStore(config.TemplateDir())
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	tpl := &mapping.Template{
		Name:        templateName,
		Description: templateDesc,
		Columns:     mapping.Infer(headers),
	}
	if err := store.Save(tpl); err != nil {
		os.Exit(handler.HandleError(err))
	}

	fmt.Printf("Saved template '%s' with %d columns\n", tpl.Name, len(tpl.Columns))
	return nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	store, err := mapping.NewTemplateStore(config.TemplateDir())
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	names, err := store.List()
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	if len(names) == 0 {
		fmt.Println("No templates saved")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func readHeaderLine(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("file %s is empty", path)
	}

	raw := strings.Split(scanner.Text(), ",")
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, nil
}
