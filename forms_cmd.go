package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/idgen"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
)

// formFile is the YAML layout accepted by `forms import`.
type formFile struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Published   bool          `yaml:"published"`
	Fields      []model.Field `yaml:"fields"`
}

func formsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "forms", Short: "Manage forms"}
	cmd.AddCommand(
		formsListCmd(v),
		formsImportCmd(v),
		formsPublishCmd(v),
	)
	return cmd
}

func formsListCmd(v *viper.Viper) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List forms, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(v, func(cfg config.Config, store *database.Store) error {
				forms, err := store.ListForms(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if forms == nil {
						forms = []model.Form{}
					}
					return enc.Encode(forms)
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Title", "Slug", "Fields", "Published", "Updated"})
				for _, f := range forms {
					tw.AppendRow(table.Row{f.ID, f.Title, f.Slug, len(f.Fields), f.IsPublished, f.UpdatedAt.Format("2006-01-02 15:04")})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func formsImportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create a form from a YAML definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := readFormFile(args[0])
			if err != nil {
				return err
			}

			return withStore(v, func(cfg config.Config, store *database.Store) error {
				if err := store.CreateForm(cmd.Context(), &form); err != nil {
					return err
				}
				log.Infof("form %s imported as %s", form.ID, form.Slug)
				fmt.Fprintln(cmd.OutOrStdout(), form.ID)
				return nil
			})
		},
	}
}

// readFormFile parses a form definition and assigns the ids and slug the
// store expects.
func readFormFile(path string) (model.Form, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.Form{}, err
	}
	var ff formFile
	if err := yaml.Unmarshal(b, &ff); err != nil {
		return model.Form{}, fmt.Errorf("%s: %w", path, err)
	}
	if ff.Title == "" {
		return model.Form{}, fmt.Errorf("%s: title is required", path)
	}
	for i, f := range ff.Fields {
		if !f.Type.Valid() {
			return model.Form{}, fmt.Errorf("%s: field %d: unknown type %q", path, i+1, f.Type)
		}
		if f.ID == "" {
			ff.Fields[i].ID = idgen.NewID()
		}
	}

	slug, err := idgen.Slug(ff.Title)
	if err != nil {
		return model.Form{}, err
	}
	return model.Form{
		ID:          idgen.NewID(),
		Title:       ff.Title,
		Description: ff.Description,
		Slug:        slug,
		Fields:      ff.Fields,
		IsPublished: ff.Published,
	}, nil
}

func formsPublishCmd(v *viper.Viper) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a form, or unpublish it with --off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(v, func(cfg config.Config, store *database.Store) error {
				if err := store.SetPublished(cmd.Context(), args[0], !off); err != nil {
					return fmt.Errorf("form %s: %w", args[0], err)
				}
				log.Infof("form %s published=%t", args[0], !off)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "unpublish instead")
	return cmd
}
