package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/qtpi-bonding/folio/internal/scaffold"
	"github.com/qtpi-bonding/folio/internal/schema"
)

var newCmd = &cobra.Command{
	Use:   "new [collection]",
	Short: "Create a content entry with an interactive wizard",
	Long: `Prompts for the required frontmatter fields of a content type, as declared
in content-schemas.json, and writes a new Markdown file into the collection's
directory. Tags and work types are checked against the schema as you type.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := loadSchemas(cfg)
	if err != nil {
		return err
	}

	var collection string
	if len(args) == 1 {
		collection = args[0]
	} else {
		sel := promptui.Select{Label: "Content type", Items: cfg.CollectionNames()}
		if _, collection, err = sel.Run(); err != nil {
			return fmt.Errorf("content type selection: %w", err)
		}
	}
	t, ok := s.For(collection)
	if !ok {
		return fmt.Errorf("no schema for content type %q in %s", collection, schema.FileName)
	}

	title, err := (&promptui.Prompt{Label: "Title", Validate: required}).Run()
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	entry := scaffold.Entry{
		Collection: collection,
		Fields:     []scaffold.Field{{Key: "title", Value: strings.TrimSpace(title)}},
		Body:       "Write the description here.\n",
	}

	for _, name := range t.Required {
		if name == "title" {
			continue
		}
		value, err := promptField(s, collection, name, t.Fields[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		entry.Fields = append(entry.Fields, scaffold.Field{Key: name, Value: value})
	}

	path, err := scaffold.WriteEntry(cfg, entry)
	if err != nil {
		return err
	}
	fmt.Printf("\nCreated %s\nRun `folio validate` to check it.\n", path)
	return nil
}

// promptField asks for one required field, offering a list when the
// schema restricts its values.
func promptField(s *schema.Schemas, collection, name string, def schema.Field) (any, error) {
	switch {
	case name == "type" && collection == "work" && len(s.ValidWorkTypes()) > 0:
		sel := promptui.Select{Label: "Work type", Items: s.ValidWorkTypes()}
		_, v, err := sel.Run()
		return v, err

	case name == "tags":
		valid := s.ValidTags()
		p := promptui.Prompt{
			Label: fmt.Sprintf("Tags (comma-separated: %s)", strings.Join(valid, ", ")),
			Validate: func(in string) error {
				v, _ := scaffold.ParseValue(schema.TypeArray, in)
				tags := v.([]string)
				if len(tags) == 0 {
					return errors.New("at least one tag is required")
				}
				if len(valid) == 0 {
					return nil
				}
				return scaffold.CheckValues(tags, valid)
			},
		}
		in, err := p.Run()
		if err != nil {
			return nil, err
		}
		return scaffold.ParseValue(schema.TypeArray, in)

	case def.Type == schema.TypeBoolean:
		sel := promptui.Select{Label: name, Items: []string{"false", "true"}}
		_, v, err := sel.Run()
		if err != nil {
			return nil, err
		}
		return v == "true", nil

	case len(def.ValidValues) > 0 && def.Type != schema.TypeArray:
		items := make([]string, 0, len(def.ValidValues))
		for _, v := range def.ValidValues {
			items = append(items, fmt.Sprint(v))
		}
		sel := promptui.Select{Label: name, Items: items}
		i, _, err := sel.Run()
		if err != nil {
			return nil, err
		}
		return def.ValidValues[i], nil
	}

	label := name
	if def.Description != "" {
		label = fmt.Sprintf("%s (%s)", name, def.Description)
	}
	p := promptui.Prompt{
		Label: label,
		Validate: func(in string) error {
			if err := required(in); err != nil {
				return err
			}
			_, err := scaffold.ParseValue(def.Type, in)
			return err
		},
	}
	in, err := p.Run()
	if err != nil {
		return nil, err
	}
	return scaffold.ParseValue(def.Type, in)
}

func required(in string) error {
	if strings.TrimSpace(in) == "" {
		return errors.New("required")
	}
	return nil
}
