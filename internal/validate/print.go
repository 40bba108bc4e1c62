package validate

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/schema"
)

// Mode selects the output layout of Print.
type Mode int

const (
	// ModeContent mirrors `folio validate`.
	ModeContent Mode = iota
	// ModeBuild numbers the errors and prints the pre-build summary.
	ModeBuild
)

// PrintOptions controls Print.
type PrintOptions struct {
	Mode           Mode
	Help           config.HelpMessages
	FailOnWarnings bool
}

// Print writes a human-readable report and returns whether it passed.
func Print(w io.Writer, r *Report, opts PrintOptions) bool {
	for _, n := range r.Notices {
		fmt.Fprintf(w, "⚠ %s\n", n)
	}
	for _, f := range r.Passed {
		fmt.Fprintf(w, "✓ %s\n", f)
	}

	errs, warns := r.Errors(), r.Warnings()

	if opts.Mode == ModeContent {
		fmt.Fprintln(w, "\nValidation Results:")
		if len(warns) > 0 {
			fmt.Fprintf(w, "\n⚠ Warnings (%d):\n", len(warns))
			for _, i := range warns {
				fmt.Fprintf(w, "  %s\n", i)
			}
		}
		if len(errs) > 0 {
			fmt.Fprintf(w, "\n✗ Errors (%d):\n", len(errs))
			for _, i := range errs {
				fmt.Fprintf(w, "  %s\n", i)
			}
			printHelp(w, opts.Help, errs)
			return false
		}
	} else {
		if len(errs) > 0 {
			fmt.Fprintf(w, "\n✗ Build validation failed with %d error(s):\n", len(errs))
			for n, i := range errs {
				fmt.Fprintf(w, "\n%d. %s:\n   %s\n", n+1, location(i), i.Message)
			}
			printHelp(w, opts.Help, errs)
			return false
		}
		if len(warns) > 0 {
			fmt.Fprintf(w, "\n⚠ Build validation passed with %d warning(s):\n", len(warns))
			for n, i := range warns {
				fmt.Fprintf(w, "%d. %s\n", n+1, i)
			}
		}
	}

	if opts.FailOnWarnings && len(warns) > 0 {
		fmt.Fprintln(w, "\n✗ Build configured to fail on warnings")
		return false
	}

	if len(warns) == 0 {
		fmt.Fprintln(w, "\n✓ All validation checks passed!")
	} else {
		fmt.Fprintln(w, "\n✓ Validation passed with warnings.")
	}
	return true
}

func location(i Issue) string {
	if i.Field != "" {
		return fmt.Sprintf("%s (%s)", i.File, i.Field)
	}
	return i.File
}

// printHelp prints the general guidelines plus the sections relevant to
// the fields that failed.
func printHelp(w io.Writer, help config.HelpMessages, errs []Issue) {
	fields := map[string]bool{}
	for _, i := range errs {
		fields[i.Field] = true
	}

	fmt.Fprintln(w, "\nHow to fix these errors:")
	section(w, "General Guidelines", help.General)
	if fields["tags"] {
		section(w, "Tag Guidelines", help.Tags)
	}
	if fields["type"] {
		section(w, "Work Type Guidelines", help.WorkTypes)
	}
	if fields["media"] || fields["image"] || fields["photo"] || fields["avatar"] {
		section(w, "Image Guidelines", help.Images)
	}

	fmt.Fprintln(w, "\nQuick Commands:")
	fmt.Fprintln(w, "  • folio validate        - Run detailed content validation")
	fmt.Fprintln(w, "  • folio validate --fix  - Get help fixing validation errors")
	fmt.Fprintln(w, "  • folio build           - Run full build with validation")
}

func section(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, l := range lines {
		fmt.Fprintf(w, "  • %s\n", l)
	}
}

// PrintFixGuide writes the remediation guide: valid values, required
// fields and a frontmatter skeleton per content type.
func PrintFixGuide(w io.Writer, s *schema.Schemas, help config.HelpMessages) {
	fmt.Fprintln(w, "Content Validation Guide")
	fmt.Fprintln(w, "========================")

	fmt.Fprintf(w, "\nValid tags: %s\n", strings.Join(s.ValidTags(), ", "))
	fmt.Fprintf(w, "Valid work types: %s\n", strings.Join(s.ValidWorkTypes(), ", "))

	for _, name := range s.Types() {
		t, _ := s.For(name)
		fmt.Fprintf(w, "\n%s\n", name)
		fmt.Fprintf(w, "  Required fields: %s\n", strings.Join(t.Required, ", "))
		fmt.Fprintln(w, "  Example frontmatter:")
		fmt.Fprintln(w, "    ---")
		for _, line := range skeleton(name, t, s) {
			fmt.Fprintf(w, "    %s\n", line)
		}
		fmt.Fprintln(w, "    ---")
	}

	section(w, "General Guidelines", help.General)
	section(w, "Tag Guidelines", help.Tags)
	section(w, "Work Type Guidelines", help.WorkTypes)
	section(w, "Image Guidelines", help.Images)
}

// skeleton renders the required fields of a type as YAML lines.
func skeleton(name string, t schema.Type, s *schema.Schemas) []string {
	required := append([]string(nil), t.Required...)
	sort.SliceStable(required, func(i, j int) bool { return required[i] == "title" && required[j] != "title" })

	lines := make([]string, 0, len(required))
	for _, field := range required {
		def := t.Fields[field]
		lines = append(lines, fmt.Sprintf("%s: %s", field, placeholder(name, field, def, s)))
	}
	return lines
}

func placeholder(typeName, field string, def schema.Field, s *schema.Schemas) string {
	switch {
	case field == "tags" && len(s.ValidTags()) > 0:
		return "[" + s.ValidTags()[0] + "]"
	case field == "type" && typeName == "work" && len(s.ValidWorkTypes()) > 0:
		return s.ValidWorkTypes()[0]
	case len(def.ValidValues) > 0:
		if def.Type == schema.TypeArray {
			return fmt.Sprintf("[%v]", def.ValidValues[0])
		}
		return fmt.Sprint(def.ValidValues[0])
	}
	switch def.Type {
	case schema.TypeNumber:
		return "2024"
	case schema.TypeBoolean:
		return "false"
	case schema.TypeArray:
		return "[]"
	case schema.TypeObject:
		return "{}"
	}
	if strings.Contains(strings.ToLower(field), "date") {
		return "\"2024-01-01\""
	}
	return fmt.Sprintf("\"Your %s\"", field)
}
