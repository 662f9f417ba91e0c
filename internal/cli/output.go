package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/textkeeper/internal/config"
	"github.com/dmitrijs2005/textkeeper/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

// printStructured writes v as JSON or YAML. It reports false for the table
// format so the caller renders its own table.
func printStructured(w io.Writer, output string, v any) (bool, error) {
	switch output {
	case config.OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return true, err
	case config.OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("marshal YAML: %w", err)
		}
		_, err = fmt.Fprint(w, string(data))
		return true, err
	case "", config.OutputTable:
		return false, nil
	}
	return true, fmt.Errorf("unknown output format: %s", output)
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func printDocuments(w io.Writer, output string, docs []models.Document) error {
	if done, err := printStructured(w, output, docs); done {
		return err
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "TITLE", "FOLDER", "UPDATED AT", "CREATED AT"})
	for _, d := range docs {
		tw.AppendRow(table.Row{
			d.ID,
			d.Title,
			models.Deref(d.FolderID),
			formatTime(d.UpdatedAt),
			formatTime(d.CreatedAt),
		})
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// printVersions marks the version the document's last saved pointer names.
func printVersions(w io.Writer, output string, versions []models.Version, current *string) error {
	if done, err := printStructured(w, output, versions); done {
		return err
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"", "ID", "CREATED AT", "KIND", "SIZE", "NOTE"})
	for _, v := range versions {
		mark := ""
		if current != nil && *current == v.ID {
			mark = "*"
		}
		tw.AppendRow(table.Row{
			mark,
			v.ID,
			formatTime(v.CreatedAt),
			string(v.Kind),
			len(v.Body),
			models.Deref(v.Note),
		})
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func printFolders(w io.Writer, output string, folders []models.Folder) error {
	if done, err := printStructured(w, output, folders); done {
		return err
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "NAME", "PARENT", "UPDATED AT"})
	for _, f := range folders {
		tw.AppendRow(table.Row{f.ID, f.Name, models.Deref(f.ParentID), formatTime(f.UpdatedAt)})
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// printResult prints a single result: structured formats get the whole
// value, the table format gets line.
func printResult(w io.Writer, output string, v any, line string) error {
	if done, err := printStructured(w, output, v); done {
		return err
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
