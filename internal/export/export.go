// Package export writes organizer snapshots as JSON, YAML or a CSV task
// listing.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-task-organizer/internal/models"
)

// Format is an export encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, YAML, CSV:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", models.ErrValidation, s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case YAML:
		return "application/yaml"
	case CSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// Filename returns the download name for an export taken at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("organizer_export_%s.%s", t.UTC().Format("20060102T150405Z"), f)
}

// Write encodes snap to w in format f.
func Write(w io.Writer, f Format, snap *models.Snapshot) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	case CSV:
		return writeCSV(w, snap)
	}
	return fmt.Errorf("%w: unknown export format %q", models.ErrValidation, f)
}

// ReadJSON decodes a JSON export.
func ReadJSON(r io.Reader) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &snap, nil
}

var csvHeader = []string{"ID", "Name", "Details", "Due Date", "Priority", "Done", "Folders", "Created At", "Updated At"}

func writeCSV(w io.Writer, snap *models.Snapshot) error {
	folders := make(map[string]*models.Folder, len(snap.Folders))
	for _, f := range snap.Folders {
		folders[f.ID] = f
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range snap.Tasks {
		paths := make([]string, 0, len(t.FolderIDs))
		for _, fid := range t.FolderIDs {
			paths = append(paths, folderPath(folders, fid))
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format(time.RFC3339)
		}
		details := ""
		if t.Details != nil {
			details = *t.Details
		}
		if err := writer.Write([]string{
			t.ID,
			t.Name,
			details,
			due,
			string(t.Priority),
			fmt.Sprint(t.IsDone),
			strings.Join(paths, "; "),
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.UpdatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("failed to write CSV data: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// folderPath renders "Root/School/Math" for a folder id.
func folderPath(folders map[string]*models.Folder, id string) string {
	var names []string
	seen := make(map[string]bool)
	for cur := id; cur != "" && !seen[cur]; {
		seen[cur] = true
		f, ok := folders[cur]
		if !ok {
			break
		}
		names = append([]string{f.Name}, names...)
		if f.ParentID == nil {
			break
		}
		cur = *f.ParentID
	}
	return strings.Join(names, "/")
}
