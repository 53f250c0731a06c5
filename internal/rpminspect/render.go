package rpminspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// RenderText writes a human readable report of s.
func RenderText(w io.Writer, s *Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Package:\t%s\n", s.NEVRA())
	fmt.Fprintf(tw, "File:\t%s\n", s.Path)
	fmt.Fprintf(tw, "License:\t%s\n", s.License)
	fmt.Fprintf(tw, "Summary:\t%s\n", s.Summary)
	for _, kv := range [][2]string{
		{"Vendor", s.Vendor},
		{"URL", s.URL},
		{"VCS", s.VCS},
		{"Group", s.Group},
	} {
		if kv[1] != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintf(tw, "Compressor:\t%s\n", s.Compressor)
	for _, rel := range []struct {
		label string
		names []string
	}{
		{"Requires", s.Requires},
		{"Provides", s.Provides},
		{"Conflicts", s.Conflicts},
		{"Obsoletes", s.Obsoletes},
	} {
		if len(rel.names) > 0 {
			fmt.Fprintf(tw, "%s:\t%s\n", rel.label, strings.Join(rel.names, ", "))
		}
	}
	if len(s.Signers) > 0 {
		fmt.Fprintf(tw, "Signed by:\t%s\n", strings.Join(s.Signers, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Files (%d):\n", len(s.Files))
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range s.Files {
		if f.Link != "" {
			fmt.Fprintf(tw, "  %s\t%d\t%s -> %s\n", f.Mode, f.Size, f.Path, f.Link)
			continue
		}
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", f.Mode, f.Size, f.Path)
	}
	return tw.Flush()
}

// RenderJSON writes summaries as an indented JSON array.
func RenderJSON(w io.Writer, summaries []*Summary) error {
	b, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
