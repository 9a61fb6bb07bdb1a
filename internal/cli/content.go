package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/app"
	"github.com/escuriola/edaitorial/internal/fetcher"
	"github.com/escuriola/edaitorial/internal/model"
)

// contentFlags selects the content a command works on: inline text, one
// file, every file matching a glob or pages fetched over HTTP.
type contentFlags struct {
	title       string
	body        string
	file        string
	globs       []string
	fetch       []string
	root        string
	nodeID      string
	url         string
	contentType string
	track       bool
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Content title (overrides the title found in --file)")
	cmd.Flags().StringVarP(&f.body, "body", "b", "", "Content body; may contain HTML")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read content from a Markdown, text or HTML file (- for stdin)")
	cmd.Flags().StringArrayVarP(&f.globs, "glob", "g", nil, "Analyze every file matching a ** glob, relative to --root (repeatable)")
	cmd.Flags().StringArrayVar(&f.fetch, "fetch", nil, "Fetch and analyze the page at URL (repeatable)")
	cmd.Flags().StringVar(&f.root, "root", ".", "Base directory for --glob")
	cmd.Flags().StringVar(&f.nodeID, "node-id", "", "Node ID; records the analysis in the node's history")
	cmd.Flags().StringVar(&f.url, "url", "", "Canonical URL of the content")
	cmd.Flags().StringVar(&f.contentType, "type", "", "Content type passed to the backend (article, page, ...)")
	cmd.Flags().BoolVar(&f.track, "track", false, "With --glob, record each file's analysis using its path as node ID")
}

// contents resolves the flags into one or more content items. stdin backs
// --file -. With --fetch the result is empty: pages are only known once
// fetched.
func (f *contentFlags) contents(stdin io.Reader) ([]model.Content, error) {
	if len(f.fetch) > 0 {
		if f.file != "" || f.body != "" || len(f.globs) > 0 {
			return nil, fmt.Errorf("--fetch cannot be combined with --file, --body or --glob")
		}
		return nil, nil
	}
	if len(f.globs) > 0 {
		if f.file != "" || f.body != "" {
			return nil, fmt.Errorf("--glob cannot be combined with --file or --body")
		}
		return f.globContents()
	}

	var c model.Content
	switch {
	case f.file == "-":
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		c = parseContent("stdin", string(raw))
	case f.file != "":
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.file, err)
		}
		c = parseContent(f.file, string(raw))
	case f.body != "":
		c.Body = f.body
	default:
		return nil, fmt.Errorf("nothing to analyze: use --body, --file, --glob or --fetch")
	}

	if f.title != "" {
		c.Title = f.title
	}
	c.NodeID = f.nodeID
	c.URL = f.url
	c.ContentType = f.contentType
	return []model.Content{c}, nil
}

// fetchContents downloads the --fetch pages. Pages that fail are reported
// on errOut and skipped; it is an error only when none could be fetched.
func (f *contentFlags) fetchContents(ctx context.Context, orch *app.Orchestrator, errOut io.Writer) ([]model.Content, error) {
	out, err := orch.FetchContent(ctx, f.fetch)
	if err != nil {
		if len(out) == 0 {
			return nil, err
		}
		printError(errOut, err.Error())
	}
	for i := range out {
		if f.title != "" && len(f.fetch) == 1 {
			out[i].Title = f.title
		}
		if f.nodeID != "" && len(f.fetch) == 1 {
			out[i].NodeID = f.nodeID
		}
		out[i].ContentType = f.contentType
	}
	return out, nil
}

func (f *contentFlags) globContents() ([]model.Content, error) {
	fsys := os.DirFS(f.root)
	seen := map[string]bool{}
	var matches []string
	for _, pattern := range f.globs {
		found, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}
		for _, m := range found {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %v under %s", f.globs, f.root)
	}
	sort.Strings(matches)

	out := make([]model.Content, 0, len(matches))
	for _, m := range matches {
		raw, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", m, err)
		}
		c := parseContent(m, string(raw))
		if f.track {
			c.NodeID = m
		}
		c.ContentType = f.contentType
		out = append(out, c)
	}
	return out, nil
}

// parseContent splits a document into title and body. HTML documents take
// their title from <title> or the first <h1>; Markdown and text documents
// from a leading "# " heading. The file name is the last resort.
func parseContent(name, raw string) model.Content {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".html" || ext == ".htm" {
		c, _ := fetcher.Extract("", raw, "")
		if c.Title == "" {
			c.Title = titleFromName(name)
		}
		return c
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return model.Content{
				Title: strings.TrimSpace(strings.TrimPrefix(trimmed, "# ")),
				Body:  strings.TrimSpace(strings.Join(lines[i+1:], "\n")),
			}
		}
		break
	}
	return model.Content{Title: titleFromName(name), Body: strings.TrimSpace(raw)}
}

func titleFromName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}
