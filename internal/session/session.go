// Package session drives the interactive schema-definition flow: the user
// declares fields one at a time, closes the list with "done", and names a PDF
// to extract from.
package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jackzampolin/skim/internal/schema"
)

// DoneSentinel ends field collection.
const DoneSentinel = "done"

// Builder collects field declarations from an input stream. It is driven by
// io interfaces so tests can script a session.
type Builder struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewBuilder creates a Builder reading from in and prompting on out.
func NewBuilder(in io.Reader, out io.Writer) *Builder {
	return &Builder{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Collect prompts for field declarations until the user enters "done" (or the
// input stream ends). Duplicate names are rejected and re-prompted. The
// returned description preserves entry order.
func (b *Builder) Collect() (schema.Description, error) {
	var desc schema.Description
	seen := make(map[string]struct{})

	for {
		name, ok := b.prompt(fmt.Sprintf("Field name (or %q to finish): ", DoneSentinel))
		if !ok {
			break
		}
		if name == "" {
			continue
		}
		if strings.EqualFold(name, DoneSentinel) {
			break
		}
		if _, dup := seen[name]; dup {
			fmt.Fprintf(b.out, "Field %q already declared, pick another name.\n", name)
			continue
		}

		token, ok := b.prompt("Type (str/int/float/list): ")
		if !ok {
			break
		}

		description, ok := b.prompt("Description (optional): ")
		if !ok {
			description = ""
		}

		seen[name] = struct{}{}
		desc = append(desc, schema.Entry{
			Name:        name,
			Kind:        schema.EntryScalar,
			Token:       token,
			Description: description,
		})
	}

	if err := b.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session input: %w", err)
	}
	return desc, nil
}

// PDFPath prompts for the path of the PDF to extract from. Returns false if
// the input stream ended before a non-empty path was entered.
func (b *Builder) PDFPath() (string, bool) {
	for {
		path, ok := b.prompt("Path to PDF: ")
		if !ok {
			return "", false
		}
		if path != "" {
			return path, true
		}
	}
}

// prompt writes a prompt and reads one trimmed line. ok is false when the
// input stream is exhausted.
func (b *Builder) prompt(text string) (string, bool) {
	fmt.Fprint(b.out, text)
	if !b.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(b.scanner.Text()), true
}
