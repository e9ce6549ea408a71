package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or markdown)", s)
	}
}

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	width  int
	pretty bool
	styled bool
	theme  string
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithWidth sets the wrap width for text and styled markdown. Values below 20
// are ignored.
func WithWidth(width int) Option {
	return func(f *Formatter) {
		if width >= 20 {
			f.width = width
		}
	}
}

// WithPretty indents JSON output.
func WithPretty(pretty bool) Option {
	return func(f *Formatter) { f.pretty = pretty }
}

// WithStyled renders markdown through glamour using theme ("dark", "light",
// "notty"...).
func WithStyled(styled bool, theme string) Option {
	return func(f *Formatter) {
		f.styled = styled
		f.theme = theme
	}
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, opts ...Option) *Formatter {
	f := &Formatter{writer: writer, width: 80, theme: "dark"}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatRecipe writes dto in format.
func (f *Formatter) FormatRecipe(dto RecipeDTO, format string) error {
	switch format {
	case FormatJSON:
		return f.FormatJSON(dto)
	case FormatMarkdown:
		md := Markdown(dto)
		if f.styled {
			rendered, err := f.renderMarkdown(md)
			if err != nil {
				return err
			}
			md = rendered
		}
		_, err := io.WriteString(f.writer, md)
		return err
	case FormatText, "":
		_, err := io.WriteString(f.writer, f.Text(dto))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// FormatJSON encodes v, indented when the formatter is pretty.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	if f.pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// FormatTechniques writes a key/name/labels table.
func (f *Formatter) FormatTechniques(ts []TechniqueDTO) error {
	rows := make([][]string, len(ts))
	for i, t := range ts {
		source := ""
		if t.Source != "built-in" {
			source = "(" + t.Source + ")"
		}
		rows[i] = []string{t.Key, t.Name, strings.Join(t.Labels, ","), source}
	}
	_, err := io.WriteString(f.writer, table(rows, 2))
	return err
}

// FormatStoredRecipes writes an id/name/updated table.
func (f *Formatter) FormatStoredRecipes(rs []StoredRecipeDTO) error {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{r.ID, r.Name, r.Author, r.UpdatedAt.Format("2006-01-02 15:04")}
	}
	_, err := io.WriteString(f.writer, table(rows, 2))
	return err
}

// Text lays out the recipe for a terminal.
func (f *Formatter) Text(dto RecipeDTO) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(dto.Name))
	b.WriteString("\n")
	if dto.Author != "" {
		b.WriteString("by " + dto.Author + "\n")
	}
	if dto.Description != "" {
		b.WriteString("\n" + wordwrap.String(dto.Description, f.width) + "\n")
	}

	if len(dto.Ingredients) > 0 {
		b.WriteString("\n" + headingStyle.Render("Ingredients") + "\n")
		rows := make([][]string, len(dto.Ingredients))
		for i, e := range dto.Ingredients {
			rows[i] = []string{e.Name, e.Amount}
		}
		b.WriteString(indent.String(table(rows, 2), 2))
	}

	if len(dto.Equipment) > 0 {
		b.WriteString("\n" + headingStyle.Render("Equipment") + "\n")
		for _, e := range dto.Equipment {
			b.WriteString("  - " + e.Name + "\n")
		}
	}

	if len(dto.Steps) > 0 {
		b.WriteString("\n" + headingStyle.Render("Method") + "\n")
		for _, s := range dto.Steps {
			b.WriteString(f.step(s))
		}
	}

	if len(dto.Warnings) > 0 || len(dto.Unresolved) > 0 {
		b.WriteString("\n" + headingStyle.Render("Warnings") + "\n")
		for _, w := range dto.Warnings {
			b.WriteString(warnStyle.Render("  ! "+w) + "\n")
		}
		for _, u := range dto.Unresolved {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  ? step %d: %s %q did not resolve", u.Step, u.Field, u.Value)) + "\n")
		}
	}

	return b.String()
}

// step numbers and wraps one instruction; continuation lines hang under the
// text.
func (f *Formatter) step(s StepDTO) string {
	prefix := fmt.Sprintf("  %d. ", s.Number)
	pad := runewidth.StringWidth(prefix)

	text := s.Text
	if s.Error != "" {
		text = "[" + s.Error + "]"
	}
	lines := strings.SplitN(wordwrap.String(text, f.width-pad), "\n", 2)

	out := prefix + lines[0] + "\n"
	if len(lines) > 1 {
		out += indent.String(lines[1], uint(pad)) + "\n"
	}
	if s.Error != "" {
		return errStyle.Render(strings.TrimSuffix(out, "\n")) + "\n"
	}
	return out
}

// Markdown renders dto as a markdown document.
func Markdown(dto RecipeDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", dto.Name)
	if dto.Author != "" {
		fmt.Fprintf(&b, "*by %s*\n\n", dto.Author)
	}
	if dto.Description != "" {
		b.WriteString(dto.Description + "\n\n")
	}

	if len(dto.Ingredients) > 0 {
		b.WriteString("## Ingredients\n\n")
		for _, e := range dto.Ingredients {
			if e.Amount != "" {
				fmt.Fprintf(&b, "- %s %s\n", e.Amount, e.Name)
			} else {
				fmt.Fprintf(&b, "- %s\n", e.Name)
			}
		}
		b.WriteString("\n")
	}

	if len(dto.Equipment) > 0 {
		b.WriteString("## Equipment\n\n")
		for _, e := range dto.Equipment {
			fmt.Fprintf(&b, "- %s\n", e.Name)
		}
		b.WriteString("\n")
	}

	if len(dto.Steps) > 0 {
		b.WriteString("## Method\n\n")
		for _, s := range dto.Steps {
			if s.Error != "" {
				fmt.Fprintf(&b, "%d. *%s*\n", s.Number, s.Error)
				continue
			}
			fmt.Fprintf(&b, "%d. %s\n", s.Number, s.Text)
		}
		b.WriteString("\n")
	}

	for _, w := range dto.Warnings {
		fmt.Fprintf(&b, "> **Warning:** %s\n\n", w)
	}
	return b.String()
}

func (f *Formatter) renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(f.theme),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(f.width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}

// table aligns columns by display width. Trailing empty cells are dropped.
func table(rows [][]string, gap int) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]+gap))
		}
		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}
	return b.String()
}
