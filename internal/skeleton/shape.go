package skeleton

import (
	"fmt"
	"strings"
)

// Variant selects the placeholder layout.
type Variant int

// Placeholder variants.
const (
	VariantCard Variant = iota
	VariantList
	VariantTable
	VariantForm
	VariantCustom
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantCard:
		return "card"
	case VariantList:
		return "list"
	case VariantTable:
		return "table"
	case VariantForm:
		return "form"
	case VariantCustom:
		return "custom"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant converts a variant name into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card", "cards":
		return VariantCard, nil
	case "list":
		return VariantList, nil
	case "table":
		return VariantTable, nil
	case "form":
		return VariantForm, nil
	case "custom":
		return VariantCustom, nil
	default:
		return VariantCard, fmt.Errorf("unknown skeleton variant %q", s)
	}
}

// Layout defaults.
const (
	DefaultCount   = 3
	DefaultColumns = 4
	DefaultRows    = 5
	DefaultWidth   = 60

	cardWidth   = 24
	cardGap     = 2
	avatarWidth = 2
	labelWidth  = 12
	inputWidth  = 40
)

// Kind distinguishes how a block is drawn.
type Kind int

// Block kinds.
const (
	KindText Kind = iota
	KindTitle
	KindAvatar
	KindInput
)

// Block is one placeholder bar. Indent is the blank space before it.
type Block struct {
	Kind   Kind
	Indent int
	Width  int
}

// Shape is a placeholder layout: optional header blocks followed by body lines.
type Shape struct {
	Header []Block
	Lines  [][]Block
}

// HeaderCount returns the number of header blocks.
func (s Shape) HeaderCount() int { return len(s.Header) }

// BodyCount returns the number of blocks across all body lines.
func (s Shape) BodyCount() int {
	n := 0
	for _, line := range s.Lines {
		n += len(line)
	}
	return n
}

// Height returns the rendered height in rows.
func (s Shape) Height() int {
	h := len(s.Lines)
	if len(s.Header) > 0 {
		h++
	}
	return h
}

// Options configures a placeholder.
type Options struct {
	Variant Variant
	// Count repeats cards, list rows and form fields.
	Count int
	// Columns and Rows size the table variant.
	Columns int
	Rows    int
	// Width is the available width in cells.
	Width int
	// Animate enables the shimmer. It never changes the shape.
	Animate bool
	// Custom builds the shape for VariantCustom.
	Custom func(width int) Shape
}

func (o Options) withDefaults() Options {
	if o.Count <= 0 {
		o.Count = DefaultCount
	}
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.Rows <= 0 {
		o.Rows = DefaultRows
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	return o
}

// Build returns the placeholder layout for opts.
func Build(opts Options) Shape {
	opts = opts.withDefaults()
	switch opts.Variant {
	case VariantList:
		return buildList(opts)
	case VariantTable:
		return buildTable(opts)
	case VariantForm:
		return buildForm(opts)
	case VariantCustom:
		if opts.Custom == nil {
			return Shape{}
		}
		return opts.Custom(opts.Width)
	default:
		return buildCards(opts)
	}
}

func buildCards(opts Options) Shape {
	perRow := max(1, (opts.Width+cardGap)/(cardWidth+cardGap))
	w := min(cardWidth, opts.Width)

	var s Shape
	for first := 0; first < opts.Count; first += perRow {
		n := min(perRow, opts.Count-first)
		title := make([]Block, n)
		line1 := make([]Block, n)
		line2 := make([]Block, n)
		for i := range n {
			indent := 0
			if i > 0 {
				indent = cardGap
			}
			title[i] = Block{Kind: KindTitle, Indent: indent, Width: w * 2 / 3} //nolint:mnd // Title spans two thirds.
			line1[i] = Block{Kind: KindText, Indent: indent, Width: w}
			line2[i] = Block{Kind: KindText, Indent: indent, Width: w * 4 / 5} //nolint:mnd // Ragged last line.
			// Pad short blocks so following cards stay column aligned.
			if i > 0 {
				title[i].Indent += w - title[i-1].Width
				line2[i].Indent += w - line2[i-1].Width
			}
		}
		if first > 0 {
			s.Lines = append(s.Lines, nil)
		}
		s.Lines = append(s.Lines, title, line1, line2)
	}
	return s
}

func buildList(opts Options) Shape {
	textWidth := max(opts.Width-avatarWidth-1, 1)
	var s Shape
	for range opts.Count {
		s.Lines = append(s.Lines,
			[]Block{
				{Kind: KindAvatar, Width: avatarWidth},
				{Kind: KindTitle, Indent: 1, Width: textWidth / 2}, //nolint:mnd // Name is half width.
			},
			[]Block{
				{Kind: KindAvatar, Width: avatarWidth},
				{Kind: KindText, Indent: 1, Width: textWidth * 3 / 4}, //nolint:mnd // Detail line.
			},
		)
	}
	return s
}

func buildTable(opts Options) Shape {
	colWidth := max((opts.Width-(opts.Columns-1))/opts.Columns, 1)
	row := func(kind Kind) []Block {
		blocks := make([]Block, opts.Columns)
		for i := range blocks {
			indent := 0
			if i > 0 {
				indent = 1
			}
			blocks[i] = Block{Kind: kind, Indent: indent, Width: colWidth}
		}
		return blocks
	}

	s := Shape{Header: row(KindTitle)}
	for range opts.Rows {
		s.Lines = append(s.Lines, row(KindText))
	}
	return s
}

func buildForm(opts Options) Shape {
	w := min(inputWidth, opts.Width)
	var s Shape
	for i := range opts.Count {
		if i > 0 {
			s.Lines = append(s.Lines, nil)
		}
		s.Lines = append(s.Lines,
			[]Block{{Kind: KindTitle, Width: min(labelWidth, w)}},
			[]Block{{Kind: KindInput, Width: w}},
		)
	}
	return s
}
