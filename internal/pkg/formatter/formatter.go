package formatter

import (
	"fmt"

	"github.com/futig/visa-interview/internal/entity"
)

const defaultTitle = "Visa Recommendation Report"

// Document is a titled list of sections, rendered by every formatter the same way
type Document struct {
	Title    string
	Sections []Section
}

type Section struct {
	Heading string
	Lines   []string
}

func (d *Document) title() string {
	if d.Title == "" {
		return defaultTitle
	}
	return d.Title
}

type Formatter interface {
	Format(doc *Document) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidParameter, format)
	}
}
