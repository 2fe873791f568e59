package formatter

import (
	"testing"

	"github.com/futig/visa-interview/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *Document {
	return &Document{
		Sections: []Section{
			{Heading: "Current recommendation", Lines: []string{"B-2 (Tourist Visa)", "Rationale: best match"}},
			{Heading: "Sessions", Lines: []string{"completed, 3 answers"}},
		},
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(testDocument())
	require.NoError(t, err)

	assert.Equal(t, "# Visa Recommendation Report\n"+
		"\n## Current recommendation\n\n- B-2 (Tourist Visa)\n- Rationale: best match\n"+
		"\n## Sessions\n\n- completed, 3 answers\n", string(out))
}

func TestPDFFormatter(t *testing.T) {
	f := NewPDFFormatter()

	out, err := f.Format(testDocument())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, ".pdf", f.FileExtension())
}

func TestFactory(t *testing.T) {
	factory := NewFactory()

	for format, ext := range map[entity.ResultFormat]string{
		entity.FormatMarkdown: ".md",
		entity.FormatPDF:      ".pdf",
		entity.FormatDOCX:     ".docx",
	} {
		f, err := factory.Create(format)
		require.NoError(t, err)
		assert.Equal(t, ext, f.FileExtension())
	}

	_, err := factory.Create("html")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
