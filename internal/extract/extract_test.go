package extract_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashgen/internal/extract"
)

func TestText_Plain(t *testing.T) {
	in := "\xEF\xBB\xBFCells are the basic unit of life.\r\nThey divide by mitosis.\r\n"

	got, err := extract.Text("notes.TXT", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Cells are the basic unit of life.\nThey divide by mitosis.", got)
}

func TestText_Markdown(t *testing.T) {
	in := "# Cell biology\n\n" +
		"Cells are the **basic unit** of life.\nThey divide by mitosis.\n\n" +
		"- Nucleus holds DNA\n- Ribosomes build proteins\n\n" +
		"```go\nfmt.Println(\"ignored\")\n```\n\n" +
		"> Quoted insight about membranes.\n"

	got, err := extract.Text("cells.md", strings.NewReader(in))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Cell biology",
		"Cells are the basic unit of life. They divide by mitosis.",
		"Nucleus holds DNA",
		"Ribosomes build proteins",
		"Quoted insight about membranes.",
	}, "\n\n")
	assert.Equal(t, want, got)
}

func TestText_HTML(t *testing.T) {
	in := `<!doctype html>
<html><head><title>Cells</title><style>p { color: red }</style></head>
<body>
  <nav><a href="/">Home</a></nav>
  <h1>Cell biology</h1>
  <p>Cells are the <b>basic unit</b> of life.<br>They divide.</p>
  <script>alert("nope")</script>
  <ul><li>Nucleus</li><li>Ribosome</li></ul>
  <footer>Copyright</footer>
</body></html>`

	got, err := extract.Text("page.html", strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, "Cell biology\n\nCells are the basic unit of life. They divide.\n\nNucleus\n\nRibosome", got)
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "Home")
	assert.NotContains(t, got, "Copyright")
	assert.NotContains(t, got, "color")
}

func TestText_DOCX(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Photosynthesis happens in chloroplasts.")
	doc.AddParagraph()
	doc.AddParagraph().AddText("It produces glucose and oxygen.")

	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)

	got, err := extract.Text("bio.docx", &buf)
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis happens in chloroplasts.\n\nIt produces glucose and oxygen.", got)
}

func TestText_MalformedDocuments(t *testing.T) {
	for _, name := range []string{"broken.pdf", "broken.docx"} {
		t.Run(name, func(t *testing.T) {
			_, err := extract.Text(name, strings.NewReader("this is not a real document"))
			assert.Error(t, err)
		})
	}
}

func TestText_Unsupported(t *testing.T) {
	_, err := extract.Text("slides.pptx", strings.NewReader("x"))
	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)

	_, err = extract.Text("README", strings.NewReader("x"))
	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)
}

func TestText_Empty(t *testing.T) {
	_, err := extract.Text("blank.txt", strings.NewReader("  \n\t "))
	assert.ErrorIs(t, err, extract.ErrNoText)

	_, err = extract.Text("blank.html", strings.NewReader("<html><body><script>x()</script></body></html>"))
	assert.ErrorIs(t, err, extract.ErrNoText)
}

func TestSupported(t *testing.T) {
	for _, ext := range extract.Extensions() {
		assert.True(t, extract.Supported("file"+ext), ext)
		assert.True(t, extract.Supported("FILE"+strings.ToUpper(ext)), ext)
	}
	assert.False(t, extract.Supported("file.csv"))
}
