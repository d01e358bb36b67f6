package doc

// Page limits for the editor canvas.
const (
	MinPages     = 1
	MaxPages     = 20
	CharsPerPage = 3000
)

// DefaultFontFamily is the canvas font used until the user picks another.
const DefaultFontFamily = "Plus Jakarta Sans"

// FontFamilies lists the families offered by the editor toolbar.
var FontFamilies = []FontFamily{
	{Value: "Plus Jakarta Sans", Label: "Sans (Default)"},
	{Value: "Times New Roman", Label: "Times New Roman"},
	{Value: "Georgia", Label: "Georgia"},
	{Value: "Arial", Label: "Arial"},
	{Value: "Courier New", Label: "Courier New"},
}

// FontSizes lists the pixel sizes offered by the editor toolbar.
var FontSizes = []int{12, 14, 16, 18, 20, 24, 28, 32}

type FontFamily struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// EditorSettings holds the canvas defaults of one editing session.
type EditorSettings struct {
	FontFamily string `json:"fontFamily"`
	FontSize   int    `json:"fontSize"`
	PageCount  int    `json:"pageCount"`
}

func DefaultSettings() EditorSettings {
	return EditorSettings{
		FontFamily: DefaultFontFamily,
		FontSize:   16,
		PageCount:  1,
	}
}

// ClampPages limits n to [MinPages, MaxPages].
func ClampPages(n int) int {
	return max(MinPages, min(MaxPages, n))
}

// PagesForContent approximates the number of A4 pages needed for content,
// one page per CharsPerPage characters and never fewer than one.
func PagesForContent(content string) int {
	n := runeLen(content)
	return max(MinPages, (n+CharsPerPage-1)/CharsPerPage)
}
