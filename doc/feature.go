package doc

// Feature describes one workflow as presented to the user, together with the
// generation service it targets.
type Feature struct {
	Mode        Mode   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder,omitempty"`
	HelperText  string `json:"helperText,omitempty"`
	Endpoint    string `json:"endpoint"`
	PromptKey   string `json:"promptKey"`
}

var features = map[Mode]Feature{
	ModePromptToDoc: {
		Mode:        ModePromptToDoc,
		Title:       "Prompt to Doc",
		Description: "Transform your ideas into structured documents with AI research",
		Placeholder: "Describe what you want to create...",
		HelperText:  "Our AI will research your topic and generate a well-structured document",
		Endpoint:    "/api/generate/prompt",
		PromptKey:   "PROMPT_TO_DOC",
	},
	ModeTextToDoc: {
		Mode:        ModeTextToDoc,
		Title:       "Text to Doc",
		Description: "Convert messy notes into polished, organized documents",
		Placeholder: "Paste your unstructured text here...",
		HelperText:  "We'll organize and structure your content into a clean document",
		Endpoint:    "/api/generate/text",
		PromptKey:   "TEXT_TO_DOC",
	},
	ModeDocToDoc: {
		Mode:        ModeDocToDoc,
		Title:       "Doc to Doc",
		Description: "Extract insights and summaries from uploaded documents",
		HelperText:  "Upload a PDF, Markdown, or text file to extract and restructure its content",
		Endpoint:    "/api/generate/document",
		PromptKey:   "DOC_TO_DOC",
	},
	ModeReformatter: {
		Mode:        ModeReformatter,
		Title:       "Reformatter",
		Description: "Strictly reformat content using a template document",
		HelperText:  "Content will be reformatted exactly to match your template structure. No content will be added or removed.",
		Endpoint:    "/api/generate/reformat",
		PromptKey:   "REFORMATTER",
	},
}

// FeatureFor returns the catalogue entry of mode.
func FeatureFor(mode Mode) (Feature, bool) {
	f, ok := features[mode]
	return f, ok
}

// Features returns the catalogue in presentation order.
func Features() []Feature {
	out := make([]Feature, 0, len(Modes))
	for _, m := range Modes {
		out = append(out, features[m])
	}
	return out
}
