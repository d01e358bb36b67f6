package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	genai "google.golang.org/genai"

	"github.com/Aditi-179/Docify/doc"
	"github.com/Aditi-179/Docify/extract"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoSections is returned when the model reply holds no usable sections.
var ErrNoSections = errors.New("generate: reply contains no sections")

// Gemini generates documents with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
	now    func() time.Time

	// complete sends one user turn and returns the reply text.
	complete func(ctx context.Context, text string) (string, error)
}

// NewGemini connects to the Gemini API with apiKey.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("generate: missing API key")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("generate: create client: %w", err)
	}
	g := &Gemini{client: c, model: model, logger: logger, now: time.Now}
	g.complete = g.prompt
	return g, nil
}

func (g *Gemini) prompt(ctx context.Context, text string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

type reply struct {
	Title    string `json:"title"`
	Sections []struct {
		Heading string `json:"heading"`
		Content string `json:"content"`
		Level   int    `json:"level"`
	} `json:"sections"`
}

func (g *Gemini) Generate(ctx context.Context, in doc.Input) (*doc.GeneratedDocument, error) {
	if !in.Valid() {
		return nil, fmt.Errorf("generate: input for %s is incomplete", in.Mode)
	}
	p, err := buildPrompt(in)
	if err != nil {
		return nil, err
	}
	out, err := g.complete(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("generate: gemini call failed: %w", err)
	}
	g.logger.Debug("gemini reply", zap.String("mode", string(in.Mode)), zap.Int("bytes", len(out)))

	r, err := parseReply(out)
	if err != nil {
		return nil, err
	}
	sections := make([]doc.Section, 0, len(r.Sections))
	for _, s := range r.Sections {
		if strings.TrimSpace(s.Heading) == "" && strings.TrimSpace(s.Content) == "" {
			continue
		}
		level := s.Level
		if level < 1 {
			level = 1
		}
		sections = append(sections, doc.Section{
			ID:      strconv.Itoa(len(sections) + 1),
			Heading: strings.TrimSpace(s.Heading),
			Content: strings.TrimSpace(s.Content),
			Level:   level,
		})
	}
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = Title(in)
	}
	return doc.NewDocument(title, sections, g.now()), nil
}

func (g *Gemini) Regenerate(ctx context.Context, text string) (string, error) {
	p := "Rewrite the following passage so it reads more clearly. Keep its meaning, language and line breaks. Return ONLY the rewritten passage with no commentary.\n\n" + text
	out, err := g.complete(ctx, p)
	if err != nil {
		return "", fmt.Errorf("generate: gemini call failed: %w", err)
	}
	out = stripCodeFences(out)
	if out == "" {
		return "", errors.New("generate: empty rewrite")
	}
	return out, nil
}

const replySchema = `Return ONLY valid JSON - no markdown code blocks, no explanations:
{
  "title": "Short document title",
  "sections": [
    {"heading": "Section heading", "content": "Plain text body. Use \"- \" at the start of a line for list items.", "level": 1}
  ]
}`

var instructions = map[string]string{
	"PROMPT_TO_DOC": "You are a technical writer. Write a complete, well structured document about the request below.",
	"TEXT_TO_DOC":   "You are an editor. Organize the raw notes below into a structured document without inventing facts.",
	"DOC_TO_DOC":    "You are an editor. Restructure the extracted document below into clear sections, keeping its content.",
	"REFORMATTER":   "You are an editor. Reformat the SOURCE document so it follows the structure of the FORMAT document exactly. Do not add or remove content.",
}

func buildPrompt(in doc.Input) (string, error) {
	f, ok := doc.FeatureFor(in.Mode)
	if !ok {
		return "", fmt.Errorf("generate: unknown mode %q", in.Mode)
	}
	var b strings.Builder
	b.WriteString(instructions[f.PromptKey])
	b.WriteString("\n\n")
	b.WriteString(replySchema)
	b.WriteString("\n\n")

	switch in.Mode {
	case doc.ModePromptToDoc:
		b.WriteString("REQUEST:\n")
		b.WriteString(strings.TrimSpace(in.PromptText))
	case doc.ModeTextToDoc:
		b.WriteString("NOTES:\n")
		b.WriteString(strings.TrimSpace(in.RawText))
	case doc.ModeDocToDoc:
		text, err := extract.Text(in.UploadedFile)
		if err != nil {
			return "", err
		}
		b.WriteString("DOCUMENT:\n")
		b.WriteString(text)
	case doc.ModeReformatter:
		source, err := extract.Text(in.SourceFile)
		if err != nil {
			return "", err
		}
		format, err := extract.Text(in.FormatFile)
		if err != nil {
			return "", err
		}
		b.WriteString("SOURCE:\n")
		b.WriteString(source)
		b.WriteString("\n\nFORMAT:\n")
		b.WriteString(format)
		if extract.Detect(in.FormatFile) == extract.FormatMarkdown {
			writeHeadings(&b, extract.Outline(in.FormatFile.Data))
		}
	}
	return b.String(), nil
}

// writeHeadings pins the reply to the template's section headings.
func writeHeadings(b *strings.Builder, sections []doc.Section) {
	var headings []string
	for _, s := range sections {
		if s.Heading != "" {
			headings = append(headings, s.Heading)
		}
	}
	if len(headings) == 0 {
		return
	}
	b.WriteString("\n\nUse exactly these section headings, in this order:\n")
	for _, h := range headings {
		b.WriteString("- ")
		b.WriteString(h)
		b.WriteString("\n")
	}
}

func parseReply(s string) (reply, error) {
	var r reply
	js := stripCodeFences(s)
	if err := json.Unmarshal([]byte(js), &r); err != nil {
		obj := findFirstJSON(js)
		if obj == "" {
			return r, fmt.Errorf("generate: no JSON in reply: %w", err)
		}
		if err2 := json.Unmarshal([]byte(obj), &r); err2 != nil {
			return r, fmt.Errorf("generate: parse reply: %w (original error: %v)", err2, err)
		}
	}
	return r, nil
}

// stripCodeFences removes a surrounding ``` fence, with or without a
// language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// findFirstJSON returns the first balanced {...} object in s. Braces inside
// JSON strings are skipped.
func findFirstJSON(s string) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
