package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aditi-179/Docify/doc"
)

// fakeGemini returns a Gemini whose model calls are answered by reply.
func fakeGemini(reply string, err error) (*Gemini, *string) {
	var sent string
	g := &Gemini{
		model:  DefaultModel,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Unix(1700000000, 0) },
	}
	g.complete = func(_ context.Context, text string) (string, error) {
		sent = text
		return reply, err
	}
	return g, &sent
}

func TestGemini_Generate(t *testing.T) {
	reply := "```json\n" + `{"title": "Tides", "sections": [
		{"heading": "Overview", "content": "Tides rise and fall.", "level": 1},
		{"heading": "", "content": "", "level": 1},
		{"heading": "Causes", "content": "- the moon\n- the sun", "level": 0}
	]}` + "\n```"
	g, sent := fakeGemini(reply, nil)

	d, err := g.Generate(context.Background(), doc.Input{Mode: doc.ModePromptToDoc, PromptText: "Explain ocean tides please"})
	require.NoError(t, err)
	assert.Equal(t, "Tides", d.Title)
	require.Len(t, d.Sections, 2)
	assert.Equal(t, "2", d.Sections[1].ID)
	assert.Equal(t, 1, d.Sections[1].Level)
	assert.Equal(t, "## Overview\n\nTides rise and fall.\n\n## Causes\n\n- the moon\n- the sun", d.Content)
	assert.Contains(t, *sent, "Explain ocean tides please")
}

func TestGemini_Generate_FallbackTitle(t *testing.T) {
	g, _ := fakeGemini(`Sure! Here it is: {"sections": [{"heading": "A {b}", "content": "c", "level": 1}]} Enjoy.`, nil)

	d, err := g.Generate(context.Background(), doc.Input{Mode: doc.ModeTextToDoc, RawText: "some notes that are long enough"})
	require.NoError(t, err)
	assert.Equal(t, "Structured Document", d.Title)
	assert.Equal(t, "A {b}", d.Sections[0].Heading)
}

func TestGemini_Generate_Errors(t *testing.T) {
	valid := doc.Input{Mode: doc.ModeTextToDoc, RawText: "some notes that are long enough"}

	g, _ := fakeGemini("", errors.New("quota"))
	_, err := g.Generate(context.Background(), valid)
	assert.ErrorContains(t, err, "quota")

	g, _ = fakeGemini("no json here", nil)
	_, err = g.Generate(context.Background(), valid)
	assert.Error(t, err)

	g, _ = fakeGemini(`{"title": "x", "sections": []}`, nil)
	_, err = g.Generate(context.Background(), valid)
	assert.ErrorIs(t, err, ErrNoSections)

	_, err = g.Generate(context.Background(), doc.Input{Mode: doc.ModeTextToDoc, RawText: "short"})
	assert.Error(t, err)
}

func TestGemini_ReformatterPrompt(t *testing.T) {
	g, sent := fakeGemini(`{"sections": [{"heading": "Scope", "content": "x", "level": 1}]}`, nil)
	in := doc.Input{
		Mode:       doc.ModeReformatter,
		SourceFile: &doc.File{Name: "notes.txt", Data: []byte("raw source text")},
		FormatFile: &doc.File{Name: "template.md", Data: []byte("# Scope\n\nwhat\n\n# Risks\n\nwhy\n")},
	}

	_, err := g.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, *sent, "SOURCE:\nraw source text")
	assert.Contains(t, *sent, "- Scope\n- Risks\n")
}

func TestGemini_Regenerate(t *testing.T) {
	g, sent := fakeGemini("```\nA clearer passage.\n```", nil)
	out, err := g.Regenerate(context.Background(), "a passage")
	require.NoError(t, err)
	assert.Equal(t, "A clearer passage.", out)
	assert.Contains(t, *sent, "a passage")

	g, _ = fakeGemini("   ", nil)
	_, err = g.Regenerate(context.Background(), "a passage")
	assert.Error(t, err)
}

func TestNewGemini_MissingKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "", nil)
	assert.Error(t, err)
}

func TestFindFirstJSON(t *testing.T) {
	assert.Equal(t, `{"a": "}"}`, findFirstJSON(`x {"a": "}"} y`))
	assert.Equal(t, `{"a": {"b": 1}}`, findFirstJSON(`{"a": {"b": 1}} {"c": 2}`))
	assert.Equal(t, "", findFirstJSON("none"))
}
