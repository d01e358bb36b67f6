package generate

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Aditi-179/Docify/doc"
)

// Mock simulates a generation backend: it waits for Delay plus a random
// share of Jitter and returns a fixed set of sections.
type Mock struct {
	Delay  time.Duration
	Jitter time.Duration
	Now    func() time.Time
}

// NewMock returns a mock with the default two to three second latency.
func NewMock() *Mock {
	return &Mock{Delay: 2 * time.Second, Jitter: time.Second}
}

func (m *Mock) Generate(ctx context.Context, in doc.Input) (*doc.GeneratedDocument, error) {
	if err := m.wait(ctx, m.Delay); err != nil {
		return nil, err
	}
	return doc.NewDocument(Title(in), cannedSections(), m.now()), nil
}

func (m *Mock) Regenerate(ctx context.Context, text string) (string, error) {
	if err := m.wait(ctx, m.Delay/2); err != nil {
		return "", err
	}
	return "[Regenerated] " + text, nil
}

func (m *Mock) wait(ctx context.Context, base time.Duration) error {
	d := base
	if m.Jitter > 0 {
		d += rand.N(m.Jitter)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Mock) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func cannedSections() []doc.Section {
	return []doc.Section{
		{
			ID:      "1",
			Heading: "Executive Summary",
			Content: "This document provides a comprehensive overview of the requested topic, synthesizing key information and insights to deliver actionable recommendations.",
			Level:   1,
		},
		{
			ID:      "2",
			Heading: "Introduction",
			Content: "Understanding the context and background is essential for grasping the full scope of this analysis. The following sections delve into the core components and their interconnections.",
			Level:   1,
		},
		{
			ID:      "3",
			Heading: "Key Findings",
			Content: "Our research reveals several critical insights:\n\n• Primary insight with supporting evidence\n• Secondary findings that complement the main thesis\n• Emerging patterns that warrant further investigation",
			Level:   1,
		},
		{
			ID:      "4",
			Heading: "Detailed Analysis",
			Content: "A thorough examination of the subject matter reveals nuanced perspectives. The data suggests multiple pathways forward, each with distinct advantages and considerations.",
			Level:   1,
		},
		{
			ID:      "5",
			Heading: "Recommendations",
			Content: "Based on the analysis presented, we recommend the following strategic actions:\n\n1. Immediate priorities for implementation\n2. Medium-term initiatives for sustainable growth\n3. Long-term vision alignment strategies",
			Level:   1,
		},
		{
			ID:      "6",
			Heading: "Conclusion",
			Content: "This document has outlined the key aspects of the topic, providing a foundation for informed decision-making. The insights presented here should serve as a starting point for deeper exploration.",
			Level:   1,
		},
	}
}
