package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"slideforge/export"
)

// GenerateRequest describes a presentation to be drafted by the LLM.
type GenerateRequest struct {
	Topic      string `json:"topic"`
	SlideCount int    `json:"slideCount"`
	Audience   string `json:"audience"`
	Style      string `json:"style"`
	Language   string `json:"language"`
	Extra      string `json:"extra"`
}

const generatorSystemPrompt = "You are a presentation expert. Respond with valid JSON only, no prose before or after the JSON object."

// PresentationGenerator turns a topic into a structured Presentation via the
// configured LLM, with layered recovery for malformed model output.
type PresentationGenerator struct {
	llm *LLMService
	log func(string)
}

func NewPresentationGenerator(llm *LLMService, log func(string)) *PresentationGenerator {
	if log == nil {
		log = func(string) {}
	}
	return &PresentationGenerator{llm: llm, log: log}
}

// Generate asks the model for slide content and parses the reply. When the
// model output cannot be recovered into JSON, a minimal outline presentation
// is returned instead of an error so callers always get something exportable.
func (g *PresentationGenerator) Generate(ctx context.Context, req GenerateRequest) (*export.Presentation, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if req.SlideCount <= 0 {
		req.SlideCount = 5
	}

	reply, err := g.llm.Complete(ctx, generatorSystemPrompt, buildGeneratorPrompt(req), g.llm.MaxTokens)
	if err != nil {
		return nil, WrapError("PresentationGenerator", "Generate", err)
	}

	pres := g.parsePresentation(reply)
	if pres == nil {
		g.log("generator: model reply was not recoverable JSON, using outline fallback")
		pres = fallbackPresentation(req)
	}
	pres.CreatedAt = time.Now()
	if pres.Title == "" {
		pres.Title = req.Topic
	}
	return pres, nil
}

// GenerateSlideContent regenerates the bullet content of a single slide,
// keeping the rest of the deck untouched. Returns the new bullet lines.
func (g *PresentationGenerator) GenerateSlideContent(ctx context.Context, topic, slideTitle string) ([]string, error) {
	if slideTitle == "" {
		return nil, fmt.Errorf("slide title is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write the content for one presentation slide titled %q.\n", slideTitle)
	if topic != "" {
		fmt.Fprintf(&b, "The presentation is about: %s\n", topic)
	}
	b.WriteString(`Return a JSON object with this shape:
{"content": ["point 1", "point 2", "point 3"]}
Each point is one short bullet string.`)

	reply, err := g.llm.Complete(ctx, generatorSystemPrompt, b.String(), g.llm.MaxTokens)
	if err != nil {
		return nil, WrapError("PresentationGenerator", "GenerateSlideContent", err)
	}

	lines := g.parseSlideContent(reply)
	if len(lines) == 0 {
		g.log("generator: slide content reply was not recoverable JSON, using title fallback")
		lines = []string{slideTitle}
	}
	return lines, nil
}

func (g *PresentationGenerator) parseSlideContent(reply string) []string {
	for _, candidate := range jsonCandidates(reply) {
		if lines := decodeSlideContent(candidate); len(lines) > 0 {
			return lines
		}
		if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
			if lines := decodeSlideContent(repaired); len(lines) > 0 {
				return lines
			}
		}
	}
	return nil
}

func decodeSlideContent(s string) []string {
	var raw struct {
		Content []string `json:"content"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	var lines []string
	for _, l := range raw.Content {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

func buildGeneratorPrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-slide presentation about: %s\n", req.SlideCount, req.Topic)
	if req.Audience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", req.Audience)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "Style: %s\n", req.Style)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, "Write all text in %s.\n", req.Language)
	}
	if req.Extra != "" {
		fmt.Fprintf(&b, "Additional requirements: %s\n", req.Extra)
	}
	b.WriteString(`Return a JSON object with this shape:
{"title": "...", "slides": [{"title": "...", "content": ["point 1", "point 2"], "speakerNotes": "..."}]}
Each slide's content is an array of short bullet strings.`)
	return b.String()
}

// parsePresentation tries progressively more forgiving extraction strategies
// over the raw model reply.
func (g *PresentationGenerator) parsePresentation(reply string) *export.Presentation {
	for _, candidate := range jsonCandidates(reply) {
		if p := decodePresentation(candidate); p != nil {
			return p
		}
		if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
			if p := decodePresentation(repaired); p != nil {
				return p
			}
		}
	}
	return nil
}

// jsonCandidates yields substrings of the reply likely to contain the JSON
// payload: the reply itself, a fenced code block, and the outermost braces.
func jsonCandidates(reply string) []string {
	out := []string{strings.TrimSpace(reply)}

	if start := strings.Index(reply, "```json"); start >= 0 {
		rest := reply[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			out = append(out, strings.TrimSpace(rest[:end]))
		}
	} else if start := strings.Index(reply, "```"); start >= 0 {
		rest := reply[start+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			out = append(out, strings.TrimSpace(rest[:end]))
		}
	}

	first := strings.Index(reply, "{")
	last := strings.LastIndex(reply, "}")
	if first >= 0 && last > first {
		out = append(out, reply[first:last+1])
	}
	return out
}

func decodePresentation(s string) *export.Presentation {
	var raw struct {
		Title  string `json:"title"`
		Slides []struct {
			Title        string      `json:"title"`
			Content      interface{} `json:"content"`
			SpeakerNotes string      `json:"speakerNotes"`
		} `json:"slides"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	if len(raw.Slides) == 0 {
		return nil
	}

	pres := &export.Presentation{Title: raw.Title}
	for i, s := range raw.Slides {
		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Slide %d", i+1)
		}
		pres.Slides = append(pres.Slides, export.Slide{
			Title:        title,
			Content:      s.Content,
			Layout:       "content",
			SpeakerNotes: s.SpeakerNotes,
		})
	}
	return pres
}

// fallbackPresentation builds a bare outline so generation never returns an
// empty deck when the model misbehaves.
func fallbackPresentation(req GenerateRequest) *export.Presentation {
	pres := &export.Presentation{Title: req.Topic}
	pres.Slides = append(pres.Slides, export.Slide{
		Title:   req.Topic,
		Content: []string{"Overview"},
		Layout:  "content",
	})
	for i := 2; i <= req.SlideCount; i++ {
		pres.Slides = append(pres.Slides, export.Slide{
			Title:   fmt.Sprintf("Section %d", i-1),
			Content: []string{"Key point"},
			Layout:  "content",
		})
	}
	return pres
}
