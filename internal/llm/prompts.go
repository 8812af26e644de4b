package llm

import (
	"bytes"
	"fmt"
	"text/template"
)

// Kind names one fixed prompt.
type Kind string

const (
	KindAnswer           Kind = "answer"
	KindEventDescription Kind = "event_description"
	KindTeamBio          Kind = "team_bio"
	KindTestimonial      Kind = "testimonial"
)

// Prompt is a rendered request for the generator.
type Prompt struct {
	Kind   Kind
	System string
	User   string
}

const systemPrompt = `You write for the website of a Muslim community centre. Be warm, accurate and concise. ` +
	`Reply with plain text only, no markdown headings and no preamble.`

var templates = map[Kind]*template.Template{
	KindAnswer: template.Must(template.New("answer").Parse(
		`A member asked the following question on the community forum.

Question: {{.Question}}

Write a helpful answer a moderator could post as a reply. If the question needs a scholar's ruling, say so and suggest speaking with the imam.`)),
	KindEventDescription: template.Must(template.New("event_description").Parse(
		`Write a short, inviting description for a community event.

Title: {{.Title}}
Type: {{.Type}}{{if .Location}}
Location: {{.Location}}{{end}}

Keep it under 120 words.`)),
	KindTeamBio: template.Must(template.New("team_bio").Parse(
		`Write a short biography for a team member page.

Name: {{.Name}}
Role: {{.Title}}{{if .Notes}}
Notes: {{.Notes}}{{end}}

Write in the third person, under 100 words.`)),
	KindTestimonial: template.Must(template.New("testimonial").Parse(
		`Draft a testimonial a community member could adapt in their own words.

Author: {{.Author}}
About: {{.Topic}}

Keep it sincere and under 80 words.`)),
}

// Render fills the template for kind with vars.
func Render(kind Kind, vars any) (Prompt, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return Prompt{}, fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return Prompt{Kind: kind, System: systemPrompt, User: buf.String()}, nil
}
