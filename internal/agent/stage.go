// Package agent runs fixed stage records against a chat model.
package agent

import (
	"bytes"
	"fmt"
	"text/template"
)

// Stage is a fixed prompt record. Task and Goal are text/template sources
// rendered with TaskData.
type Stage struct {
	Name           string
	Role           string
	Goal           string
	Backstory      string
	Task           string
	ExpectedOutput string
}

// TaskData is what stage templates can reference.
type TaskData struct {
	Topic string
	Now   string
}

func render(name, src string, data TaskData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}
