// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package llm wraps the AWS Bedrock ConverseStream API and builds the
// conversations that ask a model for a unified diff against one file.
package llm

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/petar-djukic/go-patcher/pkg/types"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateData holds the values injected into the system prompt template.
type TemplateData struct {
	Path     string // File being edited
	Language string // Human-readable language name, may be empty
	OS       string
}

// RenderSystemPrompt renders the system prompt template with the given data.
func RenderSystemPrompt(data TemplateData) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/system.tmpl")
	if err != nil {
		return "", fmt.Errorf("parsing system template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing system template: %w", err)
	}

	return buf.String(), nil
}

// LanguageFor names the language of path by extension, or "" if unknown.
func LanguageFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "Go"
	case ".py":
		return "Python"
	case ".js", ".mjs", ".cjs":
		return "JavaScript"
	case ".ts", ".tsx":
		return "TypeScript"
	case ".yaml", ".yml":
		return "YAML"
	case ".md":
		return "Markdown"
	}
	return ""
}

// ConstructMessages builds the Bedrock request for a single-file edit.
//
// The message order is:
//  1. System message (separate field, not in messages array)
//  2. User message with the file outline, when there is one
//  3. User message with the current file contents
//  4. User message with the instruction
func ConstructMessages(systemPrompt, outline string, file types.FileContent, instruction string) ([]brtypes.SystemContentBlock, []brtypes.Message) {
	system := []brtypes.SystemContentBlock{
		&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
	}

	var messages []brtypes.Message
	if outline != "" {
		messages = append(messages, userMessage("## Outline\n\n"+outline))
	}
	messages = append(messages,
		userMessage("## Current File\n\n"+formatFileContent(file)),
		userMessage(instruction),
	)

	return system, messages
}

// ConstructRetryMessages appends the assistant's previous diff and a
// follow-up user message describing what went wrong with it.
func ConstructRetryMessages(prevMessages []brtypes.Message, assistantResponse, feedback string) []brtypes.Message {
	messages := make([]brtypes.Message, 0, len(prevMessages)+2)
	messages = append(messages, prevMessages...)
	messages = append(messages, assistantMessage(assistantResponse))
	messages = append(messages, userMessage(
		"## Problems\n\nThe previous diff could not be applied cleanly. Reply with a corrected diff against the original file:\n\n"+feedback,
	))
	return messages
}

// formatFileContent renders a file as a path header and a fenced block.
// Lines are not numbered; the model must copy them verbatim into the diff.
func formatFileContent(f types.FileContent) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "### %s\n\n", f.Path)
	buf.WriteString("```\n")
	buf.WriteString(f.Content)
	if !strings.HasSuffix(f.Content, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("```\n")
	return buf.String()
}

// userMessage creates a user message with text content.
func userMessage(text string) brtypes.Message {
	return brtypes.Message{
		Role: brtypes.ConversationRoleUser,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: text},
		},
	}
}

func assistantMessage(text string) brtypes.Message {
	return brtypes.Message{
		Role: brtypes.ConversationRoleAssistant,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: text},
		},
	}
}
