package apkg

import "strings"

// Formats used when a note type declares no templates at all.
const (
	defaultQuestionFormat = "{{Front}}"
	defaultAnswerFormat   = "{{Back}}"
)

// renderCard renders the front and back of a card from its note type's
// template list. The ordinal selects the template; an out-of-range ordinal
// falls back to the first template rather than failing.
//
// Rendering is total: malformed templates degrade to partially substituted
// text, never to an error.
func renderCard(noteType NoteType, fields map[string]string, ordinal int) (front, back string) {
	var tmpl Template
	switch {
	case ordinal >= 0 && ordinal < len(noteType.Templates):
		tmpl = noteType.Templates[ordinal]
	case len(noteType.Templates) > 0:
		tmpl = noteType.Templates[0]
	default:
		tmpl = Template{QuestionFormat: defaultQuestionFormat, AnswerFormat: defaultAnswerFormat}
	}

	front = renderFormat(tmpl.QuestionFormat, noteType.Fields, fields)
	back = renderFormat(tmpl.AnswerFormat, noteType.Fields, fields)

	// The answer side may restate the rendered question verbatim.
	back = strings.ReplaceAll(back, "{{FrontSide}}", front)

	return front, back
}

// renderFormat applies direct field substitution first and conditional
// sections second, matching the order Anki's own importers rely on. A
// substituted value that happens to contain section-like markup is
// therefore seen by the section pass.
func renderFormat(format string, fieldOrder []string, fields map[string]string) string {
	result := substituteFields(format, fieldOrder, fields)
	return renderSections(result, fieldOrder, fields)
}

// substituteFields replaces every direct reference to a declared field:
//
//	{{Name}}        field value
//	{{hint:Name}}   field value (no hint-box rendering)
//	{{cloze:Name}}  field value (no cloze-deletion extraction)
//	{{type:Name}}   empty string (interactive answer box, meaningless here)
func substituteFields(format string, fieldOrder []string, fields map[string]string) string {
	result := format
	for _, name := range fieldOrder {
		value := fields[name]
		result = strings.ReplaceAll(result, "{{"+name+"}}", value)
		result = strings.ReplaceAll(result, "{{hint:"+name+"}}", value)
		result = strings.ReplaceAll(result, "{{cloze:"+name+"}}", value)
		result = strings.ReplaceAll(result, "{{type:"+name+"}}", "")
	}
	return result
}

// renderSections evaluates conditional sections for every declared field:
// {{#Name}}...{{/Name}} keeps its content when the trimmed field value is
// non-empty, {{^Name}}...{{/Name}} when it is empty.
//
// Matching is non-nested: each pass pairs the first open marker with the
// first close marker after it. Overlapping or nested sections for the same
// field may leave residual markup but never fail.
func renderSections(format string, fieldOrder []string, fields map[string]string) string {
	result := format
	for _, name := range fieldOrder {
		present := strings.TrimSpace(fields[name]) != ""
		result = renderSection(result, "{{#"+name+"}}", "{{/"+name+"}}", present)
		result = renderSection(result, "{{^"+name+"}}", "{{/"+name+"}}", !present)
	}
	return result
}

func renderSection(s, openTok, closeTok string, keep bool) string {
	for {
		start := strings.Index(s, openTok)
		if start < 0 {
			return s
		}
		rest := s[start+len(openTok):]
		end := strings.Index(rest, closeTok)
		if end < 0 {
			// Unterminated section, leave the markup in place.
			return s
		}

		var replacement string
		if keep {
			replacement = rest[:end]
		}
		s = s[:start] + replacement + rest[end+len(closeTok):]
	}
}
