package prompt

import "strings"

// Formatter applies one template and system instruction to every question.
type Formatter struct {
	Template Template
	// System is substituted for {system}; empty by default.
	System string
}

// New returns a Formatter for t with the given system instruction.
func New(t Template, system string) Formatter {
	return Formatter{Template: t, System: system}
}

// Default returns the Mistral instruct formatter with an empty system instruction.
func Default() Formatter { return New(MistralInstruct, "") }

// Format wraps one question. Empty questions are formatted like any other.
func (f Formatter) Format(question string) string {
	return f.Template.render(f.System, question)
}

// FormatAll formats each question independently, preserving order.
func (f Formatter) FormatAll(questions []string) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = f.Format(q)
	}
	return out
}

// Extract recovers the question from a prompt produced by Format. It strips
// the known prefix and suffix instead of searching for markers, so questions
// that contain marker text round-trip exactly.
func (f Formatter) Extract(p string) (string, bool) {
	prefix, suffix := f.Template.split(f.System)
	if len(p) < len(prefix)+len(suffix) || !strings.HasPrefix(p, prefix) || !strings.HasSuffix(p, suffix) {
		return "", false
	}
	return p[len(prefix) : len(p)-len(suffix)], true
}
