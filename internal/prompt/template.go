// Package prompt wraps raw user questions into the instruction template a
// model family was fine-tuned on.
package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Placeholders substituted into a template layout.
const (
	SystemPlaceholder = "{system}"
	UserPlaceholder   = "{user}"
)

// Template is a fixed layout with one {system} and one {user} placeholder.
// The {user} placeholder must come after {system}.
type Template struct {
	Name   string
	Layout string
}

// MistralInstruct is the [INST] layout used by Mistral and Llama-2 chat models.
var MistralInstruct = Template{
	Name:   "mistral-instruct",
	Layout: "<s>[INST] <<SYS>>\n{system}\n<</SYS>>\n\n{user} [/INST] ",
}

// Llama2Chat is the Llama-2 chat layout with a newline after the opening marker.
var Llama2Chat = Template{
	Name:   "llama2-chat",
	Layout: "<s>[INST] <<SYS>>\n{system}\n<</SYS>>\n\n{user} [/INST]",
}

// Raw passes the question through untouched, prefixed by the system text.
var Raw = Template{
	Name:   "raw",
	Layout: "{system}{user}",
}

var builtin = map[string]Template{
	MistralInstruct.Name: MistralInstruct,
	Llama2Chat.Name:      Llama2Chat,
	Raw.Name:             Raw,
}

// Lookup returns the built-in template registered under name.
func Lookup(name string) (Template, error) {
	t, ok := builtin[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown prompt template %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// Names lists the built-in template names in sorted order.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for n := range builtin {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Validate checks that the layout carries both placeholders exactly once and in order.
func (t Template) Validate() error {
	if strings.Count(t.Layout, SystemPlaceholder) != 1 {
		return fmt.Errorf("template %q: want exactly one %s", t.Name, SystemPlaceholder)
	}
	if strings.Count(t.Layout, UserPlaceholder) != 1 {
		return fmt.Errorf("template %q: want exactly one %s", t.Name, UserPlaceholder)
	}
	if strings.Index(t.Layout, SystemPlaceholder) > strings.Index(t.Layout, UserPlaceholder) {
		return fmt.Errorf("template %q: %s must precede %s", t.Name, SystemPlaceholder, UserPlaceholder)
	}
	return nil
}

// render substitutes both placeholders. A single-pass Replacer keeps a
// question containing "{user}" or "{system}" literally intact.
func (t Template) render(system, user string) string {
	return strings.NewReplacer(SystemPlaceholder, system, UserPlaceholder, user).Replace(t.Layout)
}

// split returns the text before {user} (with system substituted) and after it.
func (t Template) split(system string) (prefix, suffix string) {
	i := strings.Index(t.Layout, UserPlaceholder)
	if i < 0 {
		return t.Layout, ""
	}
	prefix = strings.Replace(t.Layout[:i], SystemPlaceholder, system, 1)
	suffix = t.Layout[i+len(UserPlaceholder):]
	return prefix, suffix
}
