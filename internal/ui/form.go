package ui

import (
	"strings"
	"unicode/utf8"
)

// form is a small multi-field text prompt. submit receives the trimmed values
// in field order and returns the status line to show.
type form struct {
	title  string
	labels []string
	values []string
	index  int
	submit func(values []string) (string, error)
}

func newForm(title string, submit func([]string) (string, error), labels ...string) *form {
	return &form{title: title, labels: labels, values: make([]string, len(labels)), submit: submit}
}

func (f *form) next() {
	if f.index < len(f.labels)-1 {
		f.index++
	}
}

func (f *form) prev() {
	if f.index > 0 {
		f.index--
	}
}

func (f *form) last() bool { return f.index == len(f.labels)-1 }

func (f *form) typeRunes(s string) { f.values[f.index] += s }

func (f *form) backspace() {
	v := f.values[f.index]
	if v == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(v)
	f.values[f.index] = v[:len(v)-size]
}

func (f *form) trimmed() []string {
	out := make([]string, len(f.values))
	for i, v := range f.values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// splitList turns "a, b ,c" into ["a" "b" "c"].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
