package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	arg   string
	fail  error
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.fail
}

func (f *fakeExec) Edit(_ context.Context, r *bufio.Reader) error {
	text, _ := GetMultiline(r, "", &bytes.Buffer{})
	f.arg = text
	return f.record("edit")
}
func (f *fakeExec) Append(_ context.Context, r *bufio.Reader) error {
	text, _ := GetMultiline(r, "", &bytes.Buffer{})
	f.arg = text
	return f.record("append")
}
func (f *fakeExec) Status(context.Context) error  { return f.record("status") }
func (f *fakeExec) Show(context.Context) error    { return f.record("show") }
func (f *fakeExec) Preview(context.Context) error { return f.record("preview") }
func (f *fakeExec) Save(_ context.Context, title string) error {
	f.arg = title
	return f.record("save")
}
func (f *fakeExec) Discard(context.Context) error { return f.record("discard") }
func (f *fakeExec) History(context.Context) error { return f.record("history") }
func (f *fakeExec) View(_ context.Context, id string) error {
	f.arg = id
	return f.record("view")
}
func (f *fakeExec) Back(context.Context) error    { return f.record("back") }
func (f *fakeExec) Restore(context.Context) error { return f.record("restore") }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.NewReader(strings.Join([]string{
		"help",
		"",
		"status",
		"edit",
		"line one",
		"line two",
		".",
		"show",
		"preview",
		"history",
		"view v1",
		"restore",
		"back",
		"discard",
		"save My Title",
		"foobar",
		"exit",
		"status",
	}, "\n"))

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(saved)" }, bufio.NewReader(input), &out)

	assert.Equal(t, []string{
		"status", "edit", "show", "preview", "history", "view",
		"restore", "back", "discard", "save",
	}, exec.calls)
	assert.Equal(t, "My Title", exec.arg)
	assert.Contains(t, out.String(), "tk (saved)> ")
	assert.Contains(t, out.String(), "Available commands:")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_EditReadsFromSameReader(t *testing.T) {
	exec := &fakeExec{}
	input := "append\nmore\ntext\n.\nquit\n"
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)), &bytes.Buffer{})

	assert.Equal(t, []string{"append"}, exec.calls)
	assert.Equal(t, "more\ntext", exec.arg)
}

func TestRunREPL_UsageErrorsAndEOF(t *testing.T) {
	exec := &fakeExec{fail: errors.New("boom")}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("view\nshow")), &out)

	assert.Equal(t, []string{"show"}, exec.calls)
	assert.Contains(t, out.String(), "Usage: view <version-id>")
	assert.Contains(t, out.String(), "Error: boom")
}
