package tui

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrCancelled is returned when the user quits a prompt.
var ErrCancelled = errors.New("selection cancelled")

// maxSelectHeight bounds the visible rows of a select prompt.
const maxSelectHeight = 15

// Select shows a filterable single-select prompt on out and returns the chosen value.
func Select(title, description string, options []huh.Option[string], out io.Writer) (string, error) {
	if len(options) == 0 {
		return "", errors.New("nothing to select")
	}
	if out == nil {
		out = os.Stderr
	}

	var value string
	field := huh.NewSelect[string]().
		Title(title).
		Description(description).
		Options(options...).
		Height(min(len(options)+2, maxSelectHeight)).
		Filtering(len(options) > maxSelectHeight).
		Value(&value)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(currentThemeOrDefault()).
		WithKeyMap(keyMap()).
		WithOutput(out)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", err
	}
	return value, nil
}

// RunWithSpinner runs fn while a spinner titled title is shown. Aborting the
// spinner cancels the context passed to fn; fn has always returned by the
// time RunWithSpinner does.
func RunWithSpinner(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	return runAnimated(ctx, fn, func(ctx context.Context, wait func()) error {
		return spinner.New().
			Title(title).
			Context(ctx).
			Action(wait).
			Run()
	})
}

// runAnimated runs fn in its own goroutine while animate runs in the caller's.
// animate receives a wait func that blocks until fn returns.
func runAnimated(ctx context.Context, fn func(ctx context.Context) error, animate func(ctx context.Context, wait func()) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var fnErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		fnErr = fn(ctx)
	}()

	animErr := animate(ctx, func() { <-done })
	cancel()
	<-done

	switch {
	case animErr != nil && errors.Is(fnErr, context.Canceled):
		return animErr
	case fnErr != nil:
		return fnErr
	default:
		return animErr
	}
}
