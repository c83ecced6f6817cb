package notify

import (
	"context"
	"fmt"
	"os/exec"

	pomodoro "github.com/d093w1z/pomodoro/api"
)

const desktopBinary = "notify-send"

// Desktop shows notifications through notify-send. Permission is granted
// when the binary is on PATH.
type Desktop struct {
	perm     gate
	title    string
	path     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewDesktop(title string) *Desktop {
	return &Desktop{
		title:    title,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (d *Desktop) RequestPermission(ctx context.Context) pomodoro.Permission {
	return d.perm.request(ctx, func(context.Context) pomodoro.Permission {
		path, err := d.lookPath(desktopBinary)
		if err != nil {
			return pomodoro.PermissionDenied
		}
		d.path = path
		return pomodoro.PermissionGranted
	})
}

func (d *Desktop) Notify(ctx context.Context, message string) error {
	if !d.perm.granted() {
		return nil
	}
	if err := d.run(ctx, d.path, d.title, message); err != nil {
		return fmt.Errorf("%s: %w", desktopBinary, err)
	}
	return nil
}
