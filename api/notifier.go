package pomodoro

import "context"

// Permission is the platform's answer to "may we show notifications".
type Permission int

const (
	PermissionDefault Permission = iota // not asked yet
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// Notifier is the platform notification gateway used by Timer.
//
// RequestPermission must be idempotent: it only prompts while the permission is
// undetermined. Notify displays message only when permission is granted and
// otherwise returns nil without doing anything.
type Notifier interface {
	RequestPermission(ctx context.Context) Permission
	Notify(ctx context.Context, message string) error
}

type nopNotifier struct{}

func (nopNotifier) RequestPermission(context.Context) Permission { return PermissionDenied }

func (nopNotifier) Notify(context.Context, string) error { return nil }
