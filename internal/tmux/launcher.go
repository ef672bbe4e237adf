// Package tmux creates and kills terminal sessions through a local tmux
// server.
package tmux

import (
	"context"
	"fmt"

	"github.com/GianlucaP106/gotmux/gotmux"
)

// Launcher satisfies engine.SessionLauncher on top of gotmux.
type Launcher struct {
	tmux *gotmux.Tmux
}

func NewLauncher() (*Launcher, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("tmux client: %w", err)
	}
	return &Launcher{tmux: t}, nil
}

// Launch creates a detached session and returns the id of its first pane.
func (l *Launcher) Launch(ctx context.Context, sessionName, startDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.exists(sessionName) {
		return "", fmt.Errorf("tmux session %s already exists", sessionName)
	}
	session, err := l.tmux.NewSession(&gotmux.SessionOptions{
		Name:           sessionName,
		StartDirectory: startDir,
	})
	if err != nil {
		return "", fmt.Errorf("new session: %w", err)
	}
	windows, err := session.ListWindows()
	if err != nil {
		return "", fmt.Errorf("list windows: %w", err)
	}
	if len(windows) == 0 {
		return "", fmt.Errorf("session %s has no windows", sessionName)
	}
	panes, err := windows[0].ListPanes()
	if err != nil {
		return "", fmt.Errorf("list panes: %w", err)
	}
	if len(panes) == 0 {
		return "", fmt.Errorf("session %s has no panes", sessionName)
	}
	return panes[0].Id, nil
}

// Kill terminates the named session. A session that is already gone is not
// an error.
func (l *Launcher) Kill(ctx context.Context, sessionName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := l.find(sessionName)
	if err != nil || s == nil {
		return err
	}
	return s.Kill()
}

func (l *Launcher) find(name string) (*gotmux.Session, error) {
	sessions, err := l.tmux.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for _, s := range sessions {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}

func (l *Launcher) exists(name string) bool {
	s, err := l.find(name)
	return err == nil && s != nil
}
