// Package notify turns editor events into desktop notifications.
package notify

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when an annotated image is written to disk.
	EventSave Event = "save"
	// EventCopy fires when an annotated image is put on the clipboard.
	EventCopy Event = "copy"
	// EventExport fires when an image is stored and a link handed out.
	EventExport Event = "export"
)

// Preferences control notification wording. Templates receive the event
// detail through a single %s.
type Preferences struct {
	Title      string
	SaveText   string `split_words:"true"`
	CopyText   string `split_words:"true"`
	ExportText string `split_words:"true"`
}

// DefaultPreferences returns the stock wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title:      "photomark",
		SaveText:   "Saved %s",
		CopyText:   "Copied %s to clipboard",
		ExportText: "Exported %s",
	}
}

// LoadPreferences overlays PHOTOMARK_NOTIFY_TITLE and the
// PHOTOMARK_NOTIFY_*_TEXT variables onto the defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if err := envconfig.Process("photomark_notify", &prefs); err != nil {
		logrus.WithError(err).Warn("notification preferences")
		return DefaultPreferences()
	}
	return prefs
}

func (p Preferences) template(e Event) string {
	switch e {
	case EventSave:
		return p.SaveText
	case EventCopy:
		return p.CopyText
	case EventExport:
		return p.ExportText
	}
	return ""
}

// Notifier sends notifications for the enabled events. The zero value and a
// nil Notifier send nothing.
type Notifier struct {
	prefs Preferences
	send  func(title, body string, opts platform.Options) error

	mu      sync.Mutex
	enabled map[Event]bool
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences) *Notifier {
	return &Notifier{prefs: prefs, send: platform.Notify, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Save reports a written file, showing the image itself as the icon.
func (n *Notifier) Save(path string) {
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(detail); err == nil {
		detail = abs
		opts.IconPath = abs
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy reports a clipboard copy.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

// Export reports a stored export, usually with its link.
func (n *Notifier) Export(link string) {
	n.dispatch(EventExport, link, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	tmpl := strings.TrimSpace(n.prefs.template(event))
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	send := n.send
	if send == nil {
		send = platform.Notify
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		logrus.WithError(err).WithField("event", event).Warn("notification failed")
	}
}
