// Package platform sends desktop notifications through the host's native
// notification service.
package platform

// AppName is the application name reported to notification services.
const AppName = "photomark"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image the notification should
	// show, where the platform supports it.
	IconPath string
	// Timeout in milliseconds; zero lets the server decide.
	Timeout int32
}
