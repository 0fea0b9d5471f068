package geotess

import "github.com/sirupsen/logrus"

// log is the package-level structured logger, configured by Configure (or
// left at logrus's default if the caller never calls it). Warnings such as
// a layer-name mismatch on load are surfaced through it rather than
// swallowed.
var log = logrus.WithField("component", "geotess")

// Configure installs lvl as the package logger's level. Call once during
// process startup; safe to call again to change verbosity at runtime.
func Configure(lvl logrus.Level) {
	logrus.SetLevel(lvl)
}
