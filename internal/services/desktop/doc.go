// Package desktop raises a local notification when a summary is ready.
package desktop
