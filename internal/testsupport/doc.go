// Package testsupport builds isolated configurations and stub executables
// for tests.
package testsupport
