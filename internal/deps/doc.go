// Package deps resolves the external executables the pipeline depends on.
package deps
