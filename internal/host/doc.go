// Package host is the build-orchestration layer wrapping the packager. It
// plays the role the host documentation toolchain plays in a plugin setup:
// walking the source tree, rendering Markdown into HTML fragments, and
// invoking the packager's OnPage/OnFinish callbacks once per document and
// once per build respectively.
package host
