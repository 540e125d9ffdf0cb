// Package guru implements the archive packager: it consumes rendered page
// fragments from the host build and produces a zipped guru archive ready for
// upload to the knowledge-base sync API.
//
// The Builder realizes the two lifecycle callbacks of the PageSink contract:
// OnPage writes one card fragment per page into the working directory and
// records its manifest entry; OnFinish serializes the manifest (only after
// every page write succeeded) and compresses the working directory into
// guru.zip next to it. Failure semantics are all-or-nothing per build: the
// first I/O or serialization error aborts and propagates unchanged, with no
// retry and no partial-output cleanup.
//
// Document paths containing separators are flattened into dash-joined entity
// identifiers, so the card set inside the archive stays flat regardless of
// source nesting. Section index documents are not packaged as cards; their
// include hierarchy (Toctree) is folded into board and board-group
// definitions inside the manifest.
//
// The package purposefully avoids global state; all configuration flows in
// via the Config value given to NewBuilder.
package guru
