// Package build is the compile pipeline. Every execution path (compile,
// watch, render) goes through Builder.
//
// A build compiles every page of the manifest in parallel. Each page is
// read, parsed, macro-expanded, post-processed, normalized and rendered to
// its output path. A page that fails is reported and the others continue.
package build
