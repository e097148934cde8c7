// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package emit assembles specialized procedures from composable parts.
//
// An Env collects linked runtime values, a global preamble, and named
// procedures. Procedure bodies are built from Blocks (ordered statements
// with hoisted locals), Scopes (entry/exit pairs that save and restore
// slots), conditionals, and loops. Every statement carries both a closure
// that executes it and a line of text describing it, so a compiled Unit
// can be run directly and also listed for inspection and equality tests.
//
// Nothing is evaluated while building: the closures are composed once and
// Compile only sizes frames and runs the preamble.
package emit
