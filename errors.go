// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

var (
	// ErrNilDevice is returned by NewContext when no device is given.
	ErrNilDevice = errors.New("glcmd: device is nil")

	// ErrNoProgram is returned when a command draws without a program and
	// no enclosing scope provides one.
	ErrNoProgram = errors.New("glcmd: no program bound")

	// ErrBadArguments is returned by Command.Call for unsupported argument
	// shapes.
	ErrBadArguments = errors.New("glcmd: unsupported call arguments")

	// ErrNotDrawable is returned when Draw or Batch is called on a command
	// compiled with CompileScope.
	ErrNotDrawable = errors.New("glcmd: command has no draw procedure")

	// ErrDestroyed is returned when a destroyed command is invoked.
	ErrDestroyed = errors.New("glcmd: command destroyed")

	// ErrTextureUnits is returned when more textures are bound at once than
	// there are texture units.
	ErrTextureUnits = errors.New("glcmd: out of texture units")

	// ErrNoTextureCreator is returned by TextureFromImage when the device
	// cannot upload textures.
	ErrNoTextureCreator = errors.New("glcmd: device cannot create textures")
)

// SpecificationError reports an invalid command specification: an unknown
// option, a value of the wrong type, or mutually exclusive options.
type SpecificationError struct {
	// Path is the option path, e.g. "state.viewport" or "uniforms.color".
	Path string
	Msg  string
	// Site is the file:line that called Compile, when known.
	Site string
	Err  error
}

func (e *SpecificationError) Error() string {
	return withSite(fmt.Sprintf("glcmd: option %s: %s", e.Path, e.Msg), e.Site)
}

func (e *SpecificationError) Unwrap() error { return e.Err }

// UnresolvedValueError reports a required draw parameter with neither a
// static value nor a dynamic source.
type UnresolvedValueError struct {
	Path string
	Site string
}

func (e *UnresolvedValueError) Error() string {
	return withSite(fmt.Sprintf("glcmd: option %s has no value and no dynamic source", e.Path), e.Site)
}

// RuntimeAssertionError reports a dynamic value whose runtime shape does not
// match what the command expects. Only produced with WithAssertions.
type RuntimeAssertionError struct {
	Path string
	Msg  string
}

func (e *RuntimeAssertionError) Error() string {
	return fmt.Sprintf("glcmd: assertion failed for %s: %s", e.Path, e.Msg)
}

// abort carries an error out of a compiled procedure by panicking. The
// command entry points recover it.
type abort struct {
	err error
}

func fail(err error) {
	panic(abort{err: err})
}

// recoverInvocation turns an aborted invocation into an error.
func recoverInvocation(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	switch x := r.(type) {
	case abort:
		*errp = x.err
	case *RuntimeAssertionError:
		*errp = x
	default:
		panic(r)
	}
}

func withSite(msg, site string) string {
	if site == "" {
		return msg
	}
	return msg + " (" + site + ")"
}

// callSite returns file:line of the caller skip frames above callSite.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
