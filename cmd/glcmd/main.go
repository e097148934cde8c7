// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command glcmd compiles the commands of a TOML spec file, prints their
// procedure listings and optionally runs them against a registered device.
//
// Usage:
//
//	glcmd -spec commands.toml [-device recorder] [-command name]
//	      [-listing text|cbor|none] [-resource name=kind:args]...
//	      [-run scope,...,draw] [-props 'toml'] [-batch n] [-v]
//
// Resources referenced with {resource = "name"} are declared on the
// command line:
//
//	-resource positions=buffer:24     vertex buffer of 24 bytes
//	-resource image=texture:4x4       4x4 texture
//	-resource target=framebuffer:64x32
//	-resource quad=elements:6         6 uint16 triangle indices
//
// -run names a chain of commands: every command but the last is run as a
// scope around the next one, the last is drawn (or batched with -batch).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd"
	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/device/recorder"
	"github.com/gogpu/glcmd/pipeline"
	"github.com/gogpu/glcmd/specfile"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "glcmd:", err)
		}
		os.Exit(1)
	}
}

// resourceFlags collects repeated -resource flags.
type resourceFlags []string

func (r *resourceFlags) String() string { return strings.Join(*r, ",") }

func (r *resourceFlags) Set(v string) error {
	*r = append(*r, v)
	return nil
}

type options struct {
	spec      string
	device    string
	command   string
	listing   string
	run       string
	props     string
	batch     int
	verbose   bool
	resources resourceFlags
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("glcmd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{}
	fs.StringVar(&o.spec, "spec", "", "TOML spec file (required)")
	fs.StringVar(&o.device, "device", "recorder", "device to run on: "+strings.Join(device.Names(), ", "))
	fs.StringVar(&o.command, "command", "", "print only this command's listing")
	fs.StringVar(&o.listing, "listing", "text", "listing format: text, cbor or none")
	fs.StringVar(&o.run, "run", "", "comma separated chain of commands to run")
	fs.StringVar(&o.props, "props", "", "props for -run as a TOML document")
	fs.IntVar(&o.batch, "batch", 0, "run the last command as a batch of n")
	fs.BoolVar(&o.verbose, "v", false, "log to stderr")
	fs.Var(&o.resources, "resource", "resource as name=kind:args (repeatable)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.spec == "" {
		fs.Usage()
		return nil, errors.New("-spec is required")
	}
	switch o.listing {
	case "text", "cbor", "none":
	default:
		return nil, fmt.Errorf("unknown listing format %q", o.listing)
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.verbose {
		l := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		glcmd.SetLogger(l)
		pipeline.SetLogger(l)
		defer glcmd.SetLogger(nil)
		defer pipeline.SetLogger(nil)
	}

	f, err := specfile.Load(o.spec)
	if err != nil {
		return err
	}
	res, err := parseResources(o.resources)
	if err != nil {
		return err
	}
	dev, err := device.Open(o.device)
	if err != nil {
		return err
	}
	ctx, err := glcmd.NewContext(dev, f.Options()...)
	if err != nil {
		return err
	}
	cmds, err := f.Compile(ctx, res)
	if err != nil {
		return err
	}

	if err := printListings(stdout, f, cmds, o); err != nil {
		return err
	}
	if o.run == "" {
		return nil
	}

	props, err := specfile.ParseProps(o.props, res)
	if err != nil {
		return err
	}
	chain := strings.Split(o.run, ",")
	if err := runChain(cmds, chain, props, o.batch); err != nil {
		return err
	}
	printStats(stdout, ctx, cmds, chain, dev)
	return nil
}

func printListings(w io.Writer, f *specfile.File, cmds map[string]*glcmd.Command, o *options) error {
	if o.listing == "none" {
		return nil
	}
	names := f.Names()
	if o.command != "" {
		if _, ok := cmds[o.command]; !ok {
			return fmt.Errorf("%w %q", specfile.ErrUnknownCommand, o.command)
		}
		names = []string{o.command}
	}
	for _, name := range names {
		l := cmds[name].Listing()
		if o.listing == "cbor" {
			data, err := l.MarshalCanonical()
			if err != nil {
				return fmt.Errorf("command %q: %w", name, err)
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(w, "# %s\n%s\n", name, l.String())
	}
	return nil
}

// runChain runs chain[0] as a scope around chain[1], and so on. The last
// command is drawn, or batched when batch > 0.
func runChain(cmds map[string]*glcmd.Command, chain []string, props glcmd.Props, batch int) error {
	name := strings.TrimSpace(chain[0])
	cmd, ok := cmds[name]
	if !ok {
		return fmt.Errorf("%w %q", specfile.ErrUnknownCommand, name)
	}
	if len(chain) > 1 {
		return cmd.Scope(props, func(glcmd.Vars, glcmd.Props, int) error {
			return runChain(cmds, chain[1:], props, batch)
		})
	}
	switch {
	case batch > 0 && len(props) > 0:
		list := make([]glcmd.Props, batch)
		for i := range list {
			list[i] = props
		}
		return cmd.Batch(list)
	case batch > 0:
		return cmd.BatchN(batch)
	default:
		return cmd.Draw(props)
	}
}

func printStats(w io.Writer, ctx *glcmd.Context, cmds map[string]*glcmd.Command, chain []string, dev device.Device) {
	s := ctx.Stats()
	fmt.Fprintf(w, "draws=%d state=%d programs=%d framebuffers=%d vaos=%d textures=%d\n",
		s.Draws, s.StateApplies, s.ProgramBinds, s.FramebufferBinds, s.VertexArrayBinds, s.TextureBinds)
	for _, name := range chain {
		cs := cmds[strings.TrimSpace(name)].Stats()
		fmt.Fprintf(w, "%s: invocations=%d profiled=%d cpu=%s\n", name, cs.Invocations, cs.Profiled, cs.CPUTime)
	}
	if rec, ok := dev.(*recorder.Recorder); ok {
		fmt.Fprintf(w, "recorded=%d\n", len(rec.Commands()))
	}
}

// parseResources builds handles from name=kind:args declarations.
func parseResources(decls []string) (specfile.Resources, error) {
	res := make(specfile.Resources, len(decls))
	for _, d := range decls {
		name, spec, ok := strings.Cut(d, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("resource %q: want name=kind:args", d)
		}
		kind, arg, _ := strings.Cut(spec, ":")
		var (
			h   any
			err error
		)
		switch kind {
		case "buffer":
			var n int
			if n, err = strconv.Atoi(arg); err == nil {
				h = recorder.NewBuffer(n)
			}
		case "texture", "framebuffer":
			var w, ht int
			if w, ht, err = parseSize(arg); err == nil {
				if kind == "texture" {
					h = recorder.NewTexture(w, ht)
				} else {
					h = recorder.NewFramebuffer(w, ht)
				}
			}
		case "elements":
			var n int
			if n, err = strconv.Atoi(arg); err == nil {
				h = recorder.NewElements(gputypes.PrimitiveTopologyTriangleList, n)
			}
		default:
			err = fmt.Errorf("unknown kind %q", kind)
		}
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", name, err)
		}
		res[name] = h
	}
	return res, nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}
