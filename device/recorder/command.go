// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recorder

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
)

// CommandType identifies the device call a command records.
type CommandType uint8

const (
	// State commands
	CmdEnable   CommandType = iota // Enable a capability
	CmdDisable                     // Disable a capability
	CmdSetState                    // Any fixed-function state setter

	// Binding commands
	CmdBindFramebuffer   // Bind a framebuffer (nil: default)
	CmdUseProgram        // Use a program
	CmdBindVertexArray   // Bind a vertex array (nil: none)
	CmdBindAttribute     // Source an attribute from a buffer
	CmdConstantAttribute // Set a constant attribute value
	CmdUniform           // Set a uniform
	CmdBindTexture       // Bind a texture to a unit

	// Drawing commands
	CmdDraw  // Any draw call
	CmdClear // Clear the bound framebuffer

	// Resource commands
	CmdCreateProgram  // Link a program
	CmdCreateTexture  // Upload a texture
	CmdDestroyProgram // Release a program
)

var commandTypeNames = [...]string{
	CmdEnable:            "Enable",
	CmdDisable:           "Disable",
	CmdSetState:          "SetState",
	CmdBindFramebuffer:   "BindFramebuffer",
	CmdUseProgram:        "UseProgram",
	CmdBindVertexArray:   "BindVertexArray",
	CmdBindAttribute:     "BindAttribute",
	CmdConstantAttribute: "ConstantAttribute",
	CmdUniform:           "Uniform",
	CmdBindTexture:       "BindTexture",
	CmdDraw:              "Draw",
	CmdClear:             "Clear",
	CmdCreateProgram:     "CreateProgram",
	CmdCreateTexture:     "CreateTexture",
	CmdDestroyProgram:    "DestroyProgram",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all recorded commands.
type Command interface {
	Type() CommandType
}

// EnableCommand records Enable or Disable.
type EnableCommand struct {
	Cap device.Capability
	On  bool
}

// Type implements Command.
func (c EnableCommand) Type() CommandType {
	if c.On {
		return CmdEnable
	}
	return CmdDisable
}

// SetStateCommand records a state setter. Name is the device method
// ("Viewport", "BlendFunc", ...) and Value its argument.
type SetStateCommand struct {
	Name  string
	Value any
}

// Type implements Command.
func (SetStateCommand) Type() CommandType { return CmdSetState }

// BindFramebufferCommand records BindFramebuffer.
type BindFramebufferCommand struct {
	Framebuffer device.Framebuffer
}

// Type implements Command.
func (BindFramebufferCommand) Type() CommandType { return CmdBindFramebuffer }

// UseProgramCommand records UseProgram.
type UseProgramCommand struct {
	Program device.Program
}

// Type implements Command.
func (UseProgramCommand) Type() CommandType { return CmdUseProgram }

// BindVertexArrayCommand records BindVertexArray.
type BindVertexArrayCommand struct {
	VertexArray device.VertexArray
}

// Type implements Command.
func (BindVertexArrayCommand) Type() CommandType { return CmdBindVertexArray }

// BindAttributeCommand records BindAttribute.
type BindAttributeCommand struct {
	Location int
	Binding  device.AttributeBinding
}

// Type implements Command.
func (BindAttributeCommand) Type() CommandType { return CmdBindAttribute }

// ConstantAttributeCommand records ConstantAttribute.
type ConstantAttributeCommand struct {
	Location int
	Value    [4]float32
}

// Type implements Command.
func (ConstantAttributeCommand) Type() CommandType { return CmdConstantAttribute }

// UniformCommand records Uniform.
type UniformCommand struct {
	Uniform device.UniformInfo
	Value   any
}

// Type implements Command.
func (UniformCommand) Type() CommandType { return CmdUniform }

// BindTextureCommand records BindTexture.
type BindTextureCommand struct {
	Unit    int
	Texture device.Texture
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// DrawCommand records any of the four draw calls. Elements is nil for
// array draws; Instances is -1 for non-instanced draws.
type DrawCommand struct {
	Mode      gputypes.PrimitiveTopology
	Elements  device.Elements
	First     int
	Count     int
	Instances int

	// Program and Framebuffer are the bindings at the time of the draw.
	Program     device.Program
	Framebuffer device.Framebuffer
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// Instanced reports whether the draw was instanced.
func (c DrawCommand) Instanced() bool { return c.Instances >= 0 }

// ClearCommand records Clear.
type ClearCommand struct {
	Request device.ClearRequest
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }

// CreateProgramCommand records a successful CreateProgram.
type CreateProgramCommand struct {
	Program device.Program
}

// Type implements Command.
func (CreateProgramCommand) Type() CommandType { return CmdCreateProgram }

// CreateTextureCommand records a successful CreateTexture.
type CreateTextureCommand struct {
	Texture    device.Texture
	Descriptor device.TextureDescriptor
}

// Type implements Command.
func (CreateTextureCommand) Type() CommandType { return CmdCreateTexture }

// DestroyProgramCommand records DestroyProgram.
type DestroyProgramCommand struct {
	Program device.Program
}

// Type implements Command.
func (DestroyProgramCommand) Type() CommandType { return CmdDestroyProgram }
