package renderer

import "errors"

var (
	ErrInvalidSlot       = errors.New("invalid attachment slot")
	ErrNoAttachments     = errors.New("render target has no attachments")
	ErrIncompleteTarget  = errors.New("render target is incomplete")
	ErrSlotNotAttached   = errors.New("attachment slot is not attached")
	ErrTextureAllocation = errors.New("texture allocation failed")
	ErrShaderCompile     = errors.New("shader compilation failed")
	ErrTargetReleased    = errors.New("render target was released")
)
