package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/forward/render/core"
	"github.com/gekko3d/forward/render/gfx"
)

// bytesPerRow rounds a row up to the 256 byte copy alignment.
func bytesPerRow(width, bpp uint32) uint32 {
	return (width*bpp + 255) &^ 255
}

// readback copies the viewport of tex into host memory and blocks until the
// copy has landed. Rows are returned tightly packed, bottom row first.
func (c *Context) readback(tex *wgpu.Texture, aspect wgpu.TextureAspect, width, height uint32, vp core.Viewport, bpp uint32) ([]byte, error) {
	if !vp.Valid() || vp.X < 0 || vp.Y < 0 || vp.X+int(vp.Width) > int(width) || vp.Y+int(vp.Height) > int(height) {
		return nil, gfx.ReadbackError("readback", fmt.Errorf("%w: viewport %+v outside %dx%d", gfx.ErrInvalidSize, vp, width, height))
	}
	if c.bound != nil {
		return nil, gfx.ReadbackError("readback", gfx.ErrTargetBusy)
	}
	stride := bytesPerRow(vp.Width, bpp)
	size := uint64(stride) * uint64(vp.Height)

	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, gfx.ReadbackError("readback buffer", err)
	}
	defer buf.Release()

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, gfx.ReadbackError("command encoder", err)
	}
	defer encoder.Release()

	// Texture rows start at the top, viewports at the bottom.
	top := height - uint32(vp.Y) - vp.Height
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(vp.X), Y: top, Z: 0},
			Aspect:   aspect,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  stride,
				RowsPerImage: vp.Height,
			},
		},
		&wgpu.Extent3D{Width: vp.Width, Height: vp.Height, DepthOrArrayLayers: 1},
	)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, gfx.ReadbackError("finish", err)
	}
	c.queue.Submit(cmd)
	cmd.Release()

	done := false
	var status wgpu.BufferMapAsyncStatus
	buf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	})
	for !done {
		c.device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, gfx.ReadbackError("map", fmt.Errorf("status %v", status))
	}

	mapped := buf.GetMappedRange(0, uint(size))
	row := int(vp.Width * bpp)
	out := make([]byte, row*int(vp.Height))
	for y := 0; y < int(vp.Height); y++ {
		src := mapped[y*int(stride) : y*int(stride)+row]
		dst := int(vp.Height) - 1 - y
		copy(out[dst*row:], src)
	}
	buf.Unmap()
	return out, nil
}
