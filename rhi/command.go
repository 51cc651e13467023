package rhi

import "context"

// Viewport is a normalized device viewport rectangle.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// Scissor is a pixel-space scissor rectangle.
type Scissor struct {
	X, Y, Width, Height int
}

// CommandPool allocates CommandContexts for a single queue. A pool is
// not safe for concurrent use from multiple goroutines; spec §5 scopes
// RHI command recording to a single render thread.
type CommandPool interface {
	Destroyer

	// NewContext allocates a command context bound to this pool. The
	// context is reset and ready to record once returned.
	NewContext() (CommandContext, error)

	// Reset returns every context allocated from the pool to the
	// unrecorded state, reusing their backing storage.
	Reset() error
}

// CommandContext records a single command buffer's worth of GPU work:
// render pass begin/end, pipeline and resource bindings, draws, copies,
// and barriers, per spec §4.1.
type CommandContext interface {
	Destroyer

	// Begin opens the context for recording. It is an error to record
	// any other method before Begin or after End.
	Begin() error

	// End closes the context for recording and submission.
	End() error

	// BeginRenderPass starts a render pass against rp's attachments,
	// which must already be in the ResourceState implied by their
	// LoadOp/StoreOp (the RDG executor, not this call, is responsible
	// for inserting the transition barriers spec §4.5 describes).
	BeginRenderPass(rp RenderPass)

	// EndRenderPass ends the render pass started by BeginRenderPass.
	EndRenderPass()

	SetViewport(v Viewport)
	SetScissor(s Scissor)

	// BindPipeline binds a graphics pipeline for subsequent draws.
	BindPipeline(p GraphicsPipeline)

	// BindVertexBuffer binds b at the given vertex input slot.
	BindVertexBuffer(slot int, b Buffer, offset int64)

	// BindIndexBuffer binds b as the index buffer. wide selects
	// 16-bit (false) or 32-bit (true) indices.
	BindIndexBuffer(b Buffer, offset int64, wide bool)

	// BindConstantBuffer binds b as a constant (uniform) buffer at the
	// given descriptor slot, with an optional dynamic byte offset used
	// for per-frame/per-draw sub-allocations within one large buffer.
	BindConstantBuffer(slot int, b Buffer, offset int64)

	// BindShaderResource binds a texture view for sampling at the
	// given descriptor slot.
	BindShaderResource(slot int, v TextureView)

	// BindSampler binds a sampler at the given descriptor slot.
	BindSampler(slot int, s Sampler)

	// Draw issues a non-indexed draw call.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance int)

	// DrawIndexed issues an indexed draw call.
	DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int)

	// CopyBufferToBuffer copies size bytes between buffers.
	CopyBufferToBuffer(dst Buffer, dstOffset int64, src Buffer, srcOffset int64, size int64)

	// CopyBufferToTexture uploads src into a texture subresource.
	CopyBufferToTexture(dst Texture, dstRange SubresourceRange, dstOffset Off3D, src Buffer, srcOffset int64, extent Dim3D)

	// CopyTextureToTexture copies between two texture subresources of
	// matching format.
	CopyTextureToTexture(dst Texture, dstRange SubresourceRange, dstOffset Off3D, src Texture, srcRange SubresourceRange, srcOffset Off3D, extent Dim3D)

	// GenerateMipmaps fills in every mip level beyond level 0 of t by
	// successive box-downsampling, per spec §4.4's texture import path.
	// The rhi/wgpu backend implements it as a no-op.
	GenerateMipmaps(t Texture)

	// ResourceBarrier inserts one or more texture/buffer transitions.
	// A barrier whose Before equals After is a no-op, per spec §8's
	// barrier-elision property.
	ResourceBarrier(textures []TextureBarrier, buffers []BufferBarrier)

	// Execute submits the recorded commands to the owning queue,
	// waiting on wait and signaling signal and fence on completion.
	Execute(ctx context.Context, wait []Semaphore, signal []Semaphore, fence Fence) error
}
