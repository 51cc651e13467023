package rhi

// Limits describes implementation limits of a Device, immutable for
// its lifetime, per spec §4.1.
type Limits struct {
	MaxTexture2D   int
	MaxTextureCube int
	MaxTexture3D   int
	MaxLayers      int

	MaxColorTargets int
	MaxFramebufSize [2]int
	MaxViewports    int

	MaxVertexInputs int
	MaxDescriptorsPerStage int

	MaxUniformBufferRange int64
	MaxStorageBufferRange int64
}

// Device is the main interface to an opened backend: it creates every
// other RHI object and submits command contexts for execution.
type Device interface {
	Destroyer

	// Backend returns the name of the backend that opened this Device.
	Backend() string

	// NewCommandPool creates a command pool bound to this Device's
	// graphics queue.
	NewCommandPool() (CommandPool, error)

	NewBuffer(desc BufferDesc) (Buffer, error)
	NewTexture(desc TextureDesc) (Texture, error)
	NewTextureView(desc TextureViewDesc) (TextureView, error)
	NewSampler(desc SamplerDesc) (Sampler, error)

	NewShader(desc ShaderDesc) (Shader, error)
	NewRootSignature(desc RootSignatureDesc) (RootSignature, error)
	NewGraphicsPipeline(desc GraphicsPipelineDesc) (GraphicsPipeline, error)
	NewRenderPass(desc RenderPassDesc) (RenderPass, error)

	NewFence(signaled bool) (Fence, error)
	NewSemaphore() (Semaphore, error)

	// Submit sends the recorded command contexts for execution in
	// order; wait/signal semaphores and fence apply to the whole
	// batch, mirroring the teacher's GPU.Commit semantics.
	Submit(ctxs []CommandContext, wait []Semaphore, signal []Semaphore, fence Fence) error

	// Limits returns the Device's implementation limits.
	Limits() Limits
}
