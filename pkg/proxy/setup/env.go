package setup

const (
	EnvHuggingFaceToken   = "HUGGINGFACE_TOKEN"
	EnvHuggingFaceBaseUrl = "HF_INFERENCE_BASE_URL"
	EnvOpenAiApiKey       = "OPENAI_API_KEY"
	EnvOpenAiBaseUrl      = "OPENAI_BASE_URL"
	EnvPrimaryModel       = "PRIMARY_MODEL"
	EnvFallbackModel      = "FALLBACK_MODEL"
	EnvApiIpPort          = "API_IP_PORT"
	EnvCorsAllowOrigins   = "CORS_ALLOW_ORIGINS"
	EnvGenerateCacheSize  = "GENERATE_CACHE_SIZE"
	EnvGenerateCacheTtl   = "GENERATE_CACHE_TTL"
)

const (
	DefaultHuggingFaceBaseUrl = "https://api-inference.huggingface.co/models"
	DefaultOpenAiBaseUrl      = "https://api.openai.com/v1"
	DefaultPrimaryModel       = "runwayml/stable-diffusion-v1-5"
	DefaultFallbackModel      = "CompVis/stable-diffusion-v1-4"
	DefaultApiIpPort          = ":8000"
	DefaultGenerateCacheTtl   = "10m"
)
