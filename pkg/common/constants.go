package common

const (
	RequestIDHeader  = "X-Request-Id"
	RetryAfterHeader = "Retry-After"

	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"

	PrivacyNote    = "Your text was analyzed but not stored or logged."
	FallbackNotice = "Using backup analysis method. Results may differ from primary API."
)
