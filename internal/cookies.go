package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "rfpdesk_access_token"
	COOKIE_REDIRECT_NAME     = "rfpdesk_redirect_to"
)
