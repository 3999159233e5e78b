package constants

import "errors"

// Token errors.
var (
	ErrInvalidJWTFormat   = errors.New("invalid JWT format")
	ErrNoExpirationClaim  = errors.New("no expiration claim found")
	ErrEmptyToken         = errors.New("authentication returned an empty token")
	ErrNoCredentials      = errors.New("no password available for authentication")
	ErrStaticTokenExpired = errors.New("static token has expired")
	ErrTokenExpired       = errors.New("token expired")
	ErrAuthStatus         = errors.New("authentication endpoint rejected the credentials")
)

// Configuration errors.
var (
	ErrNoHost             = errors.New("either org_name or full_host must be set")
	ErrInvalidAuthType    = errors.New("auth_type must be 'password' or 'token'")
	ErrInvalidTimezone    = errors.New("timezone must be 'Z' or an offset like -0500")
	ErrTicketAppRequired  = errors.New("ticket_app_id is required for ticket operations")
	ErrAssetAppRequired   = errors.New("asset_app_id is required for asset operations")
	ErrConfigKeyUnknown   = errors.New("unknown configuration key")
	ErrNotAuthenticated   = errors.New("not authenticated, run 'tdx login' first")
	ErrPasswordPromptFail = errors.New("could not read password")
	ErrSettingsFormat     = errors.New("settings file must be .yaml, .yml or .ini to be written")
)

// Operation errors.
var (
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrNoSearchCriteria  = errors.New("search criteria required")
	ErrMissingID         = errors.New("entity has no ID")
	ErrInvalidID         = errors.New("invalid ID")
)
