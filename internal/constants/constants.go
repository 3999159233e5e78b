package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for the authentication exchange.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetries is the default number of attempts for a GET request.
	DefaultRetries = 3

	// DefaultRetryWaitMin is the minimum wait between GET attempts.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait between GET attempts.
	DefaultRetryWaitMax = 5 * time.Second
)

// Token lifecycle.
const (
	// TokenExpiryMargin is how long before expiry a token is considered stale.
	TokenExpiryMargin = 60 * time.Second

	// TokenPartsCount is the number of dot-separated segments in a JWT.
	TokenPartsCount = 3
)

// Rate limiting.
const (
	// RateLimitSkew is added to the server reset time before resuming calls.
	RateLimitSkew = 5 * time.Second

	// RateLimitFloor is the remaining-call count at or below which calls wait.
	RateLimitFloor = 1

	// HeaderRateLimitRemaining carries the remaining calls in the window.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"

	// HeaderRateLimitReset carries the time the window resets.
	HeaderRateLimitReset = "X-RateLimit-Reset"

	// HeaderRateLimitLimit carries the size of the window.
	HeaderRateLimitLimit = "X-RateLimit-Limit"
)

// Cache settings.
const (
	// DefaultCacheSize is the default number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long a reference-data fill lives in a second-tier cache.
	DefaultCacheTTL = 1 * time.Hour

	// CacheKeyPrefix prefixes every key written to a shared cache backend.
	CacheKeyPrefix = "tdx:"

	// DefaultNATSBucket is the KV bucket used by the NATS cache backend.
	DefaultNATSBucket = "tdx-reference-data"
)

// Search defaults.
const (
	// DefaultSearchResults is the default maximum for ticket and asset searches.
	DefaultSearchResults = 25

	// DefaultAccountSearchResults caps account name searches.
	DefaultAccountSearchResults = 5

	// DefaultPeopleSearchResults caps people lookups.
	DefaultPeopleSearchResults = 1

	// DefaultLocationSearchResults caps location name searches.
	DefaultLocationSearchResults = 5

	// LocationsByNameMaxResults caps the asset search used to list assets in a location.
	LocationsByNameMaxResults = 5000
)

// API paths.
const (
	// SandboxAPIPath is the API root on the sandbox environment.
	SandboxAPIPath = "/SBTDWebApi/api"

	// ProductionAPIPath is the API root on the production environment.
	ProductionAPIPath = "/TDWebApi/api"

	// HostedDomain is appended to an organisation name to build the host.
	HostedDomain = ".teamdynamix.com"

	// AuthPath is the password exchange endpoint.
	AuthPath = "/auth"
)

// Date formats.
const (
	// WireDateLayout is the date layout without zone suffix.
	WireDateLayout = "2006-01-02T15:04:05"

	// UTCOffset is the zone suffix for UTC.
	UTCOffset = "Z"

	// DefaultTimezone is the default offset applied to dates without a zone.
	DefaultTimezone = UTCOffset
)

// Component IDs for custom attributes.
const (
	ComponentProject           = 1
	ComponentIssue             = 3
	ComponentFileCabinet       = 8
	ComponentTicket            = 9
	ComponentOpportunity       = 11
	ComponentAccount           = 14
	ComponentAsset             = 27
	ComponentVendor            = 28
	ComponentContract          = 29
	ComponentProductModel      = 30
	ComponentPerson            = 31
	ComponentProduct           = 37
	ComponentConfigurationItem = 63
)

// Ticket classifications.
const (
	ClassificationTicket         = 9
	ClassificationIncident       = 32
	ClassificationProblem        = 33
	ClassificationChange         = 34
	ClassificationRelease        = 35
	ClassificationTicketTemplate = 36
	ClassificationServiceRequest = 46
	ClassificationMajorIncident  = 77
)

// Ticket status classes.
const (
	StatusClassNone = iota
	StatusClassNew
	StatusClassInProcess
	StatusClassCompleted
	StatusClassCancelled
	StatusClassOnHold
	StatusClassRequested
)

// Default status names used by searches.
var (
	// DefaultTicketStatuses are included in every ticket search.
	DefaultTicketStatuses = []string{"New", "Open", "On Hold"}

	// DefaultAssetStatuses are included in every asset search.
	DefaultAssetStatuses = []string{"Inventory", "In Use", "Broken"}
)

// Classifications maps classification names to IDs.
var Classifications = map[string]int{
	"Ticket":         ClassificationTicket,
	"Incident":       ClassificationIncident,
	"MajorIncident":  ClassificationMajorIncident,
	"Problem":        ClassificationProblem,
	"Change":         ClassificationChange,
	"Release":        ClassificationRelease,
	"TicketTemplate": ClassificationTicketTemplate,
	"ServiceRequest": ClassificationServiceRequest,
}

// CLI output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// CLI settings locations.
const (
	// SettingsDir is the directory under the user's home holding CLI settings.
	SettingsDir = ".tdx"

	// SettingsFileName is the settings file written when none exists yet.
	SettingsFileName = "tdxlib.yaml"
)
