package tdx

import (
	"context"
	"io"
	"time"
)

// Auth modes.
const (
	AuthTypePassword = "password"
	AuthTypeToken    = "token"
)

// PeopleClient looks up people.
type PeopleClient interface {
	Search(ctx context.Context, key string, maxResults int) ([]Person, error)
	GetByNameEmail(ctx context.Context, key string) (*Person, error)
	Get(ctx context.Context, uid string) (*Person, error)
}

// AccountsClient manages accounts and departments.
type AccountsClient interface {
	GetByName(ctx context.Context, key string) (*Account, error)
	Get(ctx context.Context, id int) (*Entity, error)
	List(ctx context.Context) ([]Account, error)
	Create(ctx context.Context, account *Entity) (*Entity, error)
	Edit(ctx context.Context, id int, changes map[string]interface{}) (*Entity, error)
}

// GroupsClient looks up groups.
type GroupsClient interface {
	GetByName(ctx context.Context, key string) (*Group, error)
	Get(ctx context.Context, id int) (*Group, error)
	Members(ctx context.Context, id int) ([]Person, error)
}

// LocationsClient looks up locations and their rooms.
type LocationsClient interface {
	GetByName(ctx context.Context, key string) (*Location, error)
	Get(ctx context.Context, id int) (*Location, error)
	List(ctx context.Context) ([]Location, error)
	RoomByName(location *Location, key string) (*Room, error)
}

// AttributesClient looks up custom attributes per component.
type AttributesClient interface {
	List(ctx context.Context, componentID, associatedTypeID, appID int) ([]CustomAttribute, error)
	GetByName(ctx context.Context, componentID int, key string) (*CustomAttribute, error)
	ChoiceByName(attr *CustomAttribute, key string) (*Choice, error)
}

// TicketSearchOptions narrows a ticket search. The default statuses New, Open
// and On Hold are always included.
type TicketSearchOptions struct {
	SearchText    string
	MaxResults    int
	Closed        bool
	Cancelled     bool
	OtherStatuses []string
	// Criteria are extra search fields merged into the request body.
	Criteria map[string]interface{}
}

// TicketTemplate describes a ticket to build. Reference fields are names or IDs
// resolved through the lookup tables.
type TicketTemplate struct {
	Title            string
	Description      string
	Type             string
	Classification   string
	Account          string
	Status           string
	Priority         string
	Requestor        string
	Responsible      string
	Location         string
	Room             string
	FormID           int
	StartDate        time.Time
	EndDate          time.Time
	CustomAttributes map[string]interface{}
}

// TicketsClient manages tickets, their reference data, tasks and attachments.
type TicketsClient interface {
	Get(ctx context.Context, id int) (*Entity, error)
	Search(ctx context.Context, opts TicketSearchOptions) ([]*Entity, error)
	Edit(ctx context.Context, ticket *Entity, changes map[string]interface{}, notifyNewResponsible bool) (*Entity, error)
	EditMany(ctx context.Context, tickets []*Entity, changes map[string]interface{}, notifyNewResponsible bool) ([]*Entity, error)
	Create(ctx context.Context, ticket *Entity, silent bool) (*Entity, error)
	Build(ctx context.Context, tpl *TicketTemplate) (*Entity, error)

	Type(ctx context.Context, key string) (*TicketType, error)
	Status(ctx context.Context, key string) (*TicketStatus, error)
	StatusByID(ctx context.Context, id int) (*TicketStatus, error)
	Priority(ctx context.Context, key string) (*ReferenceItem, error)
	Urgency(ctx context.Context, key string) (*ReferenceItem, error)
	Impact(ctx context.Context, key string) (*ReferenceItem, error)
	Source(ctx context.Context, key string) (*ReferenceItem, error)
	Form(ctx context.Context, key string) (*ReferenceItem, error)

	SetType(ctx context.Context, tickets []*Entity, key string) ([]*Entity, error)
	SetStatus(ctx context.Context, tickets []*Entity, key string) ([]*Entity, error)
	SetPriority(ctx context.Context, tickets []*Entity, key string) ([]*Entity, error)
	SetUrgency(ctx context.Context, tickets []*Entity, key string) ([]*Entity, error)
	SetImpact(ctx context.Context, tickets []*Entity, key string) ([]*Entity, error)
	SetSource(ctx context.Context, tickets []*Entity, key string) ([]*Entity, error)

	ListTasks(ctx context.Context, ticketID int) ([]TicketTask, error)
	GetTask(ctx context.Context, ticketID, taskID int) (*TicketTask, error)
	CreateTask(ctx context.Context, ticketID int, task *TicketTask) (*TicketTask, error)
	EditTask(ctx context.Context, ticketID int, task *TicketTask) (*TicketTask, error)
	DeleteTask(ctx context.Context, ticketID, taskID int) error

	UploadAttachment(ctx context.Context, ticketID int, filename string, content io.Reader) (*Attachment, error)
}

// AssetSearchOptions narrows an asset search. The default statuses Inventory,
// In Use and Broken are included unless AllStatuses is set.
type AssetSearchOptions struct {
	SearchText    string
	MaxResults    int
	Retired       bool
	Disposed      bool
	AllStatuses   bool
	OtherStatuses []string
	// FullRecord re-fetches every result by ID to include custom attributes.
	FullRecord bool
	// Criteria are extra search fields merged into the request body.
	Criteria map[string]interface{}
}

// AssetsClient manages assets and their reference data.
type AssetsClient interface {
	Get(ctx context.Context, id int) (*Entity, error)
	Search(ctx context.Context, opts AssetSearchOptions) ([]*Entity, error)
	FindByTag(ctx context.Context, tag string) (*Entity, error)
	FindBySerial(ctx context.Context, serial string) ([]*Entity, error)
	Update(ctx context.Context, ids []int, changes map[string]interface{}, clearCustomAttributes bool) ([]*Entity, error)
	Create(ctx context.Context, asset *Entity, checkDuplicate bool) (*Entity, error)

	ChangeOwner(ctx context.Context, ids []int, person string) ([]*Entity, error)
	ChangeLocation(ctx context.Context, ids []int, location, room string) ([]*Entity, error)
	ChangeRequestingDepartment(ctx context.Context, ids []int, account string) ([]*Entity, error)

	CustomAttribute(ctx context.Context, key string) (*CustomAttribute, error)
	BuildCustomAttributeValue(ctx context.Context, key string, value interface{}) (CustomAttributeValue, error)

	Status(ctx context.Context, key string) (*AssetStatus, error)
	Form(ctx context.Context, key string) (*ReferenceItem, error)
	ProductModel(ctx context.Context, key string) (*ProductModel, error)
	ProductType(ctx context.Context, key string) (*ReferenceItem, error)
	Vendor(ctx context.Context, key string) (*Vendor, error)

	Users(ctx context.Context, id int) ([]ResourceItem, error)
	AddUser(ctx context.Context, id int, uid string) error
	RemoveUser(ctx context.Context, id int, uid string) error

	UploadAttachment(ctx context.Context, assetID int, filename string, content io.Reader) (*Attachment, error)
}

// Client is the TeamDynamix API client.
type Client interface {
	People() PeopleClient
	Accounts() AccountsClient
	Groups() GroupsClient
	Locations() LocationsClient
	Attributes() AttributesClient
	Tickets() TicketsClient
	Assets() AssetsClient

	// InvalidateAll empties every lookup table and the shared cache.
	InvalidateAll(ctx context.Context) error
	// DateCodec returns the codec for the configured timezone.
	DateCodec() *DateCodec
	// Close releases cache backend connections.
	Close() error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// TokenPersister receives every token issued by a password exchange.
type TokenPersister interface {
	SaveToken(token string, expiresAt time.Time) error
}

// Config represents client configuration for building a tdx.Client.
//
// Use tdxclient.New to construct a client, or tdxclient.LoadSettings to
// resolve a Config from a file, the environment and an explicit mapping.
type Config struct {
	// BaseURL: API root including the web API path, for example
	// "https://example.teamdynamix.com/TDWebApi/api".
	BaseURL string

	// AuthType: "password" (default) or "token".
	AuthType string
	// Username and Password are exchanged for a token on first use. The
	// password is discarded once a token has been issued.
	Username string
	Password string
	// Token: pre-issued bearer token, used when AuthType is "token" or when a
	// previously persisted token is still valid.
	Token string
	// PasswordPrompt is consulted when a new token is needed and the password
	// has already been discarded.
	PasswordPrompt func() (string, error)
	// TokenPersister receives freshly issued tokens.
	TokenPersister TokenPersister

	// TicketAppID and AssetAppID select the applications used for ticket and
	// asset operations.
	TicketAppID int
	AssetAppID  int

	// Caching enables the in-process lookup tables. When false every lookup
	// goes to the service.
	Caching bool
	// Cache configures an optional shared second tier.
	Cache *CacheConfig

	// Timezone: offset written on exported dates, "Z" or like "-0500".
	Timezone string

	// Retries: total attempts for a GET request. Defaults to 3.
	Retries int
	// HTTPTimeout: per-request timeout.
	HTTPTimeout time.Duration
	// HTTP2: negotiate HTTP/2 on the transport.
	HTTP2 bool
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug: enables verbose HTTP request/response logging.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
}
