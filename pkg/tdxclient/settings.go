package tdxclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/logging"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// Settings keys, as written in files and mappings. The environment variable
// for a key is TDXLIB_ followed by the upper-cased key.
const (
	KeyOrgName      = "org_name"
	KeyFullHost     = "full_host"
	KeySandbox      = "sandbox"
	KeyAuthType     = "auth_type"
	KeyUsername     = "username"
	KeyPassword     = "password"
	KeyToken        = "token"
	KeyTicketAppID  = "ticket_app_id"
	KeyAssetAppID   = "asset_app_id"
	KeyCaching      = "caching"
	KeyTimezone     = "timezone"
	KeyLogLevel     = "log_level"
	KeyBaseURL      = "base_url"
	KeyRetries      = "retries"
	KeyTimeout      = "timeout"
	KeyHTTP2        = "http2"
	KeyCacheBackend = "cache_backend"
	KeyNATSURL      = "nats_url"
	KeyRedisAddr    = "redis_addr"
)

const (
	// EnvPrefix prefixes every environment variable read by LoadSettings.
	EnvPrefix = "TDXLIB"

	// SettingsSection is the ini section (or nested map key) holding settings.
	SettingsSection = "TDX API Settings"

	// DefaultSettingsName is the base name searched for when no file is given.
	DefaultSettingsName = "tdxlib"

	// PasswordPromptValue as a password means ask for it when needed.
	PasswordPromptValue = "Prompt"

	defaultSettingsTimezone = "-0500"
	defaultLogLevel         = "ERROR"
)

// Static errors for err113 compliance.
var (
	ErrInvalidSettings = errors.New("invalid settings")
)

// Keys lists every settings key in display order.
var Keys = []string{
	KeyOrgName, KeyFullHost, KeySandbox, KeyAuthType, KeyUsername, KeyPassword,
	KeyToken, KeyTicketAppID, KeyAssetAppID, KeyCaching, KeyTimezone, KeyLogLevel,
	KeyBaseURL, KeyRetries, KeyTimeout, KeyHTTP2, KeyCacheBackend, KeyNATSURL,
	KeyRedisAddr,
}

// legacyKeys maps older camelCase spellings to their current key. Viper
// lower-cases keys before they get here.
var legacyKeys = map[string]string{
	"orgname":     KeyOrgName,
	"authtype":    KeyAuthType,
	"ticketappid": KeyTicketAppID,
	"assetappid":  KeyAssetAppID,
	"loglevel":    KeyLogLevel,
}

var boolKeys = map[string]bool{
	KeySandbox: true,
	KeyCaching: true,
	KeyHTTP2:   true,
}

// Settings is the resolved client configuration.
type Settings struct {
	OrgName      string        `mapstructure:"org_name"      yaml:"org_name,omitempty"`
	FullHost     string        `mapstructure:"full_host"     yaml:"full_host,omitempty"     validate:"omitempty,hostname_port|hostname"`
	Sandbox      bool          `mapstructure:"sandbox"       yaml:"sandbox"`
	AuthType     string        `mapstructure:"auth_type"     yaml:"auth_type"               validate:"oneof=password token"`
	Username     string        `mapstructure:"username"      yaml:"username,omitempty"      validate:"required_if=AuthType password"`
	Password     string        `mapstructure:"password"      yaml:"password,omitempty"`
	Token        string        `mapstructure:"token"         yaml:"token,omitempty"         validate:"required_if=AuthType token"`
	TicketAppID  int           `mapstructure:"ticket_app_id" yaml:"ticket_app_id,omitempty" validate:"gte=0"`
	AssetAppID   int           `mapstructure:"asset_app_id"  yaml:"asset_app_id,omitempty"  validate:"gte=0"`
	Caching      bool          `mapstructure:"caching"       yaml:"caching"`
	Timezone     string        `mapstructure:"timezone"      yaml:"timezone"                validate:"omitempty,tzoffset"`
	LogLevel     string        `mapstructure:"log_level"     yaml:"log_level"               validate:"omitempty,oneof=DEBUG INFO WARN WARNING ERROR CRITICAL"`
	BaseURL      string        `mapstructure:"base_url"      yaml:"base_url,omitempty"      validate:"omitempty,url"`
	Retries      int           `mapstructure:"retries"       yaml:"retries"                 validate:"gte=1,lte=10"`
	Timeout      time.Duration `mapstructure:"timeout"       yaml:"timeout"                 validate:"gte=0"`
	HTTP2        bool          `mapstructure:"http2"         yaml:"http2"`
	CacheBackend string        `mapstructure:"cache_backend" yaml:"cache_backend,omitempty" validate:"omitempty,oneof=memory nats redis none"`
	NATSURL      string        `mapstructure:"nats_url"      yaml:"nats_url,omitempty"      validate:"required_if=CacheBackend nats"`
	RedisAddr    string        `mapstructure:"redis_addr"    yaml:"redis_addr,omitempty"    validate:"required_if=CacheBackend redis"`

	// File is the settings file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// LoadOptions selects the sources LoadSettings reads.
type LoadOptions struct {
	// File is an explicit settings file. Its extension picks the format:
	// .yaml, .yml, .json, .toml or .ini.
	File string
	// SearchPaths are searched for tdxlib.{yaml,yml,json,toml,ini} when File
	// is empty. Defaults to the working directory and ~/.tdx.
	SearchPaths []string
	// Values override the file. Keys may be nested under "TDX API Settings".
	Values map[string]interface{}
	// IgnoreEnv skips TDXLIB_* environment variables.
	IgnoreEnv bool
}

// LoadSettings resolves settings from the environment, the explicit values
// and a settings file, in that order of precedence, then validates them.
func LoadSettings(opts LoadOptions) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if !opts.IgnoreEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

		for _, key := range Keys {
			if err := v.BindEnv(key); err != nil {
				return nil, fmt.Errorf("binding %s: %w", key, err)
			}
		}
	}

	file, err := readSettingsFile(v, opts)
	if err != nil {
		return nil, err
	}

	if len(opts.Values) > 0 {
		if err := v.MergeConfigMap(canonicalize(section(opts.Values))); err != nil {
			return nil, fmt.Errorf("merging settings: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	settings.File = file
	settings.LogLevel = strings.ToUpper(strings.TrimSpace(settings.LogLevel))

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyOrgName, "")
	v.SetDefault(KeyFullHost, "")
	v.SetDefault(KeySandbox, true)
	v.SetDefault(KeyAuthType, tdx.AuthTypePassword)
	v.SetDefault(KeyUsername, "")
	v.SetDefault(KeyPassword, "")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyTicketAppID, 0)
	v.SetDefault(KeyAssetAppID, 0)
	v.SetDefault(KeyCaching, false)
	v.SetDefault(KeyTimezone, defaultSettingsTimezone)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyRetries, constants.DefaultRetries)
	v.SetDefault(KeyTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(KeyHTTP2, false)
	v.SetDefault(KeyCacheBackend, "")
	v.SetDefault(KeyNATSURL, "")
	v.SetDefault(KeyRedisAddr, "")
}

// readSettingsFile merges the settings file into v and returns its path.
// A missing file is only an error when it was named explicitly.
func readSettingsFile(v *viper.Viper, opts LoadOptions) (string, error) {
	path := opts.File

	if path == "" {
		path = findIniFile(searchPaths(opts))
	}

	if path != "" && strings.EqualFold(filepath.Ext(path), ".ini") {
		values, err := readIniFile(path)
		if err != nil {
			return "", err
		}

		if err := v.MergeConfigMap(values); err != nil {
			return "", fmt.Errorf("merging %s: %w", path, err)
		}

		return path, nil
	}

	fv := viper.New()

	if path != "" {
		fv.SetConfigFile(path)
	} else {
		fv.SetConfigName(DefaultSettingsName)

		for _, dir := range searchPaths(opts) {
			fv.AddConfigPath(dir)
		}
	}

	if err := fv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}

		return "", fmt.Errorf("reading settings file: %w", err)
	}

	if err := v.MergeConfigMap(canonicalize(section(fv.AllSettings()))); err != nil {
		return "", fmt.Errorf("merging %s: %w", fv.ConfigFileUsed(), err)
	}

	return fv.ConfigFileUsed(), nil
}

func searchPaths(opts LoadOptions) []string {
	if len(opts.SearchPaths) > 0 {
		return opts.SearchPaths
	}

	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tdx"))
	}

	return paths
}

func findIniFile(dirs []string) string {
	for _, dir := range dirs {
		path := filepath.Join(dir, DefaultSettingsName+".ini")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// readIniFile reads the settings section of an ini file. Keys outside the
// section are read when the file has no such section.
func readIniFile(path string) (map[string]interface{}, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	sec, err := file.GetSection(SettingsSection)
	if err != nil {
		sec = file.Section(ini.DefaultSection)
	}

	values := make(map[string]interface{}, len(sec.Keys()))
	for _, key := range sec.Keys() {
		values[strings.ToLower(key.Name())] = key.Value()
	}

	return canonicalize(values), nil
}

// section unwraps values nested under the settings section name.
func section(values map[string]interface{}) map[string]interface{} {
	for key, value := range values {
		if !strings.EqualFold(key, SettingsSection) {
			continue
		}

		if nested, ok := value.(map[string]interface{}); ok {
			return nested
		}
	}

	return values
}

// canonicalize lower-cases keys, rewrites legacy spellings and accepts the
// yes/no/on/off spellings of booleans.
func canonicalize(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))

	legacy := make(map[string]interface{})

	for key, value := range values {
		key = strings.ToLower(key)
		if current, ok := legacyKeys[key]; ok {
			legacy[current] = value

			continue
		}

		if s, ok := value.(string); ok && boolKeys[key] {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "yes", "on", "y":
				value = true
			case "no", "off", "n":
				value = false
			}
		}

		out[key] = value
	}

	// The current spelling wins when both are present.
	for key, value := range legacy {
		if _, ok := out[key]; !ok {
			out[key] = value
		}
	}

	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report settings keys rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("tzoffset", func(fl validator.FieldLevel) bool {
		_, _, err := tdx.ParseOffset(fl.Field().String())

		return err == nil
	})

	return v
}

// Validate checks the settings. Either org_name, full_host or base_url must
// name the service.
func (s *Settings) Validate() error {
	if s.OrgName == "" && s.FullHost == "" && s.BaseURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, constants.ErrNoHost)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldErrorMessage(fe))
	}

	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(messages, "; "))
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, strings.Replace(fe.Param(), " ", " is ", 1))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "tzoffset":
		return constants.ErrInvalidTimezone.Error()
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname", "hostname_port", "hostname_port|hostname":
		return fmt.Sprintf("%s must be a host name", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// APIURL returns the API root: base_url when set, otherwise the hosted or
// full host with the sandbox or production API path.
func (s *Settings) APIURL() (string, error) {
	if s.BaseURL != "" {
		return strings.TrimSuffix(s.BaseURL, "/"), nil
	}

	var host string

	switch {
	case s.FullHost != "":
		host = strings.TrimSuffix(strings.TrimPrefix(s.FullHost, "https://"), "/")
	case s.OrgName != "":
		host = s.OrgName + constants.HostedDomain
	default:
		return "", constants.ErrNoHost
	}

	apiPath := constants.ProductionAPIPath
	if s.Sandbox {
		apiPath = constants.SandboxAPIPath
	}

	return "https://" + host + apiPath, nil
}

// PromptsForPassword reports whether the password must be asked for.
func (s *Settings) PromptsForPassword() bool {
	return s.AuthType != tdx.AuthTypeToken && (s.Password == "" || s.Password == PasswordPromptValue)
}

// CacheConfig returns the second-tier cache configuration, or nil when only
// the in-process lookup tables are used.
func (s *Settings) CacheConfig() *tdx.CacheConfig {
	switch tdx.CacheType(s.CacheBackend) {
	case tdx.CacheTypeMemory:
		return tdx.DefaultCacheConfig()
	case tdx.CacheTypeNATS:
		return &tdx.CacheConfig{
			Type: tdx.CacheTypeNATS,
			NATS: &tdx.NATSKVConfig{
				URL:    s.NATSURL,
				Bucket: constants.DefaultNATSBucket,
				TTL:    constants.DefaultCacheTTL,
			},
			Memory:  memoryTier(),
			Options: tdx.DefaultCacheOptions(),
		}
	case tdx.CacheTypeRedis:
		return &tdx.CacheConfig{
			Type:    tdx.CacheTypeRedis,
			Redis:   &tdx.RedisConfig{Addr: s.RedisAddr},
			Memory:  memoryTier(),
			Options: tdx.DefaultCacheOptions(),
		}
	default:
		return nil
	}
}

// memoryTier is the in-process tier placed in front of a remote backend.
func memoryTier() *tdx.MemoryCacheConfig {
	return &tdx.MemoryCacheConfig{MaxSize: constants.DefaultCacheSize, CleanupInterval: "1m"}
}

// ToConfig builds a client configuration. A password of "Prompt" is left
// empty so that Config.PasswordPrompt is consulted.
func (s *Settings) ToConfig() (*tdx.Config, error) {
	apiURL, err := s.APIURL()
	if err != nil {
		return nil, err
	}

	password := s.Password
	if password == PasswordPromptValue {
		password = ""
	}

	return &tdx.Config{
		BaseURL:     apiURL,
		AuthType:    s.AuthType,
		Username:    s.Username,
		Password:    password,
		Token:       s.Token,
		TicketAppID: s.TicketAppID,
		AssetAppID:  s.AssetAppID,
		Caching:     s.Caching,
		Cache:       s.CacheConfig(),
		Timezone:    s.Timezone,
		Retries:     s.Retries,
		HTTPTimeout: s.Timeout,
		HTTP2:       s.HTTP2,
		Debug:       s.LogLevel == "DEBUG",
		Logger:      logging.New(logging.Options{Level: s.LogLevel}),
	}, nil
}
