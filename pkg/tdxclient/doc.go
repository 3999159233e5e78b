// Package tdxclient provides the primary entry point for constructing a
// TeamDynamix Web API client that implements the tdx.Client interface.
//
// It layers settings resolution, HTTP transport, token authentication and
// lookup caching on top of the resource interfaces and types defined in the
// tdx package. Most applications should import tdxclient to build a client,
// then use the returned tdx.Client to reach the resource-specific clients,
// for example Tickets(), Assets() or People().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/tdx-client/pkg/tdx"
//	  "github.com/fivetwenty-io/tdx-client/pkg/tdxclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Explicit configuration with a service account:
//	  cli, err := tdxclient.New(ctx, &tdx.Config{
//	    BaseURL:     "https://example.teamdynamix.com/TDWebApi/api",
//	    Username:    "svc-tdx",
//	    Password:    "secret",
//	    TicketAppID: 40,
//	    AssetAppID:  50,
//	    Caching:     true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or resolve settings from tdxlib.yaml / tdxlib.ini, TDXLIB_* variables
//	  // and explicit values:
//	  cli, err = tdxclient.NewFromSettings(ctx, tdxclient.LoadOptions{
//	    Values: map[string]interface{}{"org_name": "example", "sandbox": false},
//	  }, nil)
//	  if err != nil { log.Fatal(err) }
//
//	  tickets, err := cli.Tickets().Search(ctx, tdx.TicketSearchOptions{SearchText: "printer"})
//	  if err != nil { log.Fatal(err) }
//	  _ = tickets
//	}
//
// # Settings
//
// LoadSettings reads the keys listed in Keys. Environment variables named
// TDXLIB_<KEY> win over explicit values, which win over the settings file.
// The API root is https://{org_name}.teamdynamix.com or https://{full_host},
// followed by /SBTDWebApi/api when sandbox is set and /TDWebApi/api otherwise.
// A password of "Prompt" defers to the prompt given to NewFromSettings.
//
// # Helpers
//
// The package also provides convenience constructors NewWithToken and
// NewWithPassword that wrap New with the appropriate configuration.
package tdxclient
