// Package tdx provides types, interfaces, and helpers for working with the
// TeamDynamix web API.
//
// # Overview
//
// The tdx package defines the reference-data types (Account, Person, Group,
// Location, CustomAttribute, ...), the typed attribute schemas for tickets,
// assets and accounts, and the interfaces for resource-oriented clients
// (TicketsClient, AssetsClient, ...). A concrete implementation is provided by
// the tdxclient package, which wires configuration, authentication, rate
// limiting and the lookup caches.
//
// Getting a client
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
//	  cli, err := tdxclient.New(ctx, &tdx.Config{
//	    BaseURL:     "https://example.teamdynamix.com/TDWebApi/api",
//	    Username:    "svc-account",
//	    Password:    "secret",
//	    TicketAppID: 31,
//	    Caching:     true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  ticket, err := cli.Tickets().Get(ctx, 555058)
//	  if err != nil { log.Fatal(err) }
//	  _ = ticket
//	}
//
// # Entities
//
// Tickets, assets and accounts are held as *Entity values checked against a
// Schema. Import loads server JSON, dropping empty values; Update applies
// changes after validating every key, optionally restricted to the editable
// set; Export produces wire-ready data with dates in the configured offset:
//
//	t, err := tdx.ImportEntity(tdx.TicketSchema, codec, raw, false)
//	err = t.Update(map[string]interface{}{"Title": "Printer jam"}, true)
//	body, err := t.Export(true)
//
// # Errors
//
// Operations return typed errors (*HTTPError, *NotFoundError,
// *ValidationError, ...) that match sentinel values through errors.Is. Helpers
// such as IsNotFound and IsValidation cover the common checks.
//
// # Caching
//
// Reference data is held in per-kind lookup tables inside the client. A Cache
// backend (memory, NATS KV or Redis, or a CacheChain of them) can be added as
// a second tier so several processes share bulk fills. A NATS or Redis config
// that also carries a Memory config is fronted by an in-process tier. Keys are
// scoped to the API URL and application IDs, so clients of different tenants
// can share one store.
package tdx
