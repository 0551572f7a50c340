// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Session token issuer and cookie configuration.
  - Library: Facet thresholds and the volume grouping sentinels.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "mangasite"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Uploads of full chapter image sets need far more than a JSON API would.
	DefaultReadTimeout = 120 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 5 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 90 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	// A chapter view pulls every page image in quick succession.
	DefaultRateLimitBurst = 200

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "mangasite"

	// SessionCookieName carries the signed session token.
	SessionCookieName = "session"

	// FamilySafeCookieName stores the anonymous visitor's family-safe choice.
	FamilySafeCookieName = "family_safe"

	// LoginPath is where unauthenticated browser requests are sent.
	LoginPath = "/login"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAccept        = "Accept"
	HeaderReferer       = "Referer"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Library

const (
	// LibraryPageSize is the fixed page size of the library listing.
	LibraryPageSize = 10

	// HotChapterThreshold is the chapter count at which a title is flagged "hot".
	HotChapterThreshold = 3

	// NewMangaCount is how many of the most recently added titles are flagged "new".
	NewMangaCount = 5

	// RelatedLimit caps the related-titles list on the detail view.
	RelatedLimit = 6

	// RatingAdult is the only non-empty rating value.
	RatingAdult = "18+"

	// UnknownVolume is the normalization sentinel for missing chapter volumes.
	UnknownVolume = "Unknown Volume"

	// SpecialsVolume collects every non-numeric, non-unknown volume label.
	SpecialsVolume = "Specials"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession      = "auth:session:"
	RedisPrefixLibrary      = "library:"
	RedisKeyCatalogVersion  = "library:catalog:version"

	// Per-manga names, placed under the versioned library prefix.
	RedisPrefixMangaBySlug  = "manga:slug:"
	RedisPrefixChapterLists = "manga:chapters:"
)
