// Package specdoc resolves and loads the OpenAPI specification document
// the portal's viewer renders.
//
// This package defines a Source interface with implementations for:
// - LocalSource: a file under the deployment root (development)
// - RemoteSource: an http(s) URL
// - R2Source: Cloudflare R2 (S3-compatible) object storage (production)
//
// All sources return the raw document bytes; callers decide how strictly
// to validate them.
package specdoc

import (
	"context"
	"regexp"
	"strings"

	"github.com/vasilisgee/api-doci/internal/domain"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Source loads the configured specification document.
type Source interface {
	// Load returns the raw bytes of the document.
	Load(ctx context.Context) ([]byte, error)
}

// =============================================================================
// Errors
// =============================================================================

// Sentinel errors, comparable with errors.Is. Both carry a domain error
// code so handler-boundary logging can classify failures uniformly.
var (
	// ErrInvalidSource is returned for empty or path-escaping locations.
	ErrInvalidSource error = &domain.Error{Code: domain.EINVALID, Op: "specdoc", Message: "invalid source location"}

	// ErrNotFound is returned when the document does not exist.
	ErrNotFound error = &domain.Error{Code: domain.ENOTFOUND, Op: "specdoc", Message: "document not found"}
)

// =============================================================================
// Provider Selection
// =============================================================================

// Provider identifiers accepted by Config.Provider.
const (
	ProviderAuto   = "auto"
	ProviderLocal  = "local"
	ProviderRemote = "remote"
	ProviderR2     = "r2"
)

// remotePattern matches locations that are already absolute http(s) URLs.
var remotePattern = regexp.MustCompile(`(?i)^https?://`)

// Config selects and parameterizes a document source.
type Config struct {
	// Provider is one of the Provider* constants. ProviderAuto picks
	// ProviderRemote for http(s) locations and ProviderLocal otherwise.
	Provider string

	// Location is the provider-specific document address: a path under
	// the deployment root, an http(s) URL, or an object key.
	Location string

	// RootDir confines local paths; it is the deployment root.
	RootDir string

	// R2 holds object storage settings, used when Provider is ProviderR2.
	R2 R2Config
}

// R2Config holds Cloudflare R2 connection settings.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
}

// ResolveProvider returns the effective provider for the config,
// expanding ProviderAuto based on the location's shape.
func (c Config) ResolveProvider() string {
	if c.Provider != ProviderAuto && c.Provider != "" {
		return c.Provider
	}
	if remotePattern.MatchString(c.Location) {
		return ProviderRemote
	}
	return ProviderLocal
}

// New constructs the Source selected by cfg.
func New(cfg Config) (Source, error) {
	switch provider := cfg.ResolveProvider(); provider {
	case ProviderLocal:
		return NewLocalSource(cfg.RootDir, cfg.Location)
	case ProviderRemote:
		return NewRemoteSource(cfg.Location)
	case ProviderR2:
		return NewR2Source(cfg.R2, cfg.Location)
	default:
		return nil, domain.Errorf(domain.EINVALID, "specdoc.new", "unknown provider %q", provider)
	}
}

// normalizeLocation strips leading path separators so that absolute-style
// locations are interpreted relative to the deployment root.
func normalizeLocation(location string) string {
	return strings.TrimLeft(location, "/\\")
}
