package service_platform

import (
	"fmt"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
)

const (
	PlatformDryRun    = "dryrun"
	PlatformAdsBridge = "adsbridge"
)

// GatewayFactory creates mutation gateways by platform type
type GatewayFactory struct {
	cfg config.PlatformConfig
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg config.PlatformConfig) *GatewayFactory {
	return &GatewayFactory{cfg: cfg}
}

// CreateGateway creates the gateway configured for platformType
func (f *GatewayFactory) CreateGateway(platformType string) (MutationGateway, error) {
	switch platformType {
	case PlatformDryRun:
		return NewDryRunGateway(f.cfg.CustomerID), nil
	case PlatformAdsBridge:
		return NewAdsBridgeGateway(f.cfg)
	default:
		return nil, fmt.Errorf("unsupported ads platform type: %s", platformType)
	}
}

// GetSupportedPlatforms returns list of supported platforms
func (f *GatewayFactory) GetSupportedPlatforms() []string {
	return []string{
		PlatformDryRun,
		PlatformAdsBridge,
	}
}
