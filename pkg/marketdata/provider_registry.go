package marketdata

import (
	"sort"

	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/pkg/errors"
	"github.com/tidemark-labs/tidemark/pkg/marketdata/provider"
)

// ProviderInfo describes one supported market data vendor.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

var providerRegistry = map[provider.Type]ProviderInfo{
	provider.TypePolygon: {
		Name:         string(provider.TypePolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data with historical OHLCV aggregates",
		RequiresAuth: true,
	},
	provider.TypeBinance: {
		Name:         string(provider.TypeBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange klines for spot trading pairs",
		RequiresAuth: false,
	},
}

// SupportedProviders returns the names of all registered providers in
// alphabetical order.
func SupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for one provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.Type(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", providerName)
	}

	return info, nil
}

// GetDownloadConfigSchema returns the JSON schema of a provider's
// download config, used by callers that build request forms.
func GetDownloadConfigSchema(providerName string) (string, error) {
	switch provider.Type(providerName) {
	case provider.TypePolygon:
		//nolint:exhaustruct // empty struct, only the shape matters
		return strategy.ToJSONSchema(PolygonDownloadConfig{})
	case provider.TypeBinance:
		//nolint:exhaustruct // empty struct, only the shape matters
		return strategy.ToJSONSchema(BinanceDownloadConfig{})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", providerName)
	}
}

// ParseDownloadConfig parses a JSON download config for the given
// provider.
func ParseDownloadConfig(providerName string, jsonConfig string) (DownloadConfig, error) {
	switch provider.Type(providerName) {
	case provider.TypePolygon:
		config, err := ParsePolygonConfig(jsonConfig)
		if err != nil {
			return nil, err
		}

		return config, nil
	case provider.TypeBinance:
		config, err := ParseBinanceConfig(jsonConfig)
		if err != nil {
			return nil, err
		}

		return config, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", providerName)
	}
}
