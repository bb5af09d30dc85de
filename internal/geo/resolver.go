package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
	"github.com/seatbill/seatbill/internal/config"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/types"
)

// Resolver maps a client IP to coarse location data for payment records.
// Resolution is best effort: lookup failures degrade to an IP-only result,
// never to an error, so billing does not depend on the geo provider.
type Resolver interface {
	Resolve(ctx context.Context, ip string) types.GeoInfo
}

type httpResolver struct {
	client   *retryablehttp.Client
	cache    *gocache.Cache
	endpoint string
	logger   *logger.Logger
}

func NewResolver(cfg *config.Configuration, log *logger.Logger) Resolver {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = time.Duration(cfg.Geo.TimeoutSeconds) * time.Second
	client.Logger = nil

	ttl := time.Duration(cfg.Geo.CacheTTLMinutes) * time.Minute
	return &httpResolver{
		client:   client,
		cache:    gocache.New(ttl, 2*ttl),
		endpoint: cfg.Geo.Endpoint,
		logger:   log,
	}
}

type lookupResponse struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Timezone    string `json:"timezone"`
}

func (r *httpResolver) Resolve(ctx context.Context, ip string) types.GeoInfo {
	fallback := types.GeoInfo{IP: ip}
	if ip == "" || r.endpoint == "" {
		return fallback
	}

	if cached, found := r.cache.Get(ip); found {
		return cached.(types.GeoInfo)
	}

	info, err := r.lookup(ctx, ip)
	if err != nil {
		r.logger.Warnw("geo lookup failed", "ip", ip, "error", err)
		return fallback
	}

	r.cache.SetDefault(ip, info)
	return info
}

func (r *httpResolver) lookup(ctx context.Context, ip string) (types.GeoInfo, error) {
	url := fmt.Sprintf("%s/%s", r.endpoint, ip)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.GeoInfo{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return types.GeoInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.GeoInfo{}, fmt.Errorf("geo provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.GeoInfo{}, err
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return types.GeoInfo{}, err
	}

	return types.GeoInfo{
		IP:          ip,
		Country:     lookup.Country,
		CountryCode: lookup.CountryCode,
		Region:      lookup.Region,
		City:        lookup.City,
		Timezone:    lookup.Timezone,
	}, nil
}
