package services

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoLocation is the resolved location of a client IP
type GeoLocation struct {
	Country string
	City    string
}

// GeoService resolves client IPs to locations. Lookups are best effort;
// visit recording proceeds with empty fields when resolution fails.
type GeoService interface {
	Lookup(ip string) (*GeoLocation, error)
	Close() error
}

// MaxMindGeoService resolves IPs against a local MaxMind City database
type MaxMindGeoService struct {
	reader *geoip2.Reader
}

func NewMaxMindGeoService(dbPath string) (GeoService, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &MaxMindGeoService{reader: reader}, nil
}

func (s *MaxMindGeoService) Lookup(ip string) (*GeoLocation, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid ip address: %q", ip)
	}

	record, err := s.reader.City(parsed)
	if err != nil {
		return nil, fmt.Errorf("geoip lookup failed: %w", err)
	}

	return &GeoLocation{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
	}, nil
}

func (s *MaxMindGeoService) Close() error {
	return s.reader.Close()
}

// NoopGeoService is used when no geoip database is configured
type NoopGeoService struct{}

func NewNoopGeoService() GeoService { return &NoopGeoService{} }

func (s *NoopGeoService) Lookup(ip string) (*GeoLocation, error) {
	return &GeoLocation{}, nil
}

func (s *NoopGeoService) Close() error { return nil }
