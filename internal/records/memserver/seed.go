package memserver

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
)

// Seed is the shape of a record service database file.
type Seed struct {
	Products  []catalogdomain.Product `json:"products"`
	Users     []User                  `json:"users"`
	CartItems []cartdomain.Record     `json:"cartItems"`
}

// ParseSeed reads a database document in YAML or JSON. Field names follow the
// JSON wire format in both cases.
func ParseSeed(data []byte) (Seed, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

func (s *Server) Load(seed Seed) {
	s.SeedProducts(seed.Products...)
	s.SeedUsers(seed.Users...)
	s.SeedCartItems(seed.CartItems...)
}
