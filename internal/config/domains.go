package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DomainsConfig represents the structure of the domains.yaml file.
// It declares the filter sections each media domain presents: genre
// vocabulary and the sort keys offered to the user. The comparator for each
// sort key lives in code; this file only controls what is exposed.
type DomainsConfig struct {
	Domains []DomainConfig `yaml:"domains"`
}

// DomainConfig defines one media domain's list sections.
type DomainConfig struct {
	Slug          string   `yaml:"slug"`           // moviestv, music, books, games
	Label         string   `yaml:"label"`          // display name, e.g. "Movies & TV"
	ConsumedLabel string   `yaml:"consumed_label"` // watched, listened, read, played
	Genres        []string `yaml:"genres"`
	SortOptions   []string `yaml:"sort_options"`
}

// LoadDomainsConfig loads the YAML domain configuration.
// Path is determined by DOMAINS_FILE env var, defaulting to "domains.yaml".
// Returns built-in defaults if the file doesn't exist.
func LoadDomainsConfig() (*DomainsConfig, error) {
	path := getEnv("DOMAINS_FILE", "domains.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDomainsConfig(), nil
		}
		return nil, err
	}

	var cfg DomainsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Fill gaps from defaults so a partial file stays usable
	defaults := DefaultDomainsConfig()
	for i := range cfg.Domains {
		d := &cfg.Domains[i]
		base := defaults.GetDomain(d.Slug)
		if base == nil {
			continue
		}
		if d.Label == "" {
			d.Label = base.Label
		}
		if d.ConsumedLabel == "" {
			d.ConsumedLabel = base.ConsumedLabel
		}
		if len(d.SortOptions) == 0 {
			d.SortOptions = base.SortOptions
		}
	}
	if len(cfg.Domains) == 0 {
		return defaults, nil
	}

	return &cfg, nil
}

// GetDomain finds a domain config by its slug.
func (c *DomainsConfig) GetDomain(slug string) *DomainConfig {
	if c == nil {
		return nil
	}
	for i := range c.Domains {
		if c.Domains[i].Slug == slug {
			return &c.Domains[i]
		}
	}
	return nil
}

// DefaultDomainsConfig returns the built-in domain definitions.
func DefaultDomainsConfig() *DomainsConfig {
	return &DomainsConfig{
		Domains: []DomainConfig{
			{
				Slug:          "moviestv",
				Label:         "Movies & TV",
				ConsumedLabel: "watched",
				Genres:        []string{"action", "comedy", "documentary", "drama", "horror", "sci-fi", "thriller"},
				SortOptions:   []string{"sent", "title", "year", "status", "custom"},
			},
			{
				Slug:          "music",
				Label:         "Music",
				ConsumedLabel: "listened",
				Genres:        []string{"electronic", "hip-hop", "jazz", "metal", "pop", "rock"},
				SortOptions:   []string{"sent", "title", "artist", "status", "custom"},
			},
			{
				Slug:          "books",
				Label:         "Books",
				ConsumedLabel: "read",
				Genres:        []string{"biography", "fantasy", "history", "mystery", "non-fiction", "sci-fi"},
				SortOptions:   []string{"sent", "title", "author", "status", "custom"},
			},
			{
				Slug:          "games",
				Label:         "Games",
				ConsumedLabel: "played",
				Genres:        []string{"adventure", "indie", "rpg", "shooter", "simulation", "strategy"},
				SortOptions:   []string{"sent", "title", "platform", "status", "custom"},
			},
		},
	}
}
