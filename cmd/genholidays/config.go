package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v2"

	"github.com/rabitt1ove/cn-holidays/recordfile"
)

const (
	// Search API of the State Council policy library; {year} is substituted.
	defaultSearchURL = "https://sousuo.www.gov.cn/search-gov/data?t=zhengcelibrary_gw&q={year}%E8%8A%82%E5%81%87%E6%97%A5%E5%AE%89%E6%8E%92&searchfield=title&sort=pubtime&n=10"

	defaultTitlePattern = "*部分节假日安排的通知*"
	defaultUserAgent    = "cn-holidays-generator/1.0 (https://github.com/rabitt1ove/cn-holidays)"
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultRPS          = 2.0
	defaultWorkers      = 4
	defaultOutput       = "holidays.json"
)

var (
	defaultAllowedHosts = []string{"sousuo.www.gov.cn", "www.gov.cn"}
	defaultResultPath   = []string{"searchVO", "listVO"}
)

// config holds the settings of the fetch pipeline.
type config struct {
	SearchURL         string
	ResultPath        []string
	AllowedHosts      map[string]bool
	TitlePattern      string
	Title             glob.Glob
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Workers           int
	Output            string
	Format            recordfile.Format
}

func defaultConfig() *config {
	c := &config{}
	if err := c.Parse(nil); err != nil {
		panic(err)
	}
	return c
}

// Parse fills c from YAML, applying defaults for every omitted key.
func (c *config) Parse(data []byte) error {
	var (
		err error
		aux struct {
			SearchURL         string   `yaml:"search_url"`
			ResultPath        []string `yaml:"result_path"`
			AllowedHosts      []string `yaml:"allowed_hosts"`
			TitlePattern      string   `yaml:"title_pattern"`
			UserAgent         string   `yaml:"user_agent"`
			Timeout           string   `yaml:"timeout"`
			MaxRetries        int      `yaml:"max_retries"`
			RequestsPerSecond float64  `yaml:"requests_per_second"`
			Workers           int      `yaml:"workers"`
			Output            string   `yaml:"output"`
			Format            string   `yaml:"format"`
		}
	)
	if err := yaml.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	c.SearchURL = aux.SearchURL
	if c.SearchURL == "" {
		c.SearchURL = defaultSearchURL
	}
	if !strings.Contains(c.SearchURL, "{year}") {
		return fmt.Errorf("search_url %q has no {year} placeholder", c.SearchURL)
	}

	c.ResultPath = aux.ResultPath
	if len(c.ResultPath) == 0 {
		c.ResultPath = defaultResultPath
	}

	hosts := aux.AllowedHosts
	if len(hosts) == 0 {
		hosts = defaultAllowedHosts
	}
	c.AllowedHosts = make(map[string]bool, len(hosts))
	for _, h := range hosts {
		c.AllowedHosts[strings.ToLower(strings.TrimSpace(h))] = true
	}

	c.TitlePattern = aux.TitlePattern
	if c.TitlePattern == "" {
		c.TitlePattern = defaultTitlePattern
	}
	if c.Title, err = glob.Compile(c.TitlePattern); err != nil {
		return fmt.Errorf("title_pattern %q: %w", c.TitlePattern, err)
	}

	c.UserAgent = aux.UserAgent
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}

	c.Timeout = defaultTimeout
	if aux.Timeout != "" {
		if c.Timeout, err = time.ParseDuration(aux.Timeout); err != nil {
			return fmt.Errorf("timeout %q: %w", aux.Timeout, err)
		}
	}

	c.MaxRetries = aux.MaxRetries
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}

	c.RequestsPerSecond = aux.RequestsPerSecond
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = defaultRPS
	}

	c.Workers = aux.Workers
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}

	c.Output = aux.Output
	if c.Output == "" {
		c.Output = defaultOutput
	}

	if aux.Format != "" {
		if c.Format, err = recordfile.ParseFormat(aux.Format); err != nil {
			return err
		}
	}
	return nil
}
