package main

import (
	"fmt"
	"time"

	"inmatesearch-backend/lib/booking"
	"inmatesearch-backend/lib/configutil"
	"inmatesearch-backend/lib/restyutil"
	"inmatesearch-backend/lib/scrapers/sheriff"
	"inmatesearch-backend/services/inmatesearch"
)

type Config struct {
	Port        int    `json:"port"`
	AccessToken string `json:"access_token"`

	Driver         string   `json:"driver"`
	BaseUrl        string   `json:"base_url"`
	ChromePath     string   `json:"chrome_path"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	Attempts       uint     `json:"attempts"`
	DefaultMode    string   `json:"default_mode"`
	Modes          []string `json:"modes"`
	// the most detail pages one request follows, 0 follows every match
	MaxDetails    int                  `json:"max_details"`
	ResultsLayout *ResultsLayoutConfig `json:"results_layout"`
	// writes every http exchange of the http driver to this directory
	DumpHttp string `json:"dump_http"`
}

// ResultsLayoutConfig overrides single columns of
// booking.DefaultResultsLayout, columns left out keep their default.
type ResultsLayoutConfig struct {
	Name          *int `json:"name"`
	Dob           *int `json:"dob"`
	Race          *int `json:"race"`
	Sex           *int `json:"sex"`
	Location      *int `json:"location"`
	Soid          *int `json:"soid"`
	DaysInCustody *int `json:"days_in_custody"`
}

func (c *ResultsLayoutConfig) Layout() booking.ResultsLayout {
	layout := booking.DefaultResultsLayout
	if c == nil {
		return layout
	}
	overrides := []struct {
		value  *int
		column *int
	}{
		{c.Name, &layout.Name},
		{c.Dob, &layout.Dob},
		{c.Race, &layout.Race},
		{c.Sex, &layout.Sex},
		{c.Location, &layout.Location},
		{c.Soid, &layout.Soid},
		{c.DaysInCustody, &layout.DaysInCustody},
	}
	for _, o := range overrides {
		if o.value != nil {
			*o.column = *o.value
		}
	}
	return layout
}

var defaultConfig = Config{
	Port:           8000,
	Driver:         string(sheriff.HttpDriver),
	BaseUrl:        sheriff.DefaultBaseUrl,
	TimeoutSeconds: int(sheriff.DefaultTimeout / time.Second),
	DefaultMode:    inmatesearch.DefaultMode,
}

func ReadConfig(name string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](name)
	if err != nil {
		return Config{}, err
	}
	cfg, err = configutil.WithDefaults(cfg, defaultConfig)
	if err != nil {
		return Config{}, err
	}
	configutil.EnvInt(&cfg.Port, "PORT")
	configutil.EnvString(&cfg.AccessToken, "ACCESS_TOKEN")

	if cfg.MaxDetails < 0 {
		return Config{}, fmt.Errorf("max_details must not be negative")
	}
	switch sheriff.Driver(cfg.Driver) {
	case sheriff.HttpDriver, sheriff.ChromeDriver:
	default:
		return Config{}, fmt.Errorf("unknown driver %q, expected http or chrome", cfg.Driver)
	}
	return cfg, nil
}

func (c Config) SessionOptions() (sheriff.Options, error) {
	opts := sheriff.Options{
		BaseUrl:    c.BaseUrl,
		Driver:     sheriff.Driver(c.Driver),
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
		ChromePath: c.ChromePath,
		Attempts:   c.Attempts,
	}
	if c.DumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(c.DumpHttp)
		if err != nil {
			return sheriff.Options{}, err
		}
		opts.Dump = output
	}
	return opts, nil
}

func (c Config) ServiceOptions() inmatesearch.Options {
	return inmatesearch.Options{
		DefaultMode:   c.DefaultMode,
		Modes:         c.Modes,
		MaxDetails:    c.MaxDetails,
		ResultsLayout: c.ResultsLayout.Layout(),
		AccessToken:   c.AccessToken,
	}
}
