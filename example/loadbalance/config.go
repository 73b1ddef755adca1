package main

import (
	"flag"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EndpointConfig describes one backend instance the way an operator would
// hand-author it in loadbalance.yaml -- the fields flb.StaticEndpoint needs
// plus the per-method overrides it exposes through WithAttr.
type EndpointConfig struct {
	Address          string         `mapstructure:"address"`
	StartTimestampMs int64          `mapstructure:"start_timestamp_ms"`
	Weight           int            `mapstructure:"weight"`
	WarmupMs         int            `mapstructure:"warmup_ms"`
	HashNodes        int            `mapstructure:"hash_nodes"`
	HashArguments    string         `mapstructure:"hash_arguments"`
	MethodWeights    map[string]int `mapstructure:"method_weights"`
}

// Config is the top-level loadbalance.yaml shape.
type Config struct {
	ServiceKey string           `mapstructure:"service_key"`
	Policy     string           `mapstructure:"policy"`
	Endpoints  []EndpointConfig `mapstructure:"endpoints"`
}

// loadConfig reads loadbalance.yaml (or -config on the command line) the
// same way fit.NewReadInConfig wires pflag into viper, generalized to this
// program's own flag set instead of the shared global one.
func loadConfig(path string) (*Config, error) {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("policy", "random")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
