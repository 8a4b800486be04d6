package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"tasklet/internal/api"
	"tasklet/internal/config"
)

// newAgentClient creates the Anthropic client from configuration.
func newAgentClient(cfg *config.Config) (*api.Client, error) {
	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}
