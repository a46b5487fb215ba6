package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DiscordToken    string `env:"DISCORD_TOKEN,required"`
	CommandPrefix   string `env:"COMMAND_PREFIX" envDefault:"!"`
	DefaultProvider string `env:"DEFAULT_PROVIDER" envDefault:"openai"`
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	OpenAIModel     string `env:"OPENAI_MODEL" envDefault:"gpt-4.1-mini"`
	ImageModel      string `env:"IMAGE_MODEL" envDefault:"gpt-image-1"`
	OllamaHost      string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	Port            string `env:"PORT" envDefault:"8080"`
}

// FromEnv loads configuration from environment variables.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
