package main

import (
	"os"

	"github.com/joho/godotenv"

	"product-image-studio/app/cli"
	"product-image-studio/logging"
)

func main() {
	log := logging.Default()

	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENV") != "production" {
		// Use Overload to ensure .env values override system environment variables
		envPath := ".env"
		if err := godotenv.Overload(envPath); err != nil {
			log.Debugf("⚠️  .env file not found at %s, using system environment variables", envPath)
		} else {
			log.Debugf("✓ Loaded environment variables from %s (overriding system variables)", envPath)
			credsJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
			credsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
			if len(credsJSON) > 0 {
				log.Debugf("GOOGLE_APPLICATION_CREDENTIALS_JSON is set (using JSON from environment)")
			} else if credsPath != "" {
				log.Debugf("GOOGLE_APPLICATION_CREDENTIALS after loading .env: %s", credsPath)
			}
		}
	}

	if err := cli.Execute(); err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
}
