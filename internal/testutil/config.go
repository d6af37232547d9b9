package testutil

import "os"

const (
	// Test credential environment variables
	TestClientID     = "TEST_EBAY_CLIENT_ID"
	TestClientSecret = "TEST_EBAY_CLIENT_SECRET"

	// Default test values when environment variables are not set
	DefaultTestID     = "test-client-id"
	DefaultTestSecret = "test-client-secret"
)

// GetTestValue returns a value from an environment variable or a default.
func GetTestValue(envVar, defaultValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultValue
}

// GetTestClientID returns a client id for API tests.
func GetTestClientID() string {
	return GetTestValue(TestClientID, DefaultTestID)
}

// GetTestClientSecret returns a client secret for API tests.
func GetTestClientSecret() string {
	return GetTestValue(TestClientSecret, DefaultTestSecret)
}
