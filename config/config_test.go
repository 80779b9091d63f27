package config

import "testing"

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := getEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d; want 42", got)
	}
	if got := getEnvInt("TEST_INT_MISSING", 7); got != 7 {
		t.Errorf("getEnvInt fallback = %d; want 7", got)
	}

	t.Setenv("TEST_INT_BAD", "not-a-number")
	if got := getEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("getEnvInt on garbage = %d; want fallback 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !getEnvBool("TEST_BOOL", false) {
		t.Error("getEnvBool should parse true")
	}
	if getEnvBool("TEST_BOOL_MISSING", false) {
		t.Error("getEnvBool should fall back to false")
	}
}

func TestDSN(t *testing.T) {
	c := &Config{
		PostgresHost:     "localhost",
		PostgresPort:     "5432",
		PostgresUser:     "landomo",
		PostgresPassword: "secret",
		PostgresDB:       "finn_listings",
		PostgresSSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=landomo password=secret dbname=finn_listings sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN = %q; want %q", got, want)
	}
}
