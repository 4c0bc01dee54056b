package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()

	if got.MaxOpenConns != 20 || got.MaxIdleConns != 10 {
		t.Fatalf("unexpected pool caps: %+v", got)
	}
	if got.MaxIdleConns > got.MaxOpenConns {
		t.Fatalf("idle cap must not exceed open cap: %+v", got)
	}
	if got.ConnMaxLifetime != time.Hour || got.ConnMaxIdleTime != 10*time.Minute {
		t.Fatalf("unexpected lifetimes: %+v", got)
	}
	if got.PingTimeout != 3*time.Second {
		t.Fatalf("unexpected ping timeout: %+v", got)
	}
}

func TestPostgresPoolConfig_ExplicitValuesSurvive(t *testing.T) {
	in := PostgresPoolConfig{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Second,
		PingTimeout:     time.Second,
	}
	if got := in.withDefaults(); got != in {
		t.Fatalf("explicit config rewritten: %+v", got)
	}
}
