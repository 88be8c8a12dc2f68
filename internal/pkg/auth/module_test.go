package auth

import (
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestNewTokenStrategyUsesConfig(t *testing.T) {
	strategy := newTokenStrategy(strategyParams{Config: &config.Config{AuthSecret: "top-secret", TokenTTL: time.Hour}})
	hmacStrategy, ok := strategy.(*HMACStrategy)
	if !ok {
		t.Fatalf("expected *HMACStrategy, got %T", strategy)
	}
	if string(hmacStrategy.secret) != "top-secret" {
		t.Fatalf("unexpected secret: %q", string(hmacStrategy.secret))
	}
	if hmacStrategy.ttl != time.Hour {
		t.Fatalf("unexpected ttl: %s", hmacStrategy.ttl)
	}
}

func TestModuleProvidesWorkingStrategy(t *testing.T) {
	var strategy Strategy
	app := fxtest.New(t,
		fx.Supply(&config.Config{AuthSecret: "shared"}),
		Module,
		fx.Populate(&strategy),
	)
	app.RequireStart()
	defer app.RequireStop()

	token, err := strategy.IssueToken(model.Actor{ID: 9, Role: model.ActorStaff})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	actor, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.ID != 9 || actor.Role != model.ActorStaff {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}
