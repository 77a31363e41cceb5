package domain

import "context"

type ctxKey int

const (
	actorKey ctxKey = iota
	countryKey
)

// WithActor attaches the authenticated actor to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor attached by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

// WithCountry attaches the caller's ISO country code to ctx.
func WithCountry(ctx context.Context, country string) context.Context {
	return context.WithValue(ctx, countryKey, country)
}

// CountryFrom returns the country attached by WithCountry, or "".
func CountryFrom(ctx context.Context) string {
	c, _ := ctx.Value(countryKey).(string)
	return c
}
