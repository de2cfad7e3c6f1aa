// Package usage counts metered units in Redis.
//
// Counter implements entitlement.UsageCounter with one sorted set per user and
// unit. It lets several API instances share the daily focus-session quota
// without routing usage writes through Postgres.
//
//	client, err := redis.Connect(ctx, redisCfg)
//	counter := usage.New(client, usage.Config{Retention: 48 * time.Hour})
//	svc := entitlement.NewService(pgStore, counter)
package usage
